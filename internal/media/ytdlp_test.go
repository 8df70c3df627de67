// internal/media/ytdlp_test.go
package media

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evostudios/StableScraper/internal/utils"
)

func TestBuildArgs_FullRequest(t *testing.T) {
	runner := NewYtDlpRunner("", nil)
	args := runner.buildArgs(ExtractRequest{
		URL:        "https://player.vimeo.com/video/1",
		OutputPath: "/tmp/out.mp4",
		Format:     "best[ext=mp4]",
		Referer:    "https://mistable.com/",
		UserAgent:  "agent/1.0",
	})

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-f best[ext=mp4]",
		"--referer https://mistable.com/",
		"--user-agent agent/1.0",
		"-o /tmp/out.mp4",
		"--no-playlist",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("Expected args to contain %q, got %q", want, joined)
		}
	}
	if args[len(args)-1] != "https://player.vimeo.com/video/1" {
		t.Fatalf("Expected URL as the final argument, got %q", args[len(args)-1])
	}
}

func TestBuildArgs_OmitsEmptyOptions(t *testing.T) {
	runner := NewYtDlpRunner("", nil)
	args := runner.buildArgs(ExtractRequest{
		URL:        "https://player.vimeo.com/video/1",
		OutputPath: "/tmp/out.mp4",
	})

	joined := strings.Join(args, " ")
	for _, banned := range []string{"-f ", "--referer", "--user-agent"} {
		if strings.Contains(joined, banned) {
			t.Fatalf("Expected %q to be omitted, got %q", banned, joined)
		}
	}
}

func TestDownload_MissingBinary(t *testing.T) {
	runner := NewYtDlpRunner(filepath.Join(t.TempDir(), "no-such-yt-dlp"), nil)
	err := runner.Download(context.Background(), ExtractRequest{
		URL:        "https://player.vimeo.com/video/1",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if err == nil {
		t.Fatal("Expected error for missing binary")
	}
	if !utils.IsCode(err, utils.ErrCodeDownloadFailed) {
		t.Fatalf("Expected DOWNLOAD_FAILED, got %v", err)
	}
}

func TestVersion_MissingBinary(t *testing.T) {
	runner := NewYtDlpRunner(filepath.Join(t.TempDir(), "no-such-yt-dlp"), nil)
	if _, err := runner.Version(context.Background()); err == nil {
		t.Fatal("Expected error for missing binary")
	}
}

func TestTailLines(t *testing.T) {
	in := "one\n\ntwo\nthree\nfour\nfive\nsix\n"
	got := tailLines(in, 3)
	if got != "four\nfive\nsix" {
		t.Fatalf("Expected last three lines, got %q", got)
	}

	if got := tailLines("only", 5); got != "only" {
		t.Fatalf("Expected short input unchanged, got %q", got)
	}
}
