// internal/media/ytdlp.go
package media

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/evostudios/StableScraper/internal/utils"
)

// ExtractRequest describes one yt-dlp invocation.
type ExtractRequest struct {
	URL        string
	OutputPath string
	Format     string
	Referer    string
	UserAgent  string
}

// YtDlpRunner shells out to the yt-dlp binary for stream extraction and
// download. yt-dlp handles HLS playlist assembly and segment merging,
// which a plain HTTP GET cannot.
type YtDlpRunner struct {
	binPath string
	logger  utils.Logger
}

// NewYtDlpRunner creates a runner for the given binary path, defaulting
// to "yt-dlp" on PATH.
func NewYtDlpRunner(binPath string, logger utils.Logger) *YtDlpRunner {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &YtDlpRunner{binPath: binPath, logger: logger}
}

// Download runs yt-dlp for the request and writes the result to
// req.OutputPath. Failures carry the tail of yt-dlp's stderr.
func (y *YtDlpRunner) Download(ctx context.Context, req ExtractRequest) error {
	args := y.buildArgs(req)

	y.logger.WithFields(map[string]interface{}{
		"url":    req.URL,
		"output": req.OutputPath,
	}).Debug("running yt-dlp")

	cmd := exec.CommandContext(ctx, y.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return utils.WrapError(utils.ErrCodeDownloadFailed, "yt-dlp execution failed", err).
			WithContext("url", req.URL).
			WithContext("stderr", tailLines(stderr.String(), 5))
	}
	return nil
}

// Version reports the installed yt-dlp version, used by health checks.
func (y *YtDlpRunner) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, y.binPath, "--version").Output()
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeInternal, "yt-dlp is not available", err).
			WithContext("binary", y.binPath)
	}
	return strings.TrimSpace(string(out)), nil
}

func (y *YtDlpRunner) buildArgs(req ExtractRequest) []string {
	args := []string{"--no-playlist", "--no-progress"}

	if req.Format != "" {
		args = append(args, "-f", req.Format)
	}
	if req.Referer != "" {
		args = append(args, "--referer", req.Referer)
	}
	if req.UserAgent != "" {
		args = append(args, "--user-agent", req.UserAgent)
	}
	args = append(args, "-o", req.OutputPath, req.URL)
	return args
}

// tailLines returns the last n non-blank lines of s.
func tailLines(s string, n int) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
