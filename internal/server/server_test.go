// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evostudios/StableScraper/internal/monitoring"
	"github.com/evostudios/StableScraper/internal/scraper"
	"github.com/evostudios/StableScraper/internal/service"
	"github.com/evostudios/StableScraper/internal/utils"
)

type testFetcher struct {
	err error
}

func (f *testFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<html></html>", nil
}

type testExtractor struct {
	urls []string
}

func (e *testExtractor) Extract(markup string) (*scraper.PageMetadata, error) {
	return &scraper.PageMetadata{
		HorseName:       "Thunder Bolt",
		TrainerName:     "J. Smith",
		VideoPlayerURLs: e.urls,
		VideoCount:      len(e.urls),
	}, nil
}

type testDownloader struct {
	err error
}

func (d *testDownloader) Download(ctx context.Context, playerURL, outputPath string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	if err := os.WriteFile(outputPath, []byte("video"), 0o644); err != nil {
		return "", err
	}
	return "direct_stream", nil
}

type testNormalizer struct{}

func (n *testNormalizer) Normalize(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
	if err := os.WriteFile(audioPath, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return audioPath, nil
}

func setupTestServer(t *testing.T, fetchErr error) *httptest.Server {
	t.Helper()
	workDir := t.TempDir()
	downloader := &testDownloader{}
	normalizer := &testNormalizer{}

	coordinator := service.NewCoordinator(service.CoordinatorOptions{
		Fetcher:    &testFetcher{err: fetchErr},
		Extractor:  &testExtractor{urls: []string{"https://player.vimeo.com/video/1"}},
		Downloader: downloader,
		Normalizer: normalizer,
		WorkDir:    workDir,
	})

	health := monitoring.NewHealthManager(0)
	health.Register("workdir", monitoring.WorkDirCheck(workDir))

	srv := New(Options{
		Coordinator: coordinator,
		Downloader:  downloader,
		Normalizer:  normalizer,
		Health:      health,
		Metrics:     monitoring.NewMetrics(monitoring.MetricsConfig{}),
		WorkDir:     workDir,
	})

	server := httptest.NewServer(srv.Router())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestScrapeEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/scrape", map[string]string{
		"source_url": "https://mistable.com/report/1",
		"job_id":     "job-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success    bool   `json:"success"`
		JobID      string `json:"job_id"`
		SourceURL  string `json:"source_url"`
		LocalFiles struct {
			Videos []string `json:"videos"`
			Audio  []string `json:"audio"`
		} `json:"local_files"`
		Metadata struct {
			HorseName string `json:"horse_name"`
		} `json:"metadata"`
	}
	decodeJSON(t, resp, &body)

	if !body.Success {
		t.Fatal("Expected successful response")
	}
	if body.JobID != "job-1" {
		t.Fatalf("Expected job id echoed, got %q", body.JobID)
	}
	if body.Metadata.HorseName != "Thunder Bolt" {
		t.Fatalf("Expected metadata in response, got %q", body.Metadata.HorseName)
	}
	if len(body.LocalFiles.Videos) != 1 || len(body.LocalFiles.Audio) != 1 {
		t.Fatalf("Expected one video and one audio file, got %+v", body.LocalFiles)
	}
}

func TestScrapeEndpoint_MissingSourceURL(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/scrape", map[string]string{"job_id": "job-1"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestScrapeEndpoint_MissingJobID(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/scrape", map[string]string{"source_url": "https://mistable.com/report/1"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestScrapeEndpoint_FetchFailure(t *testing.T) {
	server := setupTestServer(t, utils.NewError(utils.ErrCodeFetchFailed, "HTTP 503"))

	resp := postJSON(t, server.URL+"/scrape", map[string]string{
		"source_url": "https://mistable.com/report/1",
		"job_id":     "job-9",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", resp.StatusCode)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		JobID   string `json:"job_id"`
	}
	decodeJSON(t, resp, &body)

	if body.Success {
		t.Fatal("Expected unsuccessful response")
	}
	if body.Error == "" || body.JobID == "" {
		t.Fatalf("Expected error and job id in response, got %+v", body)
	}
}

func TestDownloadVideoEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/download-video", map[string]string{
		"video_url": "https://player.vimeo.com/video/1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success   bool   `json:"success"`
		JobID     string `json:"job_id"`
		VideoPath string `json:"video_path"`
		Method    string `json:"method"`
	}
	decodeJSON(t, resp, &body)

	if !body.Success {
		t.Fatal("Expected successful response")
	}
	if body.JobID == "" {
		t.Fatal("Expected generated job id")
	}
	if body.Method != "direct_stream" {
		t.Fatalf("Expected download method, got %q", body.Method)
	}
	if !strings.HasSuffix(body.VideoPath, "-video-1.mp4") {
		t.Fatalf("Expected 1-based video file name, got %q", body.VideoPath)
	}
	if _, err := os.Stat(body.VideoPath); err != nil {
		t.Fatalf("Expected downloaded file to remain on disk: %v", err)
	}
}

func TestDownloadVideoEndpoint_MissingURL(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/download-video", map[string]string{})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestExtractAudioEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	videoPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("Failed to write video file: %v", err)
	}

	resp := postJSON(t, server.URL+"/extract-audio", map[string]string{"video_path": videoPath})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success   bool   `json:"success"`
		AudioPath string `json:"audio_path"`
	}
	decodeJSON(t, resp, &body)

	if !body.Success || !strings.HasSuffix(body.AudioPath, ".mp3") {
		t.Fatalf("Expected mp3 audio path, got %+v", body)
	}
}

func TestExtractAudioEndpoint_MissingFile(t *testing.T) {
	server := setupTestServer(t, nil)

	resp := postJSON(t, server.URL+"/extract-audio", map[string]string{"video_path": "/no/such/file.mp4"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status       string   `json:"status"`
		Service      string   `json:"service"`
		Compute      string   `json:"compute"`
		Capabilities []string `json:"capabilities"`
	}
	decodeJSON(t, resp, &body)

	if body.Status != "healthy" {
		t.Fatalf("Expected healthy status, got %q", body.Status)
	}
	if body.Service == "" || body.Compute == "" || len(body.Capabilities) == 0 {
		t.Fatalf("Expected populated health response, got %+v", body)
	}
}

func TestReadyAndLiveEndpoints(t *testing.T) {
	server := setupTestServer(t, nil)

	for _, path := range []string{"/ready", "/live"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("Request to %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", path, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("Metrics request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
}
