// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/evostudios/StableScraper/internal/monitoring"
	"github.com/evostudios/StableScraper/internal/service"
	"github.com/evostudios/StableScraper/internal/workspace"
)

type localFiles struct {
	Videos []string `json:"videos"`
	Audio  []string `json:"audio"`
}

type uploadedURLs struct {
	Videos []string `json:"videos"`
	Audio  []string `json:"audio"`
}

type scrapeResponse struct {
	Success      bool                  `json:"success"`
	JobID        string                `json:"job_id"`
	SourceURL    string                `json:"source_url"`
	Metadata     interface{}           `json:"metadata,omitempty"`
	Videos       []service.VideoAsset  `json:"videos"`
	LocalFiles   localFiles            `json:"local_files"`
	UploadedURLs *uploadedURLs         `json:"uploaded_urls,omitempty"`
	Error        string                `json:"error,omitempty"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req service.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SourceURL == "" {
		s.writeError(w, http.StatusBadRequest, "source_url is required")
		return
	}
	if req.JobID == "" {
		s.writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	result, err := s.opts.Coordinator.Scrape(r.Context(), req)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, scrapeResponse{
			Success:   false,
			JobID:     result.JobID,
			SourceURL: req.SourceURL,
			Videos:    result.Videos,
			Error:     result.Error,
		})
		return
	}

	resp := scrapeResponse{
		Success:   result.Success,
		JobID:     result.JobID,
		SourceURL: result.SourceURL,
		Metadata:  result.Metadata,
		Videos:    result.Videos,
		LocalFiles: localFiles{
			Videos: []string{},
			Audio:  []string{},
		},
	}

	var uploads uploadedURLs
	for _, asset := range result.Videos {
		if asset.LocalVideoPath != "" {
			resp.LocalFiles.Videos = append(resp.LocalFiles.Videos, asset.LocalVideoPath)
		}
		if asset.LocalAudioPath != "" {
			resp.LocalFiles.Audio = append(resp.LocalFiles.Audio, asset.LocalAudioPath)
		}
		if asset.VideoUploadURL != "" {
			uploads.Videos = append(uploads.Videos, asset.VideoUploadURL)
		}
		if asset.AudioUploadURL != "" {
			uploads.Audio = append(uploads.Audio, asset.AudioUploadURL)
		}
	}
	if len(uploads.Videos) > 0 || len(uploads.Audio) > 0 {
		resp.UploadedURLs = &uploads
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type downloadVideoRequest struct {
	URL   string `json:"video_url"`
	JobID string `json:"job_id"`
}

type downloadVideoResponse struct {
	Success   bool   `json:"success"`
	JobID     string `json:"job_id"`
	VideoPath string `json:"video_path,omitempty"`
	Method    string `json:"method,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleDownloadVideo downloads a single video without the rest of the
// pipeline. The file is kept on disk on success so a caller can fetch
// or post-process it.
func (s *Server) handleDownloadVideo(w http.ResponseWriter, r *http.Request) {
	var req downloadVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "video_url is required")
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	ws, err := workspace.New(s.opts.WorkDir, req.JobID, s.logger)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, downloadVideoResponse{
			Success: false, JobID: req.JobID, Error: err.Error(),
		})
		return
	}

	outputPath := ws.Path(workspace.VideoFileName(req.JobID, 1, "mp4"))
	method, err := s.opts.Downloader.Download(r.Context(), req.URL, outputPath)
	if err != nil {
		ws.Release()
		s.writeJSON(w, http.StatusInternalServerError, downloadVideoResponse{
			Success: false, JobID: req.JobID, Error: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, downloadVideoResponse{
		Success:   true,
		JobID:     req.JobID,
		VideoPath: outputPath,
		Method:    method,
	})
}

type extractAudioRequest struct {
	VideoPath string `json:"video_path"`
}

type extractAudioResponse struct {
	Success   bool   `json:"success"`
	AudioPath string `json:"audio_path,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleExtractAudio(w http.ResponseWriter, r *http.Request) {
	var req extractAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.VideoPath == "" {
		s.writeError(w, http.StatusBadRequest, "video_path is required")
		return
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		s.writeError(w, http.StatusBadRequest, "video_path does not exist")
		return
	}

	audioPath, err := s.opts.Normalizer.Normalize(r.Context(), req.VideoPath)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, extractAudioResponse{
			Success: false, Error: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, extractAudioResponse{
		Success:   true,
		AudioPath: audioPath,
	})
}

type healthResponse struct {
	Status       string                   `json:"status"`
	Service      string                   `json:"service"`
	Version      string                   `json:"version"`
	Compute      string                   `json:"compute"`
	Uptime       string                   `json:"uptime"`
	Capabilities []string                 `json:"capabilities"`
	Checks       []monitoring.CheckResult `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := monitoring.HealthStatusHealthy
	var checks []monitoring.CheckResult
	if s.opts.Health != nil {
		status, checks = s.opts.Health.RunChecks(r.Context())
	}

	code := http.StatusOK
	if status != monitoring.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, healthResponse{
		Status:       string(status),
		Service:      s.opts.ServiceName,
		Version:      ServiceVersion,
		Compute:      "cpu",
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Capabilities: []string{"scrape", "video-download", "audio-extraction"},
		Checks:       checks,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if status, _ := s.opts.Health.RunChecks(r.Context()); status != monitoring.HealthStatusHealthy {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
