// internal/service/types.go
package service

import "github.com/evostudios/StableScraper/internal/scraper"

// ScrapeRequest identifies one report page to process.
type ScrapeRequest struct {
	SourceURL string `json:"source_url"`
	JobID     string `json:"job_id"`
	UserID    string `json:"user_id,omitempty"`
	Upload    bool   `json:"upload_to_supabase,omitempty"`
}

// VideoAsset is the per-video outcome of a scrape.
type VideoAsset struct {
	Index          int    `json:"index"`
	PlayerURL      string `json:"player_url"`
	LocalVideoPath string `json:"local_video_path,omitempty"`
	LocalAudioPath string `json:"local_audio_path,omitempty"`
	VideoUploadURL string `json:"video_upload_url,omitempty"`
	AudioUploadURL string `json:"audio_upload_url,omitempty"`
	DownloadMethod string `json:"download_method,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
}

// Succeeded reports whether the asset made it through download and
// normalization.
func (v *VideoAsset) Succeeded() bool {
	return v.FailureReason == ""
}

// ScrapeResult is the complete outcome of one scrape job.
type ScrapeResult struct {
	JobID     string                `json:"job_id"`
	SourceURL string                `json:"source_url"`
	Metadata  *scraper.PageMetadata `json:"metadata,omitempty"`
	Videos    []VideoAsset          `json:"videos"`
	Success   bool                  `json:"success"`
	Error     string                `json:"error,omitempty"`
}
