// internal/config/types.go
package config

import (
	"fmt"
	"net/url"
	"time"
)

// ServiceConfig is the root configuration for the scraper service.
type ServiceConfig struct {
	Name          string         `yaml:"name" json:"name"`
	ListenAddress string         `yaml:"listen_address" json:"listen_address"`
	LogLevel      string         `yaml:"log_level" json:"log_level"`
	WorkDir       string         `yaml:"work_dir" json:"work_dir"`
	Fetch         FetchConfig    `yaml:"fetch" json:"fetch"`
	Player        PlayerConfig   `yaml:"player" json:"player"`
	Media         MediaConfig    `yaml:"media" json:"media"`
	Upload        *UploadConfig  `yaml:"upload,omitempty" json:"upload,omitempty"`
	Browser       *BrowserConfig `yaml:"browser,omitempty" json:"browser,omitempty"`
	Metrics       MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// FetchConfig controls the report page fetcher.
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	RateLimit     float64       `yaml:"rate_limit" json:"rate_limit"`
	RateBurst     int           `yaml:"rate_burst" json:"rate_burst"`
	RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay"`
	VideoHost     string        `yaml:"video_host" json:"video_host"`
}

// PlayerConfig controls embedded player-config resolution.
type PlayerConfig struct {
	ConfigMarker string   `yaml:"config_marker" json:"config_marker"`
	CDNPriority  []string `yaml:"cdn_priority" json:"cdn_priority"`
	Referer      string   `yaml:"referer" json:"referer"`
}

// MediaConfig controls download and audio normalization tooling.
type MediaConfig struct {
	YtDlpPath       string        `yaml:"ytdlp_path" json:"ytdlp_path"`
	FfmpegPath      string        `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	FfprobePath     string        `yaml:"ffprobe_path" json:"ffprobe_path"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// UploadConfig holds Supabase storage settings. The adapter is only
// constructed when this section is present and complete.
type UploadConfig struct {
	URL            string `yaml:"url" json:"url"`
	ServiceRoleKey string `yaml:"service_role_key" json:"-"`
	VideoBucket    string `yaml:"video_bucket" json:"video_bucket"`
	AudioBucket    string `yaml:"audio_bucket" json:"audio_bucket"`
}

// BrowserConfig enables chromedp-rendered page fetching for report
// pages that build their embeds client-side.
type BrowserConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Headless       bool          `yaml:"headless" json:"headless"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	WaitForElement string        `yaml:"wait_for_element" json:"wait_for_element"`
	WaitDelay      time.Duration `yaml:"wait_delay" json:"wait_delay"`
}

// MetricsConfig configures the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Subsystem string `yaml:"subsystem" json:"subsystem"`
}

// Validate checks the configuration for structural problems.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.VideoHost == "" {
		return fmt.Errorf("fetch.video_host is required")
	}
	if c.Player.ConfigMarker == "" {
		return fmt.Errorf("player.config_marker is required")
	}
	if len(c.Player.CDNPriority) == 0 {
		return fmt.Errorf("player.cdn_priority must list at least one CDN")
	}
	if c.Upload != nil {
		if c.Upload.URL == "" || c.Upload.ServiceRoleKey == "" {
			return fmt.Errorf("upload.url and upload.service_role_key are both required when upload is configured")
		}
		if _, err := url.Parse(c.Upload.URL); err != nil {
			return fmt.Errorf("upload.url is not a valid URL: %v", err)
		}
	}
	if c.Browser != nil && c.Browser.Enabled && c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser.timeout must be positive when browser fetching is enabled")
	}
	return nil
}
