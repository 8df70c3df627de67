// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*ServiceConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*ServiceConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	// Substitute environment variables before parsing
	expanded := os.ExpandEnv(string(data))

	var cfg ServiceConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %v", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*ServiceConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %v", err)
	}

	return LoadFromBytes(data)
}

// Default returns the built-in configuration used when no file is given.
func Default() *ServiceConfig {
	cfg := &ServiceConfig{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills unset fields with their defaults.
func applyDefaults(cfg *ServiceConfig) {
	if cfg.Name == "" {
		cfg.Name = "scraper"
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8003"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}

	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if cfg.Fetch.RateLimit == 0 {
		cfg.Fetch.RateLimit = 2.0
	}
	if cfg.Fetch.RateBurst == 0 {
		cfg.Fetch.RateBurst = 5
	}
	if cfg.Fetch.RetryDelay == 0 {
		cfg.Fetch.RetryDelay = time.Second
	}
	if cfg.Fetch.VideoHost == "" {
		cfg.Fetch.VideoHost = "vimeo.com"
	}

	if cfg.Player.ConfigMarker == "" {
		cfg.Player.ConfigMarker = "window.playerConfig = "
	}
	if len(cfg.Player.CDNPriority) == 0 {
		cfg.Player.CDNPriority = []string{"akfire_interconnect_quic", "fastly_skyfire"}
	}
	if cfg.Player.Referer == "" {
		cfg.Player.Referer = "https://mistable.com/"
	}

	if cfg.Media.YtDlpPath == "" {
		cfg.Media.YtDlpPath = "yt-dlp"
	}
	if cfg.Media.FfmpegPath == "" {
		cfg.Media.FfmpegPath = "ffmpeg"
	}
	if cfg.Media.FfprobePath == "" {
		cfg.Media.FfprobePath = "ffprobe"
	}
	if cfg.Media.DownloadTimeout == 0 {
		cfg.Media.DownloadTimeout = 30 * time.Minute
	}

	if cfg.Upload != nil {
		if cfg.Upload.VideoBucket == "" {
			cfg.Upload.VideoBucket = "videos"
		}
		if cfg.Upload.AudioBucket == "" {
			cfg.Upload.AudioBucket = "audio"
		}
	}

	if cfg.Browser != nil {
		if cfg.Browser.Timeout == 0 {
			cfg.Browser.Timeout = 30 * time.Second
		}
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "stablescraper"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "scraper"
	}
}
