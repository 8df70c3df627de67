// internal/upload/supabase.go
package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/evostudios/StableScraper/internal/utils"
)

// SupabaseConfig holds the storage project coordinates.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
	VideoBucket    string
	AudioBucket    string
	Timeout        time.Duration
}

// SupabaseStore uploads finished assets to Supabase storage buckets
// over its REST API and hands back public URLs.
type SupabaseStore struct {
	config     SupabaseConfig
	httpClient *http.Client
	logger     utils.Logger
}

// NewSupabaseStore creates a store. URL and key are required; buckets
// default to "videos" and "audio".
func NewSupabaseStore(config SupabaseConfig, logger utils.Logger) (*SupabaseStore, error) {
	if config.URL == "" || config.ServiceRoleKey == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "supabase url and service role key are required")
	}
	if config.VideoBucket == "" {
		config.VideoBucket = "videos"
	}
	if config.AudioBucket == "" {
		config.AudioBucket = "audio"
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = utils.NewLogger()
	}
	config.URL = strings.TrimRight(config.URL, "/")

	return &SupabaseStore{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// UploadVideo stores a video file and returns its public URL.
func (s *SupabaseStore) UploadVideo(ctx context.Context, localPath, userID, jobID string, index int) (string, error) {
	objectPath := fmt.Sprintf("%s/%s/video-%d.mp4", userID, jobID, index)
	return s.upload(ctx, localPath, s.config.VideoBucket, objectPath, "video/mp4")
}

// UploadAudio stores a normalized audio file and returns its public URL.
func (s *SupabaseStore) UploadAudio(ctx context.Context, localPath, userID, jobID string, index int) (string, error) {
	objectPath := fmt.Sprintf("%s/%s/audio-%d.mp3", userID, jobID, index)
	return s.upload(ctx, localPath, s.config.AudioBucket, objectPath, "audio/mpeg")
}

func (s *SupabaseStore) upload(ctx context.Context, localPath, bucket, objectPath, contentType string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeUploadFailed, "failed to open local file", err).
			WithContext("path", localPath)
	}
	defer file.Close()

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.config.URL, bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeUploadFailed, "failed to build upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.ServiceRoleKey)
	req.Header.Set("Content-Type", contentType)
	if info, err := file.Stat(); err == nil {
		req.ContentLength = info.Size()
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeUploadFailed, "upload request failed", err).
			WithContext("bucket", bucket).
			WithContext("object", objectPath).
			WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", utils.NewError(utils.ErrCodeUploadFailed,
			fmt.Sprintf("upload rejected with HTTP %d", resp.StatusCode)).
			WithContext("bucket", bucket).
			WithContext("object", objectPath).
			WithContext("response", strings.TrimSpace(string(body)))
	}

	publicURL := s.PublicURL(bucket, objectPath)
	s.logger.WithFields(map[string]interface{}{
		"bucket": bucket,
		"object": objectPath,
	}).Info("asset uploaded")

	return publicURL, nil
}

// PublicURL builds the public access URL for an uploaded object.
func (s *SupabaseStore) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.config.URL, bucket, objectPath)
}
