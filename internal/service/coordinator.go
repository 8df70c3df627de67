// internal/service/coordinator.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/evostudios/StableScraper/internal/media"
	"github.com/evostudios/StableScraper/internal/monitoring"
	"github.com/evostudios/StableScraper/internal/scraper"
	"github.com/evostudios/StableScraper/internal/utils"
	"github.com/evostudios/StableScraper/internal/workspace"
)

// PageFetcher retrieves raw page markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// MetadataExtractor parses report markup.
type MetadataExtractor interface {
	Extract(markup string) (*scraper.PageMetadata, error)
}

// VideoDownloader fetches one video and reports the method used.
type VideoDownloader interface {
	Download(ctx context.Context, playerURL, outputPath string) (string, error)
}

// AudioNormalizer produces the normalized audio track for a video file.
type AudioNormalizer interface {
	Normalize(ctx context.Context, videoPath string) (string, error)
}

// Uploader pushes finished assets to remote storage.
type Uploader interface {
	UploadVideo(ctx context.Context, localPath, userID, jobID string, index int) (string, error)
	UploadAudio(ctx context.Context, localPath, userID, jobID string, index int) (string, error)
}

// Coordinator runs the scrape pipeline: fetch the report page, extract
// metadata and player URLs, then download and normalize each video
// inside a job-scoped workspace. Per-video failures are isolated; only
// a page fetch or metadata failure aborts the job.
type Coordinator struct {
	fetcher    PageFetcher
	extractor  MetadataExtractor
	downloader VideoDownloader
	normalizer AudioNormalizer
	uploader   Uploader
	workDir    string
	logger     utils.Logger
	metrics    *monitoring.Metrics
}

// CoordinatorOptions wires a Coordinator. Uploader and Metrics may be
// nil.
type CoordinatorOptions struct {
	Fetcher    PageFetcher
	Extractor  MetadataExtractor
	Downloader VideoDownloader
	Normalizer AudioNormalizer
	Uploader   Uploader
	WorkDir    string
	Logger     utils.Logger
	Metrics    *monitoring.Metrics
}

// NewCoordinator assembles the pipeline.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Coordinator{
		fetcher:    opts.Fetcher,
		extractor:  opts.Extractor,
		downloader: opts.Downloader,
		normalizer: opts.Normalizer,
		uploader:   opts.Uploader,
		workDir:    opts.WorkDir,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Scrape processes one report page end to end. The workspace and its
// files are removed before the call returns; recorded local paths
// describe what was produced, not what remains on disk.
func (c *Coordinator) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	result := &ScrapeResult{
		JobID:     req.JobID,
		SourceURL: req.SourceURL,
		Videos:    []VideoAsset{},
	}

	if req.SourceURL == "" {
		err := utils.NewError(utils.ErrCodeValidation, "source_url is required")
		result.Error = err.Error()
		return result, err
	}

	start := time.Now()
	c.metrics.ScrapeStarted()
	defer func() {
		c.metrics.ScrapeFinished(result.Success, time.Since(start))
	}()

	log := c.logger.WithFields(map[string]interface{}{
		"job_id":     req.JobID,
		"source_url": req.SourceURL,
	})
	log.Info("starting scrape job")

	ws, err := workspace.New(c.workDir, req.JobID, c.logger)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	defer ws.Release()

	markup, err := c.fetcher.Fetch(ctx, req.SourceURL)
	if err != nil {
		wrapped := utils.WrapError(utils.CodeOf(err), "failed to fetch report page", err).
			WithContext("job_id", req.JobID)
		result.Error = wrapped.Error()
		return result, wrapped
	}

	meta, err := c.extractor.Extract(markup)
	if err != nil {
		wrapped := utils.WrapError(utils.CodeOf(err), "failed to extract page metadata", err).
			WithContext("job_id", req.JobID)
		result.Error = wrapped.Error()
		return result, wrapped
	}
	result.Metadata = meta

	log.WithField("video_count", meta.VideoCount).Info("page metadata extracted")

	// Videos are numbered from 1 in file names and storage paths.
	for i, playerURL := range meta.VideoPlayerURLs {
		asset := c.processVideo(ctx, ws, req, i+1, playerURL)
		result.Videos = append(result.Videos, asset)
	}

	result.Success = true
	return result, nil
}

// processVideo downloads, normalizes and optionally uploads one video.
// Failures land in the asset's FailureReason instead of aborting the
// job.
func (c *Coordinator) processVideo(ctx context.Context, ws *workspace.Workspace, req ScrapeRequest, index int, playerURL string) VideoAsset {
	asset := VideoAsset{Index: index, PlayerURL: playerURL}
	log := c.logger.WithFields(map[string]interface{}{
		"job_id":      req.JobID,
		"video_index": index,
	})

	outputPath := ws.Path(workspace.VideoFileName(req.JobID, index, "mp4"))

	downloadStart := time.Now()
	method, err := c.downloader.Download(ctx, playerURL, outputPath)
	if err != nil {
		log.WithField("error", err.Error()).Error("video download failed")
		asset.FailureReason = err.Error()
		c.metrics.VideoProcessed("", false, time.Since(downloadStart))
		return asset
	}
	asset.LocalVideoPath = outputPath
	asset.DownloadMethod = method

	normalizeStart := time.Now()
	audioPath, err := c.normalizer.Normalize(ctx, outputPath)
	if err != nil {
		log.WithField("error", err.Error()).Error("audio normalization failed")
		asset.FailureReason = err.Error()
		c.metrics.VideoProcessed(method, false, time.Since(downloadStart))
		return asset
	}
	asset.LocalAudioPath = audioPath
	c.metrics.NormalizeObserved(time.Since(normalizeStart))
	c.metrics.VideoProcessed(method, true, time.Since(downloadStart))

	if req.Upload && c.uploader != nil && req.UserID != "" {
		c.uploadAsset(ctx, &asset, req, log)
	}

	log.WithField("method", method).Info("video processed")
	return asset
}

// uploadAsset pushes the asset's files to remote storage. Upload
// failures leave the asset successful; the URLs just stay empty.
func (c *Coordinator) uploadAsset(ctx context.Context, asset *VideoAsset, req ScrapeRequest, log utils.Logger) {
	videoURL, err := c.uploader.UploadVideo(ctx, asset.LocalVideoPath, req.UserID, req.JobID, asset.Index)
	if err != nil {
		log.WithField("error", err.Error()).Warn("video upload failed")
		c.metrics.UploadObserved(false)
	} else {
		asset.VideoUploadURL = videoURL
		c.metrics.UploadObserved(true)
	}

	audioURL, err := c.uploader.UploadAudio(ctx, asset.LocalAudioPath, req.UserID, req.JobID, asset.Index)
	if err != nil {
		log.WithField("error", err.Error()).Warn("audio upload failed")
		c.metrics.UploadObserved(false)
	} else {
		asset.AudioUploadURL = audioURL
		c.metrics.UploadObserved(true)
	}
}

var _ VideoDownloader = (*media.Downloader)(nil)
var _ AudioNormalizer = (*media.AudioNormalizer)(nil)
