// internal/media/downloader.go
package media

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/evostudios/StableScraper/internal/utils"
)

// Download methods recorded per video asset.
const (
	MethodDirectStream      = "direct_stream"
	MethodFallbackExtractor = "fallback_extractor"
)

// Formats passed to the extractor per tier.
const (
	formatBest    = "best"
	formatBestMP4 = "best[ext=mp4]"
)

// StreamResolver resolves a player page URL into a direct stream URL.
type StreamResolver interface {
	Resolve(ctx context.Context, playerURL string) (string, error)
}

// Extractor downloads a URL that needs an external extraction tool.
type Extractor interface {
	Download(ctx context.Context, req ExtractRequest) error
}

// StreamFetcher performs raw HTTP GETs with extra headers.
type StreamFetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
}

// Downloader fetches one video in two tiers. The first tier resolves
// the embedded player configuration and pulls the stream directly; the
// second hands the player page URL to the extractor and lets it work
// out the formats itself. Tier-one failures are logged and swallowed,
// only a tier-two failure is final.
type Downloader struct {
	resolver  StreamResolver
	extractor Extractor
	client    StreamFetcher
	referer   string
	logger    utils.Logger
}

// NewDownloader wires a two-tier downloader.
func NewDownloader(resolver StreamResolver, extractor Extractor, client StreamFetcher, referer string, logger utils.Logger) *Downloader {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Downloader{
		resolver:  resolver,
		extractor: extractor,
		client:    client,
		referer:   referer,
		logger:    logger,
	}
}

// Download fetches playerURL's video into outputPath and reports which
// method succeeded.
func (d *Downloader) Download(ctx context.Context, playerURL, outputPath string) (string, error) {
	if err := d.downloadDirect(ctx, playerURL, outputPath); err != nil {
		d.logger.WithFields(map[string]interface{}{
			"player_url": playerURL,
			"error":      err.Error(),
		}).Warn("direct stream download failed, falling back to extractor")
	} else {
		return MethodDirectStream, nil
	}

	err := d.extractor.Download(ctx, ExtractRequest{
		URL:        playerURL,
		OutputPath: outputPath,
		Format:     formatBestMP4,
		Referer:    d.referer,
	})
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeDownloadFailed, "all download methods failed", err).
			WithContext("player_url", playerURL)
	}
	return MethodFallbackExtractor, nil
}

// downloadDirect resolves the stream URL and fetches it. HLS playlists
// go through the extractor, which assembles the segments; anything else
// is streamed straight to disk.
func (d *Downloader) downloadDirect(ctx context.Context, playerURL, outputPath string) error {
	streamURL, err := d.resolver.Resolve(ctx, playerURL)
	if err != nil {
		return err
	}

	if strings.Contains(streamURL, ".m3u8") {
		return d.extractor.Download(ctx, ExtractRequest{
			URL:        streamURL,
			OutputPath: outputPath,
			Format:     formatBest,
			Referer:    d.referer,
		})
	}
	return d.saveStream(ctx, streamURL, playerURL, outputPath)
}

// saveStream GETs streamURL and writes the body to outputPath, removing
// partial output on failure. The CDN expects the player page as the
// Referer.
func (d *Downloader) saveStream(ctx context.Context, streamURL, playerURL, outputPath string) error {
	headers := map[string]string{"Referer": playerURL}

	resp, err := d.client.Get(ctx, streamURL, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return utils.WrapError(utils.ErrCodeDownloadFailed, "failed to create output file", err).
			WithContext("path", outputPath)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outputPath)
		return utils.WrapError(utils.ErrCodeDownloadFailed, "failed to write stream to disk", err).
			WithContext("path", outputPath)
	}
	return out.Close()
}
