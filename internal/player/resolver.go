// internal/player/resolver.go
package player

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/evostudios/StableScraper/internal/utils"
)

// PageFetcher retrieves the raw markup of a player page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StreamResolver turns a player page URL into a direct stream URL by
// locating the configuration object embedded in the page markup.
type StreamResolver struct {
	fetcher     PageFetcher
	marker      string
	cdnPriority []string
	logger      utils.Logger
}

// ResolverOptions configures a StreamResolver.
type ResolverOptions struct {
	ConfigMarker string
	CDNPriority  []string
}

// NewStreamResolver creates a resolver using the given fetcher. Zero
// option fields fall back to the upstream player's current layout.
func NewStreamResolver(fetcher PageFetcher, opts ResolverOptions, logger utils.Logger) *StreamResolver {
	if opts.ConfigMarker == "" {
		opts.ConfigMarker = "window.playerConfig = "
	}
	if len(opts.CDNPriority) == 0 {
		opts.CDNPriority = []string{"akfire_interconnect_quic", "fastly_skyfire"}
	}
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &StreamResolver{
		fetcher:     fetcher,
		marker:      opts.ConfigMarker,
		cdnPriority: opts.CDNPriority,
		logger:      logger,
	}
}

// Resolve fetches playerURL and returns the preferred stream URL from
// the embedded configuration. A page without any CDN URL yields
// NO_STREAM_FOUND; a missing marker or malformed embedded JSON yields
// CONFIG_PARSE.
func (r *StreamResolver) Resolve(ctx context.Context, playerURL string) (string, error) {
	markup, err := r.fetcher.Fetch(ctx, playerURL)
	if err != nil {
		return "", err
	}

	cfg, err := r.ParseConfig(markup)
	if err != nil {
		return "", utils.WrapError(utils.CodeOf(err), "failed to read player configuration", err).
			WithContext("player_url", playerURL)
	}

	streamURL, ok := cfg.StreamURL(r.cdnPriority)
	if !ok {
		return "", utils.NewError(utils.ErrCodeNoStreamFound, "player configuration carries no stream URL").
			WithContext("player_url", playerURL)
	}

	r.logger.WithFields(map[string]interface{}{
		"player_url": playerURL,
		"hls":        strings.Contains(streamURL, ".m3u8"),
	}).Debug("resolved stream URL")

	return streamURL, nil
}

// ParseConfig extracts and decodes the embedded configuration object
// from raw player page markup.
func (r *StreamResolver) ParseConfig(markup string) (*Config, error) {
	idx := strings.Index(markup, r.marker)
	if idx < 0 {
		return nil, utils.NewError(utils.ErrCodeConfigParse, "player configuration marker not found").
			WithContext("marker", r.marker)
	}

	objStart := idx + len(r.marker)
	for objStart < len(markup) && (markup[objStart] == ' ' || markup[objStart] == '\t') {
		objStart++
	}

	raw, err := ExtractBalancedObject(markup, objStart)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, utils.WrapError(utils.ErrCodeConfigParse, "failed to decode player configuration", err)
	}
	return &cfg, nil
}
