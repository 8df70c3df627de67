// internal/player/config.go
package player

// Config models the subset of the embedded player configuration the
// resolver cares about. Everything else in the object is ignored by the
// JSON decoder.
type Config struct {
	Request RequestConfig `json:"request"`
	Video   VideoConfig   `json:"video"`
}

// RequestConfig carries the playback file descriptors.
type RequestConfig struct {
	Files FilesConfig `json:"files"`
}

// FilesConfig groups the delivery variants offered by the player.
type FilesConfig struct {
	HLS         *HLSConfig    `json:"hls,omitempty"`
	Progressive []Progressive `json:"progressive,omitempty"`
}

// HLSConfig holds the per-CDN HLS playlist URLs.
type HLSConfig struct {
	DefaultCDN string         `json:"default_cdn,omitempty"`
	CDNs       map[string]CDN `json:"cdns"`
}

// CDN is a single content delivery endpoint.
type CDN struct {
	URL    string `json:"url"`
	Origin string `json:"origin,omitempty"`
}

// Progressive is a direct MP4 rendition.
type Progressive struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// VideoConfig carries basic clip attributes.
type VideoConfig struct {
	ID       int64  `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// CDN looks up a delivery endpoint by name.
func (c *Config) CDN(name string) (CDN, bool) {
	if c.Request.Files.HLS == nil {
		return CDN{}, false
	}
	cdn, ok := c.Request.Files.HLS.CDNs[name]
	return cdn, ok
}

// StreamURL returns the playlist URL of the first preferred CDN that is
// present with a non-empty URL, in priority order. The second return
// reports whether a URL was found.
func (c *Config) StreamURL(cdnPriority []string) (string, bool) {
	for _, name := range cdnPriority {
		if cdn, ok := c.CDN(name); ok && cdn.URL != "" {
			return cdn.URL, true
		}
	}
	return "", false
}
