// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures metric naming.
type MetricsConfig struct {
	Namespace string `json:"namespace"`
	Subsystem string `json:"subsystem"`
}

// Metrics holds the Prometheus instruments for the scrape pipeline.
// All recording methods are nil-safe so callers can run without
// metrics wired.
type Metrics struct {
	registry *prometheus.Registry

	scrapesTotal    *prometheus.CounterVec
	scrapeDuration  prometheus.Histogram
	activeScrapes   prometheus.Gauge
	videosProcessed *prometheus.CounterVec
	videoDuration   *prometheus.HistogramVec
	normalizeTime   prometheus.Histogram
	uploadsTotal    *prometheus.CounterVec
}

// NewMetrics registers the pipeline instruments on a dedicated
// registry.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "stablescraper"
	}
	if config.Subsystem == "" {
		config.Subsystem = "scraper"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		scrapesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "scrapes_total",
				Help:      "Total number of scrape jobs by outcome",
			},
			[]string{"outcome"},
		),
		scrapeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "scrape_duration_seconds",
				Help:      "End-to-end scrape job duration",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
		activeScrapes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "active_scrapes",
				Help:      "Number of scrape jobs currently running",
			},
		),
		videosProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "videos_processed_total",
				Help:      "Videos processed by download method and outcome",
			},
			[]string{"method", "outcome"},
		),
		videoDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "video_duration_seconds",
				Help:      "Per-video download and normalize duration by method",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
			},
			[]string{"method"},
		),
		normalizeTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "normalize_duration_seconds",
				Help:      "Audio normalization duration",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "uploads_total",
				Help:      "Asset uploads by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ScrapeStarted marks a scrape job as in flight.
func (m *Metrics) ScrapeStarted() {
	if m == nil {
		return
	}
	m.activeScrapes.Inc()
}

// ScrapeFinished records a completed scrape job.
func (m *Metrics) ScrapeFinished(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.activeScrapes.Dec()
	m.scrapesTotal.WithLabelValues(outcomeLabel(success)).Inc()
	m.scrapeDuration.Observe(duration.Seconds())
}

// VideoProcessed records one video's outcome. An empty method is
// reported as "none", which covers downloads that never got past
// resolution.
func (m *Metrics) VideoProcessed(method string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	m.videosProcessed.WithLabelValues(method, outcomeLabel(success)).Inc()
	m.videoDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// NormalizeObserved records an audio normalization duration.
func (m *Metrics) NormalizeObserved(duration time.Duration) {
	if m == nil {
		return
	}
	m.normalizeTime.Observe(duration.Seconds())
}

// UploadObserved records one upload attempt.
func (m *Metrics) UploadObserved(success bool) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcomeLabel(success)).Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
