// internal/monitoring/metrics_test.go
package monitoring

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_RecordAndServe(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.ScrapeStarted()
	m.ScrapeFinished(true, 2*time.Second)
	m.VideoProcessed("direct_stream", true, time.Second)
	m.VideoProcessed("", false, time.Second)
	m.NormalizeObserved(500 * time.Millisecond)
	m.UploadObserved(true)
	m.UploadObserved(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`stablescraper_scraper_scrapes_total{outcome="success"} 1`,
		`stablescraper_scraper_videos_processed_total{method="direct_stream",outcome="success"} 1`,
		`stablescraper_scraper_videos_processed_total{method="none",outcome="failure"} 1`,
		`stablescraper_scraper_uploads_total{outcome="failure"} 1`,
		`stablescraper_scraper_active_scrapes 0`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("Expected metrics output to contain %q", want)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ScrapeStarted()
	m.ScrapeFinished(false, time.Second)
	m.VideoProcessed("direct_stream", false, time.Second)
	m.NormalizeObserved(time.Second)
	m.UploadObserved(true)
}
