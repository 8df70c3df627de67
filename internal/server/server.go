// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/evostudios/StableScraper/internal/monitoring"
	"github.com/evostudios/StableScraper/internal/service"
	"github.com/evostudios/StableScraper/internal/utils"
)

// ServiceVersion is stamped at build time via -ldflags.
var ServiceVersion = "dev"

// Options wires the HTTP server.
type Options struct {
	ListenAddress string
	ServiceName   string
	Coordinator   *service.Coordinator
	Downloader    service.VideoDownloader
	Normalizer    service.AudioNormalizer
	Health        *monitoring.HealthManager
	Metrics       *monitoring.Metrics
	WorkDir       string
	Logger        utils.Logger
}

// Server exposes the scrape pipeline over HTTP.
type Server struct {
	opts       Options
	router     *mux.Router
	httpServer *http.Server
	logger     utils.Logger
	started    time.Time
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.ListenAddress == "" {
		opts.ListenAddress = ":8003"
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "stablescraper"
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger()
	}

	s := &Server{
		opts:    opts,
		logger:  logger,
		started: time.Now(),
	}
	s.router = s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         opts.ListenAddress,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 45 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/scrape", s.handleScrape).Methods(http.MethodPost)
	router.HandleFunc("/download-video", s.handleDownloadVideo).Methods(http.MethodPost)
	router.HandleFunc("/extract-audio", s.handleExtractAudio).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	router.HandleFunc("/live", s.handleLive).Methods(http.MethodGet)
	router.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet)

	router.Use(s.loggingMiddleware)
	return router
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("address", s.opts.ListenAddress).Info("http server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("request handled")
	})
}
