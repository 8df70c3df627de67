// cmd/stablescraper/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/evostudios/StableScraper/internal/browser"
	"github.com/evostudios/StableScraper/internal/config"
	"github.com/evostudios/StableScraper/internal/media"
	"github.com/evostudios/StableScraper/internal/monitoring"
	"github.com/evostudios/StableScraper/internal/player"
	"github.com/evostudios/StableScraper/internal/scraper"
	"github.com/evostudios/StableScraper/internal/server"
	"github.com/evostudios/StableScraper/internal/service"
	"github.com/evostudios/StableScraper/internal/upload"
	"github.com/evostudios/StableScraper/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Local .env files carry Supabase credentials in development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "serve":
		runServe(os.Args[2:])

	case "scrape":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: source URL required\n")
			fmt.Fprintf(os.Stderr, "Usage: stablescraper scrape <url> [config.yaml]\n")
			os.Exit(1)
		}
		runScrape(os.Args[2], os.Args[3:])

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: stablescraper validate <config.yaml>\n")
			os.Exit(1)
		}
		runValidate(os.Args[2])

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// loadConfig reads the optional config file argument, falling back to
// the CONFIG_FILE environment variable and finally built-in defaults.
func loadConfig(args []string) (*config.ServiceConfig, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else if env := os.Getenv("CONFIG_FILE"); env != "" {
		path = env
	}

	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

// application bundles the assembled pipeline.
type application struct {
	cfg         *config.ServiceConfig
	logger      utils.Logger
	coordinator *service.Coordinator
	downloader  *media.Downloader
	normalizer  *media.AudioNormalizer
	ytdlp       *media.YtDlpRunner
	health      *monitoring.HealthManager
	metrics     *monitoring.Metrics
	chrome      *browser.ChromeFetcher
}

// buildApplication wires the pipeline from configuration.
func buildApplication(cfg *config.ServiceConfig) *application {
	logger := utils.NewLoggerWithLevel(utils.ParseLogLevel(cfg.LogLevel))

	pageClient := scraper.NewHTTPClient(scraper.ClientConfig{
		Timeout:       cfg.Fetch.Timeout,
		UserAgent:     cfg.Fetch.UserAgent,
		RateLimit:     cfg.Fetch.RateLimit,
		RateBurst:     cfg.Fetch.RateBurst,
		RetryAttempts: cfg.Fetch.RetryAttempts,
		RetryDelay:    cfg.Fetch.RetryDelay,
	})

	var fetcher service.PageFetcher = pageClient
	var chrome *browser.ChromeFetcher
	if cfg.Browser != nil && cfg.Browser.Enabled {
		chrome = browser.NewChromeFetcher(browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			UserAgent:      cfg.Browser.UserAgent,
			WaitForElement: cfg.Browser.WaitForElement,
			WaitDelay:      cfg.Browser.WaitDelay,
		}, logger)
		fetcher = chrome
	}

	extractor := scraper.NewMetadataExtractor(cfg.Fetch.VideoHost)

	resolver := player.NewStreamResolver(pageClient, player.ResolverOptions{
		ConfigMarker: cfg.Player.ConfigMarker,
		CDNPriority:  cfg.Player.CDNPriority,
	}, logger)

	ytdlp := media.NewYtDlpRunner(cfg.Media.YtDlpPath, logger)
	downloader := media.NewDownloader(resolver, ytdlp, pageClient, cfg.Player.Referer, logger)

	prober := media.NewFfprobeProber(cfg.Media.FfmpegPath, cfg.Media.FfprobePath)
	normalizer := media.NewAudioNormalizer(cfg.Media.FfmpegPath, cfg.Media.FfprobePath, prober, logger)

	var uploader service.Uploader
	if cfg.Upload != nil {
		store, err := upload.NewSupabaseStore(upload.SupabaseConfig{
			URL:            cfg.Upload.URL,
			ServiceRoleKey: cfg.Upload.ServiceRoleKey,
			VideoBucket:    cfg.Upload.VideoBucket,
			AudioBucket:    cfg.Upload.AudioBucket,
		}, logger)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("upload storage disabled")
		} else {
			uploader = store
		}
	}

	metrics := monitoring.NewMetrics(monitoring.MetricsConfig{
		Namespace: cfg.Metrics.Namespace,
		Subsystem: cfg.Metrics.Subsystem,
	})

	health := monitoring.NewHealthManager(5 * time.Second)
	health.Register("workdir", monitoring.WorkDirCheck(cfg.WorkDir))
	health.Register("yt-dlp", monitoring.BinaryCheck(ytdlp.Version))

	coordinator := service.NewCoordinator(service.CoordinatorOptions{
		Fetcher:    fetcher,
		Extractor:  extractor,
		Downloader: downloader,
		Normalizer: normalizer,
		Uploader:   uploader,
		WorkDir:    cfg.WorkDir,
		Logger:     logger,
		Metrics:    metrics,
	})

	return &application{
		cfg:         cfg,
		logger:      logger,
		coordinator: coordinator,
		downloader:  downloader,
		normalizer:  normalizer,
		ytdlp:       ytdlp,
		health:      health,
		metrics:     metrics,
		chrome:      chrome,
	}
}

func (app *application) close() {
	if app.chrome != nil {
		app.chrome.Close()
	}
}

func runServe(args []string) {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := buildApplication(cfg)
	defer app.close()

	srv := server.New(server.Options{
		ListenAddress: cfg.ListenAddress,
		ServiceName:   cfg.Name,
		Coordinator:   app.coordinator,
		Downloader:    app.downloader,
		Normalizer:    app.normalizer,
		Health:        app.health,
		Metrics:       app.metrics,
		WorkDir:       cfg.WorkDir,
		Logger:        app.logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			app.logger.WithField("error", err.Error()).Error("server failed")
			os.Exit(1)
		}
	case sig := <-sigCh:
		app.logger.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			app.logger.WithField("error", err.Error()).Error("shutdown failed")
			os.Exit(1)
		}
	}
}

func runScrape(sourceURL string, args []string) {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := buildApplication(cfg)
	defer app.close()

	ctx := context.Background()
	if cfg.Media.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Media.DownloadTimeout)
		defer cancel()
	}

	result, err := app.coordinator.Scrape(ctx, service.ScrapeRequest{SourceURL: sourceURL})
	output, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr == nil {
		fmt.Println(string(output))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runValidate(path string) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Configuration file '%s' is valid (service %q)\n", path, cfg.Name)
}

// printUsage displays help information
func printUsage() {
	fmt.Println("StableScraper - Training Report Scraping Service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  stablescraper serve [config.yaml]       Start the HTTP service")
	fmt.Println("  stablescraper scrape <url> [config.yaml] Scrape one report page and print the result")
	fmt.Println("  stablescraper validate <config.yaml>    Validate configuration file")
	fmt.Println("  stablescraper version                   Show version information")
	fmt.Println("  stablescraper help                      Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CONFIG_FILE                             Configuration file path")
	fmt.Println("  SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY Storage credentials (expanded in config)")
}

// printVersion displays version information
func printVersion() {
	fmt.Printf("StableScraper %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
