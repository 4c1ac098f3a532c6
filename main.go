package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/newsextractor/config"
	"sjsage522/newsextractor/internal/crawler"
	"sjsage522/newsextractor/internal/export"
	"sjsage522/newsextractor/internal/news"
	"sjsage522/newsextractor/logger"
	apperrors "sjsage522/newsextractor/pkg/errors"
	"sjsage522/newsextractor/services/cache"
	"sjsage522/newsextractor/services/images"
	"sjsage522/newsextractor/services/publisher"
	"sjsage522/newsextractor/services/worker"

	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const (
	exitOK = iota
	exitFailure
	exitConfig
)

// Options are the command line flags
type Options struct {
	Config  string `short:"c" long:"config" description:"YAML configuration file" default:"config.yaml"`
	EnvFile string `short:"e" long:"env-file" description:"dotenv file loaded before reading the environment" default:".env"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return exitOK
		}
		return exitConfig
	}

	// A missing dotenv file is fine; the environment may already be set
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", opts.EnvFile, err)
		return exitConfig
	}

	// Load and validate configuration before any browser is started
	cfg, err := config.LoadConfig(opts.Config)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	runID := uuid.NewString()
	baseLog, err := logger.New(logger.Options{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: cfg.Environment,
		FilePath:    cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer baseLog.Close()
	log := baseLog.WithField("run_id", runID)

	log.Info().
		Str("environment", cfg.Environment).
		Str("url", cfg.URL).
		Str("search_phrase", cfg.SearchPhrase).
		Str("section", cfg.Section).
		Str("date_type", string(cfg.DateType)).
		Int("months", cfg.Months).
		Int("show_more", cfg.ShowMore).
		Msg("Starting news extraction")

	// Set up context with the run timeout and signal cancellation
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := initializeServices(ctx, cfg, log)
	defer services.Cleanup()

	w := newWorker(runID, cfg, services, log)
	result, err := w.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Run failed")
		return exitFailure
	}

	log.Info().
		Int("collected", result.Collected).
		Int("in_range", result.InRange).
		Int("exported", result.Exported).
		Int("images", result.ImagesDownloaded).
		Int("image_failures", result.ImageFailures).
		Int("published", result.Published).
		Str("output", cfg.OutputExcel).
		Msg("News extraction finished")
	return exitOK
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices connects the optional services. An unreachable service
// is replaced by its local fallback.
func initializeServices(ctx context.Context, cfg *config.Config, log *logger.Logger) *Services {
	services := &Services{
		Cache:     cache.NewMemoryCache(),
		Publisher: publisher.Nop{},
	}

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr, "newsextractor:image:")
		if err := mc.Ping(); err != nil {
			log.Warn().Err(apperrors.NewCache("memcache", "ping failed", err)).Msg("Using in-memory image cache")
		} else {
			services.Cache = mc
			log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		}
	}

	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		rp := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		if err := rp.Ping(pingCtx); err != nil {
			rp.Close()
			log.Warn().Err(err).Msg("Record publication disabled")
		} else {
			services.Publisher = rp
			log.Info().
				Str("addr", cfg.RedisAddr).
				Int("db", cfg.RedisDB).
				Str("stream", cfg.RedisStream).
				Msg("Connected to Redis")
		}
	}

	return services
}

// newWorker wires the pipeline for cfg
func newWorker(runID string, cfg *config.Config, services *Services, log *logger.Logger) *worker.Worker {
	// The window and relative result dates share one clock reading
	now := time.Now()
	window := news.NewDateRange(cfg.DateType, cfg.Months, now)

	session := crawler.NewChromeSession(crawler.ChromeOptions{
		RemoteAddr: cfg.ChromeAddr,
		Selectors:  crawler.NYTimesSelectors,
		Log:        log,
	})
	collector := crawler.NewCollector(session, crawler.NewParser(cfg.URL, func() time.Time { return now }), crawler.Query{
		URL:      cfg.URL,
		Phrase:   cfg.SearchPhrase,
		Section:  cfg.Section,
		Window:   window,
		ShowMore: cfg.ShowMore,
	}, log)

	downloader := images.NewDownloader(cfg.PictureOutput, services.Cache, nil, log)

	return worker.NewWorker(worker.Options{
		RunID:       runID,
		Collector:   collector,
		Window:      window,
		Enricher:    news.NewEnricher(cfg.SearchPhrase, downloader, cfg.DownloadWorkers, log),
		Exporter:    export.NewExporter(export.NewExcelWriter()),
		OutputPath:  cfg.OutputExcel,
		Publisher:   services.Publisher,
		Environment: cfg.Environment,
		Log:         log,
	})
}
