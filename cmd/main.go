package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/veritas/internal/api"
	"github.com/bilgisen/veritas/internal/apiclient"
	"github.com/bilgisen/veritas/internal/articles"
	"github.com/bilgisen/veritas/internal/auth"
	"github.com/bilgisen/veritas/internal/bookmarks"
	"github.com/bilgisen/veritas/internal/cache"
	"github.com/bilgisen/veritas/internal/config"
	"github.com/bilgisen/veritas/internal/inquiries"
	"github.com/bilgisen/veritas/internal/logger"
	"github.com/bilgisen/veritas/internal/metrics"
	"github.com/bilgisen/veritas/internal/middleware"
	"github.com/bilgisen/veritas/internal/recommend"
	"github.com/bilgisen/veritas/internal/scheduler"
	"github.com/bilgisen/veritas/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_ = logger.Init(logger.Config{Level: "error", Output: "stderr"})
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("api", cfg.APIBaseURL).Msg("Starting veritas daemon...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	tokens := auth.NewFileStore(cfg.TokenFile)
	client := apiclient.NewFromConfig(cfg, tokens, collector)

	summaries, err := cache.New(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory summary cache")
		summaries = cache.NewMemoryCache()
	}
	defer func() {
		if err := summaries.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing summary cache")
		}
	}()

	marks := bookmarks.New(client, tokens, bookmarks.WithMetrics(collector))
	fetcher := recommend.NewFetcherFromConfig(cfg, client, summaries, collector)

	sink, err := storage.NewSink(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Bookmark export disabled")
	}

	// Token changes made by the CLI or another daemon trigger a reload.
	var changes <-chan struct{}
	watcher, err := auth.NewWatcher(cfg.TokenFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.TokenFile).Msg("Token watcher disabled")
	} else {
		defer watcher.Close()
		changes = watcher.Changes(ctx)
	}
	go marks.Sync(ctx, changes)

	sched := scheduler.New(cfg.HTTPTimeout * 3)
	if err := sched.Add("bookmark-sync", cfg.SyncSchedule, marks.Load); err != nil {
		log.Fatal().Err(err).Msg("Invalid SYNC_SCHEDULE")
	}
	sched.Start()
	log.Info().Int("jobs", sched.Jobs()).Str("sync_schedule", cfg.SyncSchedule).Msg("Scheduler started")

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTPTimeout,
		WriteTimeout:          cfg.HTTPTimeout * 4,
		IdleTimeout:           120 * time.Second,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: cfg.Env != "development",
	})

	handlers := api.NewHandlers(api.Deps{
		Tokens:    tokens,
		Articles:  articles.NewClient(client),
		Bookmarks: marks,
		Tracker:   recommend.NewTracker(fetcher),
		Inquiries: inquiries.NewClient(client, tokens),
		Sink:      sink,
	})
	api.SetupRoutes(app, handlers, cfg.LocalAPIKey, reg)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
