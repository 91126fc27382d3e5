package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scan-service/adapters/fetch"
	"scan-service/adapters/metrics"
	"scan-service/adapters/publisher"
	"scan-service/adapters/rest"
	"scan-service/adapters/rest/middleware"
	"scan-service/adapters/scheduler"
	"scan-service/config"
	"scan-service/core"
)

//go:embed static
var staticFiles embed.FS

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "server configuration file")
	flag.Parse()

	var cfg config.Config
	config.MustLoad(configPath, &cfg)

	// Logger
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	log.Info("starting Scan service...")
	log.Debug("debug messages are enabled")

	// Fetch adapter
	fetcher, err := fetch.NewClient(log, fetch.Options{
		Token:      cfg.Proxy.Token,
		ScraperURL: cfg.Proxy.ScraperURL,
		Relays:     cfg.Proxy.Relays,
		Timeout:    cfg.Proxy.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed create fetch client: %v", err)
	}

	// Publisher adapter, optional
	var pub core.Publisher = publisher.Noop{}
	if cfg.Broker.Address != "" {
		natsPub, err := publisher.NewNatsPublisher(cfg.Broker.Address, cfg.Broker.Subject, log)
		if err != nil {
			return fmt.Errorf("failed create Nats publisher: %w", err)
		}
		defer natsPub.Close()
		pub = natsPub
	}

	// Metrics adapter
	recorder := metrics.NewRecorder()

	// Service
	svc, err := core.NewService(log, fetcher, pub, recorder, core.Options{
		ThreadURLs:  cfg.Scan.ThreadURLs,
		SocialURLs:  cfg.Scan.SocialURLs,
		Interval:    cfg.Scan.Interval,
		SourceDelay: cfg.Scan.SourceDelay,
		MaxCodes:    cfg.Scan.MaxCodes,
	})
	if err != nil {
		return fmt.Errorf("failed create Scan service: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Scheduler
	sched := scheduler.NewScanScheduler(log, svc, cfg.Scan.Interval, cfg.Scan.Jitter)
	sched.Start(ctx)

	// Limiters
	scanLimiter := middleware.NewConcurrencyLimiter(cfg.Api.ScanConcurrency)
	codesLimiter := middleware.NewRateLimiter(cfg.Api.CodesRate)

	mux := http.NewServeMux()

	// API endpoints
	mux.Handle("GET /api/codes", codesLimiter.Limit(rest.NewCodesHandler(log, svc)))
	mux.Handle("POST /api/scan", scanLimiter.Limit(rest.NewScanHandler(log, svc)))
	mux.Handle("GET /api/health", rest.NewHealthHandler(log, svc))
	mux.Handle("GET /metrics", recorder.Handler())

	// Status page
	staticRoot, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("cannot create static files subtree: %w", err)
	}
	mux.Handle("GET /", http.FileServerFS(staticRoot))

	handler := middleware.Logging(mux, log)
	handler = middleware.NewCors(cfg.Api.CorsOrigins).Allow(handler)
	handler = middleware.WithRequestID(handler)
	handler = middleware.PanicRecovery(handler, log)

	server := http.Server{
		Addr:        cfg.Api.Address,
		ReadTimeout: cfg.Api.Timeout,
		Handler:     handler,
	}

	go func() {
		<-ctx.Done()
		log.Debug("shutting down Scan service...")

		select {
		case <-sched.Done():
			log.Debug("scheduler stopped gracefully")
		case <-time.After(30 * time.Second):
			log.Debug("scheduler forcing shutdown")
		}

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxTimeout); err != nil {
			log.Error("erroneous shutdown", "error", err)
			return
		}
		log.Debug("Scan service stopped gracefully")
	}()

	log.Info("Scan service started", "address", cfg.Api.Address, "log_level", cfg.LogLevel)
	if err := server.ListenAndServe(); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server closed unexpectedly: %w", err)
		}
	}
	return nil
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		panic("unknown log level: " + logLevel)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{AddSource: true, Level: level})
	return slog.New(handler)
}
