package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graasp/graasp-service-exporter/api"
	"github.com/graasp/graasp-service-exporter/config"
	"github.com/graasp/graasp-service-exporter/export"
	"github.com/graasp/graasp-service-exporter/job"
	"github.com/graasp/graasp-service-exporter/queue"
	"github.com/graasp/graasp-service-exporter/store"
)

// Set at build time via -ldflags.
var (
	branch = ""
	commit = ""
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			slog.Error("load configuration", "path", *configPath, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Default()
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Artifact store.
	st, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		logger.Error("open artifact store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Export topic.
	bus, err := queue.Connect(cfg.Queue.URL, cfg.Queue.Subject, logger)
	if err != nil {
		logger.Error("connect export topic", "url", cfg.Queue.URL, "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	// Worker: consumes jobs and generates artifacts. Failures are logged
	// and the job stays pending; pollers keep seeing pending.
	svc := export.NewService(cfg, st, logger)
	err = bus.Subscribe(ctx, func(ctx context.Context, msg job.Message) {
		if err := svc.Generate(ctx, msg); err != nil {
			logger.Error("export job failed", "space_id", msg.ID, "file_id", msg.FileID, "error", err)
		}
	})
	if err != nil {
		logger.Error("subscribe export topic", "error", err)
		os.Exit(1)
	}

	// HTTP API.
	handler := api.New(cfg, st, bus, logger, api.BuildInfo{Branch: branch, Commit: commit})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("exporter listening", "addr", srv.Addr, "host", cfg.Host)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
}
