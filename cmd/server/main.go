package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zenstudio/backend/internal/config"
	"github.com/zenstudio/backend/internal/handler"
	"github.com/zenstudio/backend/internal/logging"
	"github.com/zenstudio/backend/internal/metrics"
	"github.com/zenstudio/backend/internal/service"
	"github.com/zenstudio/backend/internal/storage"
)

var build = "develop"

func main() {
	if err := run(); err != nil {
		logging.Fatal("startup", "error", err)
	}
}

func run() error {
	cfg, help, err := config.Load(build)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "studio-api"})
	slog.Info("startup", "build", build, "config", cfg.String())

	// =========================================================================
	// Storage

	ctx := context.Background()
	m := metrics.New(prometheus.DefaultRegisterer)

	store, err := storage.Open(ctx, cfg.Storage(), m)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("shutdown", "status", "closing store", "backend", store.Location())
		if err := store.Close(); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	// =========================================================================
	// HTTP

	var limiter *handler.RateLimiter
	if cfg.Web.SubmitRatePerMinute > 0 {
		limiter = handler.NewRateLimiter(cfg.Web.SubmitRatePerMinute,
			handler.WithTrustedProxies(cfg.Web.TrustedProxies),
			handler.WithLimiterMetrics(m),
		)
		defer limiter.Close()
	}

	records := service.NewRecordService(store, m)
	h := handler.New(records, store.Location(), cfg.Web.AllowedOrigin)

	server := &http.Server{
		Addr:         cfg.Web.Addr,
		Handler:      handler.NewRouter(h, limiter, promhttp.Handler()),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "database", store.Location())
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		slog.Info("shutdown", "status", "shutdown started", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
