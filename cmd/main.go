package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/avatarpaint/internal/adapters/http/api"
	app "github.com/okian/avatarpaint/internal/app"
	"github.com/okian/avatarpaint/internal/config"
	"github.com/okian/avatarpaint/internal/scenescript"
	"github.com/okian/avatarpaint/pkg/logger"
	"github.com/okian/avatarpaint/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(ctx, cfg, log)

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	if cfg.SceneScript != "" {
		if err := replay(ctx, svc, cfg.SceneScript, log); err != nil {
			return err
		}
	}

	go startServiceMetricsUpdater(ctx, svc, metrics.RefreshInterval())

	srv := newHTTPServer(cfg, svc, log)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// applyLogLevel sets the configured level. Paint debug forces debug so the
// per-avatar chat lines have a log counterpart.
func applyLogLevel(ctx context.Context, cfg *config.Config, log logger.Logger) {
	level := cfg.LogLevel
	if cfg.Paint.Debug {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithCacheSize(cfg.CacheSize),
		app.WithPaint(cfg.Paint),
		app.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
}

func newHTTPServer(cfg *config.Config, svc *app.Service, log logger.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(svc, svc, log.Named("http")).Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// replay runs the startup scene script.
func replay(ctx context.Context, svc *app.Service, path string, log logger.Logger) error {
	script, err := scenescript.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load scene script: %w", err)
	}
	if _, err := scenescript.Run(ctx, svc, script, log.Named("scenescript")); err != nil {
		return fmt.Errorf("failed to replay scene script: %w", err)
	}
	return nil
}

// startServiceMetricsUpdater refreshes service gauges every interval until
// ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics updates service-level metrics. GetStats refreshes the
// queue and cache gauges as a side effect.
func updateServiceMetrics(svc *app.Service) {
	_ = svc.GetStats()
}
