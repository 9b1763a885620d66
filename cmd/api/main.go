package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/battlecode-league/internal/app"
	"github.com/riskibarqy/battlecode-league/internal/config"
	"github.com/riskibarqy/battlecode-league/internal/observability"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	bootLogger := logging.NewJSON(logging.LevelInfo)
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Error("load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofSrv := observability.StartPprofServer(cfg, logger)

	srv, err := app.NewHTTPServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		logger.Error("http server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if !shutdown(shutdownCtx, logger, srv, pprofSrv, shutdownUptrace, stopPyroscope) {
		exitCode = 1
	}
	logger.Info("http server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// shutdown stops the API, profilers and telemetry concurrently, then releases
// storage once no request can still be using it.
func shutdown(
	ctx context.Context,
	logger *logging.Logger,
	srv *app.Server,
	pprofSrv *http.Server,
	shutdownUptrace func(context.Context) error,
	stopPyroscope func() error,
) bool {
	results := make(chan error, 3)

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := srv.HTTP.Shutdown(ctx); err != nil {
			results <- errors.Join(errors.New("http server shutdown"), err)
		}
	})
	wg.Go(func() {
		if err := observability.StopPprofServer(ctx, pprofSrv, logger); err != nil {
			results <- errors.Join(errors.New("pprof shutdown"), err)
		}
	})
	wg.Go(func() {
		if err := stopPyroscope(); err != nil {
			results <- errors.Join(errors.New("pyroscope stop"), err)
		}
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		logger.Error("shutdown panicked", "error", recovered.AsError())
		return false
	}
	close(results)

	ok := true
	for err := range results {
		logger.Error("graceful shutdown failed", "error", err)
		ok = false
	}

	if err := srv.Close(); err != nil {
		logger.Error("close storage", "error", err)
		ok = false
	}
	// Flush spans last so shutdown itself is exported.
	if err := shutdownUptrace(ctx); err != nil {
		logger.Error("uptrace shutdown", "error", err)
		ok = false
	}
	return ok
}
