package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fazecat/squeezescope/Internal/handlers"
	"github.com/fazecat/squeezescope/Internal/mocks"
	"github.com/fazecat/squeezescope/Internal/utils/config"
	"github.com/fazecat/squeezescope/Internal/utils/logging"
	"github.com/fazecat/squeezescope/cmd/api/internal"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../../.env")

	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.Default()
	}

	logger := logging.New(cfg.Logging).Named("api")
	defer logger.Sync()
	if err != nil {
		logger.Warn("config not loaded, using defaults", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screener, closeStore, err := handlers.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start screener", zap.Error(err))
	}
	defer closeStore()

	var mock http.Handler
	if cfg.Server.MountMock {
		mock = mocks.MustLoad().Router()
	}

	apiServer := &internal.API{
		Screener: screener,
		Logger:   logger,
	}
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: internal.NewRouter(apiServer, mock),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
