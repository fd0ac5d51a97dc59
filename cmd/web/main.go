package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quotebot/internal/app/webserver"
	"quotebot/internal/config"
	"quotebot/internal/shared/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	// .env не обязателен: без него берём переменные окружения как есть
	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn(".env not loaded", zap.Error(envErr))
	}

	srv, flow, err := webserver.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	logger.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("venue", flow.Venue.Name()))

	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
	flow.Warm(warmCtx)
	warmCancel()

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	} else {
		logger.Info("server stopped gracefully")
	}
}
