// @title Name Matcher API
// @version 1.0
// @description Segments free text into company-name candidates and matches them against company registries.

// @BasePath /api/v1
// @schemes http https

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"namematcher/internal/config"
	"namematcher/internal/container"
	"namematcher/internal/logging"
	"namematcher/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// run поднимает зависимости и сервер и блокируется до отмены ctx.
// Ресурсы освобождаются до возврата, в том числе при ошибке.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	deps, err := container.NewContainer(cfg, container.WithBatchHistory())
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error("Failed to release resources", "error", err)
		}
	}()
	if err := deps.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	srv, err := server.NewServer(cfg, deps.Lookup, deps.Store, server.WithLookupCache(deps.Cache))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	return <-errChan
}
