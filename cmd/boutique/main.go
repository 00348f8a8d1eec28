package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"boutique/internal/amqp"
	"boutique/internal/backup"
	"boutique/internal/config"
	"boutique/internal/core"
	apphttp "boutique/internal/http"
	"boutique/internal/log"
	"boutique/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := services.OpenWithRecovery(cfg.SQLiteDBPath, cfg.SnapshotDir, logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	snapshots, err := backup.NewManager(repo, repo.Path(), cfg.SnapshotDir, logger)
	if err != nil {
		logger.Error("Failed to initialize snapshot manager", "error", err, "dir", cfg.SnapshotDir)
		os.Exit(1)
	}

	// AMQP is optional: without a broker the API still works, snapshots
	// just fall back to the manual endpoint and the worker's schedule.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSnapshotQueue, cfg.AMQPSyncQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without messaging", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	}

	ledger := services.NewLedgerService(repo, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, repo, snapshots, core.DefaultTaxonomy())
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting boutique server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
