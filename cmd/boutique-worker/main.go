package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"boutique/internal/amqp"
	"boutique/internal/backup"
	"boutique/internal/config"
	"boutique/internal/log"
	"boutique/internal/mirror"
	gmirror "boutique/internal/mirror/google"
	memmirror "boutique/internal/mirror/memory"
	"boutique/internal/storage"
	"boutique/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting boutique-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	var ledgerMirror mirror.LedgerMirror
	switch cfg.MirrorBackend {
	case "sheets":
		client, err := gmirror.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", "error", err)
			os.Exit(1)
		}
		ledgerMirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		ledgerMirror = memmirror.New()
		logger.Info("In-memory mirror initialized")
	default:
		logger.Info("Mirroring disabled")
	}

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSnapshotQueue, cfg.AMQPSyncQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backupWorker := worker.NewBackupWorker(repo, snapshots, ledgerMirror, cfg.SnapshotInterval, cfg.SnapshotKeep)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeSnapshotRequests(gctx, func(msg *amqp.SnapshotRequestMessage) error {
			return backupWorker.HandleSnapshotRequest(gctx, msg)
		})
	})

	g.Go(func() error {
		return amqpClient.ConsumeLedgerSync(gctx, func(msg *amqp.LedgerSyncMessage) error {
			return backupWorker.HandleSyncMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		return backupWorker.RunScheduler(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
