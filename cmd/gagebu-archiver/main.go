package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appamqp "gagebu/internal/amqp"
	"gagebu/internal/config"
	applog "gagebu/internal/log"
	"gagebu/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting gagebu-archiver")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the archiver")
		os.Exit(1)
	}

	archiver, err := worker.NewArchiver(cfg.ArchiveDBPath)
	if err != nil {
		logger.Error("Failed to initialize archiver", "error", err, "path", cfg.ArchiveDBPath)
		os.Exit(1)
	}
	defer archiver.Close()

	client, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeSaves(ctx, archiver.HandleSaveEvent)
	})

	logger.Info("Archiver running",
		"queue", cfg.AMQPQueue, "archive_db", cfg.ArchiveDBPath)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Archiver stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Archiver stopped gracefully")
}
