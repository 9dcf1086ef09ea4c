package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/jobs"
	"github.com/straye-as/progress-api/internal/logger"
	"github.com/straye-as/progress-api/internal/storage"
)

// The worker delivers approved report documents queued by the API
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if !cfg.Queue.Enabled {
		log.Warn("Queue is disabled in configuration; the worker has nothing to consume")
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	mailer, err := jobs.NewMailer(&cfg.Distribution, log)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.Queue.RedisAddr},
		Concurrency: cfg.Queue.Concurrency,
		ReportEmail: jobs.NewReportEmailHandler(fileStorage, mailer, cfg.Distribution.Sender, log),
		Logger:      log,
	})
	if err != nil {
		return err
	}

	log.Info("Starting report worker",
		zap.String("redis", cfg.Queue.RedisAddr),
		zap.Int("concurrency", cfg.Queue.Concurrency),
	)
	return worker.Run(ctx)
}
