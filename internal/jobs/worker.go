package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker wraps the asynq server that delivers queued reports
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	ReportEmail *ReportEmailHandler
	Logger      *zap.Logger
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.ReportEmail == nil {
		return nil, errors.New("worker: report email handler required")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	log := cfg.Logger
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueReports: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Warn("task failed",
				zap.String("type", task.Type()),
				zap.Int("retry", retried),
				zap.Int("maxRetry", maxRetry),
				zap.Error(err))
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeReportEmail, cfg.ReportEmail.Handle)

	return &Worker{server: srv, mux: mux, logger: log}, nil
}

// Run processes tasks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info("worker started", zap.String("queue", QueueReports))

	<-ctx.Done()
	w.logger.Info("worker shutting down")
	w.server.Shutdown()
	return nil
}
