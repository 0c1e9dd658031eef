package scheduler

import (
	"context"
	"fmt"

	"leadqualify_backend/internal/leads/pipeline"
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// BatchRunner runs one qualification batch.
type BatchRunner interface {
	RunBatch(ctx context.Context, params pipeline.BatchParams) (pipeline.BatchSummary, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner BatchRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner BatchRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		log:    log,
	}

	mux.HandleFunc(TaskQualifyBatch, w.handleQualifyBatch)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleQualifyBatch only fails the task when the batch could not be
// fetched. Per-lead failures are already settled on the rows themselves.
func (w *Worker) handleQualifyBatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQualifyBatchPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	params := pipeline.BatchParams{
		Limit:   payload.Limit,
		Trigger: pipeline.TriggerQueue,
	}
	if payload.TenantID != "" {
		tenantID, err := uuid.Parse(payload.TenantID)
		if err != nil {
			return fmt.Errorf("%w: invalid tenant id: %v", asynq.SkipRetry, err)
		}
		params.TenantID = &tenantID
	}

	summary, err := w.runner.RunBatch(ctx, params)
	if err != nil {
		return err
	}

	w.log.Info("queued qualification run finished",
		"run_id", summary.RunID,
		"found", summary.TotalFound,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return nil
}
