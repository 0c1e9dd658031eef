package scheduler

import (
	"context"
	"time"

	"leadqualify_backend/internal/leads/pipeline"
	"leadqualify_backend/platform/logger"
)

const defaultBatchInterval = 30 * time.Second

// BatchTicker runs a qualification batch on a fixed interval. A run that
// outlasts the interval delays the next one rather than overlapping it.
type BatchTicker struct {
	runner   BatchRunner
	log      *logger.Logger
	interval time.Duration
}

func NewBatchTicker(runner BatchRunner, log *logger.Logger, interval time.Duration) *BatchTicker {
	if interval <= 0 {
		interval = defaultBatchInterval
	}
	return &BatchTicker{
		runner:   runner,
		log:      log,
		interval: interval,
	}
}

func (t *BatchTicker) Run(ctx context.Context) {
	if t == nil || t.runner == nil {
		return
	}

	t.tick(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick swallows batch errors; the poller has already logged them and the
// next tick is the retry.
func (t *BatchTicker) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, _ = t.runner.RunBatch(ctx, pipeline.BatchParams{Trigger: pipeline.TriggerInterval})
}
