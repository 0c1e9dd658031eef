package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"leadqualify_backend/internal/events"
	"leadqualify_backend/platform/logger"
)

const (
	DefaultRunReportBucket = "qualification-runs"
	archiveTimeout         = 30 * time.Second
	reportContentType      = "application/json"
)

// RunReportArchiver uploads every batch summary to object storage. Upload
// failures are logged and never reach the pipeline.
type RunReportArchiver struct {
	store  ObjectStore
	bucket string
	log    *logger.Logger
}

// NewRunReportArchiver makes sure the bucket exists and returns the archiver.
func NewRunReportArchiver(ctx context.Context, store ObjectStore, bucket string, log *logger.Logger) (*RunReportArchiver, error) {
	if bucket == "" {
		bucket = DefaultRunReportBucket
	}
	if err := store.EnsureBucketExists(ctx, bucket); err != nil {
		return nil, err
	}
	return &RunReportArchiver{store: store, bucket: bucket, log: log}, nil
}

// RegisterHandlers subscribes the archiver to batch completion events.
func (a *RunReportArchiver) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QualificationBatchCompleted{}.EventName(), a)
}

func (a *RunReportArchiver) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QualificationBatchCompleted)
	if !ok || len(e.Report) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	key := RunReportKey(e.StartedAt)
	if err := a.store.PutObject(ctx, a.bucket, key, reportContentType, bytes.NewReader(e.Report), int64(len(e.Report))); err != nil {
		a.log.Warn("run report archive failed", "run_id", e.RunID, "key", key, "error", err)
		return fmt.Errorf("archive run report %s: %w", e.RunID, err)
	}

	a.log.Info("run report archived", "run_id", e.RunID, "bucket", a.bucket, "key", key)
	return nil
}

// RunReportKey returns <yyyy>/<mm>/<dd>/<timestamp>.json for startedAt in UTC.
func RunReportKey(startedAt time.Time) string {
	t := startedAt.UTC()
	return t.Format("2006/01/02/") + t.Format("20060102T150405.000000000Z") + ".json"
}
