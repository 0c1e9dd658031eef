package scheduler

import (
	"context"
	"log/slog"
	"time"

	"leadqualify_backend/platform/logger"
)

const (
	defaultReaperInterval = time.Minute
	defaultClaimTTL       = 5 * time.Minute
)

// StaleClaimReleaser returns abandoned claims to the new pool.
type StaleClaimReleaser interface {
	ReleaseStaleClaims(ctx context.Context, olderThan time.Duration, maxAttempts int) (int64, error)
}

// ClaimReaper periodically recovers leads left in processing by a worker
// that died mid-batch.
type ClaimReaper struct {
	repo        StaleClaimReleaser
	log         *logger.Logger
	interval    time.Duration
	ttl         time.Duration
	maxAttempts int
}

func NewClaimReaper(repo StaleClaimReleaser, log *logger.Logger, interval, ttl time.Duration, maxAttempts int) *ClaimReaper {
	if interval <= 0 {
		interval = defaultReaperInterval
	}
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &ClaimReaper{
		repo:        repo,
		log:         log,
		interval:    interval,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

func (r *ClaimReaper) Run(ctx context.Context) {
	if r == nil || r.repo == nil {
		return
	}

	r.reap(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *ClaimReaper) reap(ctx context.Context) {
	released, err := r.repo.ReleaseStaleClaims(ctx, r.ttl, r.maxAttempts)
	if err != nil {
		r.log.Warn("stale claim release failed", "error", err)
		return
	}

	if released > 0 {
		r.log.PipelineEvent(ctx, logger.EventStaleClaimsReleased,
			slog.Int64("released", released),
			slog.Duration("claim_ttl", r.ttl),
		)
	}
}
