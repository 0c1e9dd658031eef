// Package pipeline runs the asynchronous lead qualification workflow: it
// claims new leads, scores them, persists the verdict and fans out
// notifications for qualified leads.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"leadqualify_backend/internal/events"
	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/repository"
	"leadqualify_backend/internal/leads/scoring"
	"leadqualify_backend/platform/apperr"
	"leadqualify_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	opLeadUpdate   = "LeadUpdate"
	opNotification = "Notification"
)

var errNotClaimed = errors.New("lead is not held in processing")

// LeadStore is the subset of the lead store the processor needs.
type LeadStore interface {
	CompleteQualification(ctx context.Context, id uuid.UUID, verdict domain.Verdict) (domain.Lead, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, params repository.ReleaseParams) (domain.LeadStatus, error)
}

// Options tune per-lead processing.
type Options struct {
	StoreTimeout   time.Duration
	NotifyTimeout  time.Duration
	SimulatedDelay time.Duration
	MaxAttempts    int
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = 15 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	return o
}

// LeadResult is the outcome of processing one lead.
type LeadResult struct {
	LeadID         uuid.UUID
	Success        bool
	NewStatus      domain.LeadStatus
	Error          string
	ProcessingTime time.Duration
}

// Processor qualifies a single claimed lead.
type Processor struct {
	store LeadStore
	bus   events.Bus
	log   *logger.Logger
	opts  Options
	now   func() time.Time
}

// NewProcessor wires a processor. bus receives LeadQualified events.
func NewProcessor(store LeadStore, bus events.Bus, log *logger.Logger, opts Options) *Processor {
	if log == nil {
		log = logger.Discard()
	}
	return &Processor{
		store: store,
		bus:   bus,
		log:   log,
		opts:  opts.withDefaults(),
		now:   time.Now,
	}
}

// Process runs the qualify, persist and notify steps for a lead the caller
// has already claimed. It never returns an error: failures are reported in
// the result and the claim is handed back to the store.
func (p *Processor) Process(ctx context.Context, lead domain.Lead) LeadResult {
	start := p.now()
	result := LeadResult{LeadID: lead.ID}

	p.log.PipelineEvent(ctx, logger.EventProcessingLead,
		slog.String("lead_id", lead.ID.String()),
		slog.String("client_id", lead.ClientID.String()),
		slog.Int("attempt", lead.QualificationAttempts),
	)

	if err := p.simulateLatency(ctx); err != nil {
		return p.fail(ctx, lead, result, start, apperr.Wrap(apperr.KindTimeout, "processing interrupted", err).WithOp(opLeadUpdate))
	}

	verdict := scoring.Qualify(lead)
	if !domain.CanTransition(lead.Status, verdict.Status) {
		return p.fail(ctx, lead, result, start, apperr.Wrap(apperr.KindConflict, "update lead status", errNotClaimed).WithOp(opLeadUpdate))
	}
	p.log.PipelineEvent(ctx, logger.EventQualificationResult,
		slog.String("lead_id", lead.ID.String()),
		slog.String("status", string(verdict.Status)),
		slog.Int("score", verdict.Score),
		slog.Bool("has_valid_email", verdict.HasValidEmail),
		slog.Bool("has_valid_name", verdict.HasValidName),
		slog.Bool("is_business_domain", verdict.IsBusinessDomain),
	)

	storeCtx, cancel := context.WithTimeout(ctx, p.opts.StoreTimeout)
	updated, err := p.store.CompleteQualification(storeCtx, lead.ID, verdict)
	cancel()
	if err != nil {
		return p.fail(ctx, lead, result, start, leadUpdateError(err))
	}

	p.log.PipelineEvent(ctx, logger.EventLeadStatusUpdated,
		slog.String("lead_id", lead.ID.String()),
		slog.String("new_status", string(updated.Status)),
		slog.Int("score", verdict.Score),
	)

	if verdict.Status == domain.LeadStatusQualified {
		p.notifyQualified(ctx, updated, verdict)
	}

	result.Success = true
	result.NewStatus = verdict.Status
	result.ProcessingTime = p.now().Sub(start)
	return result
}

func (p *Processor) simulateLatency(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.opts.SimulatedDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.opts.SimulatedDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// notifyQualified delivers LeadQualified to subscribers within the notify
// budget. Errors are logged only: the lead row is already final.
func (p *Processor) notifyQualified(ctx context.Context, lead domain.Lead, verdict domain.Verdict) {
	if p.bus == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, p.opts.NotifyTimeout)
	defer cancel()

	err := p.bus.PublishSync(notifyCtx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  lead.ClientID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Score:     verdict.Score,
		Notes:     verdict.Notes,
	})
	if err != nil {
		notifyErr := apperr.Wrap(apperr.KindInternal, "notify qualified lead", err).WithOp(opNotification)
		p.log.PipelineEvent(ctx, logger.EventCommunicationFailed,
			slog.String("lead_id", lead.ID.String()),
			slog.String("error", notifyErr.Error()),
		)
	}
}

func (p *Processor) fail(ctx context.Context, lead domain.Lead, result LeadResult, start time.Time, err *apperr.Error) LeadResult {
	attrs := []slog.Attr{
		slog.String("lead_id", lead.ID.String()),
		slog.String("kind", err.Kind.String()),
		slog.String("error", err.Error()),
	}

	// A missing or foreign-owned lead is not ours to release.
	if err.Kind != apperr.KindNotFound && err.Kind != apperr.KindConflict &&
		domain.CanTransition(lead.Status, domain.LeadStatusNew) {
		interrupted := ctx.Err() != nil && errors.Is(err, ctx.Err())
		if status, releaseErr := p.release(ctx, lead.ID, err.Error(), interrupted); releaseErr != nil {
			attrs = append(attrs, slog.String("release_error", releaseErr.Error()))
		} else {
			attrs = append(attrs, slog.String("released_to", string(status)))
			if status == domain.LeadStatusReview {
				p.log.PipelineEvent(ctx, logger.EventLeadQuarantined,
					slog.String("lead_id", lead.ID.String()),
					slog.Int("attempts", lead.QualificationAttempts),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	p.log.PipelineEvent(ctx, logger.EventLeadProcessingFailed, attrs...)

	result.Success = false
	result.Error = err.Error()
	result.ProcessingTime = p.now().Sub(start)
	return result
}

// release runs on a context detached from cancellation so a shutdown does
// not strand the lead in processing. An interrupted attempt does not count
// towards quarantine.
func (p *Processor) release(ctx context.Context, id uuid.UUID, reason string, interrupted bool) (domain.LeadStatus, error) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.StoreTimeout)
	defer cancel()
	return p.store.ReleaseClaim(releaseCtx, id, repository.ReleaseParams{
		Reason:      reason,
		MaxAttempts: p.opts.MaxAttempts,
		Interrupted: interrupted,
	})
}

func leadUpdateError(err error) *apperr.Error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, "update lead status", err).WithOp(opLeadUpdate)
	case errors.Is(err, repository.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, "update lead status", err).WithOp(opLeadUpdate)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, "update lead status", err).WithOp(opLeadUpdate)
	default:
		return apperr.Wrap(apperr.KindInternal, "update lead status", err).WithOp(opLeadUpdate)
	}
}
