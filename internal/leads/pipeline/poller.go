package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"leadqualify_backend/internal/events"
	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/repository"
	"leadqualify_backend/internal/leads/transport"
	"leadqualify_backend/platform/apperr"
	"leadqualify_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const opBatchFetch = "BatchFetch"

// Trigger names recorded on each run.
const (
	TriggerInterval = "interval"
	TriggerQueue    = "queue"
	TriggerHTTP     = "http"
	TriggerCLI      = "cli"
)

// LeadClaimer hands out claimed new leads.
type LeadClaimer interface {
	ClaimNew(ctx context.Context, params repository.ClaimParams) ([]domain.Lead, error)
}

// LeadProcessor processes one claimed lead.
type LeadProcessor interface {
	Process(ctx context.Context, lead domain.Lead) LeadResult
}

// BatchParams scopes a single run. Zero values fall back to the poller defaults.
type BatchParams struct {
	TenantID *uuid.UUID
	Limit    int
	Trigger  string
}

// BatchSummary reports every lead handled in one run, in claim order.
type BatchSummary struct {
	RunID      string
	Trigger    string
	StartedAt  time.Time
	Timestamp  time.Time
	TotalFound int
	Succeeded  int
	Failed     int
	Results    []LeadResult
}

// Response renders the summary in its wire shape.
func (s BatchSummary) Response() transport.QualificationSummaryResponse {
	results := make([]transport.LeadResultResponse, 0, len(s.Results))
	for _, r := range s.Results {
		results = append(results, transport.LeadResultResponse{
			LeadID:           r.LeadID,
			Success:          r.Success,
			NewStatus:        string(r.NewStatus),
			Error:            r.Error,
			ProcessingTimeMS: r.ProcessingTime.Milliseconds(),
		})
	}
	return transport.QualificationSummaryResponse{
		Timestamp:             s.Timestamp,
		TotalLeadsFound:       s.TotalFound,
		SuccessfullyProcessed: s.Succeeded,
		FailedProcessing:      s.Failed,
		Results:               results,
	}
}

// PollerOptions configure batch runs.
type PollerOptions struct {
	BatchSize   int
	Concurrency int
}

// Poller claims a batch of new leads and runs each through the processor.
type Poller struct {
	store     LeadClaimer
	processor LeadProcessor
	bus       events.Bus
	log       *logger.Logger
	opts      PollerOptions
	now       func() time.Time
}

// NewPoller wires a poller. bus may be nil when no run-completed subscribers exist.
func NewPoller(store LeadClaimer, processor LeadProcessor, bus events.Bus, log *logger.Logger, opts PollerOptions) *Poller {
	if log == nil {
		log = logger.Discard()
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 20
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Poller{
		store:     store,
		processor: processor,
		bus:       bus,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// RunBatch executes one poll cycle. The only error it returns is a failure to
// fetch the batch; per-lead failures are recorded in the summary.
func (p *Poller) RunBatch(ctx context.Context, params BatchParams) (BatchSummary, error) {
	runID := uuid.NewString()
	ctx = context.WithValue(ctx, logger.RunIDKey, runID)

	limit := params.Limit
	if limit < 1 {
		limit = p.opts.BatchSize
	}
	trigger := params.Trigger
	if trigger == "" {
		trigger = TriggerInterval
	}

	startedAt := p.now()
	p.log.PipelineEvent(ctx, logger.EventPollingForNewLeads,
		slog.Int("limit", limit),
		slog.String("trigger", trigger),
		slog.String("tenant_id", tenantLabel(params.TenantID)),
	)

	leads, err := p.store.ClaimNew(ctx, repository.ClaimParams{TenantID: params.TenantID, Limit: limit})
	if err != nil {
		fetchErr := apperr.Wrap(apperr.KindInternal, "fetch new leads", err).WithOp(opBatchFetch)
		p.log.PipelineEvent(ctx, logger.EventBatchFetchFailed, slog.String("error", fetchErr.Error()))
		return BatchSummary{}, fetchErr
	}

	p.log.PipelineEvent(ctx, logger.EventLeadsFound, slog.Int("count", len(leads)))

	results := make([]LeadResult, len(leads))
	g := new(errgroup.Group)
	g.SetLimit(p.opts.Concurrency)
	for i, lead := range leads {
		g.Go(func() error {
			results[i] = p.processIsolated(ctx, lead)
			return nil
		})
	}
	_ = g.Wait()

	summary := BatchSummary{
		RunID:      runID,
		Trigger:    trigger,
		StartedAt:  startedAt,
		Timestamp:  p.now().UTC(),
		TotalFound: len(leads),
		Results:    results,
	}
	for _, r := range results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	p.log.PipelineEvent(ctx, logger.EventBatchCompleted,
		slog.Int("total_leads_found", summary.TotalFound),
		slog.Int("successfully_processed", summary.Succeeded),
		slog.Int("failed_processing", summary.Failed),
		slog.Int64("duration_ms", summary.Timestamp.Sub(startedAt).Milliseconds()),
	)

	p.publishCompleted(ctx, summary)
	return summary, nil
}

// processIsolated keeps a panicking lead from taking the batch down with it.
func (p *Poller) processIsolated(ctx context.Context, lead domain.Lead) (result LeadResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic while processing lead: %v", r)
			p.log.PipelineEvent(ctx, logger.EventLeadProcessingFailed,
				slog.String("lead_id", lead.ID.String()),
				slog.String("error", msg),
			)
			result = LeadResult{LeadID: lead.ID, Error: msg}
		}
	}()
	return p.processor.Process(ctx, lead)
}

func (p *Poller) publishCompleted(ctx context.Context, summary BatchSummary) {
	if p.bus == nil {
		return
	}

	report, err := json.Marshal(summary.Response())
	if err != nil {
		p.log.WithContext(ctx).Warn("failed to encode run report", "error", err)
		return
	}

	p.bus.Publish(ctx, events.QualificationBatchCompleted{
		BaseEvent: events.NewBaseEvent(),
		RunID:     summary.RunID,
		Trigger:   summary.Trigger,
		StartedAt: summary.StartedAt,
		Found:     summary.TotalFound,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Report:    report,
	})
}

func tenantLabel(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}
