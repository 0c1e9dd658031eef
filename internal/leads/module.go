// Package leads provides the lead qualification bounded context module.
// This file defines the module that encapsulates its setup and route registration.
package leads

import (
	"errors"

	"leadqualify_backend/internal/events"
	apphttp "leadqualify_backend/internal/http"
	"leadqualify_backend/internal/leads/handler"
	"leadqualify_backend/internal/leads/pipeline"
	"leadqualify_backend/internal/leads/repository"
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/logger"
	"leadqualify_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo      *repository.Repository
	processor *pipeline.Processor
	poller    *pipeline.Poller
	val       *validator.Validator
	enqueuer  handler.BatchEnqueuer
}

// NewModule wires the lead store and the qualification pipeline.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.QualificationConfig, log *logger.Logger) (*Module, error) {
	if pool == nil {
		return nil, errors.New("leads module requires a database pool")
	}

	repo := repository.New(pool)

	processor := pipeline.NewProcessor(repo, eventBus, log, pipeline.Options{
		StoreTimeout:   cfg.GetQualificationStoreTimeout(),
		NotifyTimeout:  cfg.GetQualificationNotifyTimeout(),
		SimulatedDelay: cfg.GetQualificationSimulatedDelay(),
		MaxAttempts:    cfg.GetQualificationMaxAttempts(),
	})
	poller := pipeline.NewPoller(repo, processor, eventBus, log, pipeline.PollerOptions{
		BatchSize:   cfg.GetQualificationBatchSize(),
		Concurrency: cfg.GetQualificationConcurrency(),
	})

	return &Module{
		repo:      repo,
		processor: processor,
		poller:    poller,
		val:       val,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the lead store for external use (claim reaper, CLI).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Poller returns the batch poller shared by every trigger.
func (m *Module) Poller() *pipeline.Poller {
	return m.poller
}

// SetEnqueuer enables the queue trigger route.
func (m *Module) SetEnqueuer(enqueuer handler.BatchEnqueuer) {
	m.enqueuer = enqueuer
}

// RegisterRoutes mounts the qualification trigger routes under the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	h := handler.New(m.poller, m.enqueuer, m.repo, m.val)
	h.RegisterRoutes(ctx.Admin.Group("/qualification"), ctx.TriggerRateLimiter.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
