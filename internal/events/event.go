// Package events defines the qualification domain events and re-exports the
// platform bus so modules import a single package.
package events

import (
	"time"

	"leadqualify_backend/platform/events"
	"leadqualify_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Qualification Events
// =============================================================================

// LeadQualified is published after a lead row has been written as qualified.
// Subscribers run inside the processor's notification budget.
type LeadQualified struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Score    int       `json:"score"`
	Notes    string    `json:"notes"`
}

func (e LeadQualified) EventName() string { return "leads.qualification.qualified" }

// QualificationBatchCompleted is published once per finished batch run.
type QualificationBatchCompleted struct {
	BaseEvent
	RunID     string    `json:"runId"`
	Trigger   string    `json:"trigger"`
	StartedAt time.Time `json:"startedAt"`
	Found     int       `json:"found"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	// Report is the JSON encoded run summary.
	Report []byte `json:"report"`
}

func (e QualificationBatchCompleted) EventName() string { return "leads.qualification.batch_completed" }
