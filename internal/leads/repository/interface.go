package repository

import (
	"context"
	"time"

	"leadqualify_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to leads.
type LeadReader interface {
	ListByStatus(ctx context.Context, params ListParams) ([]domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// LeadClaimer hands out exclusive claims on new leads and settles them.
type LeadClaimer interface {
	ClaimNew(ctx context.Context, params ClaimParams) ([]domain.Lead, error)
	CompleteQualification(ctx context.Context, id uuid.UUID, verdict domain.Verdict) (domain.Lead, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, params ReleaseParams) (domain.LeadStatus, error)
}

// ClaimReaper recovers claims abandoned by a crashed worker.
type ClaimReaper interface {
	ReleaseStaleClaims(ctx context.Context, olderThan time.Duration, maxAttempts int) (int64, error)
}

// LeadsRepository is the full lead store used by the qualification module.
type LeadsRepository interface {
	LeadReader
	LeadClaimer
	ClaimReaper
}

var _ LeadsRepository = (*Repository)(nil)
