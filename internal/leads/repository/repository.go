package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadqualify_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrConflict means the lead exists but is no longer held by this claim.
	ErrConflict = errors.New("lead is not in processing state")
	// ErrInvalidVerdict is returned when a verdict status is not a qualification outcome.
	ErrInvalidVerdict = errors.New("verdict status is not a qualification outcome")
)

const defaultLimit = 20

const quarantineNote = "Quarantined after repeated processing failures"

const leadColumns = `id, client_id, company_id, name, email, phone, status, notes, custom_data,
	qualification_score, qualification_notes, qualification_attempts,
	claimed_at, qualified_at, last_error, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListParams filters a read-only lead listing.
type ListParams struct {
	Status   domain.LeadStatus
	TenantID *uuid.UUID
	Limit    int
}

// ClaimParams scopes a claim of new leads.
type ClaimParams struct {
	TenantID *uuid.UUID
	Limit    int
}

// ReleaseParams describes how a claim is handed back.
type ReleaseParams struct {
	Reason      string
	MaxAttempts int
	// Interrupted marks a claim given up before its attempt ran, e.g. on
	// shutdown. The claim's attempt is refunded and quarantine is skipped.
	Interrupted bool
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return defaultLimit
	}
	return limit
}

// ListByStatus returns non-deleted leads in the given status, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status = $1
			AND deleted_at IS NULL
			AND ($2::uuid IS NULL OR client_id = $2::uuid)
		ORDER BY created_at ASC, id ASC
		LIMIT $3
	`, string(params.Status), params.TenantID, normalizeLimit(params.Limit))
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// ClaimNew atomically moves up to Limit new leads into processing and returns
// them oldest first. Rows locked by a concurrent claimer are skipped.
func (r *Repository) ClaimNew(ctx context.Context, params ClaimParams) ([]domain.Lead, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `WITH cte AS (
		SELECT id
		FROM leads
		WHERE status = 'new'
			AND deleted_at IS NULL
			AND ($1::uuid IS NULL OR client_id = $1::uuid)
		ORDER BY created_at ASC, id ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	)
	UPDATE leads l
	SET status = 'processing',
		claimed_at = now(),
		qualification_attempts = l.qualification_attempts + 1,
		updated_at = now()
	FROM cte
	WHERE l.id = cte.id
	RETURNING `+prefixed("l", leadColumns), params.TenantID, normalizeLimit(params.Limit))
	if err != nil {
		return nil, err
	}

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// RETURNING does not preserve the CTE ordering.
	sortOldestFirst(leads)
	return leads, nil
}

// CompleteQualification writes the verdict onto a lead this process holds in
// processing. It is a compare-and-set: a lead deleted in the meantime yields
// ErrNotFound and a lead moved to any other status yields ErrConflict.
func (r *Repository) CompleteQualification(ctx context.Context, id uuid.UUID, verdict domain.Verdict) (domain.Lead, error) {
	if !domain.IsQualificationOutcome(verdict.Status) {
		return domain.Lead{}, fmt.Errorf("%w: %q", ErrInvalidVerdict, verdict.Status)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $2,
			qualification_score = $3,
			qualification_notes = $4,
			qualified_at = now(),
			claimed_at = NULL,
			last_error = NULL,
			updated_at = now()
		WHERE id = $1 AND status = 'processing' AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, string(verdict.Status), verdict.Score, verdict.Notes)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, r.classifyMiss(ctx, id)
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// ReleaseClaim gives a processing lead back to the poller after a failed
// attempt. Once the lead has been attempted MaxAttempts times it is parked in
// review instead. The resulting status is returned.
func (r *Repository) ReleaseClaim(ctx context.Context, id uuid.UUID, params ReleaseParams) (domain.LeadStatus, error) {
	var status string
	err := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = CASE WHEN NOT $5 AND qualification_attempts >= $3 THEN 'review' ELSE 'new' END,
			qualification_notes = CASE WHEN NOT $5 AND qualification_attempts >= $3 THEN $4 ELSE qualification_notes END,
			qualification_attempts = CASE WHEN $5 THEN GREATEST(qualification_attempts - 1, 0) ELSE qualification_attempts END,
			last_error = $2,
			claimed_at = NULL,
			updated_at = now()
		WHERE id = $1 AND status = 'processing' AND deleted_at IS NULL
		RETURNING status
	`, id, params.Reason, params.MaxAttempts, quarantineNote, params.Interrupted).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", r.classifyMiss(ctx, id)
	}
	if err != nil {
		return "", err
	}
	return domain.LeadStatus(status), nil
}

// ReleaseStaleClaims returns leads stuck in processing for longer than
// olderThan, applying the same quarantine rule as ReleaseClaim.
func (r *Repository) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration, maxAttempts int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET status = CASE WHEN qualification_attempts >= $2 THEN 'review' ELSE 'new' END,
			qualification_notes = CASE WHEN qualification_attempts >= $2 THEN $3 ELSE qualification_notes END,
			last_error = 'claim expired before completion',
			claimed_at = NULL,
			updated_at = now()
		WHERE status = 'processing'
			AND deleted_at IS NULL
			AND claimed_at < now() - make_interval(secs => $1)
	`, olderThan.Seconds(), maxAttempts, quarantineNote)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetByID returns a single non-deleted lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) classifyMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}
