package communications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("communication not found")

const communicationColumns = `id, lead_id, client_id, type, recipient, subject, status, provider,
	external_id, error_message, retry_count, max_retries, created_at, updated_at, sent_at, delivered_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a communication in pending state.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Communication, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO communications (lead_id, client_id, type, recipient, subject, status, provider, max_retries)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), 'pending', NULLIF($6, ''), $7)
		RETURNING `+communicationColumns,
		params.LeadID, params.ClientID, string(params.Type), params.Recipient,
		params.Subject, params.Provider, params.MaxRetries,
	)
	return scanCommunication(row)
}

// UpdateStatus applies a terminal patch. sent_at is stamped for sent and
// delivered, delivered_at only for delivered.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, patch StatusPatch) (Communication, error) {
	now := time.Now().UTC()
	var sentAt, deliveredAt *time.Time
	if patch.Status == StatusSent || patch.Status == StatusDelivered {
		sentAt = &now
	}
	if patch.Status == StatusDelivered {
		deliveredAt = &now
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE communications
		SET status = $2,
			provider = COALESCE(NULLIF($3, ''), provider),
			external_id = COALESCE(NULLIF($4, ''), external_id),
			error_message = NULLIF($5, ''),
			retry_count = $6,
			sent_at = COALESCE($7, sent_at),
			delivered_at = COALESCE($8, delivered_at),
			updated_at = now()
		WHERE id = $1
		RETURNING `+communicationColumns,
		id, string(patch.Status), patch.Provider, patch.ExternalID, patch.ErrorMessage,
		patch.RetryCount, sentAt, deliveredAt,
	)
	comm, err := scanCommunication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Communication{}, ErrNotFound
	}
	return comm, err
}

// ListByLead returns a lead's communications, newest first, optionally
// restricted to one tenant.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID, tenantID *uuid.UUID) ([]Communication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+communicationColumns+`
		FROM communications
		WHERE lead_id = $1
			AND ($2::uuid IS NULL OR client_id = $2::uuid)
		ORDER BY created_at DESC
	`, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Communication, 0)
	for rows.Next() {
		comm, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, comm)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func scanCommunication(row pgx.Row) (Communication, error) {
	var c Communication
	var typ, status string
	err := row.Scan(
		&c.ID, &c.LeadID, &c.ClientID, &typ, &c.Recipient, &c.Subject, &status, &c.Provider,
		&c.ExternalID, &c.ErrorMessage, &c.RetryCount, &c.MaxRetries,
		&c.CreatedAt, &c.UpdatedAt, &c.SentAt, &c.DeliveredAt,
	)
	if err != nil {
		return Communication{}, err
	}
	c.Type = Type(typ)
	c.Status = Status(status)
	return c, nil
}
