package communications

import (
	"context"
	"errors"

	"leadqualify_backend/platform/apperr"
	"leadqualify_backend/platform/sanitize"
	"leadqualify_backend/platform/validator"

	"github.com/google/uuid"
)

const maxErrorMessageLength = 1000

// Store persists communications.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Communication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, patch StatusPatch) (Communication, error)
	ListByLead(ctx context.Context, leadID uuid.UUID, tenantID *uuid.UUID) ([]Communication, error)
}

// Service validates and records communication attempts.
type Service struct {
	store Store
	val   *validator.Validator
}

func NewService(store Store, val *validator.Validator) *Service {
	return &Service{store: store, val: val}
}

// Create records a pending attempt.
func (s *Service) Create(ctx context.Context, params CreateParams) (Communication, error) {
	params.Subject = sanitize.Text(params.Subject)
	if err := s.val.Struct(params); err != nil {
		return Communication{}, apperr.Validation("invalid communication").
			WithDetails(validator.FieldErrors(err))
	}

	comm, err := s.store.Create(ctx, params)
	if err != nil {
		return Communication{}, apperr.Wrap(apperr.KindInternal, "create communication", err)
	}
	return comm, nil
}

// UpdateStatus moves an attempt to its terminal state.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, patch StatusPatch) (Communication, error) {
	patch.ErrorMessage = sanitize.Truncate(patch.ErrorMessage, maxErrorMessageLength)
	if err := s.val.Struct(patch); err != nil {
		return Communication{}, apperr.Validation("invalid communication status").
			WithDetails(validator.FieldErrors(err))
	}

	comm, err := s.store.UpdateStatus(ctx, id, patch)
	if errors.Is(err, ErrNotFound) {
		return Communication{}, apperr.Wrap(apperr.KindNotFound, "communication not found", err)
	}
	if err != nil {
		return Communication{}, apperr.Wrap(apperr.KindInternal, "update communication status", err)
	}
	return comm, nil
}

// ListByLead returns the audit trail for a lead. A non-nil tenantID hides
// communications that belong to other tenants.
func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID, tenantID *uuid.UUID) ([]Communication, error) {
	items, err := s.store.ListByLead(ctx, leadID, tenantID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list communications", err)
	}
	return items, nil
}
