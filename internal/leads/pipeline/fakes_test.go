package pipeline

import (
	"context"
	"sync"

	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// memoryStore is an in-memory lead store honouring the claim semantics of the
// Postgres repository.
type memoryStore struct {
	mu         sync.Mutex
	order      []uuid.UUID
	leads      map[uuid.UUID]domain.Lead
	claimErr   error
	completeFn func(id uuid.UUID) error
	releases   []uuid.UUID
}

func newMemoryStore(leads ...domain.Lead) *memoryStore {
	s := &memoryStore{leads: make(map[uuid.UUID]domain.Lead)}
	for _, l := range leads {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.Status == "" {
			l.Status = domain.LeadStatusNew
		}
		s.order = append(s.order, l.ID)
		s.leads[l.ID] = l
	}
	return s
}

func (s *memoryStore) ClaimNew(_ context.Context, params repository.ClaimParams) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claimErr != nil {
		return nil, s.claimErr
	}

	claimed := make([]domain.Lead, 0)
	for _, id := range s.order {
		if params.Limit > 0 && len(claimed) >= params.Limit {
			break
		}
		l := s.leads[id]
		if !domain.CanTransition(l.Status, domain.LeadStatusProcessing) {
			continue
		}
		if params.TenantID != nil && l.ClientID != *params.TenantID {
			continue
		}
		l.Status = domain.LeadStatusProcessing
		l.QualificationAttempts++
		s.leads[id] = l
		claimed = append(claimed, l)
	}
	return claimed, nil
}

func (s *memoryStore) CompleteQualification(_ context.Context, id uuid.UUID, verdict domain.Verdict) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completeFn != nil {
		if err := s.completeFn(id); err != nil {
			return domain.Lead{}, err
		}
	}

	l, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if !domain.CanTransition(l.Status, verdict.Status) {
		return domain.Lead{}, repository.ErrConflict
	}
	score := verdict.Score
	notes := verdict.Notes
	l.Status = verdict.Status
	l.QualificationScore = &score
	l.QualificationNotes = &notes
	s.leads[id] = l
	return l, nil
}

func (s *memoryStore) ReleaseClaim(_ context.Context, id uuid.UUID, params repository.ReleaseParams) (domain.LeadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	if !domain.CanTransition(l.Status, domain.LeadStatusNew) {
		return "", repository.ErrConflict
	}
	s.releases = append(s.releases, id)
	reason := params.Reason
	l.LastError = &reason
	l.Status = domain.LeadStatusNew
	switch {
	case params.Interrupted:
		l.QualificationAttempts = max(l.QualificationAttempts-1, 0)
	case l.QualificationAttempts >= params.MaxAttempts:
		l.Status = domain.LeadStatusReview
	}
	s.leads[id] = l
	return l.Status, nil
}

func (s *memoryStore) get(id uuid.UUID) domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id]
}
