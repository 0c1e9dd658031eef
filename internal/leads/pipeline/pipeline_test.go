package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadqualify_backend/internal/events"
	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/platform/apperr"
	platformevents "leadqualify_backend/platform/events"
	"leadqualify_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(store *memoryStore, bus events.Bus, concurrency int) *Poller {
	proc := NewProcessor(store, bus, logger.Discard(), Options{
		StoreTimeout:  time.Second,
		NotifyTimeout: time.Second,
		MaxAttempts:   3,
	})
	return NewPoller(store, proc, bus, logger.Discard(), PollerOptions{BatchSize: 20, Concurrency: concurrency})
}

func TestRunBatchScenarios(t *testing.T) {
	jane := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com"}
	jo := domain.Lead{ID: uuid.New(), Name: "Jo", Email: "jo@mail.ru"}
	empty := domain.Lead{ID: uuid.New(), Name: "", Email: "bad-email"}
	store := newMemoryStore(jane, jo, empty)

	summary, err := newPipeline(store, platformevents.NewInMemoryBus(nil), 1).RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFound)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 3)

	assert.Equal(t, domain.LeadStatusQualified, store.get(jane.ID).Status)
	assert.Equal(t, 85, *store.get(jane.ID).QualificationScore)
	assert.Equal(t, domain.LeadStatusReview, store.get(jo.ID).Status)
	assert.Equal(t, 60, *store.get(jo.ID).QualificationScore)
	assert.Equal(t, domain.LeadStatusRejected, store.get(empty.ID).Status)
	assert.Equal(t, 25, *store.get(empty.ID).QualificationScore)
}

func TestRunBatchIsolatesPerLeadFailures(t *testing.T) {
	leads := make([]domain.Lead, 5)
	for i := range leads {
		leads[i] = domain.Lead{ID: uuid.New(), Name: "Lead Name", Email: "lead@acme.com"}
	}
	store := newMemoryStore(leads...)
	failing := leads[2].ID
	store.completeFn = func(id uuid.UUID) error {
		if id == failing {
			return errors.New("connection reset")
		}
		return nil
	}

	summary, err := newPipeline(store, nil, 1).RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalFound)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, summary.TotalFound, summary.Succeeded+summary.Failed)

	failed := summary.Results[2]
	assert.False(t, failed.Success)
	assert.Empty(t, failed.NewStatus)
	assert.Contains(t, failed.Error, "connection reset")

	// The failed lead is handed back for the next poll.
	assert.Equal(t, domain.LeadStatusNew, store.get(failing).Status)
	assert.Equal(t, []uuid.UUID{failing}, store.releases)
}

func TestRunBatchPreservesClaimOrder(t *testing.T) {
	leads := make([]domain.Lead, 12)
	for i := range leads {
		leads[i] = domain.Lead{ID: uuid.New(), Name: "Lead Name", Email: "lead@acme.com"}
	}
	store := newMemoryStore(leads...)

	for _, concurrency := range []int{1, 4} {
		for i := range leads {
			l := store.get(leads[i].ID)
			l.Status = domain.LeadStatusNew
			store.leads[l.ID] = l
		}

		summary, err := newPipeline(store, nil, concurrency).RunBatch(context.Background(), BatchParams{})
		require.NoError(t, err)
		require.Len(t, summary.Results, len(leads))
		for i, r := range summary.Results {
			assert.Equal(t, leads[i].ID, r.LeadID, "concurrency %d position %d", concurrency, i)
		}
	}
}

func TestRunBatchFetchFailureIsFatal(t *testing.T) {
	store := newMemoryStore(domain.Lead{Name: "Jane Doe", Email: "jane@acme.com"})
	store.claimErr = errors.New("database unavailable")

	summary, err := newPipeline(store, nil, 1).RunBatch(context.Background(), BatchParams{})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindInternal, appErr.Kind)
	assert.Equal(t, opBatchFetch, appErr.Op)
	assert.Empty(t, summary.Results)
	assert.Zero(t, summary.TotalFound)
}

func TestRunBatchRespectsLimitAndTenant(t *testing.T) {
	tenantA, tenantB := uuid.New(), uuid.New()
	store := newMemoryStore(
		domain.Lead{ClientID: tenantA, Name: "Alpha", Email: "a@acme.com"},
		domain.Lead{ClientID: tenantB, Name: "Bravo", Email: "b@acme.com"},
		domain.Lead{ClientID: tenantA, Name: "Charlie", Email: "c@acme.com"},
	)

	summary, err := newPipeline(store, nil, 1).RunBatch(context.Background(), BatchParams{TenantID: &tenantA, Limit: 1})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "Alpha", store.get(summary.Results[0].LeadID).Name)
}

func TestNotificationFailureDoesNotAffectResult(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com"}
	store := newMemoryStore(lead)

	bus := platformevents.NewInMemoryBus(nil)
	var delivered int
	bus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		delivered++
		return errors.New("provider rejected message")
	}))

	summary, err := newPipeline(store, bus, 1).RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, delivered)
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].Success)
	assert.Equal(t, domain.LeadStatusQualified, summary.Results[0].NewStatus)
	assert.Equal(t, domain.LeadStatusQualified, store.get(lead.ID).Status)
	assert.Empty(t, store.releases)
}

func TestOnlyQualifiedLeadsAreAnnounced(t *testing.T) {
	store := newMemoryStore(
		domain.Lead{Name: "Jane Doe", Email: "jane@acme.com"},
		domain.Lead{Name: "Jo", Email: "jo@mail.ru"},
		domain.Lead{Name: "", Email: "bad-email"},
	)

	bus := platformevents.NewInMemoryBus(nil)
	var mu sync.Mutex
	var announced []string
	bus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		announced = append(announced, e.(events.LeadQualified).Email)
		return nil
	}))

	_, err := newPipeline(store, bus, 1).RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@acme.com"}, announced)
}

func TestConcurrentMutationIsNotOverwritten(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com"}
	store := newMemoryStore(lead)

	// A tenant moves the lead to contacted between claim and update.
	store.completeFn = func(id uuid.UUID) error {
		l := store.leads[id]
		l.Status = domain.LeadStatusContacted
		store.leads[id] = l
		return nil
	}

	summary, err := newPipeline(store, nil, 1).RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.False(t, summary.Results[0].Success)
	assert.Equal(t, domain.LeadStatusContacted, store.get(lead.ID).Status)
	assert.Empty(t, store.releases)
}

func TestDeletedLeadFailsWithoutRelease(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com"}
	store := newMemoryStore(lead)
	store.completeFn = func(id uuid.UUID) error {
		delete(store.leads, id)
		return nil
	}

	summary, err := newPipeline(store, nil, 1).RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, store.releases)
}

func TestRepeatedFailuresQuarantineLead(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com"}
	store := newMemoryStore(lead)
	store.completeFn = func(uuid.UUID) error { return errors.New("poison") }

	poller := newPipeline(store, nil, 1)
	for i := 0; i < 3; i++ {
		_, err := poller.RunBatch(context.Background(), BatchParams{})
		require.NoError(t, err)
	}

	assert.Equal(t, domain.LeadStatusReview, store.get(lead.ID).Status)

	summary, err := poller.RunBatch(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalFound)
}

func TestCancelledContextReleasesClaim(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com", Status: domain.LeadStatusProcessing, QualificationAttempts: 1}
	store := newMemoryStore(lead)

	proc := NewProcessor(store, nil, logger.Discard(), Options{SimulatedDelay: time.Hour, MaxAttempts: 5})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := proc.Process(ctx, lead)
	assert.False(t, result.Success)
	assert.Equal(t, domain.LeadStatusNew, store.get(lead.ID).Status)
	assert.Zero(t, store.get(lead.ID).QualificationAttempts, "an interrupted attempt must be refunded")
}

func TestRepeatedShutdownsDoNotQuarantine(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com"}
	store := newMemoryStore(lead)
	proc := NewProcessor(store, nil, logger.Discard(), Options{SimulatedDelay: time.Hour, MaxAttempts: 2})

	for i := 0; i < 4; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		poller := NewPoller(store, proc, nil, logger.Discard(), PollerOptions{})
		cancel()
		summary, err := poller.RunBatch(ctx, BatchParams{})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Failed)
	}

	assert.Equal(t, domain.LeadStatusNew, store.get(lead.ID).Status)
	assert.Zero(t, store.get(lead.ID).QualificationAttempts)
}

func TestProcessRefusesLeadNotInProcessing(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane Doe", Email: "jane@acme.com", Status: domain.LeadStatusContacted}
	store := newMemoryStore(lead)
	proc := NewProcessor(store, nil, logger.Discard(), Options{})

	result := proc.Process(context.Background(), lead)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not held in processing")
	assert.Equal(t, domain.LeadStatusContacted, store.get(lead.ID).Status)
	assert.Nil(t, store.get(lead.ID).QualificationScore)
	assert.Empty(t, store.releases)
}

func TestSummaryResponseUsesMilliseconds(t *testing.T) {
	id := uuid.New()
	summary := BatchSummary{
		TotalFound: 1,
		Succeeded:  1,
		Results: []LeadResult{{
			LeadID:         id,
			Success:        true,
			NewStatus:      domain.LeadStatusQualified,
			ProcessingTime: 1500 * time.Millisecond,
		}},
	}

	resp := summary.Response()
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1500), resp.Results[0].ProcessingTimeMS)
	assert.Equal(t, "qualified", resp.Results[0].NewStatus)
	assert.Equal(t, 1, resp.SuccessfullyProcessed)
}
