package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadqualify_backend/internal/leads/pipeline"
	"leadqualify_backend/platform/apperr"
	"leadqualify_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string     { return c.redisURL }
func (testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (testSchedulerConfig) GetAsynqQueueName() string { return "qualification" }
func (testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

type fakeRunner struct {
	mu     sync.Mutex
	params []pipeline.BatchParams
	err    error
}

func (r *fakeRunner) RunBatch(_ context.Context, params pipeline.BatchParams) (pipeline.BatchSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, params)
	return pipeline.BatchSummary{RunID: "run-1", Trigger: params.Trigger}, r.err
}

func (r *fakeRunner) calls() []pipeline.BatchParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pipeline.BatchParams(nil), r.params...)
}

func TestEnqueueQualifyBatchStoresTaskOnQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	tenantID := uuid.New()
	taskID, err := client.EnqueueQualifyBatch(context.Background(), &tenantID, 25)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if taskID == "" {
		t.Fatal("expected a task id")
	}

	if _, err := client.EnqueueQualifyBatch(context.Background(), &tenantID, 25); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected duplicate enqueue to conflict, got %v", err)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestNilClientEnqueueIsUnavailable(t *testing.T) {
	var client *Client
	if _, err := client.EnqueueQualifyBatch(context.Background(), nil, 0); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestQualifyBatchPayloadRoundTrip(t *testing.T) {
	task, err := NewQualifyBatchTask(QualifyBatchPayload{TenantID: "abc", Limit: 7})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskQualifyBatch {
		t.Fatalf("unexpected task type %q", task.Type())
	}
	payload, err := ParseQualifyBatchPayload(task)
	if err != nil || payload.TenantID != "abc" || payload.Limit != 7 {
		t.Fatalf("unexpected payload %+v (%v)", payload, err)
	}
}

func TestHandleQualifyBatchRunsQueueTrigger(t *testing.T) {
	runner := &fakeRunner{}
	w := &Worker{runner: runner, log: logger.Discard()}

	tenantID := uuid.New()
	task, _ := NewQualifyBatchTask(QualifyBatchPayload{TenantID: tenantID.String(), Limit: 3})
	if err := w.handleQualifyBatch(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}

	calls := runner.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one run, got %d", len(calls))
	}
	got := calls[0]
	if got.Trigger != pipeline.TriggerQueue || got.Limit != 3 || got.TenantID == nil || *got.TenantID != tenantID {
		t.Fatalf("unexpected params %+v", got)
	}
}

func TestHandleQualifyBatchSkipsRetryOnBadPayload(t *testing.T) {
	w := &Worker{runner: &fakeRunner{}, log: logger.Discard()}

	task := asynq.NewTask(TaskQualifyBatch, []byte(`{"tenantId":"not-a-uuid"}`))
	err := w.handleQualifyBatch(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleQualifyBatchPropagatesFetchFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("database unavailable")}
	w := &Worker{runner: runner, log: logger.Discard()}

	task, _ := NewQualifyBatchTask(QualifyBatchPayload{})
	if err := w.handleQualifyBatch(context.Background(), task); err == nil {
		t.Fatal("expected fetch failure to fail the task so asynq retries it")
	}
}

func TestBatchTickerRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	ticker := NewBatchTicker(runner, logger.Discard(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(runner.calls()) < 2 {
		select {
		case <-deadline:
			t.Fatal("ticker did not run twice")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	for _, p := range runner.calls() {
		if p.Trigger != pipeline.TriggerInterval {
			t.Fatalf("expected interval trigger, got %q", p.Trigger)
		}
	}
}

type fakeReleaser struct {
	olderThan   time.Duration
	maxAttempts int
	released    int64
}

func (f *fakeReleaser) ReleaseStaleClaims(_ context.Context, olderThan time.Duration, maxAttempts int) (int64, error) {
	f.olderThan = olderThan
	f.maxAttempts = maxAttempts
	return f.released, nil
}

func TestClaimReaperPassesTTLAndAttempts(t *testing.T) {
	repo := &fakeReleaser{released: 2}
	reaper := NewClaimReaper(repo, logger.Discard(), time.Hour, 3*time.Minute, 5)

	reaper.reap(context.Background())

	if repo.olderThan != 3*time.Minute || repo.maxAttempts != 5 {
		t.Fatalf("unexpected reaper arguments: %v, %d", repo.olderThan, repo.maxAttempts)
	}
}
