package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"leadqualify_backend/internal/events"
	"leadqualify_backend/platform/logger"
)

type fakeObjectStore struct {
	buckets []string
	puts    map[string][]byte
	putErr  error
}

func (f *fakeObjectStore) EnsureBucketExists(_ context.Context, bucket string) error {
	f.buckets = append(f.buckets, bucket)
	return nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, bucket, key, _ string, reader io.Reader, _ int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[bucket+"/"+key] = data
	return nil
}

func TestRunReportKeyUsesUTCDatePrefix(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	started := time.Date(2026, 3, 1, 1, 30, 0, 0, loc)

	got := RunReportKey(started)
	want := "2026/02/28/20260228T233000.000000000Z.json"
	if got != want {
		t.Fatalf("RunReportKey() = %q, want %q", got, want)
	}
}

func TestArchiverUploadsReport(t *testing.T) {
	store := &fakeObjectStore{}
	archiver, err := NewRunReportArchiver(context.Background(), store, "", logger.Discard())
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}
	if len(store.buckets) != 1 || store.buckets[0] != DefaultRunReportBucket {
		t.Fatalf("expected default bucket to be ensured, got %v", store.buckets)
	}

	started := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	report := []byte(`{"total_leads_found":1}`)
	err = archiver.Handle(context.Background(), events.QualificationBatchCompleted{
		BaseEvent: events.NewBaseEvent(),
		RunID:     "run-1",
		StartedAt: started,
		Report:    report,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	got := store.puts[DefaultRunReportBucket+"/"+RunReportKey(started)]
	if string(got) != string(report) {
		t.Fatalf("unexpected archived report %q", got)
	}
}

func TestArchiverReportsUploadFailure(t *testing.T) {
	store := &fakeObjectStore{putErr: errors.New("bucket gone")}
	archiver, _ := NewRunReportArchiver(context.Background(), store, "runs", logger.Discard())

	err := archiver.Handle(context.Background(), events.QualificationBatchCompleted{
		RunID:  "run-2",
		Report: []byte(`{}`),
	})
	if err == nil {
		t.Fatal("expected upload failure to be returned to the bus")
	}
}
