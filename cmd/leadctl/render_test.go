package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"leadqualify_backend/internal/communications"
	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/pipeline"

	"github.com/google/uuid"
)

func TestRenderSummaryListsEveryResult(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	summary := pipeline.BatchSummary{
		RunID:      "run-42",
		TotalFound: 2,
		Succeeded:  1,
		Failed:     1,
		Results: []pipeline.LeadResult{
			{LeadID: first, Success: true, NewStatus: domain.LeadStatusQualified, ProcessingTime: 12 * time.Millisecond},
			{LeadID: second, Error: "lead was modified concurrently"},
		},
	}

	var buf bytes.Buffer
	renderSummary(&buf, summary)
	out := buf.String()

	for _, want := range []string{"run-42", first.String(), second.String(), "qualified", "lead was modified concurrently", "found 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderLeadsShowsStatus(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), Name: "Jane", Email: "jane@acme.com", Status: domain.LeadStatusNew}

	var buf bytes.Buffer
	renderLeads(&buf, []domain.Lead{lead})

	if !strings.Contains(buf.String(), "jane@acme.com") || !strings.Contains(buf.String(), "new") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
}

func TestRenderCommunicationsMarksFinalAttempts(t *testing.T) {
	msg := "mailbox full"
	items := []communications.Communication{
		{ID: uuid.New(), Type: communications.TypeEmail, Recipient: "jane@acme.com", Status: communications.StatusPending},
		{ID: uuid.New(), Type: communications.TypeEmail, Recipient: "jane@acme.com", Status: communications.StatusFailed, RetryCount: 3, ErrorMessage: &msg},
	}

	var buf bytes.Buffer
	renderCommunications(&buf, items)
	out := buf.String()

	for _, want := range []string{"pending", "failed", "mailbox full", "true", "false"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestParseTenant(t *testing.T) {
	if id, err := parseTenant(""); err != nil || id != nil {
		t.Fatalf("expected nil tenant for empty flag, got %v %v", id, err)
	}
	if _, err := parseTenant("nope"); err == nil {
		t.Fatal("expected error for malformed tenant id")
	}
	want := uuid.New()
	got, err := parseTenant(want.String())
	if err != nil || *got != want {
		t.Fatalf("parseTenant() = %v, %v", got, err)
	}
}
