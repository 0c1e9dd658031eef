package repository

import (
	"testing"
	"time"

	"leadqualify_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func TestSortOldestFirstOrdersByCreatedAtThenID(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	leads := []domain.Lead{
		{ID: idB, CreatedAt: base.Add(time.Minute)},
		{ID: idB, CreatedAt: base},
		{ID: idA, CreatedAt: base},
	}
	sortOldestFirst(leads)

	if leads[0].ID != idA || leads[1].ID != idB || !leads[2].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected order: %+v", leads)
	}
}

func TestPrefixedQualifiesEveryColumn(t *testing.T) {
	got := prefixed("l", "id, name,\n\temail")
	if got != "l.id, l.name, l.email" {
		t.Fatalf("prefixed() = %q", got)
	}
}

func TestNormalizeLimit(t *testing.T) {
	if normalizeLimit(0) != defaultLimit || normalizeLimit(-3) != defaultLimit {
		t.Fatal("expected non-positive limits to fall back to the default")
	}
	if normalizeLimit(7) != 7 {
		t.Fatal("expected positive limit to pass through")
	}
}
