package scoring

import (
	"testing"

	"leadqualify_backend/internal/leads/domain"
)

func TestQualifyScenarios(t *testing.T) {
	tests := []struct {
		name       string
		lead       domain.Lead
		wantStatus domain.LeadStatus
		wantScore  int
	}{
		{"business email qualifies", domain.Lead{Name: "Jane Doe", Email: "jane@acme.com"}, domain.LeadStatusQualified, 85},
		{"org domain qualifies", domain.Lead{Name: "Al", Email: "al@charity.org"}, domain.LeadStatusQualified, 85},
		{"net domain qualifies", domain.Lead{Name: "Net Ops", Email: "ops@isp.net"}, domain.LeadStatusQualified, 85},
		{"non business domain goes to review", domain.Lead{Name: "Jo", Email: "jo@mail.ru"}, domain.LeadStatusReview, 60},
		{"empty name and bad email rejected", domain.Lead{Name: "", Email: "bad-email"}, domain.LeadStatusRejected, 25},
		{"zero value lead rejected", domain.Lead{}, domain.LeadStatusRejected, 25},
		{"single character name rejected", domain.Lead{Name: "J", Email: "j@acme.com"}, domain.LeadStatusRejected, 25},
		{"email without dot rejected", domain.Lead{Name: "Jane", Email: "jane@localhost"}, domain.LeadStatusRejected, 25},
		{"email without at rejected", domain.Lead{Name: "Jane", Email: "jane.acme.com"}, domain.LeadStatusRejected, 25},
		{"suffix check is literal", domain.Lead{Name: "Jane", Email: "jane@acme.com.au"}, domain.LeadStatusReview, 60},
		{"multibyte name counts runes", domain.Lead{Name: "Zoë", Email: "zoe@acme.com"}, domain.LeadStatusQualified, 85},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Qualify(tc.lead)
			if got.Status != tc.wantStatus || got.Score != tc.wantScore {
				t.Fatalf("Qualify(%q, %q) = %s/%d, want %s/%d",
					tc.lead.Name, tc.lead.Email, got.Status, got.Score, tc.wantStatus, tc.wantScore)
			}
			if got.Notes == "" {
				t.Fatal("expected verdict notes to be set")
			}
		})
	}
}

func TestQualifyIsDeterministic(t *testing.T) {
	lead := domain.Lead{Name: "Jane Doe", Email: "jane@acme.com"}
	first := Qualify(lead)
	for i := 0; i < 100; i++ {
		if got := Qualify(lead); got != first {
			t.Fatalf("iteration %d: verdict changed from %+v to %+v", i, first, got)
		}
	}
}

func TestQualifyPartitionIsComplete(t *testing.T) {
	names := []string{"", "J", "Jo", "Jane Doe"}
	emails := []string{"", "bad-email", "a@b", "a.b", "a@b.ru", "a@b.com", "a@b.org", "a@b.net"}

	for _, name := range names {
		for _, email := range emails {
			v := Qualify(domain.Lead{Name: name, Email: email})
			if !domain.IsQualificationOutcome(v.Status) {
				t.Fatalf("Qualify(%q, %q) produced non-outcome status %q", name, email, v.Status)
			}

			want := expectedStatus(v.HasValidEmail, v.HasValidName, v.IsBusinessDomain)
			if v.Status != want {
				t.Fatalf("Qualify(%q, %q) = %q, rule table says %q", name, email, v.Status, want)
			}
		}
	}
}

func expectedStatus(validEmail, validName, business bool) domain.LeadStatus {
	if validEmail && validName && business {
		return domain.LeadStatusQualified
	}
	if validEmail && validName {
		return domain.LeadStatusReview
	}
	return domain.LeadStatusRejected
}

func TestRejectionNotesListReasons(t *testing.T) {
	v := Qualify(domain.Lead{Name: "", Email: "bad-email"})
	if v.Notes != "Rejected: invalid email, name too short" {
		t.Fatalf("unexpected notes %q", v.Notes)
	}
}
