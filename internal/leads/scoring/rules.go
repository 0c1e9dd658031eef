// Package scoring implements the lead qualification rules.
//
// Qualify is pure: it performs no I/O and returns the same verdict for the
// same lead snapshot.
package scoring

import (
	"strings"
	"unicode/utf8"

	"leadqualify_backend/internal/leads/domain"
)

const (
	ScoreQualified = 85
	ScoreReview    = 60
	ScoreRejected  = 25

	minNameLength = 2
)

// businessSuffixes is a literal suffix check, not a TLD parser. Kept as-is
// until product confirms the intended domain policy.
var businessSuffixes = []string{".com", ".org", ".net"}

// Qualify evaluates the three qualification rules in order and maps them to a verdict.
func Qualify(lead domain.Lead) domain.Verdict {
	v := domain.Verdict{
		HasValidEmail:    hasValidEmail(lead.Email),
		HasValidName:     hasValidName(lead.Name),
		IsBusinessDomain: isBusinessDomain(lead.Email),
	}

	switch {
	case v.HasValidEmail && v.HasValidName && v.IsBusinessDomain:
		v.Status = domain.LeadStatusQualified
		v.Score = ScoreQualified
		v.Notes = "Valid name and email on a business domain"
	case v.HasValidEmail && v.HasValidName:
		v.Status = domain.LeadStatusReview
		v.Score = ScoreReview
		v.Notes = "Valid name and email, domain is not .com/.org/.net; needs manual review"
	default:
		v.Status = domain.LeadStatusRejected
		v.Score = ScoreRejected
		v.Notes = rejectionNotes(v)
	}

	return v
}

func hasValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

func hasValidName(name string) bool {
	return utf8.RuneCountInString(name) >= minNameLength
}

func isBusinessDomain(email string) bool {
	for _, suffix := range businessSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

func rejectionNotes(v domain.Verdict) string {
	reasons := make([]string, 0, 2)
	if !v.HasValidEmail {
		reasons = append(reasons, "invalid email")
	}
	if !v.HasValidName {
		reasons = append(reasons, "name too short")
	}
	return "Rejected: " + strings.Join(reasons, ", ")
}
