// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lead is a tenant-owned prospective contact subject to qualification.
type Lead struct {
	ID                    uuid.UUID       `json:"id"`
	ClientID              uuid.UUID       `json:"client_id"`
	CompanyID             *uuid.UUID      `json:"company_id,omitempty"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone"`
	Status                LeadStatus      `json:"status"`
	Notes                 *string         `json:"notes,omitempty"`
	CustomData            json.RawMessage `json:"custom_data,omitempty"`
	QualificationScore    *int            `json:"qualification_score,omitempty"`
	QualificationNotes    *string         `json:"qualification_notes,omitempty"`
	QualificationAttempts int             `json:"qualification_attempts"`
	ClaimedAt             *time.Time      `json:"claimed_at,omitempty"`
	QualifiedAt           *time.Time      `json:"qualified_at,omitempty"`
	LastError             *string         `json:"last_error,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Verdict is the transient output of the qualification rules for one lead.
// Only Status, Score and Notes are written back to the lead row.
type Verdict struct {
	Status           LeadStatus `json:"status"`
	Score            int        `json:"score"`
	Notes            string     `json:"notes"`
	HasValidEmail    bool       `json:"has_valid_email"`
	HasValidName     bool       `json:"has_valid_name"`
	IsBusinessDomain bool       `json:"is_business_domain"`
}
