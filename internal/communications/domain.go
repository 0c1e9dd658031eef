// Package communications records one audit row per outbound notification
// attempt. The log is best-effort: its state never gates a lead's status.
package communications

import (
	"time"

	"github.com/google/uuid"
)

// Type is the delivery channel.
type Type string

const (
	TypeEmail   Type = "email"
	TypeSMS     Type = "sms"
	TypePush    Type = "push"
	TypeWebhook Type = "webhook"
)

// Status is the delivery state of a communication.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusBounced   Status = "bounced"
	StatusRejected  Status = "rejected"
)

// IsTerminal reports whether s ends a delivery attempt.
func (s Status) IsTerminal() bool {
	return s != StatusPending && s != ""
}

// Communication is one notification attempt tied to a lead.
type Communication struct {
	ID           uuid.UUID  `json:"id"`
	LeadID       uuid.UUID  `json:"lead_id"`
	ClientID     uuid.UUID  `json:"client_id"`
	Type         Type       `json:"type"`
	Recipient    string     `json:"recipient"`
	Subject      *string    `json:"subject,omitempty"`
	Status       Status     `json:"status"`
	Provider     *string    `json:"provider,omitempty"`
	ExternalID   *string    `json:"external_id,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
}

// CreateParams describes a new pending communication.
type CreateParams struct {
	LeadID     uuid.UUID `validate:"required"`
	ClientID   uuid.UUID `validate:"required"`
	Type       Type      `validate:"required,oneof=email sms push webhook"`
	Recipient  string    `validate:"required,max=320"`
	Subject    string    `validate:"max=998"`
	Provider   string    `validate:"max=64"`
	MaxRetries int       `validate:"min=0,max=10"`
}

// StatusPatch moves a communication to a terminal state.
type StatusPatch struct {
	Status       Status `validate:"required,oneof=sent delivered failed bounced rejected"`
	Provider     string
	ExternalID   string
	ErrorMessage string
	RetryCount   int `validate:"min=0"`
}
