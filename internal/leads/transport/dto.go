package transport

import (
	"time"

	"github.com/google/uuid"
)

// RunQualificationRequest scopes a manual or queued batch run.
// Both fields are optional; a zero Limit means the configured batch size.
type RunQualificationRequest struct {
	TenantID string `form:"tenantId" json:"tenantId,omitempty" validate:"omitempty,uuid"`
	Limit    int    `form:"limit" json:"limit,omitempty" validate:"min=0,max=500"`
}

// LeadResultResponse is the per-lead outcome of a batch run.
type LeadResultResponse struct {
	LeadID           uuid.UUID `json:"lead_id"`
	Success          bool      `json:"success"`
	NewStatus        string    `json:"new_status,omitempty"`
	Error            string    `json:"error,omitempty"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
}

// QualificationSummaryResponse is the body returned by the manual trigger and
// archived for every run.
type QualificationSummaryResponse struct {
	Timestamp             time.Time            `json:"timestamp"`
	TotalLeadsFound       int                  `json:"total_leads_found"`
	SuccessfullyProcessed int                  `json:"successfully_processed"`
	FailedProcessing      int                  `json:"failed_processing"`
	Results               []LeadResultResponse `json:"results"`
}

// QualificationErrorResponse is returned when a run fails before any lead is processed.
type QualificationErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// EnqueueQualificationResponse acknowledges a queued batch run.
type EnqueueQualificationResponse struct {
	Queued bool   `json:"queued"`
	TaskID string `json:"taskId,omitempty"`
}

// PendingLeadsRequest filters the pending listing.
type PendingLeadsRequest struct {
	TenantID string `form:"tenantId" validate:"omitempty,uuid"`
	Status   string `form:"status" validate:"omitempty,leadstatus"`
	Limit    int    `form:"limit" validate:"min=0,max=500"`
}

// PendingLeadResponse is one row of the pending listing.
type PendingLeadResponse struct {
	ID                    uuid.UUID `json:"id"`
	ClientID              uuid.UUID `json:"clientId"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Status                string    `json:"status"`
	QualificationAttempts int       `json:"qualificationAttempts"`
	LastError             *string   `json:"lastError,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

// PendingLeadsResponse lists leads waiting for qualification.
type PendingLeadsResponse struct {
	Items []PendingLeadResponse `json:"items"`
}

// ParseTenantID converts an optional tenant id string. Callers validate the
// format first, so a parse failure is reported as absent.
func ParseTenantID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
