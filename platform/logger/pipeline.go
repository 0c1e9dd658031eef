package logger

import (
	"context"
	"log/slog"
	"time"
)

// Pipeline event tags. Operators correlate a lead across its lifecycle by
// filtering on lead_id and these tags.
const (
	EventPollingForNewLeads   = "POLLING_FOR_NEW_LEADS"
	EventLeadsFound           = "LEADS_FOUND"
	EventBatchFetchFailed     = "BATCH_FETCH_FAILED"
	EventProcessingLead       = "PROCESSING_LEAD"
	EventQualificationResult  = "QUALIFICATION_RESULT"
	EventLeadStatusUpdated    = "LEAD_STATUS_UPDATED"
	EventLeadProcessingFailed = "LEAD_PROCESSING_FAILED"
	EventLeadQuarantined      = "LEAD_QUARANTINED"
	EventCommunicationSent    = "COMMUNICATION_SENT"
	EventCommunicationFailed  = "COMMUNICATION_FAILED"
	EventBatchCompleted       = "BATCH_COMPLETED"
	EventStaleClaimsReleased  = "STALE_CLAIMS_RELEASED"
)

var failureEvents = map[string]bool{
	EventBatchFetchFailed:     true,
	EventLeadProcessingFailed: true,
	EventCommunicationFailed:  true,
}

// PipelineEvent writes one structured line for a qualification pipeline stage.
// Every line carries the event tag and an ISO-8601 UTC timestamp.
func (l *Logger) PipelineEvent(ctx context.Context, event string, attrs ...slog.Attr) {
	level := slog.LevelInfo
	switch {
	case failureEvents[event]:
		level = slog.LevelError
	case event == EventLeadQuarantined:
		level = slog.LevelWarn
	}

	all := make([]slog.Attr, 0, len(attrs)+2)
	all = append(all,
		slog.String("event", event),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339Nano)),
	)
	all = append(all, attrs...)

	if ctx == nil {
		ctx = context.Background()
	}
	l.WithContext(ctx).LogAttrs(ctx, level, "qualification_pipeline", all...)
}
