// Package notification provides event handlers for sending notifications
// in response to domain events.
// This module subscribes to events and inverts the dependency: the
// qualification pipeline does not need to know about email providers,
// templates or the communication log.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadqualify_backend/internal/communications"
	"leadqualify_backend/internal/email"
	"leadqualify_backend/internal/events"
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/logger"
	"leadqualify_backend/platform/phone"
	"leadqualify_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries  = 3
	defaultBackoff     = 500 * time.Millisecond
	auditUpdateTimeout = 5 * time.Second
)

// CommunicationLog records notification attempts.
type CommunicationLog interface {
	Create(ctx context.Context, params communications.CreateParams) (communications.Communication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, patch communications.StatusPatch) (communications.Communication, error)
}

// Module handles notification-related event subscriptions.
type Module struct {
	sender     email.Sender
	comms      CommunicationLog
	cfg        config.NotificationConfig
	log        *logger.Logger
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// New creates a new notification module.
func New(sender email.Sender, comms CommunicationLog, cfg config.NotificationConfig, log *logger.Logger) *Module {
	if log == nil {
		log = logger.Discard()
	}

	maxRetries := cfg.GetNotificationMaxRetries()
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	limit := rate.Inf
	if perSecond := cfg.GetNotificationRatePerSecond(); perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Module{
		sender:     sender,
		comms:      comms,
		cfg:        cfg,
		log:        log,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		backoff:    defaultBackoff,
	}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadQualified{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadQualified:
		return m.handleLeadQualified(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

// handleLeadQualified records a pending communication, sends the follow-up
// email and stores the terminal outcome. The returned error only reports
// what went wrong; the lead row is never touched here.
func (m *Module) handleLeadQualified(ctx context.Context, e events.LeadQualified) error {
	if e.Email == "" {
		return nil
	}

	subject, content, err := email.RenderLeadQualified(email.LeadQualifiedData{
		Name:       sanitize.Text(e.Name),
		Email:      e.Email,
		Phone:      callbackNumber(e.Phone),
		ContactURL: m.cfg.GetAppBaseURL(),
	})
	if err != nil {
		return fmt.Errorf("render lead qualified email: %w", err)
	}

	comm, err := m.comms.Create(ctx, communications.CreateParams{
		LeadID:     e.LeadID,
		ClientID:   e.TenantID,
		Type:       communications.TypeEmail,
		Recipient:  e.Email,
		Subject:    subject,
		Provider:   m.sender.Provider(),
		MaxRetries: m.maxRetries,
	})
	if err != nil {
		return fmt.Errorf("record pending communication: %w", err)
	}

	result, retries, sendErr := m.sendWithRetry(ctx, email.Message{
		To:          e.Email,
		Subject:     subject,
		HTMLContent: content,
	})

	patch := communications.StatusPatch{
		Status:     communications.StatusSent,
		Provider:   m.sender.Provider(),
		ExternalID: result.ExternalID,
		RetryCount: retries,
	}
	if sendErr != nil {
		patch.Status = communications.StatusFailed
		patch.ErrorMessage = sendErr.Error()
	}

	// The notify budget may already be spent; the outcome must still be recorded.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditUpdateTimeout)
	defer cancel()
	_, updateErr := m.comms.UpdateStatus(auditCtx, comm.ID, patch)
	if updateErr != nil {
		updateErr = fmt.Errorf("record communication outcome: %w", updateErr)
	}

	if sendErr != nil {
		return errors.Join(fmt.Errorf("send lead qualified email: %w", sendErr), updateErr)
	}

	m.log.PipelineEvent(ctx, logger.EventCommunicationSent,
		slog.String("lead_id", e.LeadID.String()),
		slog.String("communication_id", comm.ID.String()),
		slog.String("provider", m.sender.Provider()),
		slog.String("external_id", result.ExternalID),
		slog.Int("retry_count", retries),
	)
	return updateErr
}

// sendWithRetry makes up to maxRetries+1 attempts with quadratic backoff and
// returns how many retries were used.
func (m *Module) sendWithRetry(ctx context.Context, msg email.Message) (email.SendResult, int, error) {
	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if err := m.limiter.Wait(ctx); err != nil {
			return email.SendResult{}, attempt, errors.Join(lastErr, err)
		}

		result, err := m.sender.Send(ctx, msg)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if attempt == m.maxRetries {
			return email.SendResult{}, attempt, lastErr
		}

		delay := time.Duration((attempt+1)*(attempt+1)) * m.backoff
		select {
		case <-ctx.Done():
			return email.SendResult{}, attempt, errors.Join(lastErr, ctx.Err())
		case <-time.After(delay):
		}
	}
	return email.SendResult{}, m.maxRetries, lastErr
}

// callbackNumber returns the lead's phone in E.164 form, or "" when it is not
// a dialable number so the email omits the callback line.
func callbackNumber(raw string) string {
	if !phone.IsValid(raw, "") {
		return ""
	}
	return phone.NormalizeE164(raw, "")
}
