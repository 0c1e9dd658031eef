// Package email delivers outbound notifications through Brevo or SMTP.
package email

import (
	"context"
	"fmt"
	"strings"

	"leadqualify_backend/platform/config"
)

// Provider names recorded on communication rows.
const (
	ProviderBrevo = "brevo"
	ProviderSMTP  = "smtp"
	ProviderNoop  = "noop"
)

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLContent string
}

// SendResult carries the provider's identifier for an accepted message.
type SendResult struct {
	ExternalID string
}

// Sender delivers a rendered message. A nil error means the provider accepted it.
type Sender interface {
	Provider() string
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// NoopSender accepts every message without delivering it. Used when email is disabled.
type NoopSender struct{}

func (NoopSender) Provider() string { return ProviderNoop }

func (NoopSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	return SendResult{}, nil
}

// NewSender picks the configured provider.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch strings.ToLower(cfg.GetEmailProvider()) {
	case "", ProviderBrevo:
		return NewBrevoSender(cfg.GetBrevoAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case ProviderSMTP:
		return NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.GetEmailProvider())
	}
}
