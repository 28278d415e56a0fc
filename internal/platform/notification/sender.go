// Package notification delivers account emails: password reset links synchronously and
// welcome messages through a background dispatcher.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/SscSPs/chat_backend/internal/platform/config"
	"github.com/wneessen/go-mail"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	// Link is the actionable URL of the message, if any. Only LogSender reads it.
	Link string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an SMTP relay with go-mail.
type SMTPSender struct {
	cfg    config.EmailConfig
	client *mail.Client
}

// NewSMTPSender creates a sender for cfg. The connection is dialled per message.
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{cfg: cfg, client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It is used when
// outgoing email is disabled so that reset links can still be followed in development.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	middleware.GetLoggerFromCtx(ctx).Info("Email delivery disabled, logging message",
		slog.String("subject", msg.Subject),
		slog.String("link", msg.Link),
	)
	return nil
}

// NewSender picks the SMTP sender when email is enabled and the log sender otherwise.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.Enabled {
		return LogSender{}, nil
	}
	return NewSMTPSender(cfg)
}
