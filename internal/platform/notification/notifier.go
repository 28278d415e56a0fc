package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/middleware"
)

const (
	resetSubject   = "Password Reset Request - %s"
	welcomeSubject = "Welcome to %s!"
)

// Notifier renders account emails and hands them to a Sender or the Dispatcher.
type Notifier struct {
	appName    string
	clientURL  string
	resetTTL   time.Duration
	sender     Sender
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewNotifier creates a Notifier. clientURL is the web client origin the reset link points at.
func NewNotifier(appName, clientURL string, resetTTL time.Duration, sender Sender, dispatcher *Dispatcher, logger *slog.Logger) *Notifier {
	return &Notifier{
		appName:    appName,
		clientURL:  clientURL,
		resetTTL:   resetTTL,
		sender:     sender,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

var _ portssvc.NotificationSvc = (*Notifier)(nil)

// ResetURL builds {clientURL}/reset-password?token={token}.
func ResetURL(clientURL, token string) (string, error) {
	u, err := url.Parse(clientURL)
	if err != nil {
		return "", fmt.Errorf("invalid client url: %w", err)
	}
	u = u.JoinPath("reset-password")
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

func (n *Notifier) SendPasswordReset(ctx context.Context, email, name, resetToken string) error {
	link, err := ResetURL(n.clientURL, resetToken)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotificationDispatch, err)
	}
	html, err := render("password_reset.html", resetData{
		AppName:  n.appName,
		Name:     name,
		ResetURL: link,
		ValidFor: formatTTL(n.resetTTL),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotificationDispatch, err)
	}

	msg := Message{To: email, Subject: fmt.Sprintf(resetSubject, n.appName), HTML: html, Link: link}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotificationDispatch, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Password reset email sent")
	return nil
}

func (n *Notifier) QueueWelcome(email, name string) {
	html, err := render("welcome.html", welcomeData{AppName: n.appName, Name: name, ClientURL: n.clientURL})
	if err != nil {
		n.logger.Error("Failed to render welcome email", slog.String("error", err.Error()))
		return
	}
	msg := Message{To: email, Subject: fmt.Sprintf(welcomeSubject, n.appName), HTML: html, Link: n.clientURL}
	if err := n.dispatcher.Enqueue(msg); err != nil {
		n.logger.Warn("Welcome email dropped", slog.String("error", err.Error()))
	}
}

func formatTTL(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
