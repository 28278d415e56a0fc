package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSender) sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResetURL(t *testing.T) {
	token := "ab12"
	tests := []struct {
		clientURL string
		want      string
	}{
		{"http://localhost:3000", "http://localhost:3000/reset-password?token=ab12"},
		{"https://chat.example.com/app", "https://chat.example.com/app/reset-password?token=ab12"},
	}
	for _, tt := range tests {
		got, err := ResetURL(tt.clientURL, token)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSendPasswordReset_RendersLink(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier("AI Chat Assistant", "http://localhost:3000", time.Hour, sender, nil, discardLogger())

	require.NoError(t, n.SendPasswordReset(context.Background(), "a@example.com", "Alice", "deadbeef"))

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "a@example.com", msgs[0].To)
	assert.Equal(t, "Password Reset Request - AI Chat Assistant", msgs[0].Subject)
	assert.Equal(t, "http://localhost:3000/reset-password?token=deadbeef", msgs[0].Link)
	assert.Contains(t, msgs[0].HTML, "http://localhost:3000/reset-password?token=deadbeef")
	assert.Contains(t, msgs[0].HTML, "Hello Alice!")
	assert.Contains(t, msgs[0].HTML, "1 hour")
}

func TestSendPasswordReset_EscapesName(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier("App", "http://localhost:3000", time.Hour, sender, nil, discardLogger())

	require.NoError(t, n.SendPasswordReset(context.Background(), "a@example.com", "<script>", "t"))
	assert.NotContains(t, sender.sent()[0].HTML, "<script>")
}

func TestSendPasswordReset_FailureIsDispatchError(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	n := NewNotifier("App", "http://localhost:3000", time.Hour, sender, nil, discardLogger())

	err := n.SendPasswordReset(context.Background(), "a@example.com", "A", "t")
	assert.ErrorIs(t, err, apperrors.ErrNotificationDispatch)
}

func TestDispatcher_DeliversQueuedWelcome(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(DispatcherConfig{NumWorkers: 2, QueueSize: 10}, sender, discardLogger())
	require.NoError(t, d.Start(context.Background()))
	n := NewNotifier("App", "http://localhost:3000", time.Hour, sender, d, discardLogger())

	n.QueueWelcome("a@example.com", "Alice")
	n.QueueWelcome("b@example.com", "Bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	msgs := sender.sent()
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, "Welcome to App!", m.Subject)
	}
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, &recordingSender{}, discardLogger())
	assert.ErrorIs(t, d.Enqueue(Message{}), ErrDispatcherStopped)

	require.NoError(t, d.Start(context.Background()))
	require.NoError(t, d.Stop(context.Background()))
	assert.ErrorIs(t, d.Enqueue(Message{}), ErrDispatcherStopped)
	assert.Error(t, d.Start(context.Background()))
}

func TestDispatcher_QueueFull(t *testing.T) {
	block := make(chan struct{})
	sender := senderFunc(func(ctx context.Context, _ Message) error {
		<-block
		return nil
	})
	d := NewDispatcher(DispatcherConfig{NumWorkers: 1, QueueSize: 1}, sender, discardLogger())
	require.NoError(t, d.Start(context.Background()))

	// first message occupies the worker, second fills the queue
	require.NoError(t, d.Enqueue(Message{Subject: "1"}))
	require.Eventually(t, func() bool { return d.Enqueue(Message{Subject: "2"}) == nil }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, d.Enqueue(Message{Subject: "3"}), ErrQueueFull)

	close(block)
	require.NoError(t, d.Stop(context.Background()))
}

type senderFunc func(ctx context.Context, msg Message) error

func (f senderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{Subject: "s", Link: "l"}))
}

func TestFormatTTL(t *testing.T) {
	assert.Equal(t, "1 hour", formatTTL(time.Hour))
	assert.Equal(t, "2 hours", formatTTL(2*time.Hour))
	assert.Equal(t, "30 minutes", formatTTL(30*time.Minute))
}
