package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockNotifier records reset tokens so tests can complete the flow.
type MockNotifier struct {
	mock.Mock
	mu          sync.Mutex
	resetTokens []string
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, email, name, resetToken string) error {
	m.mu.Lock()
	m.resetTokens = append(m.resetTokens, resetToken)
	m.mu.Unlock()
	args := m.Called(ctx, email, name, resetToken)
	return args.Error(0)
}

func (m *MockNotifier) QueueWelcome(email, name string) {
	m.Called(email, name)
}

func (m *MockNotifier) lastResetToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resetTokens) == 0 {
		return ""
	}
	return m.resetTokens[len(m.resetTokens)-1]
}

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
