// FILE: ./internal/browser/humanoid/mocks_test.go
package humanoid

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mockExecutor implements the Executor interface for testing.
type mockExecutor struct {
	t              *testing.T
	clicks         []string
	sentKeys       []string
	sleepDurations []time.Duration
	returnErr      error
	mu             sync.Mutex

	MockSleep func(ctx context.Context, d time.Duration) error
}

func newMockExecutor(t *testing.T) *mockExecutor {
	return &mockExecutor{t: t}
}

func (m *mockExecutor) Click(ctx context.Context, selector string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, selector)
	return m.returnErr
}

func (m *mockExecutor) SendKeys(ctx context.Context, keys string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentKeys = append(m.sentKeys, keys)
	return nil
}

func (m *mockExecutor) Sleep(ctx context.Context, d time.Duration) error {
	if m.MockSleep != nil {
		return m.MockSleep(ctx, d)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleepDurations = append(m.sleepDurations, d)
	return nil
}

// getMockKeys safely copies the recorded keys.
func getMockKeys(mock *mockExecutor) []string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	keys := make([]string, len(mock.sentKeys))
	copy(keys, mock.sentKeys)
	return keys
}

func getMockSleeps(mock *mockExecutor) []time.Duration {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	d := make([]time.Duration, len(mock.sleepDurations))
	copy(d, mock.sleepDurations)
	return d
}
