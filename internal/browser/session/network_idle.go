// internal/browser/session/network_idle.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const networkIdleCheckFrequency = 100 * time.Millisecond

// NetworkTracker counts in-flight requests from CDP network events so the
// session can wait for the page to go quiet.
type NetworkTracker struct {
	logger *zap.Logger

	mu       sync.RWMutex
	inflight map[network.RequestID]struct{}
	// lastDocument is the URL of the most recent top-level document request.
	lastDocument string
}

// NewNetworkTracker creates an empty tracker. Call Listen to attach it to a
// browser target.
func NewNetworkTracker(logger *zap.Logger) *NetworkTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NetworkTracker{
		logger:   logger.Named("network"),
		inflight: make(map[network.RequestID]struct{}),
	}
}

// Listen subscribes the tracker to the network events of the target bound to ctx.
func (t *NetworkTracker) Listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, t.handleEvent)
}

func (t *NetworkTracker) handleEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.handleRequestWillBeSent(ev)
	case *network.EventLoadingFinished:
		t.done(ev.RequestID)
	case *network.EventLoadingFailed:
		t.done(ev.RequestID)
	}
}

func (t *NetworkTracker) handleRequestWillBeSent(ev *network.EventRequestWillBeSent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Redirects reuse the request ID, so a set keeps the count honest.
	t.inflight[ev.RequestID] = struct{}{}
	if ev.Type == network.ResourceTypeDocument && ev.Request != nil {
		t.lastDocument = ev.Request.URL
	}
}

func (t *NetworkTracker) done(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)
}

// Active returns the number of requests that have started but not yet
// finished or failed.
func (t *NetworkTracker) Active() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.inflight)
}

// LastDocument returns the URL of the last document request seen.
func (t *NetworkTracker) LastDocument() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastDocument
}

// WaitIdle blocks until no request has been in flight for quietPeriod.
// The caller bounds the wait through ctx.
func (t *NetworkTracker) WaitIdle(ctx context.Context, quietPeriod time.Duration) error {
	t.logger.Debug("Waiting for network to become idle.", zap.Duration("quiet_period", quietPeriod))

	timer := time.NewTimer(quietPeriod)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	isIdle := false
	ticker := time.NewTicker(networkIdleCheckFrequency)
	defer ticker.Stop()

	check := func() {
		if t.Active() > 0 {
			if isIdle {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				isIdle = false
			}
			return
		}
		if !isIdle {
			timer.Reset(quietPeriod)
			isIdle = true
		}
	}
	check()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			check()
		case <-timer.C:
			t.logger.Debug("Network is idle.")
			return nil
		}
	}
}
