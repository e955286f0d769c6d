// internal/browser/humanoid/humanoid.go
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Humanoid defines the state and capabilities for simulating human like interactions.
type Humanoid struct {
	// mu protects rng, which is not safe for concurrent use.
	mu       sync.Mutex
	config   Config
	logger   *zap.Logger
	executor Executor
	rng      *rand.Rand
}

var _ Controller = (*Humanoid)(nil)

// New creates and initializes a new Humanoid instance.
func New(config Config, logger *zap.Logger, executor Executor) *Humanoid {
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := config.Rng
	if rng == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	config.Rng = rng

	return &Humanoid{
		config:   config,
		logger:   logger.Named("humanoid"),
		executor: executor,
		rng:      rng,
	}
}

// NewTestHumanoid creates a Humanoid instance with deterministic dependencies for testing.
func NewTestHumanoid(executor Executor, seed int64) *Humanoid {
	config := DefaultConfig()
	config.Rng = rand.New(rand.NewSource(seed))
	return New(config, zap.NewNop(), executor)
}

// Enabled reports whether pacing is active.
func (h *Humanoid) Enabled() bool {
	return h.config.Enabled
}

// Pause waits a uniformly random duration in [min, max]. It is a no-op when
// pacing is disabled.
func (h *Humanoid) Pause(ctx context.Context, min, max time.Duration) error {
	if !h.config.Enabled {
		return ctx.Err()
	}
	d := h.sample(Range{Min: min, Max: max})
	if d <= 0 {
		return ctx.Err()
	}
	return h.executor.Sleep(ctx, d)
}

// sample draws from r under the lock.
func (h *Humanoid) sample(r Range) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return r.sample(h.rng)
}
