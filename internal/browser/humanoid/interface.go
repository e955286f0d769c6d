// internal/browser/humanoid/interface.go
package humanoid

import (
	"context"
	"time"
)

// Controller defines the high-level interface for human-like interactions.
// This is the interface implemented by the Humanoid struct itself.
type Controller interface {
	// Type focuses selector and enters text one key at a time.
	Type(ctx context.Context, selector string, text string, opts *TypeOptions) error
	// Pause waits a random duration within [min, max].
	Pause(ctx context.Context, min, max time.Duration) error
}

// Executor defines the low-level interface required by the Humanoid controller.
type Executor interface {
	Sleep(ctx context.Context, d time.Duration) error
	Click(ctx context.Context, selector string) error
	// SendKeys dispatches key events to the currently focused element.
	SendKeys(ctx context.Context, keys string) error
}

// TypeOptions overrides per-call typing behavior.
type TypeOptions struct {
	// KeyDelay replaces the configured inter-key delay when non-zero.
	KeyDelay Range
}
