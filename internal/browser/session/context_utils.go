// internal/browser/session/context_utils.go
package session

import (
	"context"
)

// CombineContext returns a context derived from ctx1 (the session context,
// which carries the CDP target) that is also canceled when ctx2 (the
// operation context, usually carrying a deadline) is done.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancelCause(ctx1)
	stop := context.AfterFunc(ctx2, func() {
		cancel(context.Cause(ctx2))
	})
	return combinedCtx, func() {
		stop()
		cancel(context.Canceled)
	}
}
