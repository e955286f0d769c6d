package humanoid

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Type simulates human typing: focus the field, hesitate, then send each
// character followed by a random inter-key delay. With pacing disabled the
// whole text is sent in one key event.
func (h *Humanoid) Type(ctx context.Context, selector string, text string, opts *TypeOptions) error {
	// 1. Preparation: Focus the element before typing.
	if err := h.executor.Click(ctx, selector); err != nil {
		return fmt.Errorf("humanoid: failed to click/focus selector '%s': %w", selector, err)
	}

	if !h.config.Enabled {
		if err := h.executor.SendKeys(ctx, text); err != nil {
			return fmt.Errorf("humanoid: failed to send keys to '%s': %w", selector, err)
		}
		return nil
	}

	// Pause after focusing to simulate cognitive planning.
	focus := MillisRange(h.config.FocusPauseMinMs, h.config.FocusPauseMaxMs)
	if err := h.Pause(ctx, focus.Min, focus.Max); err != nil {
		return err
	}

	keyDelay := h.config.KeyDelay()
	if opts != nil && opts.KeyDelay.Max > 0 {
		keyDelay = opts.KeyDelay
	}

	// 2. Execution Loop.
	runes := []rune(text)
	for _, r := range runes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.executor.SendKeys(ctx, string(r)); err != nil {
			return fmt.Errorf("humanoid: failed to send key to '%s': %w", selector, err)
		}
		if err := h.executor.Sleep(ctx, h.sample(keyDelay)); err != nil {
			return err
		}
	}

	h.logger.Debug("Typed text", zap.String("selector", selector), zap.Int("length", len(runes)))

	settle := MillisRange(h.config.SettlePauseMinMs, h.config.SettlePauseMaxMs)
	return h.Pause(ctx, settle.Min, settle.Max)
}
