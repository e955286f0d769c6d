// internal/browser/humanoid/config.go
package humanoid

import (
	"fmt"
	"math/rand"
	"time"
)

// Config holds the parameters defining the pacing of the simulation.
// All ranges are inclusive and expressed in milliseconds so they can be
// loaded from YAML without duration parsing.
type Config struct {
	// Enabled turns on randomized pauses and per-character typing. When false,
	// pauses are skipped and text is sent in a single key event, which keeps
	// tests deterministic.
	Enabled bool       `mapstructure:"enabled" yaml:"enabled"`
	Seed    int64      `mapstructure:"seed" yaml:"seed"`
	Rng     *rand.Rand `mapstructure:"-" yaml:"-"`

	// Typing Behavior
	KeyDelayMinMs int `mapstructure:"key_delay_min_ms" yaml:"key_delay_min_ms"`
	KeyDelayMaxMs int `mapstructure:"key_delay_max_ms" yaml:"key_delay_max_ms"`

	// Pause after focusing a field and before the first key.
	FocusPauseMinMs int `mapstructure:"focus_pause_min_ms" yaml:"focus_pause_min_ms"`
	FocusPauseMaxMs int `mapstructure:"focus_pause_max_ms" yaml:"focus_pause_max_ms"`

	// Pause after the last key.
	SettlePauseMinMs int `mapstructure:"settle_pause_min_ms" yaml:"settle_pause_min_ms"`
	SettlePauseMaxMs int `mapstructure:"settle_pause_max_ms" yaml:"settle_pause_max_ms"`
}

// DefaultConfig returns a configuration representing an average typist.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		KeyDelayMinMs:    50,
		KeyDelayMaxMs:    150,
		FocusPauseMinMs:  200,
		FocusPauseMaxMs:  500,
		SettlePauseMinMs: 300,
		SettlePauseMaxMs: 800,
	}
}

// Validate checks that every range is non-negative and ordered.
func (c Config) Validate() error {
	ranges := []struct {
		name     string
		min, max int
	}{
		{"key_delay", c.KeyDelayMinMs, c.KeyDelayMaxMs},
		{"focus_pause", c.FocusPauseMinMs, c.FocusPauseMaxMs},
		{"settle_pause", c.SettlePauseMinMs, c.SettlePauseMaxMs},
	}
	for _, r := range ranges {
		if r.min < 0 || r.max < 0 {
			return fmt.Errorf("%s bounds must not be negative", r.name)
		}
		if r.max < r.min {
			return fmt.Errorf("%s max (%d) must be >= min (%d)", r.name, r.max, r.min)
		}
	}
	return nil
}

// KeyDelay returns the configured inter-key delay range.
func (c Config) KeyDelay() Range {
	return MillisRange(c.KeyDelayMinMs, c.KeyDelayMaxMs)
}

// Range is an inclusive duration interval sampled uniformly.
type Range struct {
	Min, Max time.Duration
}

// MillisRange builds a Range from millisecond bounds.
func MillisRange(minMs, maxMs int) Range {
	return Range{Min: time.Duration(minMs) * time.Millisecond, Max: time.Duration(maxMs) * time.Millisecond}
}

// sample draws a duration from r. A nil rng or an empty interval yields Min.
func (r Range) sample(rng *rand.Rand) time.Duration {
	if rng == nil || r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rng.Int63n(int64(r.Max-r.Min)+1))
}
