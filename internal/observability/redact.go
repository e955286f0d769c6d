// File: internal/observability/redact.go
package observability

import (
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redactedMark = "[REDACTED]"

// minSecretLen keeps short values such as "yes" from blanking ordinary words.
const minSecretLen = 6

var (
	redactions atomic.Pointer[strings.Replacer]

	redactMu sync.Mutex
	// registered holds the replacer pairs so Redact can extend them.
	registered []string
)

// Redact registers credential values that must never appear in log output.
// Every later entry has them replaced in its message and string or error
// fields. Calls accumulate.
func Redact(values ...string) {
	redactMu.Lock()
	defer redactMu.Unlock()
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) < minSecretLen {
			continue
		}
		registered = append(registered, v, redactedMark)
	}
	if len(registered) == 0 {
		return
	}
	redactions.Store(strings.NewReplacer(registered...))
}

func resetRedactions() {
	redactMu.Lock()
	defer redactMu.Unlock()
	registered = nil
	redactions.Store(nil)
}

func scrub(s string) string {
	r := redactions.Load()
	if r == nil {
		return s
	}
	return r.Replace(s)
}

// redactingCore rewrites entries before they reach the wrapped core.
type redactingCore struct {
	zapcore.Core
}

func newRedactingCore(core zapcore.Core) zapcore.Core {
	return &redactingCore{Core: core}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(scrubFields(fields))}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = scrub(ent.Message)
	return c.Core.Write(ent, scrubFields(fields))
}

func scrubFields(fields []zapcore.Field) []zapcore.Field {
	if redactions.Load() == nil {
		return fields
	}
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case zapcore.StringType:
			f.String = scrub(f.String)
		case zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok && err != nil {
				f = zap.String(f.Key, scrub(err.Error()))
			}
		}
		out[i] = f
	}
	return out
}
