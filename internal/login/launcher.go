// internal/login/launcher.go
package login

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/api/schemas"
	"github.com/xkilldash9x/clawlogin/internal/browser/session"
	"github.com/xkilldash9x/clawlogin/internal/config"
)

// PersonaFromConfig builds the browser fingerprint for a run: the default
// persona with the configured viewport and a user agent picked at random.
func PersonaFromConfig(cfg config.BrowserConfig, rng *rand.Rand) schemas.Persona {
	p := schemas.DefaultPersona
	p.Headers = make(map[string]string, len(schemas.DefaultPersona.Headers))
	for k, v := range schemas.DefaultPersona.Headers {
		p.Headers[k] = v
	}
	if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
		p.Width = int64(cfg.Viewport.Width)
		p.Height = int64(cfg.Viewport.Height)
	}
	if n := len(cfg.UserAgents); n > 0 {
		idx := 0
		if rng != nil {
			idx = rng.Intn(n)
		}
		p.UserAgent = cfg.UserAgents[idx]
	}
	return p
}

// ChromeLauncher returns a Launcher that starts a stealth Chrome session.
func ChromeLauncher(cfg config.BrowserConfig, logger *zap.Logger, rng *rand.Rand) Launcher {
	return func(ctx context.Context) (Page, error) {
		persona := PersonaFromConfig(cfg, rng)
		s, err := session.New(ctx, session.Options{
			Headless: cfg.Headless,
			ExecPath: cfg.ExecPath,
			Args:     cfg.Args,
			Persona:  persona,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

var _ Page = (*session.Session)(nil)
