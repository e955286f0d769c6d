// internal/secrets/publisher.go
package secrets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/api/schemas"
	"github.com/xkilldash9x/clawlogin/internal/config"
)

const (
	// SessionCookieName is GitHub's login session cookie.
	SessionCookieName = "user_session"
	sessionDomain     = "github"
)

// Publisher republishes the GitHub session cookie as a repository secret.
type Publisher struct {
	cfg    config.SecretsConfig
	store  Store
	sealer Sealer
	logger *zap.Logger
}

// NewPublisher creates a publisher. With publishing disabled in cfg, store
// may be nil and Publish only logs the cookie.
func NewPublisher(cfg config.SecretsConfig, store Store, sealer Sealer, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sealer == nil {
		sealer = BoxSealer{}
	}
	return &Publisher{
		cfg:    cfg,
		store:  store,
		sealer: sealer,
		logger: logger.Named("secrets"),
	}
}

// Enabled reports whether a token, a repository and a store are all present.
func (p *Publisher) Enabled() bool {
	return p.cfg.Enabled() && p.store != nil
}

// Announce logs whether publishing is active.
func (p *Publisher) Announce() {
	if p.Enabled() {
		p.logger.Info("Session secret publishing enabled",
			zap.String("repository", p.cfg.Repository),
			zap.String("secret", p.cfg.SecretName))
		return
	}
	p.logger.Warn("Session secret publishing disabled, REPO_TOKEN is not set")
}

// Publish finds the GitHub session cookie and uploads it sealed. A missing
// cookie or disabled publishing is not an error.
func (p *Publisher) Publish(ctx context.Context, cookies []schemas.Cookie) (bool, error) {
	cookie, ok := schemas.FindCookie(cookies, SessionCookieName, sessionDomain)
	if !ok || cookie.Value == "" {
		p.logger.Info("No GitHub session cookie found, nothing to publish")
		return false, nil
	}
	p.logger.Info("Captured session cookie", zap.String("user_session", schemas.MaskSecret(cookie.Value)))

	if !p.Enabled() {
		return false, nil
	}
	if p.cfg.SecretName == "" {
		return false, errors.New("secrets.secret_name is empty")
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	key, err := p.store.PublicKey(ctx)
	if err != nil {
		return false, err
	}
	sealed, err := p.sealer.Seal(key.Key, []byte(cookie.Value))
	if err != nil {
		return false, fmt.Errorf("failed to encrypt %s: %w", p.cfg.SecretName, err)
	}
	if err := p.store.PutSecret(ctx, p.cfg.SecretName, key.ID, sealed); err != nil {
		return false, err
	}

	p.logger.Info("Updated repository secret",
		zap.String("repository", p.cfg.Repository),
		zap.String("secret", p.cfg.SecretName))
	return true, nil
}
