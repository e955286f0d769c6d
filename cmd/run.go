// File: cmd/run.go
package cmd

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/internal/config"
	"github.com/xkilldash9x/clawlogin/internal/login"
	"github.com/xkilldash9x/clawlogin/internal/observability"
	"github.com/xkilldash9x/clawlogin/internal/secrets"
)

// Overridable in tests.
var (
	newLauncher = func(cfg *config.Config, logger *zap.Logger) login.Launcher {
		return login.ChromeLauncher(cfg.Browser, logger, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	newSecretStore = func(cfg config.SecretsConfig) (secrets.Store, error) {
		return secrets.NewGitHubStore(cfg)
	}
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sign in once, save a screenshot and republish the GitHub session",
		Args:  cobra.NoArgs,
		RunE:  runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := observability.ForRun(runID)

	var store secrets.Store
	if cfg.Secrets.Enabled() {
		s, err := newSecretStore(cfg.Secrets)
		if err != nil {
			logger.Warn("Secret store unavailable, the session will not be published", zap.Error(err))
		} else {
			store = s
		}
	}
	publisher := secrets.NewPublisher(cfg.Secrets, store, secrets.BoxSealer{}, logger)
	publisher.Announce()

	driver := login.NewDriver(cfg, logger, newLauncher(cfg, logger), publisher, login.WithRunID(runID))
	res, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("Login succeeded",
		zap.String("rule", string(res.Verdict.Rule)),
		zap.String("url", res.Verdict.URL),
		zap.String("screenshot", res.ScreenshotPath),
		zap.Bool("session_published", res.CookiePublished),
	)
	return nil
}
