// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/api/schemas"
	"github.com/xkilldash9x/clawlogin/internal/config"
	"github.com/xkilldash9x/clawlogin/internal/login"
	"github.com/xkilldash9x/clawlogin/internal/observability"
	"github.com/xkilldash9x/clawlogin/internal/secrets"
)

var credentialEnv = []string{
	"GH_USERNAME", "GH_PASSWORD", "GH_2FA_SECRET", "GH_SESSION", "REPO_TOKEN", "GITHUB_REPOSITORY",
}

// resetForTest clears process state shared between command runs: the
// credential environment, the global logger and the injected factories.
func resetForTest(t *testing.T) {
	t.Helper()
	for _, key := range credentialEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	observability.ResetForTest()

	origLauncher, origStore := newLauncher, newSecretStore
	t.Cleanup(func() {
		newLauncher, newSecretStore = origLauncher, origStore
		observability.ResetForTest()
	})
	t.Chdir(t.TempDir())
}

// stubPage is a browser that is already on the final page.
type stubPage struct {
	url         string
	text        string
	cookies     []schemas.Cookie
	navigations []string
	screenshots []string
	closed      bool
}

func (p *stubPage) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }
func (p *stubPage) Click(ctx context.Context, selector string) error { return context.DeadlineExceeded }
func (p *stubPage) SendKeys(ctx context.Context, keys string) error  { return nil }
func (p *stubPage) WaitVisible(ctx context.Context, sel string) error {
	return context.DeadlineExceeded
}
func (p *stubPage) URL(ctx context.Context) (string, error)                  { return p.url, nil }
func (p *stubPage) Count(ctx context.Context, sel string) (int, error)       { return 0, nil }
func (p *stubPage) Text(ctx context.Context) (string, error)                 { return p.text, nil }
func (p *stubPage) SetCookies(ctx context.Context, _ []schemas.Cookie) error { return nil }
func (p *stubPage) Close() error                                             { p.closed = true; return nil }

func (p *stubPage) Navigate(ctx context.Context, url string) error {
	p.navigations = append(p.navigations, url)
	return nil
}

func (p *stubPage) WaitNetworkIdle(ctx context.Context, quiet time.Duration) error { return nil }

func (p *stubPage) WaitURL(ctx context.Context, match func(string) bool) error {
	if match(p.url) {
		return nil
	}
	return context.DeadlineExceeded
}

func (p *stubPage) Cookies(ctx context.Context) ([]schemas.Cookie, error) { return p.cookies, nil }

func (p *stubPage) Screenshot(ctx context.Context, path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}

// useStubPage routes the run command to page and counts launches.
func useStubPage(page *stubPage) *int {
	launches := 0
	newLauncher = func(cfg *config.Config, logger *zap.Logger) login.Launcher {
		return func(ctx context.Context) (login.Page, error) {
			launches++
			return page, nil
		}
	}
	return &launches
}

type recordingStore struct {
	cfg  config.SecretsConfig
	key  secrets.PublicKey
	puts map[string]string
}

func (s *recordingStore) PublicKey(ctx context.Context) (secrets.PublicKey, error) {
	return s.key, nil
}

func (s *recordingStore) PutSecret(ctx context.Context, name, keyID, value string) error {
	s.puts[name] = keyID + ":" + value
	return nil
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Each run binds the logger to its own output buffer.
	observability.ResetForTest()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	observability.Sync()
	return out.String(), err
}
