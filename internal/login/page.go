// internal/login/page.go
package login

import (
	"context"
	"time"

	"github.com/xkilldash9x/clawlogin/api/schemas"
	"github.com/xkilldash9x/clawlogin/internal/browser/humanoid"
)

// Page is the browser tab the driver works against. session.Session
// satisfies it; tests use an in-memory fake.
type Page interface {
	humanoid.Executor

	Navigate(ctx context.Context, url string) error
	WaitNetworkIdle(ctx context.Context, quietPeriod time.Duration) error
	WaitVisible(ctx context.Context, selector string) error
	URL(ctx context.Context) (string, error)
	WaitURL(ctx context.Context, match func(string) bool) error
	Count(ctx context.Context, selector string) (int, error)
	Text(ctx context.Context) (string, error)
	Cookies(ctx context.Context) ([]schemas.Cookie, error)
	SetCookies(ctx context.Context, cookies []schemas.Cookie) error
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Launcher opens a fresh browser page for one run.
type Launcher func(ctx context.Context) (Page, error)

// CookiePublisher pushes the refreshed session cookie somewhere it can be
// reused by the next run. It reports whether anything was published.
type CookiePublisher interface {
	Publish(ctx context.Context, cookies []schemas.Cookie) (bool, error)
}

// Selectors locate the elements the driver interacts with. A selector
// starting with "/" is XPath, anything else is CSS.
type Selectors struct {
	GitHubButton    string
	Username        string
	Password        string
	Submit          string
	TOTP            string
	AuthorizeButton string
}

// DefaultSelectors match the ClawCloud sign-in page and GitHub's login,
// two-factor and OAuth consent pages.
var DefaultSelectors = Selectors{
	GitHubButton:    "//button[contains(normalize-space(.), 'GitHub')]",
	Username:        "#login_field",
	Password:        "#password",
	Submit:          "input[name='commit']",
	TOTP:            "#app_totp",
	AuthorizeButton: "//button[contains(normalize-space(.), 'Authorize')]",
}
