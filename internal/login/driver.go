// internal/login/driver.go
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/api/schemas"
	"github.com/xkilldash9x/clawlogin/internal/browser/humanoid"
	"github.com/xkilldash9x/clawlogin/internal/config"
)

const (
	sessionCookieName = "user_session"
	githubDomain      = "github.com"
)

// Result summarizes one run for the caller.
type Result struct {
	RunID             string
	Verdict           Verdict
	TwoFactorPrompted bool
	// ScreenshotPath is empty when the screenshot could not be written.
	ScreenshotPath  string
	CookiePublished bool
}

// Driver walks the ClawCloud GitHub login one step at a time. Step failures
// are logged and skipped; only a missing TOTP seed and a failed verdict end
// the run with an error.
type Driver struct {
	cfg        *config.Config
	logger     *zap.Logger
	launch     Launcher
	publisher  CookiePublisher
	classifier *Classifier
	codes      CodeGenerator
	selectors  Selectors
	newPacer   func(humanoid.Executor) humanoid.Controller
	now        func() time.Time
	runID      string
}

// Option customizes a Driver.
type Option func(*Driver)

// WithCodeGenerator replaces the TOTP generator.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(d *Driver) { d.codes = g }
}

// WithPacer replaces the humanoid pacing built from the browser config.
func WithPacer(f func(humanoid.Executor) humanoid.Controller) Option {
	return func(d *Driver) { d.newPacer = f }
}

// WithClock replaces the clock used for TOTP windows.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithSelectors overrides the element selectors.
func WithSelectors(s Selectors) Option {
	return func(d *Driver) { d.selectors = s }
}

// WithRunID sets the identifier reported in the Result.
func WithRunID(id string) Option {
	return func(d *Driver) { d.runID = id }
}

// NewDriver creates a driver. publisher may be nil, in which case the
// refreshed cookie is only logged.
func NewDriver(cfg *config.Config, logger *zap.Logger, launch Launcher, publisher CookiePublisher, opts ...Option) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{
		cfg:        cfg,
		logger:     logger.Named("driver"),
		launch:     launch,
		publisher:  publisher,
		classifier: NewClassifier(cfg.Classifier),
		codes:      TOTPGenerator{},
		selectors:  DefaultSelectors,
		now:        time.Now,
	}
	d.newPacer = func(exec humanoid.Executor) humanoid.Controller {
		return humanoid.New(cfg.Browser.Humanoid, d.logger, exec)
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.runID == "" {
		d.runID = uuid.NewString()
	}
	return d
}

// run carries the per-run state shared by the steps.
type run struct {
	page   Page
	pacer  humanoid.Controller
	result *Result
}

// Run performs the whole login procedure once. The returned Result is
// non-nil whenever a browser was launched.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if err := d.cfg.Login.CheckCredentials(); err != nil {
		d.logger.Error("Credentials are not configured", zap.Error(err))
		return nil, err
	}

	d.logger.Info("Launching browser")
	page, err := d.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			d.logger.Warn("Failed to close browser", zap.Error(cerr))
		}
	}()

	r := &run{
		page:   page,
		pacer:  d.newPacer(page),
		result: &Result{RunID: d.runID},
	}

	steps := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{"seed_session", d.seedSession},
		{"open_target", d.openTarget},
		{"github_button", d.clickGitHub},
		{"credentials", d.submitCredentials},
		{"two_factor", d.solveTwoFactor},
		{"authorize", d.authorize},
		{"final_redirect", d.awaitFinalRedirect},
	}
	for _, step := range steps {
		if err := step.fn(ctx, r); err != nil {
			if errors.Is(err, ErrTwoFactorUnconfigured) {
				d.logger.Error("Aborting run", zap.String("step", step.name), zap.Error(err))
				d.screenshot(ctx, r)
				return r.result, err
			}
			d.logger.Warn("Step failed, continuing", zap.String("step", step.name), zap.Error(err))
		}
		if err := ctx.Err(); err != nil {
			return r.result, fmt.Errorf("run interrupted during %s: %w", step.name, err)
		}
	}

	return d.finish(ctx, r)
}

// withTimeout bounds a single step wait. A zero timeout means no extra bound.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// click clicks selector within the action timeout.
func (d *Driver) click(ctx context.Context, r *run, selector string) error {
	actionCtx, cancel := withTimeout(ctx, d.cfg.Timing.ActionTimeout)
	defer cancel()
	return r.page.Click(actionCtx, selector)
}

// typeInto types text into selector within the action timeout.
func (d *Driver) typeInto(ctx context.Context, r *run, selector, text string, opts *humanoid.TypeOptions) error {
	actionCtx, cancel := withTimeout(ctx, d.cfg.Timing.ActionTimeout)
	defer cancel()
	return r.pacer.Type(actionCtx, selector, text, opts)
}

// present reports whether selector matches at least one element.
func (d *Driver) present(ctx context.Context, r *run, selector string) bool {
	actionCtx, cancel := withTimeout(ctx, d.cfg.Timing.ActionTimeout)
	defer cancel()
	n, err := r.page.Count(actionCtx, selector)
	if err != nil {
		d.logger.Debug("Element lookup failed", zap.String("selector", selector), zap.Error(err))
		return false
	}
	return n > 0
}

func (d *Driver) currentURL(ctx context.Context, r *run) string {
	loc, err := r.page.URL(ctx)
	if err != nil {
		d.logger.Debug("Could not read current URL", zap.Error(err))
		return ""
	}
	return loc
}

func (d *Driver) seedSession(ctx context.Context, r *run) error {
	session := d.cfg.Login.Session
	if session == "" {
		return nil
	}
	cookies := []schemas.Cookie{
		{Name: sessionCookieName, Value: session, Domain: githubDomain, Path: "/"},
		{Name: "logged_in", Value: "yes", Domain: githubDomain, Path: "/"},
	}
	if err := r.page.SetCookies(ctx, cookies); err != nil {
		return fmt.Errorf("failed to seed session cookie: %w", err)
	}
	d.logger.Info("Seeded GitHub session cookie", zap.String("user_session", schemas.MaskSecret(session)))
	return nil
}

func (d *Driver) openTarget(ctx context.Context, r *run) error {
	target := d.cfg.Login.TargetURL
	d.logger.Info("Opening target console", zap.String("url", target))

	navCtx, cancel := withTimeout(ctx, d.cfg.Timing.NavigationTimeout)
	err := r.page.Navigate(navCtx, target)
	cancel()
	if err != nil {
		return err
	}

	idleCtx, cancel := withTimeout(ctx, d.cfg.Timing.NetworkIdleTimeout)
	err = r.page.WaitNetworkIdle(idleCtx, d.cfg.Timing.NetworkQuietPeriod)
	cancel()
	if err != nil {
		d.logger.Debug("Network did not settle", zap.Error(err))
	}
	return r.pacer.Pause(ctx, time.Second, 2*time.Second)
}

func (d *Driver) clickGitHub(ctx context.Context, r *run) error {
	sel := d.selectors.GitHubButton
	waitCtx, cancel := withTimeout(ctx, d.cfg.Timing.ButtonTimeout)
	err := r.page.WaitVisible(waitCtx, sel)
	cancel()
	if err != nil {
		// The seeded cookie may already have signed us in.
		d.logger.Info("GitHub button not found, assuming already signed in", zap.Error(err))
		return nil
	}
	if err := r.pacer.Pause(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
		return err
	}
	if err := d.click(ctx, r, sel); err != nil {
		return fmt.Errorf("failed to click GitHub button: %w", err)
	}
	d.logger.Info("Clicked GitHub button")
	return nil
}

func (d *Driver) submitCredentials(ctx context.Context, r *run) error {
	waitCtx, cancel := withTimeout(ctx, d.cfg.Timing.RedirectTimeout)
	err := r.page.WaitURL(waitCtx, func(u string) bool { return strings.Contains(u, githubDomain) })
	cancel()
	if err != nil {
		d.logger.Info("Did not reach GitHub, skipping credentials", zap.Error(err))
		return nil
	}

	loc := d.currentURL(ctx, r)
	if !strings.Contains(loc, "login") {
		d.logger.Info("GitHub did not ask for a password", zap.String("url", loc))
		return nil
	}

	// OAuth authorize pages also live under /login but carry no form.
	if !d.present(ctx, r, d.selectors.Username) {
		d.logger.Info("No login form on the page", zap.String("url", loc))
		return nil
	}

	d.logger.Info("Entering GitHub credentials")
	if err := r.pacer.Pause(ctx, 500*time.Millisecond, time.Second); err != nil {
		return err
	}
	if err := d.typeInto(ctx, r, d.selectors.Username, d.cfg.Login.Username, nil); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := d.typeInto(ctx, r, d.selectors.Password, d.cfg.Login.Password, nil); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := r.pacer.Pause(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
		return err
	}
	if err := d.click(ctx, r, d.selectors.Submit); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	d.logger.Info("Login form submitted")
	return nil
}

func (d *Driver) solveTwoFactor(ctx context.Context, r *run) error {
	if err := r.page.Sleep(ctx, d.cfg.Timing.PostSubmitSettle); err != nil {
		return err
	}
	if err := r.pacer.Pause(ctx, 0, time.Second); err != nil {
		return err
	}

	loc := d.currentURL(ctx, r)
	hasField := d.present(ctx, r, d.selectors.TOTP)
	prompted := hasField || strings.Contains(loc, "two-factor")
	if !prompted {
		d.logger.Info("No two-factor prompt")
		return nil
	}

	r.result.TwoFactorPrompted = true
	d.logger.Info("Two-factor prompt detected", zap.String("url", loc))
	if d.cfg.Login.TOTPSecret == "" {
		return ErrTwoFactorUnconfigured
	}

	if !hasField {
		return fmt.Errorf("no authenticator code field on %s", loc)
	}

	if err := r.pacer.Pause(ctx, 500*time.Millisecond, time.Second); err != nil {
		return err
	}
	code, err := d.codes.Generate(d.cfg.Login.TOTPSecret, d.now())
	if err != nil {
		return err
	}
	d.logger.Info("Submitting TOTP code")
	opts := &humanoid.TypeOptions{KeyDelay: humanoid.MillisRange(100, 200)}
	if err := d.typeInto(ctx, r, d.selectors.TOTP, code, opts); err != nil {
		return fmt.Errorf("failed to enter TOTP code: %w", err)
	}
	return nil
}

func (d *Driver) authorize(ctx context.Context, r *run) error {
	if err := r.page.Sleep(ctx, d.cfg.Timing.AuthorizeSettle); err != nil {
		return err
	}
	loc := d.currentURL(ctx, r)
	if !strings.Contains(strings.ToLower(loc), "authorize") {
		return nil
	}

	d.logger.Info("Authorization consent requested", zap.String("url", loc))
	clickCtx, cancel := withTimeout(ctx, d.cfg.Timing.AuthorizeTimeout)
	defer cancel()
	if err := r.page.Click(clickCtx, d.selectors.AuthorizeButton); err != nil {
		d.logger.Info("Authorize button not clicked", zap.Error(err))
		return nil
	}
	d.logger.Info("Authorized application")
	return nil
}

func (d *Driver) awaitFinalRedirect(ctx context.Context, r *run) error {
	d.logger.Info("Waiting for redirect back to the console", zap.Duration("wait", d.cfg.Timing.FinalRedirectWait))
	return r.page.Sleep(ctx, d.cfg.Timing.FinalRedirectWait)
}

// finish classifies, captures the screenshot and publishes the cookie. All
// three run regardless of outcome.
func (d *Driver) finish(ctx context.Context, r *run) (*Result, error) {
	loc := d.currentURL(ctx, r)
	d.logger.Info("Final page", zap.String("url", loc))

	text, err := r.page.Text(ctx)
	if err != nil {
		d.logger.Warn("Could not read page text", zap.Error(err))
	}
	verdict := d.classifier.Classify(text, loc)
	r.result.Verdict = verdict

	switch {
	case verdict.Rule.Weak():
		d.logger.Warn("Login classified as success by URL fallback only",
			zap.String("rule", string(verdict.Rule)), zap.String("url", loc))
	case verdict.Success:
		d.logger.Info("Login classified as success", zap.String("rule", string(verdict.Rule)))
	default:
		d.logger.Error("Login not confirmed", zap.String("rule", string(verdict.Rule)), zap.String("url", loc))
	}

	d.screenshot(ctx, r)
	d.publish(ctx, r)

	if !verdict.Success {
		return r.result, ErrLoginFailed
	}
	return r.result, nil
}

func (d *Driver) screenshot(ctx context.Context, r *run) {
	path := d.cfg.Login.ScreenshotPath
	shotCtx, cancel := withTimeout(ctx, d.cfg.Timing.ScreenshotTimeout)
	defer cancel()
	if err := r.page.Screenshot(shotCtx, path); err != nil {
		d.logger.Warn("Failed to save screenshot", zap.Error(err))
		return
	}
	r.result.ScreenshotPath = path
	d.logger.Info("Saved screenshot", zap.String("path", path))
}

func (d *Driver) publish(ctx context.Context, r *run) {
	cookies, err := r.page.Cookies(ctx)
	if err != nil {
		d.logger.Warn("Failed to read cookies", zap.Error(err))
		return
	}
	if d.publisher == nil {
		if c, ok := schemas.FindCookie(cookies, sessionCookieName, "github"); ok {
			d.logger.Info("Refreshed session cookie", zap.String("user_session", schemas.MaskSecret(c.Value)))
		}
		return
	}
	published, err := d.publisher.Publish(ctx, cookies)
	if err != nil {
		d.logger.Warn("Failed to publish session cookie", zap.Error(err))
		return
	}
	r.result.CookiePublished = published
}
