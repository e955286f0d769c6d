// internal/browser/session/session.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/api/schemas"
	"github.com/xkilldash9x/clawlogin/internal/browser/stealth"
)

const urlPollInterval = 100 * time.Millisecond

// Options configures the browser process and the persona it presents.
type Options struct {
	Headless bool
	ExecPath string
	// Args are extra Chrome switches, either "name" or "name=value".
	Args    []string
	Persona schemas.Persona
}

// Session owns one Chrome process and the single tab driven through it.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	tracker   *NetworkTracker
	closeOnce sync.Once
}

// New launches Chrome, applies the stealth persona and returns a ready session.
// The browser lives until Close is called or parent is canceled.
func New(parent context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	log := logger.Named("session").With(zap.String("session_id", id))

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocatorOptions(opts)...)
	sugar := log.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Warnf),
	)

	s := &Session{
		id:     id,
		ctx:    tabCtx,
		logger: log,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		tracker: NewNetworkTracker(log),
	}

	s.tracker.Listen(tabCtx)

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx, network.Enable(), stealth.Apply(opts.Persona, log)); err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	log.Info("Browser session started",
		zap.Bool("headless", opts.Headless),
		zap.Int64("width", opts.Persona.Width),
		zap.Int64("height", opts.Persona.Height),
	)
	return s, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.Persona.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.Persona.UserAgent))
	}
	if opts.Persona.Width > 0 && opts.Persona.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(int(opts.Persona.Width), int(opts.Persona.Height)))
	}
	allocOpts = append(allocOpts, stealth.AllocatorFlags()...)
	for _, arg := range opts.Args {
		name, value := parseFlag(arg)
		if name == "" {
			continue
		}
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	return allocOpts
}

// parseFlag turns "--name=value" into a chromedp flag pair. A bare name is a
// boolean switch.
func parseFlag(arg string) (string, interface{}) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// RunActions executes chromedp actions on the session tab, bounded by ctx.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads targetURL and waits for the load event.
func (s *Session) Navigate(ctx context.Context, targetURL string) error {
	s.logger.Debug("Navigating", zap.String("url", targetURL))
	if err := s.RunActions(ctx, chromedp.Navigate(targetURL)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", targetURL, err)
	}
	return nil
}

// WaitNetworkIdle blocks until no request has been in flight for quietPeriod.
func (s *Session) WaitNetworkIdle(ctx context.Context, quietPeriod time.Duration) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return s.tracker.WaitIdle(runCtx, quietPeriod)
}

// WaitVisible waits until selector matches a visible element.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.RunActions(ctx, chromedp.WaitVisible(selector, queryOption(selector)))
}

// Click clicks the first visible element matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.RunActions(ctx, chromedp.Click(selector, queryOption(selector), chromedp.NodeVisible))
}

// SendKeys dispatches key events to the focused element.
func (s *Session) SendKeys(ctx context.Context, keys string) error {
	return s.RunActions(ctx, chromedp.KeyEvent(keys))
}

// Sleep pauses for d or until ctx or the session ends.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return s.RunActions(ctx, chromedp.Sleep(d))
}

// URL returns the location of the current document.
func (s *Session) URL(ctx context.Context) (string, error) {
	var loc string
	if err := s.RunActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return loc, nil
}

// WaitURL polls the current location until match reports true or ctx expires.
func (s *Session) WaitURL(ctx context.Context, match func(string) bool) error {
	ticker := time.NewTicker(urlPollInterval)
	defer ticker.Stop()
	for {
		loc, err := s.URL(ctx)
		if err == nil && match(loc) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for URL (last %q): %w", loc, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Count returns the number of elements matching selector without waiting.
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	var n int
	if err := s.RunActions(ctx, chromedp.Evaluate(countScript(selector), &n)); err != nil {
		return 0, fmt.Errorf("failed to count %q: %w", selector, err)
	}
	return n, nil
}

// Text returns the rendered text of the document body.
func (s *Session) Text(ctx context.Context) (string, error) {
	var text string
	if err := s.RunActions(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text)); err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	return text, nil
}

// Cookies returns every cookie in the browser, across all domains.
func (s *Session) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	var raw []*network.Cookie
	err := s.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	cookies := make([]schemas.Cookie, 0, len(raw))
	for _, c := range raw {
		if c == nil {
			continue
		}
		cookies = append(cookies, fromCDPCookie(c))
	}
	return cookies, nil
}

// SetCookies writes cookies into the browser before or during navigation.
func (s *Session) SetCookies(ctx context.Context, cookies []schemas.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, toCDPCookie(c))
	}
	if err := s.RunActions(ctx, network.SetCookies(params)); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// Screenshot captures the full page as PNG and writes it to path.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.RunActions(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	s.logger.Debug("Screenshot written", zap.String("path", path), zap.Int("bytes", len(buf)))
	return nil
}

// Close tears down the tab and the browser process. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session")
		s.cancel()
	})
	return nil
}

// isXPath reports whether selector should be resolved with document.evaluate.
func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(")
}

func queryOption(selector string) chromedp.QueryOption {
	if isXPath(selector) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func countScript(selector string) string {
	raw, _ := json.Marshal(selector)
	quoted := string(raw)
	if isXPath(selector) {
		return fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength`, quoted)
	}
	return fmt.Sprintf(`document.querySelectorAll(%s).length`, quoted)
}

func fromCDPCookie(c *network.Cookie) schemas.Cookie {
	return schemas.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
	}
}

func toCDPCookie(c schemas.Cookie) *network.CookieParam {
	path := c.Path
	if path == "" {
		path = "/"
	}
	p := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     path,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
	}
	if c.Expires > 0 {
		expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
		p.Expires = &expires
	}
	return p
}
