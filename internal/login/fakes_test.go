// internal/login/fakes_test.go
package login

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xkilldash9x/clawlogin/api/schemas"
)

// fakePage is an in-memory Page. Hooks keyed by "click:<selector>" or
// "keys:<selector>" simulate the site reacting to input.
type fakePage struct {
	mu sync.Mutex

	url     string
	text    string
	visible map[string]bool
	present map[string]int
	cookies []schemas.Cookie
	hooks   map[string]func(p *fakePage)

	// blockOnMissing makes Click on an absent element wait for the context,
	// the way chromedp polls for a selector.
	blockOnMissing bool

	setCookiesErr error
	screenshotErr error
	cookiesErr    error

	navigations []string
	clicks      []string
	focused     string
	typed       map[string]string
	sendKeys    map[string]int
	seeded      []schemas.Cookie
	sleeps      []time.Duration
	screenshots []string
	calls       []string
	closed      bool
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:      url,
		visible:  make(map[string]bool),
		present:  make(map[string]int),
		hooks:    make(map[string]func(p *fakePage)),
		typed:    make(map[string]string),
		sendKeys: make(map[string]int),
	}
}

func (p *fakePage) record(call string) {
	p.calls = append(p.calls, call)
}

func (p *fakePage) fire(key string) {
	if hook, ok := p.hooks[key]; ok {
		hook(p)
	}
}

func (p *fakePage) Sleep(ctx context.Context, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("sleep")
	p.sleeps = append(p.sleeps, d)
	return ctx.Err()
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	p.record("click:" + selector)
	if !p.visible[selector] && p.present[selector] == 0 {
		block := p.blockOnMissing
		p.mu.Unlock()
		if block {
			<-ctx.Done()
			return fmt.Errorf("waiting for %q: %w", selector, ctx.Err())
		}
		return fmt.Errorf("no element matches %q", selector)
	}
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, selector)
	p.focused = selector
	p.fire("click:" + selector)
	return nil
}

func (p *fakePage) SendKeys(ctx context.Context, keys string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("keys")
	if p.focused == "" {
		return errors.New("nothing focused")
	}
	p.typed[p.focused] += keys
	p.sendKeys[p.focused]++
	p.fire("keys:" + p.focused)
	return nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate")
	p.navigations = append(p.navigations, url)
	return nil
}

func (p *fakePage) WaitNetworkIdle(ctx context.Context, quietPeriod time.Duration) error {
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible[selector] {
		return fmt.Errorf("waiting for %q: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *fakePage) WaitURL(ctx context.Context, match func(string) bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !match(p.url) {
		return fmt.Errorf("url %q: %w", p.url, context.DeadlineExceeded)
	}
	return nil
}

func (p *fakePage) Count(ctx context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.present[selector], nil
}

func (p *fakePage) Text(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text, nil
}

func (p *fakePage) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("cookies")
	if p.cookiesErr != nil {
		return nil, p.cookiesErr
	}
	return append(append([]schemas.Cookie{}, p.seeded...), p.cookies...), nil
}

func (p *fakePage) SetCookies(ctx context.Context, cookies []schemas.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("set_cookies")
	if p.setCookiesErr != nil {
		return p.setCookiesErr
	}
	p.seeded = append(p.seeded, cookies...)
	return nil
}

func (p *fakePage) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("screenshot")
	if p.screenshotErr != nil {
		return p.screenshotErr
	}
	p.screenshots = append(p.screenshots, path)
	return nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// show makes selector both visible and countable.
func (p *fakePage) show(selectors ...string) {
	for _, s := range selectors {
		p.visible[s] = true
		p.present[s] = 1
	}
}

// hide removes selector from the page.
func (p *fakePage) hide(selectors ...string) {
	for _, s := range selectors {
		delete(p.visible, s)
		delete(p.present, s)
	}
}

type fakePublisher struct {
	calls   int
	cookies []schemas.Cookie
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, cookies []schemas.Cookie) (bool, error) {
	f.calls++
	f.cookies = cookies
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

type fixedCode struct {
	code    string
	secrets []string
}

func (f *fixedCode) Generate(secret string, at time.Time) (string, error) {
	f.secrets = append(f.secrets, secret)
	return f.code, nil
}
