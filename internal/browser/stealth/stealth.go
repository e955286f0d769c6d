package stealth

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/clawlogin/api/schemas"
)

//go:embed evasions.js
var EvasionsJS string

// AllocatorFlags are the Chrome switches that remove the obvious automation
// markers (the infobar and the AutomationControlled blink feature).
func AllocatorFlags() []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("enable-automation", false),
	}
}

// PersonaScript returns the bootstrap that exposes persona values to the
// evasions script.
func PersonaScript(p schemas.Persona) (string, error) {
	data, err := json.Marshal(map[string]interface{}{
		"languages": p.Languages,
		"platform":  p.Platform,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode persona: %w", err)
	}
	return fmt.Sprintf("window.__clawPersona = %s;", data), nil
}

// Apply constructs a sequence of Chrome DevTools Protocol actions to make the
// headless browser appear more like a standard, user-operated browser.
func Apply(p schemas.Persona, logger *zap.Logger) chromedp.Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Applying browser stealth persona",
		zap.String("userAgent", p.UserAgent),
		zap.String("platform", p.Platform),
	)

	tasks := chromedp.Tasks{
		emulation.SetUserAgentOverride(p.UserAgent).
			WithAcceptLanguage(strings.Join(p.Languages, ",")).
			WithPlatform(p.Platform),
		chromedp.ActionFunc(func(ctx context.Context) error {
			bootstrap, err := PersonaScript(p)
			if err != nil {
				return err
			}
			if _, err := page.AddScriptToEvaluateOnNewDocument(bootstrap + "\n" + EvasionsJS).Do(ctx); err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),
	}

	if p.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(p.Timezone))
	}
	if p.Locale != "" {
		tasks = append(tasks, emulation.SetLocaleOverride().WithLocale(p.Locale))
	}
	if p.Width > 0 && p.Height > 0 {
		tasks = append(tasks, emulation.SetDeviceMetricsOverride(p.Width, p.Height, 1, false))
	}
	if len(p.Headers) > 0 {
		headers := network.Headers{}
		for k, v := range p.Headers {
			headers[k] = v
		}
		tasks = append(tasks, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	return tasks
}
