// internal/login/classifier.go
package login

import (
	"strings"

	"github.com/xkilldash9x/clawlogin/internal/config"
)

// Rule names the classifier heuristic that decided a verdict.
type Rule string

const (
	// RuleConsoleMarker fires when the page shows text only the logged-in console renders.
	RuleConsoleMarker Rule = "console_marker"
	// RuleConsoleURL fires when the final URL contains a console path fragment.
	RuleConsoleURL Rule = "console_url"
	// RuleLeftLoginFlow is the weak fallback: the URL carries no sign-in or
	// GitHub marker. It produces false positives on any unauthenticated page
	// that also lacks those markers.
	RuleLeftLoginFlow Rule = "left_login_flow"
	// RuleNone means no heuristic matched.
	RuleNone Rule = "none"
)

// Weak reports whether the rule is a heuristic fallback rather than a positive signal.
func (r Rule) Weak() bool {
	return r == RuleLeftLoginFlow
}

// Verdict is the outcome of one run.
type Verdict struct {
	Success bool
	Rule    Rule
	URL     string
}

// Classifier evaluates its rules in order; the first match wins.
type Classifier struct {
	cfg config.ClassifierConfig
}

// NewClassifier creates a classifier from the configured marker lists.
func NewClassifier(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify decides the outcome from the rendered page text and the final URL.
func (c *Classifier) Classify(pageText, url string) Verdict {
	lowerText := strings.ToLower(pageText)
	for _, marker := range c.cfg.ConsoleMarkers {
		if marker != "" && strings.Contains(lowerText, strings.ToLower(marker)) {
			return Verdict{Success: true, Rule: RuleConsoleMarker, URL: url}
		}
	}
	if containsAny(url, c.cfg.ConsoleURLFragments) {
		return Verdict{Success: true, Rule: RuleConsoleURL, URL: url}
	}
	if c.cfg.AllowURLFallback && url != "" && !containsAny(url, c.cfg.LoginURLMarkers) {
		return Verdict{Success: true, Rule: RuleLeftLoginFlow, URL: url}
	}
	return Verdict{Success: false, Rule: RuleNone, URL: url}
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			return true
		}
	}
	return false
}
