// internal/login/classifier_test.go
package login

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/clawlogin/internal/config"
)

func TestClassifier(t *testing.T) {
	c := NewClassifier(config.NewDefaultConfig().Classifier)

	tests := []struct {
		name    string
		text    string
		url     string
		success bool
		rule    Rule
	}{
		{"marker wins regardless of url", "App Launchpad", "https://github.com/login", true, RuleConsoleMarker},
		{"second marker", "Open your devbox", "https://github.com/sessions/two-factor", true, RuleConsoleMarker},
		{"console url without marker", "Loading...", "https://ap-northeast-1.run.claw.cloud/private-team/home", true, RuleConsoleURL},
		{"console path fragment", "", "https://console.run.claw.cloud/", true, RuleConsoleURL},
		{"still on github", "Sign in to GitHub", "https://github.com/login", false, RuleNone},
		{"still on sign-in page", "", "https://ap-northeast-1.run.claw.cloud/signin", false, RuleNone},
		{"left the login flow", "", "https://ap-northeast-1.run.claw.cloud/", true, RuleLeftLoginFlow},
		{"unknown url", "", "", false, RuleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.text, tt.url)
			assert.Equal(t, tt.success, v.Success)
			assert.Equal(t, tt.rule, v.Rule)
			assert.Equal(t, tt.url, v.URL)
		})
	}
}

func TestClassifier_FallbackDisabled(t *testing.T) {
	cfg := config.NewDefaultConfig().Classifier
	cfg.AllowURLFallback = false
	v := NewClassifier(cfg).Classify("", "https://ap-northeast-1.run.claw.cloud/")
	assert.False(t, v.Success)
	assert.Equal(t, RuleNone, v.Rule)
}

func TestRuleWeak(t *testing.T) {
	assert.True(t, RuleLeftLoginFlow.Weak())
	assert.False(t, RuleConsoleMarker.Weak())
	assert.False(t, RuleConsoleURL.Weak())
	assert.False(t, RuleNone.Weak())
}
