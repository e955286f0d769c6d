// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/clawlogin/internal/browser/humanoid"
)

// DefaultRepository is used for secret publishing when GITHUB_REPOSITORY is unset.
const DefaultRepository = "yeye296/auto-login-clawcloud"

// ErrMissingCredentials is returned when the GitHub username or password is empty.
var ErrMissingCredentials = errors.New("GH_USERNAME and GH_PASSWORD must both be set")

// ErrInvalidRepository is returned when the repository identifier is not "owner/name".
var ErrInvalidRepository = errors.New("repository must be in the form owner/name")

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Login      LoginConfig      `mapstructure:"login" yaml:"login"`
	Timing     TimingConfig     `mapstructure:"timing" yaml:"timing"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Secrets    SecretsConfig    `mapstructure:"secrets" yaml:"secrets"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless   bool            `mapstructure:"headless" yaml:"headless"`
	ExecPath   string          `mapstructure:"exec_path" yaml:"exec_path"`
	Args       []string        `mapstructure:"args" yaml:"args"`
	Viewport   ViewportConfig  `mapstructure:"viewport" yaml:"viewport"`
	UserAgents []string        `mapstructure:"user_agents" yaml:"user_agents"`
	Humanoid   humanoid.Config `mapstructure:"humanoid" yaml:"humanoid"`
}

// ViewportConfig is the fixed window size of the browser.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// LoginConfig carries the target and the credentials for one run.
// Credentials come from the environment and are never written back to disk.
type LoginConfig struct {
	TargetURL      string `mapstructure:"target_url" yaml:"target_url"`
	Username       string `mapstructure:"username" yaml:"-"`
	Password       string `mapstructure:"password" yaml:"-"`
	TOTPSecret     string `mapstructure:"totp_secret" yaml:"-"`
	Session        string `mapstructure:"session" yaml:"-"`
	ScreenshotPath string `mapstructure:"screenshot_path" yaml:"screenshot_path"`
}

// CheckCredentials reports ErrMissingCredentials unless both the username and
// the password are present.
func (l LoginConfig) CheckCredentials() error {
	if strings.TrimSpace(l.Username) == "" || l.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// TimingConfig bounds every wait in the login procedure.
type TimingConfig struct {
	NavigationTimeout  time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	NetworkIdleTimeout time.Duration `mapstructure:"network_idle_timeout" yaml:"network_idle_timeout"`
	NetworkQuietPeriod time.Duration `mapstructure:"network_quiet_period" yaml:"network_quiet_period"`
	ButtonTimeout      time.Duration `mapstructure:"button_timeout" yaml:"button_timeout"`
	// ActionTimeout bounds each click, keystroke batch and element lookup.
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	RedirectTimeout   time.Duration `mapstructure:"redirect_timeout" yaml:"redirect_timeout"`
	PostSubmitSettle  time.Duration `mapstructure:"post_submit_settle" yaml:"post_submit_settle"`
	AuthorizeTimeout  time.Duration `mapstructure:"authorize_timeout" yaml:"authorize_timeout"`
	AuthorizeSettle   time.Duration `mapstructure:"authorize_settle" yaml:"authorize_settle"`
	FinalRedirectWait time.Duration `mapstructure:"final_redirect_wait" yaml:"final_redirect_wait"`
	ScreenshotTimeout time.Duration `mapstructure:"screenshot_timeout" yaml:"screenshot_timeout"`
}

// ClassifierConfig lists the markers used to decide whether the run succeeded.
type ClassifierConfig struct {
	ConsoleMarkers      []string `mapstructure:"console_markers" yaml:"console_markers"`
	ConsoleURLFragments []string `mapstructure:"console_url_fragments" yaml:"console_url_fragments"`
	LoginURLMarkers     []string `mapstructure:"login_url_markers" yaml:"login_url_markers"`
	// AllowURLFallback enables the weak "left the login flow" rule.
	AllowURLFallback bool `mapstructure:"allow_url_fallback" yaml:"allow_url_fallback"`
}

// SecretsConfig defines where the refreshed session cookie is published.
type SecretsConfig struct {
	Token      string        `mapstructure:"token" yaml:"-"`
	Repository string        `mapstructure:"repository" yaml:"repository"`
	SecretName string        `mapstructure:"secret_name" yaml:"secret_name"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Enabled reports whether both a token and a repository are configured.
func (s SecretsConfig) Enabled() bool {
	return s.Token != "" && s.Repository != ""
}

// OwnerRepo splits Repository into its owner and name.
func (s SecretsConfig) OwnerRepo() (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(s.Repository), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, s.Repository)
	}
	return parts[0], parts[1], nil
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "clawlogin")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.args", []string{
		"no-sandbox",
		"disable-infobars",
	})
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)
	v.SetDefault("browser.user_agents", []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
	})
	setHumanoidDefaults(v)

	// -- Login --
	v.SetDefault("login.target_url", "https://ap-northeast-1.run.claw.cloud/")
	v.SetDefault("login.screenshot_path", "login_result.png")

	// -- Timing --
	v.SetDefault("timing.navigation_timeout", "60s")
	v.SetDefault("timing.network_idle_timeout", "30s")
	v.SetDefault("timing.network_quiet_period", "500ms")
	v.SetDefault("timing.button_timeout", "10s")
	v.SetDefault("timing.action_timeout", "30s")
	v.SetDefault("timing.redirect_timeout", "15s")
	v.SetDefault("timing.post_submit_settle", "2500ms")
	v.SetDefault("timing.authorize_timeout", "5s")
	v.SetDefault("timing.authorize_settle", "3s")
	v.SetDefault("timing.final_redirect_wait", "30s")
	v.SetDefault("timing.screenshot_timeout", "30s")

	// -- Classifier --
	v.SetDefault("classifier.console_markers", []string{"App Launchpad", "Devbox"})
	v.SetDefault("classifier.console_url_fragments", []string{"private-team", "console"})
	v.SetDefault("classifier.login_url_markers", []string{"signin", "github.com"})
	v.SetDefault("classifier.allow_url_fallback", true)

	// -- Secrets --
	v.SetDefault("secrets.repository", DefaultRepository)
	v.SetDefault("secrets.secret_name", "GH_SESSION")
	v.SetDefault("secrets.timeout", "30s")
}

// BindEnvironment maps the well-known environment variables onto config keys.
func BindEnvironment(v *viper.Viper) error {
	bindings := map[string]string{
		"login.username":     "GH_USERNAME",
		"login.password":     "GH_PASSWORD",
		"login.totp_secret":  "GH_2FA_SECRET",
		"login.session":      "GH_SESSION",
		"secrets.token":      "REPO_TOKEN",
		"secrets.repository": "GITHUB_REPOSITORY",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", env, key, err)
		}
	}
	return nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	if err := BindEnvironment(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Login.Session = strings.TrimSpace(cfg.Login.Session)
	cfg.Login.TOTPSecret = strings.ReplaceAll(strings.TrimSpace(cfg.Login.TOTPSecret), " ", "")
	if cfg.Secrets.Repository == "" {
		cfg.Secrets.Repository = DefaultRepository
	}

	var err error
	if cfg.Login.ScreenshotPath, err = homedir.Expand(cfg.Login.ScreenshotPath); err != nil {
		return nil, fmt.Errorf("invalid screenshot path: %w", err)
	}
	if cfg.Logger.LogFile, err = homedir.Expand(cfg.Logger.LogFile); err != nil {
		return nil, fmt.Errorf("invalid log file path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values. Credentials are checked
// by the login driver so a missing username is reported as a run failure.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Login.TargetURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("login.target_url must be an absolute URL, got %q", c.Login.TargetURL)
	}
	if c.Login.ScreenshotPath == "" {
		return fmt.Errorf("login.screenshot_path is required")
	}
	if c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport width and height must be positive integers")
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("timing configuration invalid: %w", err)
	}
	if err := c.Browser.Humanoid.Validate(); err != nil {
		return fmt.Errorf("browser.humanoid configuration invalid: %w", err)
	}
	// Secrets are not checked here: a bad repository only disables publishing.
	return nil
}

// Validate checks that no wait is negative.
func (t TimingConfig) Validate() error {
	durations := map[string]time.Duration{
		"navigation_timeout":   t.NavigationTimeout,
		"network_idle_timeout": t.NetworkIdleTimeout,
		"network_quiet_period": t.NetworkQuietPeriod,
		"button_timeout":       t.ButtonTimeout,
		"action_timeout":       t.ActionTimeout,
		"redirect_timeout":     t.RedirectTimeout,
		"post_submit_settle":   t.PostSubmitSettle,
		"authorize_timeout":    t.AuthorizeTimeout,
		"authorize_settle":     t.AuthorizeSettle,
		"final_redirect_wait":  t.FinalRedirectWait,
		"screenshot_timeout":   t.ScreenshotTimeout,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if t.ActionTimeout == 0 {
		return fmt.Errorf("action_timeout must be positive")
	}
	return nil
}
