// internal/login/errors.go
package login

import "errors"

var (
	// ErrTwoFactorUnconfigured means GitHub asked for a TOTP code but no seed is configured.
	ErrTwoFactorUnconfigured = errors.New("two-factor authentication requested but GH_2FA_SECRET is not set")
	// ErrLoginFailed means the run finished but the outcome was not classified as success.
	ErrLoginFailed = errors.New("login was not confirmed")
)
