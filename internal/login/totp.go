// internal/login/totp.go
package login

import (
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
)

// CodeGenerator produces the one-time code for a second-factor prompt.
type CodeGenerator interface {
	Generate(secret string, at time.Time) (string, error)
}

// TOTPGenerator computes RFC 6238 codes: 30 second step, 6 digits, SHA-1.
type TOTPGenerator struct{}

// Generate returns the code for the time window containing at.
func (TOTPGenerator) Generate(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP code: %w", err)
	}
	return code, nil
}
