package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/clawlogin/api/schemas"
)

func TestFindCookie(t *testing.T) {
	t.Parallel()
	jar := []schemas.Cookie{
		{Name: "user_session", Value: "other-site", Domain: "example.com"},
		{Name: "logged_in", Value: "yes", Domain: "github.com"},
		{Name: "user_session", Value: "abc", Domain: ".github.com"},
	}

	t.Run("matches name and domain fragment", func(t *testing.T) {
		c, ok := schemas.FindCookie(jar, "user_session", "github")
		assert.True(t, ok)
		assert.Equal(t, "abc", c.Value)
	})

	t.Run("empty fragment takes first by name", func(t *testing.T) {
		c, ok := schemas.FindCookie(jar, "user_session", "")
		assert.True(t, ok)
		assert.Equal(t, "other-site", c.Value)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := schemas.FindCookie(jar, "_gh_sess", "github")
		assert.False(t, ok)
		_, ok = schemas.FindCookie(nil, "user_session", "github")
		assert.False(t, ok)
	})
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"long value keeps head and tail", "abcdefghijklmnopqrstuvwxyz0123456789", "abcdefghijklmno...23456789"},
		{"medium value", "abcdefghij", "ab...ij"},
		{"tiny value fully hidden", "abc", "****"},
		{"empty", "", "****"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, schemas.MaskSecret(tc.input))
		})
	}
}

func TestDefaultPersona(t *testing.T) {
	t.Parallel()
	p := schemas.DefaultPersona
	assert.Equal(t, int64(1920), p.Width)
	assert.Equal(t, int64(1080), p.Height)
	assert.Len(t, p.Languages, 2)
	assert.Contains(t, p.Headers, "Accept-Language")
}
