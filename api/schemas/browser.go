package schemas

import "strings"

// -- Browser Persona Schemas --

// Persona encapsulates the properties for a consistent browser fingerprint.
type Persona struct {
	UserAgent string            `json:"userAgent"`
	Platform  string            `json:"platform"`
	Languages []string          `json:"languages"`
	Width     int64             `json:"width"`
	Height    int64             `json:"height"`
	Timezone  string            `json:"timezoneId"`
	Locale    string            `json:"locale"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// DefaultPersona provides a fallback persona if none is specified.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36",
	Platform:  "Win32",
	Languages: []string{"en-US", "en"},
	Width:     1920,
	Height:    1080,
	Timezone:  "America/Los_Angeles",
	Locale:    "en-US",
	Headers: map[string]string{
		"Accept-Language": "en-US,en;q=0.9",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	},
}

// -- Cookie Schemas --

// Cookie represents a browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// FindCookie returns the first cookie called name whose domain contains
// domainFragment. An empty fragment matches any domain.
func FindCookie(cookies []Cookie, name, domainFragment string) (Cookie, bool) {
	for _, c := range cookies {
		if c.Name != name {
			continue
		}
		if domainFragment == "" || strings.Contains(c.Domain, domainFragment) {
			return c, true
		}
	}
	return Cookie{}, false
}

// MaskSecret shortens a credential for logging, keeping a recognizable
// prefix and suffix.
func MaskSecret(value string) string {
	const head, tail = 15, 8
	if len(value) <= head+tail {
		if len(value) <= 4 {
			return "****"
		}
		return value[:2] + "..." + value[len(value)-2:]
	}
	return value[:head] + "..." + value[len(value)-tail:]
}
