package config

import (
	"strings"
	"time"
)

// APIConfig points the admin at the backend REST API.
type APIConfig struct {
	// BaseURL is the API root; resource paths such as "api/properties" are
	// resolved against it.
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`
	// StaticToken is sent when the login provider issues no access token
	// (dev auth, or an API that trusts a shared service token).
	StaticToken string `env:"STATIC_TOKEN"`
	UserAgent   string `env:"USER_AGENT"   envDefault:"realty-admin"`
}

// Sanitize normalises the base URL and timeout.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	c.StaticToken = strings.TrimSpace(c.StaticToken)
}
