package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - database.go: Postgres and Redis configuration
//   - http.go: HTTP server configuration
//   - api.go: Backend REST API configuration
//   - mail.go: Outbox and mail transport configuration
//   - ui.go: Page tuning
//   - modes.go: Service modes
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, asset
	// caching, detailed error pages).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	API  APIConfig  `envPrefix:"API_"`
	Mail MailConfig `envPrefix:"MAIL_"`
	UI   UIConfig   `envPrefix:"UI_"`

	// Services is a comma-separated list of the processes to run.
	Services string `env:"SERVICES" envDefault:"http,mail-worker"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.API.Sanitize()
	c.Mail.Sanitize()
	c.UI.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// Validate reports settings that cannot work together. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if _, err := c.GetEnabledServices(); err != nil {
		errs = append(errs, err)
	}
	if err := c.HTTP.ValidateCookieDomain(); err != nil {
		errs = append(errs, err)
	}
	if c.IsHTTPServerEnabled() && c.API.BaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required for the http service"))
	}
	if c.IsMailWorkerEnabled() {
		if err := c.Mail.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Auth.Mode == AuthModeMock && !c.IsDev {
		errs = append(errs, fmt.Errorf("AUTH_MODE=%s is only allowed with DEV=true", AuthModeMock))
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsMailWorkerEnabled returns true if the outbox worker is enabled.
func (c *AppConfig) IsMailWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeMailWorker]
}
