package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - mail-worker",
			input:    "mail-worker",
			expected: map[ServiceMode]bool{ServiceModeMailWorker: true},
		},
		{
			name:     "both with spaces and case",
			input:    " HTTP , mail-worker ",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeMailWorker: true},
		},
		{
			name:     "duplicates and empty parts",
			input:    "http,,http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{name: "empty string", input: "", expectError: true},
		{name: "only commas", input: " , ,", expectError: true},
		{name: "unknown service", input: "http,scheduler", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	cfg := AppConfig{Services: "mail-worker"}
	if cfg.IsHTTPServerEnabled() {
		t.Fatal("http should be disabled")
	}
	if !cfg.IsMailWorkerEnabled() {
		t.Fatal("mail worker should be enabled")
	}

	cfg.Services = "bogus"
	if cfg.IsHTTPServerEnabled() || cfg.IsMailWorkerEnabled() {
		t.Fatal("invalid services enable nothing")
	}
}

func TestValidServiceModes(t *testing.T) {
	for _, m := range ValidServiceModes() {
		if _, err := ParseServices(string(m)); err != nil {
			t.Fatalf("mode %q does not parse: %v", m, err)
		}
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "OAuth")
	t.Setenv("ADMIN_GROUPS", "realty-admins;owners")
	t.Setenv("OAUTH_CLIENT_ID", "admin-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.ph")
	t.Setenv("OAUTH_AUDIENCE", "https://api.example.ph")
	t.Setenv("DEV_AUTH_GROUPS", "admins;devs")
	t.Setenv("API_BASE_URL", "https://api.example.ph")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("MAIL_TRANSPORT", "SendGrid")
	t.Setenv("MAIL_SENDGRID_API_KEY", "SG.key")
	t.Setenv("MAIL_FROM", "hello@example.ph")
	t.Setenv("UI_SCHEDULES_REFRESH", "45s")
	t.Setenv("REDIS_KEY_PREFIX", "ra:")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expectedAuth := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "admin-client",
			ClientSecret: "super-secret",
			RedirectURL:  "http://localhost:8080/auth/callback",
			Scope:        "openid profile email groups",
			DiscoveryURL: "https://login.example.ph",
			Audience:     "https://api.example.ph",
		},
		DevAuth: DevAuthConfig{
			UserID:    "dev-user",
			Email:     "dev@example.com",
			FirstName: "Dev",
			LastName:  "Admin",
			Groups:    []string{"admins", "devs"},
		},
		AdminGroups: []string{"realty-admins", "owners"},
		UserGroups:  []string{"staff"},
		SessionTTL:  8 * time.Hour,
	}
	if !reflect.DeepEqual(cfg.Auth, expectedAuth) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expectedAuth, cfg.Auth)
	}

	if cfg.API.BaseURL != "https://api.example.ph/" {
		t.Fatalf("base url should gain a trailing slash, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.API.Timeout)
	}
	if cfg.Mail.Transport != MailTransportSendGrid {
		t.Fatalf("transport = %q", cfg.Mail.Transport)
	}
	if cfg.UI.SchedulesRefresh != 45*time.Second {
		t.Fatalf("schedules refresh = %v", cfg.UI.SchedulesRefresh)
	}
	if cfg.Redis.KeyPrefix != "ra:" {
		t.Fatalf("key prefix = %q", cfg.Redis.KeyPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestAppConfig_ParseEnvRejectsUnknownTransport(t *testing.T) {
	t.Setenv("MAIL_TRANSPORT", "smtp")
	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatal("expected an error for MAIL_TRANSPORT=smtp")
	}
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		c := AppConfig{
			Services: "http,mail-worker",
			Auth:     AuthConfig{Mode: AuthModeOAuth},
			API:      APIConfig{BaseURL: "https://api.example.ph/"},
			Mail:     MailConfig{Transport: MailTransportConsole, From: "no-reply@example.ph"},
		}
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "missing api", mutate: func(c *AppConfig) { c.API.BaseURL = "" }, wantErr: "API_BASE_URL"},
		{name: "api not needed by worker", mutate: func(c *AppConfig) { c.API.BaseURL = ""; c.Services = "mail-worker" }},
		{name: "sendgrid without key", mutate: func(c *AppConfig) { c.Mail.Transport = MailTransportSendGrid }, wantErr: "MAIL_SENDGRID_API_KEY"},
		{name: "bad sender", mutate: func(c *AppConfig) { c.Mail.From = "not an address" }, wantErr: "MAIL_FROM"},
		{name: "mock auth outside dev", mutate: func(c *AppConfig) { c.Auth.Mode = AuthModeMock }, wantErr: "DEV=true"},
		{name: "mock auth in dev", mutate: func(c *AppConfig) { c.Auth.Mode = AuthModeMock; c.IsDev = true }},
		{name: "public suffix cookie domain", mutate: func(c *AppConfig) { c.HTTP.CookieDomain = "com.ph" }, wantErr: "APP_COOKIE_DOMAIN"},
		{name: "registrable cookie domain", mutate: func(c *AppConfig) { c.HTTP.CookieDomain = "admin.example.ph" }},
		{name: "bad services", mutate: func(c *AppConfig) { c.Services = "cron" }, wantErr: "invalid service name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 12, CompressionMinSize: -1, CookieDomain: " .Example.PH "}
	h.Sanitize()
	if h.CompressionLevel != 9 {
		t.Fatalf("compression level = %d", h.CompressionLevel)
	}
	if h.CompressionMinSize != 0 {
		t.Fatalf("min size = %d", h.CompressionMinSize)
	}
	if h.CookieDomain != "example.ph" {
		t.Fatalf("cookie domain = %q", h.CookieDomain)
	}
	if h.ShutdownTimeout != 15*time.Second {
		t.Fatalf("shutdown timeout = %v", h.ShutdownTimeout)
	}
}

func TestMailConfig_Sanitize(t *testing.T) {
	m := MailConfig{PollInterval: time.Millisecond, BatchSize: 1000, MaxAttempts: 0}
	m.Sanitize()
	if m.PollInterval != time.Second || m.BatchSize != 100 || m.MaxAttempts != 1 || m.Lease != time.Minute {
		t.Fatalf("unexpected sanitised mail config: %+v", m)
	}
}

func TestMailConfig_FromAddress(t *testing.T) {
	m := MailConfig{From: "Realty <hello@example.ph>", FromName: "Realty Team"}
	addr, err := m.FromAddress()
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	if addr.Address != "hello@example.ph" || addr.Name != "Realty Team" {
		t.Fatalf("unexpected address %+v", addr)
	}
}

func TestUIConfig_Sanitize(t *testing.T) {
	u := UIConfig{DefaultPageSize: 7, SchedulesRefresh: time.Second, DashboardCacheTTL: -time.Second}
	u.Sanitize()
	if u.DefaultPageSize != 10 {
		t.Fatalf("page size = %d", u.DefaultPageSize)
	}
	if u.SchedulesRefresh != 5*time.Second {
		t.Fatalf("refresh = %v", u.SchedulesRefresh)
	}
	if u.DashboardCacheTTL != 0 {
		t.Fatalf("ttl = %v", u.DashboardCacheTTL)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name        string
		in          ObservabilityMetricsConfig
		wantBackend MetricsBackend
		wantEnabled bool
	}{
		{
			name:        "prometheus by default",
			in:          ObservabilityMetricsConfig{Enabled: true},
			wantBackend: MetricsBackendPrometheus,
			wantEnabled: true,
		},
		{
			name:        "statsd needs an address",
			in:          ObservabilityMetricsConfig{Enabled: true, Backend: "StatsD", StatsdAddress: "  "},
			wantBackend: MetricsBackendStatsd,
			wantEnabled: false,
		},
		{
			name:        "statsd",
			in:          ObservabilityMetricsConfig{Enabled: true, Backend: "statsd", StatsdAddress: "127.0.0.1:8125"},
			wantBackend: MetricsBackendStatsd,
			wantEnabled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			c.Sanitize()
			if c.Backend != tt.wantBackend || c.IsEnabled() != tt.wantEnabled {
				t.Fatalf("got backend %q enabled %v", c.Backend, c.IsEnabled())
			}
			if c.Namespace == "" {
				t.Fatal("namespace should default")
			}
			if c.StatsdFlush != time.Second {
				t.Fatalf("statsd flush = %v, want 1s", c.StatsdFlush)
			}
		})
	}
}

func TestDBConfig_DSNEscapesCredentials(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "realty", Password: "p@ss/word", Name: "realty_admin", SSLMode: "require"}
	want := "postgres://realty:p%40ss%2Fword@db:5432/realty_admin?sslmode=require"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
