package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// Audience is requested when the backend API only accepts tokens minted for it.
	Audience  string `env:"AUDIENCE"`
	LogoutURL string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID    string   `env:"USER_ID"    envDefault:"dev-user"`
	Email     string   `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string   `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string   `env:"LAST_NAME"  envDefault:"Admin"`
	Groups    []string `env:"GROUPS"     envDefault:"admins"          envSeparator:";"`
	// APIToken is stored on dev sessions; falls back to API_STATIC_TOKEN.
	APIToken string `env:"API_TOKEN"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroups grant the admin role (delete, email log).
	AdminGroups []string `env:"ADMIN_GROUPS" envDefault:"admins" envSeparator:";"`

	// UserGroups grant the staff role.
	UserGroups []string `env:"USER_GROUPS" envDefault:"staff" envSeparator:";"`

	// SessionTTL bounds sessions whose provider reports no expiry.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// SessionKey seals API tokens stored in Redis. Hex (64 chars) or any passphrase.
	SessionKey string `env:"SESSION_ENCRYPTION_KEY"`
}
