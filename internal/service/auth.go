package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Config   AuthServiceConfig
}

// AuthServiceConfig holds the role mapper and the API token used when the
// provider does not issue one (dev auth).
type AuthServiceConfig struct {
	Roles ports.RoleMapper
	// StaticAPIToken is stored on sessions whose identity carries no access token.
	StaticAPIToken string
	// Now overrides the clock in tests.
	Now func() time.Time
}

// AuthService coordinates the login flow: provider exchange, role mapping
// and session persistence. Sessions carry the backend API token.
type AuthService struct {
	provider    ports.AuthProvider
	sessions    ports.SessionStore
	roles       ports.RoleMapper
	staticToken string
	now         func() time.Time
}

var (
	// ErrSessionExpired is returned for a session past its expiry; it has been deleted.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoAPIToken means the identity provider issued no token and no static token is configured.
	ErrNoAPIToken = errors.New("no backend API token for this login")
)

// NewAuthService constructs an AuthService. Provider, Sessions and Roles are required.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil || opts.Sessions == nil || opts.Config.Roles == nil {
		panic("service: AuthService requires provider, sessions and roles")
	}
	now := opts.Config.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		provider:    opts.Provider,
		sessions:    opts.Sessions,
		roles:       opts.Config.Roles,
		staticToken: opts.Config.StaticAPIToken,
		now:         now,
	}
}

// BeginLoginResult contains the provider redirect and the values to keep in cookies.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin starts a login flow.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	flow, err := s.provider.Begin(ctx, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: flow.AuthURL, State: flow.State, Nonce: flow.Nonce}, nil
}

// CompleteLoginInput groups the callback parameters.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code, maps the role and persists a session
// holding the API token.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (domainauth.Session, error) {
	switch {
	case in.Code == "":
		return domainauth.Session{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Session{}, errors.New("state parameter is required")
	case in.Nonce == "":
		return domainauth.Session{}, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.Callback(in))
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	token := identity.AccessToken
	if token == "" {
		token = s.staticToken
	}
	if token == "" {
		return domainauth.Session{}, ErrNoAPIToken
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      s.roles.Map(identity.Groups),
		ExpiresAt: identity.ExpiresAt,
		APIToken:  token,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// GetSession loads a session, deleting it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (domainauth.Session, error) {
	if sessionID == "" {
		return domainauth.Session{}, errors.New("session ID is required")
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return domainauth.Session{}, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", err))
		}
		return domainauth.Session{}, ErrSessionExpired
	}
	return session, nil
}

// Logout removes a session. An empty ID is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Credentials returns the API credentials for a session.
func Credentials(session domainauth.Session) ports.Credentials {
	return ports.Credentials{Token: session.APIToken}
}
