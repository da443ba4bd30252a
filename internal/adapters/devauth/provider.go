// Package devauth signs everyone in as one configured staff member. It is
// for local development against a dev backend API.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Config is the identity every login receives.
type Config struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Groups    []string
	// APIToken is handed to the backend API. Empty leaves the choice to the
	// auth service's static token.
	APIToken        string
	SessionDuration time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Provider implements ports.AuthProvider without an IdP: Begin redirects
// straight to the local callback.
type Provider struct {
	cfg Config
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider validates cfg.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	return &Provider{cfg: cfg}, nil
}

// Begin returns the local callback URL carrying the new state.
func (p *Provider) Begin(_ context.Context, _ string) (ports.LoginFlow, error) {
	state, err := randomString(24)
	if err != nil {
		return ports.LoginFlow{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return ports.LoginFlow{}, fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return ports.LoginFlow{AuthURL: "/auth/callback?" + q.Encode(), State: state, Nonce: nonce}, nil
}

// Exchange returns the configured identity. State and nonce are checked by
// the callback handler against its cookies.
func (p *Provider) Exchange(_ context.Context, _ ports.Callback) (domainauth.Identity, error) {
	return domainauth.Identity{
		UserID:      p.cfg.UserID,
		FirstName:   p.cfg.FirstName,
		LastName:    p.cfg.LastName,
		Email:       p.cfg.Email,
		Groups:      append([]string(nil), p.cfg.Groups...),
		ExpiresAt:   p.cfg.Now().Add(p.cfg.SessionDuration),
		AccessToken: p.cfg.APIToken,
	}, nil
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
