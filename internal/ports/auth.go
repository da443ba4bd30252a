// Package ports holds the interfaces services depend on. Implementations
// live in internal/adapters and internal/data.
package ports

import (
	"context"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
)

// LoginFlow is a started sign-in: where to send the browser and the values
// the callback must echo back.
type LoginFlow struct {
	AuthURL string
	State   string
	Nonce   string
}

// Callback is what the identity provider hands back on redirect, together
// with the nonce remembered from the LoginFlow.
type Callback struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider signs staff in against an identity provider.
type AuthProvider interface {
	Begin(ctx context.Context, redirectURL string) (LoginFlow, error)
	// Exchange verifies the callback and returns the identity with its API access token.
	Exchange(ctx context.Context, cb Callback) (domainauth.Identity, error)
}

// SessionStore persists signed-in sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper turns identity provider groups into a role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
