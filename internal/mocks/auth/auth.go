// Package auth contains hand-written test doubles for the auth ports.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleMapper   = StaticRoleMapper{}
)

// ErrNotFound is returned by MemorySessionStore for unknown IDs.
var ErrNotFound = errors.New("not found")

// MockAuthProvider simulates an IdP with deterministic state and nonce values
// ("state-1", "nonce-1", ...).
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, redirectURL string) (ports.LoginFlow, error)
	ExchangeFunc func(ctx context.Context, cb ports.Callback) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	mu    sync.Mutex
	calls int
}

// NewMockAuthProvider returns a provider that signs everyone in as a staff
// member holding an API token.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:      "agent-1",
			FirstName:   "Ana",
			LastName:    "Cruz",
			Email:       "ana.cruz@example.ph",
			Groups:      []string{"staff"},
			AccessToken: "api-token-agent-1",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, redirectURL string) (ports.LoginFlow, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, redirectURL)
	}
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()
	return ports.LoginFlow{AuthURL: m.AuthURL, State: fmt.Sprintf("state-%d", n), Nonce: fmt.Sprintf("nonce-%d", n)}, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, cb ports.Callback) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, cb)
	}
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore keeps sessions in a map.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StaticRoleMapper maps exact group names to roles, admin first.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
