package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	mocks "github.com/target/realty-admin/internal/mocks/auth"
	"github.com/target/realty-admin/internal/ports"
)

func newTestAuthService(provider *mocks.MockAuthProvider, store *mocks.MemorySessionStore, static string) *AuthService {
	return NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: store,
		Config: AuthServiceConfig{
			Roles:          mocks.StaticRoleMapper{AdminGroup: "admins", UserGroup: "staff"},
			StaticAPIToken: static,
		},
	})
}

func TestNewAuthService_PanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{}) })
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc := newTestAuthService(mocks.NewMockAuthProvider(), mocks.NewMemorySessionStore(), "")

	res, err := svc.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)

	_, err = svc.BeginLogin(context.Background(), "")
	require.Error(t, err)
}

func TestAuthService_CompleteLogin_StoresProviderToken(t *testing.T) {
	store := mocks.NewMemorySessionStore()
	svc := newTestAuthService(mocks.NewMockAuthProvider(), store, "static-token")

	sess, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "api-token-agent-1", sess.APIToken, "provider token wins over static token")
	assert.Equal(t, domainauth.RoleUser, sess.Role)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, ports.Credentials{Token: "api-token-agent-1"}, Credentials(sess))
}

func TestAuthService_CompleteLogin_FallsBackToStaticToken(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.DefaultUser.AccessToken = ""
	provider.DefaultUser.Groups = []string{"admins"}

	sess, err := newTestAuthService(provider, mocks.NewMemorySessionStore(), "static-token").
		CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "static-token", sess.APIToken)
	assert.True(t, sess.IsAdmin())
}

func TestAuthService_CompleteLogin_Errors(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.DefaultUser.AccessToken = ""
	svc := newTestAuthService(provider, mocks.NewMemorySessionStore(), "")
	ctx := context.Background()

	_, err := svc.CompleteLogin(ctx, CompleteLoginInput{State: "s", Nonce: "n"})
	require.Error(t, err)

	_, err = svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.ErrorIs(t, err, ErrNoAPIToken)

	provider.ExchangeFunc = func(context.Context, ports.Callback) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("idp down")
	}
	_, err = svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.ErrorContains(t, err, "idp down")
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	store := mocks.NewMemorySessionStore()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: store,
		Config:   AuthServiceConfig{Roles: mocks.StaticRoleMapper{}, Now: func() time.Time { return now }},
	})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "live", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)}))

	got, err := svc.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "live", got.ID)

	_, err = svc.GetSession(ctx, "old")
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, svc.Logout(ctx, "live"))
	require.NoError(t, svc.Logout(ctx, ""))
	assert.Zero(t, store.Len())
}
