package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

func TestMockAuthProvider_BeginIsDeterministic(t *testing.T) {
	p := NewMockAuthProvider()
	ctx := context.Background()

	flow, err := p.Begin(ctx, "http://localhost/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "state-1", flow.State)
	assert.Equal(t, "nonce-1", flow.Nonce)

	flow, err = p.Begin(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "state-2", flow.State)
}

func TestMockAuthProvider_ExchangeCarriesToken(t *testing.T) {
	id, err := NewMockAuthProvider().Exchange(context.Background(), ports.Callback{Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "api-token-agent-1", id.AccessToken)
	assert.False(t, id.ExpiresAt.IsZero())
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	require.Error(t, s.Save(ctx, domainauth.Session{}))
	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "s1", APIToken: "tok"}))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.APIToken)

	require.NoError(t, s.Delete(ctx, "s1"))
	_, err = s.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStaticRoleMapper(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "admins", UserGroup: "staff"}
	assert.Equal(t, domainauth.RoleAdmin, m.Map([]string{"staff", "admins"}))
	assert.Equal(t, domainauth.RoleUser, m.Map([]string{"staff"}))
	assert.Equal(t, domainauth.RoleGuest, m.Map(nil))
}
