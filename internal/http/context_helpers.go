package httpx

import (
	"context"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/service"
)

type sessionKey struct{}

// WithSession stores the signed-in session on ctx. A nil session leaves ctx as is.
func WithSession(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFrom returns the session stored by WithSession, or nil.
func SessionFrom(ctx context.Context) *domainauth.Session {
	s, _ := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s
}

// CredentialsFromContext returns the backend API credentials of the signed-in
// user. No session means empty credentials, which the API answers with 401.
func CredentialsFromContext(ctx context.Context) ports.Credentials {
	s := SessionFrom(ctx)
	if s == nil {
		return ports.Credentials{}
	}
	return service.Credentials(*s)
}
