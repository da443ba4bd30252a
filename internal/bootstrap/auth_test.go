package bootstrap

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/realty-admin/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func devAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Mode:        config.AuthModeMock,
		AdminGroups: []string{"admins"},
		UserGroups:  []string{"staff"},
		SessionTTL:  time.Hour,
		DevAuth: config.DevAuthConfig{
			UserID: "dev",
			Email:  "dev@example.com",
			Groups: []string{"admins"},
		},
	}
}

func TestBuildAuthServiceReturnsNilWithoutRedis(t *testing.T) {
	tests := []struct {
		name string
		auth config.AuthConfig
	}{
		{name: "dev auth mode", auth: devAuthConfig()},
		{
			name: "oauth mode",
			auth: config.AuthConfig{
				Mode:        config.AuthModeOAuth,
				AdminGroups: []string{"admins"},
				OAuth: config.OAuthConfig{
					ClientID:     "client-id",
					ClientSecret: "client-secret",
					DiscoveryURL: "https://issuer.example.com",
					RedirectURL:  "https://admin.example.com/auth/callback",
					Scope:        "openid",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := BuildAuthService(AuthConfig{Auth: tt.auth, Logger: quietLogger()})
			if svc != nil {
				t.Fatalf("BuildAuthService() = %v, want nil", svc)
			}
		})
	}
}

// The client is never dialed while building the service.
func lazyRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBuildAuthServiceDevMode(t *testing.T) {
	svc := BuildAuthService(AuthConfig{
		Auth:        devAuthConfig(),
		API:         config.APIConfig{StaticToken: "static"},
		KeyPrefix:   "realty-admin:",
		RedisClient: lazyRedis(t),
		Logger:      quietLogger(),
	})
	if svc == nil {
		t.Fatal("BuildAuthService() = nil, want dev auth service")
	}
}

func TestBuildAuthServiceOAuthMissingConfig(t *testing.T) {
	svc := BuildAuthService(AuthConfig{
		Auth:        config.AuthConfig{Mode: config.AuthModeOAuth},
		RedisClient: lazyRedis(t),
		Logger:      quietLogger(),
	})
	if svc != nil {
		t.Fatalf("BuildAuthService() = %v, want nil", svc)
	}
}
