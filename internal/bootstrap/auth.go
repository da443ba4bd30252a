package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/realty-admin/config"
	"github.com/target/realty-admin/internal/adapters/authroles"
	"github.com/target/realty-admin/internal/adapters/devauth"
	"github.com/target/realty-admin/internal/adapters/oidc"
	redisadapter "github.com/target/realty-admin/internal/adapters/redis"
	"github.com/target/realty-admin/internal/data/cryptoutil"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	API         config.APIConfig
	KeyPrefix   string
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid; the
// admin pages then stay unprotected, which only dev mode permits.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisClient == nil {
		logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	enc, err := cryptoutil.FromSecret(cfg.Auth.SessionKey)
	if err != nil {
		logger.Warn("invalid session encryption key, auth disabled", "error", err)
		return nil
	}
	if _, noop := enc.(cryptoutil.NoopEncryptor); noop {
		logger.Warn("SESSION_ENCRYPTION_KEY not set; API tokens are stored unsealed in redis")
	}
	sessions := redisadapter.NewSessionStore(cfg.RedisClient, cfg.KeyPrefix+"session:").WithTokenEncryptor(enc)

	roles := authroles.GroupMapper{
		AdminGroups: cfg.Auth.AdminGroups,
		UserGroups:  cfg.Auth.UserGroups,
	}

	var prov ports.AuthProvider
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov = buildDevProvider(cfg, logger)
	case config.AuthModeOAuth:
		prov = buildOIDCProvider(cfg, logger)
	}
	if prov == nil {
		return nil
	}

	staticToken := cfg.API.StaticToken
	if cfg.Auth.Mode == config.AuthModeMock && cfg.Auth.DevAuth.APIToken != "" {
		staticToken = cfg.Auth.DevAuth.APIToken
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: sessions,
		Config: service.AuthServiceConfig{
			Roles:          roles,
			StaticAPIToken: staticToken,
		},
	})
}

//nolint:ireturn // nil interface signals a disabled provider
func buildDevProvider(cfg AuthConfig, logger *slog.Logger) ports.AuthProvider {
	dev := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:          dev.UserID,
		Email:           dev.Email,
		FirstName:       dev.FirstName,
		LastName:        dev.LastName,
		Groups:          dev.Groups,
		APIToken:        dev.APIToken,
		SessionDuration: cfg.Auth.SessionTTL,
	})
	if err != nil {
		logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		return nil
	}
	logger.Info("dev auth enabled", "user_id", dev.UserID, "groups", dev.Groups)
	return prov
}

//nolint:ireturn // nil interface signals a disabled provider
func buildOIDCProvider(cfg AuthConfig, logger *slog.Logger) ports.AuthProvider {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		Audience:     oauth.Audience,
	})
	if err != nil {
		logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		return nil
	}
	return prov
}
