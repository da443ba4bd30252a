package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	realtyadmin "github.com/target/realty-admin"
	"github.com/target/realty-admin/config"
	httpx "github.com/target/realty-admin/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config    *config.AppConfig
	Services  ServiceContainer
	Readiness map[string]httpx.ReadinessCheck
	Logger    *slog.Logger
	// ErrCh receives listen failures after startup.
	ErrCh chan<- error
}

// StartHTTPServer builds the handler chain and starts listening in the
// background. The returned server is used for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	templates, static, err := uiFilesystems(appCfg.IsDev)
	if err != nil {
		return nil, err
	}

	services := httpx.RouterServices{
		Resources:    cfg.Services.Resources,
		Dashboard:    cfg.Services.Dashboard,
		Auth:         cfg.Services.Auth,
		CookieDomain: appCfg.HTTP.CookieDomain,
		UI: httpx.UIConfig{
			AppName:          appCfg.UI.AppName,
			DefaultPageSize:  appCfg.UI.DefaultPageSize,
			SchedulesRefresh: appCfg.UI.SchedulesRefresh,
		},
		Metrics:    cfg.Services.Observability.Handler,
		Readiness:  cfg.Readiness,
		TemplateFS: templates,
		StaticFS:   static,
		IsDev:      appCfg.IsDev,
		Logger:     logger,
	}
	// A nil *OutboxRepo must stay a nil interface.
	if cfg.Services.Outbox != nil {
		services.Mail = cfg.Services.Outbox
	}

	handler, err := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: services,
		HTTP:     appCfg.HTTP,
		Sink:     cfg.Services.Observability,
	})
	if err != nil {
		return nil, err
	}

	return startServer(logger, handler, appCfg.HTTP, cfg.ErrCh), nil
}

// uiFilesystems serves templates and static files from disk in dev mode so
// edits show up on reload, and from the embedded copies otherwise.
//
//nolint:ireturn // fs.FS is the natural type here
func uiFilesystems(isDev bool) (fs.FS, fs.FS, error) {
	if isDev {
		if _, err := os.Stat(httpx.TemplatePathFromRoot); err == nil {
			return os.DirFS(httpx.TemplatePathFromRoot), os.DirFS(httpx.StaticPathFromRoot), nil
		}
	}
	templates, err := fs.Sub(realtyadmin.TemplateFS, httpx.TemplatePathFromRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded templates: %w", err)
	}
	static, err := fs.Sub(realtyadmin.StaticFS, httpx.StaticPathFromRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded static files: %w", err)
	}
	return templates, static, nil
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
	Sink     ObservabilityContainer
}

func buildHTTPHandler(cfg httpHandlerConfig) (http.Handler, error) {
	// Order: Recover -> Logging -> Compression -> Router, so logs see compressed sizes.
	h := httpx.NewRouter(cfg.Services)
	if cfg.HTTP.CompressionEnabled {
		compress, err := httpx.Compression(httpx.CompressionConfig{
			Level:   cfg.HTTP.CompressionLevel,
			MinSize: cfg.HTTP.CompressionMinSize,
		})
		if err != nil {
			return nil, fmt.Errorf("compression middleware: %w", err)
		}
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = compress(h)
	}

	h = httpx.Logging(cfg.Logger, cfg.Sink.Sink)(h)
	h = httpx.Recover(cfg.Logger)(h)
	return h, nil
}

func startServer(logger *slog.Logger, handler http.Handler, cfg config.HTTPConfig, errCh chan<- error) *http.Server {
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				select {
				case errCh <- fmt.Errorf("listen %s: %w", server.Addr, err):
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}
	return nil
}
