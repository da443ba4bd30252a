package httpx

import (
	"bytes"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/domain/realty"
	"github.com/target/realty-admin/internal/http/assets"
	"github.com/target/realty-admin/internal/http/validation"
	"github.com/target/realty-admin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Resources    ResourceService
	Dashboard    DashboardService
	Mail         MailLog
	Auth         *service.AuthService
	CookieDomain string
	UI           UIConfig
	// Metrics serves /metrics when the Prometheus backend is selected.
	Metrics http.Handler
	// Readiness checks answer /readyz.
	Readiness map[string]ReadinessCheck
	// TemplateFS is rooted at the templates dir, StaticFS at the static dir.
	TemplateFS fs.FS
	StaticFS   fs.FS
	IsDev      bool
	Logger     *slog.Logger
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Readiness))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}
	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		})
	}
	if services.StaticFS != nil {
		mux.Handle("GET /static/", staticWithCacheHeaders(
			http.StripPrefix(assets.Prefix, http.FileServer(http.FS(services.StaticFS)))))
	}

	uiHandlers := setupUIHandlers(services)
	if uiHandlers != nil {
		cfg := uiRouteConfig{Auth: services.Auth, CookieDomain: services.CookieDomain}
		registerUIRoutes(mux, uiHandlers, cfg)
	}

	handler := &notFoundHandler{
		mux:        mux,
		uiHandlers: uiHandlers,
	}
	return BrowserDetection()(handler)
}

// setupUIHandlers parses the templates and builds the page handlers. It
// returns nil, leaving only the API routes, when templates fail to parse.
func setupUIHandlers(services RouterServices) *UIHandlers {
	if services.TemplateFS == nil {
		return nil
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: services.TemplateFS,
		StaticFS:   services.StaticFS,
		DevMode:    services.IsDev,
		Logger:     services.Logger,
	})
	if err != nil {
		if services.Logger != nil {
			services.Logger.Error("failed to create template renderer", slog.Any("error", err))
		} else {
			log.Printf("ERROR: failed to create template renderer: %v", err)
		}
		return nil
	}

	return &UIHandlers{
		T:         tr,
		Resources: services.Resources,
		Dashboard: services.Dashboard,
		Mail:      services.Mail,
		Validator: validation.New(),
		Config:    services.UI,
		IsDev:     services.IsDev,
		Logger:    services.Logger,
	}
}

// staticWithCacheHeaders caches fingerprinted assets for a year and makes
// everything else revalidate.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if assets.IsVersioned(r.URL) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter(w)
	h.mux.ServeHTTP(cw, r)

	if cw.status == http.StatusNotFound {
		// Missing static assets and handler-issued 404s keep their own body.
		if strings.HasPrefix(r.URL.Path, assets.Prefix) || cw.header.Get("Content-Type") != "text/plain; charset=utf-8" {
			cw.flushTo(w)
			return
		}
		if h.uiHandlers != nil {
			h.uiHandlers.NotFound(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}

	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		log.Printf("failed to write captured response: %v", err)
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// uiRouteConfig holds configuration for UI route registration.
type uiRouteConfig struct {
	Auth         *service.AuthService
	CookieDomain string
}

// authWrap returns a no-op wrapper when auth is nil, otherwise applies
// RequireAuthBrowser with CSRF protection.
func (cfg uiRouteConfig) authWrap() func(http.Handler) http.Handler {
	if cfg.Auth == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	csrf := CSRFProtection(CSRFConfig{CookieDomain: cfg.CookieDomain})
	requireAuth := RequireAuthBrowser(cfg.Auth)
	return func(h http.Handler) http.Handler {
		return requireAuth(csrf(h))
	}
}

// adminWrap returns a no-op wrapper when auth is nil, otherwise applies
// RequireRoleBrowser with CSRF protection.
func (cfg uiRouteConfig) adminWrap() func(http.Handler) http.Handler {
	if cfg.Auth == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	csrf := CSRFProtection(CSRFConfig{CookieDomain: cfg.CookieDomain})
	roleCheck := RequireRoleBrowser(cfg.Auth, domainauth.RoleAdmin)
	return func(h http.Handler) http.Handler {
		return roleCheck(csrf(h))
	}
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	registerUIDashboardRoutes(mux, h, cfg)
	for _, res := range realty.All() {
		registerUIResourceRoutes(mux, h, cfg, res)
	}
	registerUIMailRoutes(mux, h, cfg)
	// Public auth-related UI routes (no auth wrapper)
	mux.Handle("GET /auth/signed-out", http.HandlerFunc(h.SignedOut))
}

func registerUIDashboardRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	wrap := cfg.authWrap()
	mux.Handle("GET /{$}", wrap(http.HandlerFunc(h.Index)))
	mux.Handle("GET /dashboard/tiles", wrap(http.HandlerFunc(h.DashboardTiles)))
	mux.Handle("GET /profile", wrap(http.HandlerFunc(h.Profile)))
}

// registerUIResourceRoutes wires the list, detail, modal form, delete and
// decision routes of one resource.
func registerUIResourceRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig, res realty.Resource) {
	wrap := cfg.authWrap()
	wrapAdmin := cfg.adminWrap()
	base := "/" + string(res.Key)

	mux.Handle("GET "+base, wrap(h.ResourceList(res)))
	mux.Handle("GET "+base+"/{id}", wrap(h.ResourceView(res)))
	mux.Handle("POST "+base+"/{id}/delete", wrapAdmin(h.ResourceDelete(res)))

	if !res.ReadOnly {
		mux.Handle("GET "+base+"/new", wrap(h.ResourceNew(res)))
		mux.Handle("GET "+base+"/{id}/edit", wrap(h.ResourceEdit(res)))
		mux.Handle("POST "+base, wrap(h.ResourceCreate(res)))
		mux.Handle("POST "+base+"/{id}", wrap(h.ResourceUpdate(res)))
	}

	for _, d := range res.Decisions {
		mux.Handle("POST "+base+"/{id}/"+d.Action, wrap(h.ResourceDecide(res, d)))
	}
	if len(res.Decisions) > 0 {
		mux.Handle("GET "+base+"/{id}/reply", wrap(h.ReplyForm(res)))
		mux.Handle("POST "+base+"/{id}/reply", wrap(h.ReplySend(res)))
	}
}

func registerUIMailRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	wrapAdmin := cfg.adminWrap()
	mux.Handle("GET /mail", wrapAdmin(http.HandlerFunc(h.MailLog)))
	mux.Handle("POST /mail/{id}/retry", wrapAdmin(http.HandlerFunc(h.MailRetry)))
}
