package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/http/ui/viewmodel"
	"github.com/target/realty-admin/internal/http/uiutil"
	"github.com/target/realty-admin/internal/http/validation"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/service"
)

const (
	errMsgFixBelow  = "Please fix the errors below."
	defaultAppName  = "Realty Admin"
	defaultPageSize = 10
	// tableRegionID is the element list pages swap table fragments into.
	tableRegionID = "table-region"
	// modalBodyID is the element modal forms are loaded into.
	modalBodyID = "modal-body"
)

// ResourceService is what resource pages need from the service layer.
type ResourceService interface {
	List(ctx context.Context, creds ports.Credentials, res realty.Resource, req service.ListRequest) (service.ListPage, error)
	Get(ctx context.Context, creds ports.Credentials, res realty.Resource, id string) (realty.Record, error)
	Create(ctx context.Context, creds ports.Credentials, res realty.Resource, p ports.Payload) (realty.Record, error)
	Update(ctx context.Context, creds ports.Credentials, res realty.Resource, id string, p ports.Payload) (realty.Record, error)
	Delete(ctx context.Context, creds ports.Credentials, res realty.Resource, id string) error
	Decide(ctx context.Context, creds ports.Credentials, res realty.Resource, id, action string) (service.DecisionResult, error)
	Reply(ctx context.Context, creds ports.Credentials, res realty.Resource, id, message string) error
	Profile(ctx context.Context, creds ports.Credentials) (realty.Record, error)
}

// DashboardService computes the landing page tiles.
type DashboardService interface {
	Get(ctx context.Context, creds ports.Credentials, role domainauth.Role) (service.Dashboard, error)
	Invalidate(ctx context.Context)
}

// MailLog is the part of the outbox the admin mail page reads and retries.
type MailLog interface {
	List(ctx context.Context, f dmail.ListFilter) ([]dmail.Message, error)
	Count(ctx context.Context, f dmail.ListFilter) (int, error)
	Retry(ctx context.Context, id string) error
}

var (
	_ ResourceService  = (*service.ResourceService)(nil)
	_ DashboardService = (*service.DashboardService)(nil)
	_ MailLog          = ports.Outbox(nil)
)

// UIConfig tunes the pages.
type UIConfig struct {
	AppName         string
	DefaultPageSize int
	// SchedulesRefresh is how often the schedules list polls for new
	// appointments. Zero disables polling.
	SchedulesRefresh time.Duration
}

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Resources ResourceService
	Dashboard DashboardService // Optional: the dashboard shows no tiles without it
	Mail      MailLog          // Optional: the mail log is hidden without it
	Validator *validation.Validator
	Config    UIConfig
	IsDev     bool
	Logger    *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) appName() string {
	if h.Config.AppName != "" {
		return h.Config.AppName
	}
	return defaultAppName
}

func (h *UIHandlers) pageSize() int {
	if h.Config.DefaultPageSize > 0 {
		return h.Config.DefaultPageSize
	}
	return defaultPageSize
}

func (h *UIHandlers) validator() *validation.Validator {
	if h.Validator == nil {
		h.Validator = validation.New()
	}
	return h.Validator
}

// triggerToast sends a showToast event.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil {
		return
	}
	HTMX(w).Toast(message, toastType)
}

// buildPageURL returns a page-change link for a list: the current query with
// page and size replaced. It is the table's page callback.
func buildPageURL(basePath string, q url.Values, size int) func(page int) string {
	base := cleanQuery(q, "page", "size", "prev_size", "prev_q")
	return func(page int) string {
		qq := make(url.Values, len(base)+2)
		for k, v := range base {
			qq[k] = v
		}
		qq.Set("page", strconv.Itoa(page))
		qq.Set("size", strconv.Itoa(size))
		return basePath + "?" + qq.Encode()
	}
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
	// Section marks the active sidebar entry; defaults to CurrentPage.
	Section string
}

// buildLayout constructs shared layout metadata from the request/session context.
func buildLayout(r *http.Request, meta PageMeta, appName string) viewmodel.Layout {
	section := meta.Section
	if section == "" {
		section = meta.CurrentPage
	}
	title := meta.Title
	if title == "" {
		title = meta.PageTitle
	}
	layout := viewmodel.Layout{
		AppName:     appName,
		Title:       title + " - " + appName,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		Section:     section,
		CSRFToken:   GetCSRFToken(r),
	}

	if session := SessionFrom(r.Context()); session != nil {
		name := session.DisplayName()
		layout.User = &viewmodel.User{
			Name:     name,
			Email:    session.Email,
			Role:     string(session.Role),
			Initials: uiutil.Initials(name),
		}
		layout.IsAuthenticated = true
		layout.IsAdmin = session.IsAdmin()
	}
	layout.Nav = navItems(section, layout.IsAdmin)
	return layout
}

func navItems(section string, isAdmin bool) []viewmodel.NavItem {
	items := []viewmodel.NavItem{{Key: PageDashboard, Title: "Dashboard", Href: "/", Icon: "home"}}
	for _, res := range realty.All() {
		items = append(items, viewmodel.NavItem{
			Key:   string(res.Key),
			Title: res.Title,
			Href:  "/" + string(res.Key),
			Icon:  res.Icon,
		})
	}
	if isAdmin {
		items = append(items, viewmodel.NavItem{Key: PageMail, Title: "Email log", Href: "/mail", Icon: "mail"})
	}
	for i := range items {
		items[i].Active = items[i].Key == section
	}
	return items
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta, appName string) map[string]any {
	layout := buildLayout(r, meta, appName)
	data := map[string]any{
		"AppName":         layout.AppName,
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"Section":         layout.Section,
		"IsAuthenticated": layout.IsAuthenticated,
		"IsAdmin":         layout.IsAdmin,
		"Nav":             layout.Nav,
		"CSRFToken":       layout.CSRFToken,
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return data
}

// templateData starts the template data of a page.
func (h *UIHandlers) templateData(r *http.Request, meta PageMeta) *PageData {
	return NewPageData(r, meta, h.appName())
}

// renderDashboardPage renders a page inside the layout, or only its content
// plus out-of-band title updates for htmx navigation.
func (h *UIHandlers) renderDashboardPage(w http.ResponseWriter, r *http.Request, data any) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	layout := extractLayoutInfo(data)
	SetHXTrigger(w, "nav:activate", map[string]string{"section": layout.Section})

	// htmx updates document.title from a <title> in the swapped content.
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(layout.Title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}
	if _, err := w.Write([]byte(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(layout.PageTitle) + `</h1>`)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}
	if err := h.T.Execute(w, ContentTemplateFor(layout.CurrentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// renderFragment renders a named template on its own, for swaps into a
// region of the current page (table, modal).
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Vary", "HX-Request")
	if err := h.T.RenderNamed(w, name, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, name)
	}
}

func extractLayoutInfo(data any) viewmodel.Layout {
	if provider, ok := data.(viewmodel.LayoutProvider); ok {
		if l := provider.LayoutData(); l != nil {
			return *l
		}
	}
	if layout, ok := data.(viewmodel.Layout); ok {
		return layout
	}
	m, ok := data.(map[string]any)
	if !ok {
		return viewmodel.Layout{}
	}
	layout := viewmodel.Layout{}
	layout.Title, _ = m["Title"].(string)
	layout.PageTitle, _ = m["PageTitle"].(string)
	layout.CurrentPage, _ = m["CurrentPage"].(string)
	layout.Section, _ = m["Section"].(string)
	return layout
}

// handleServiceError answers a failed service call. Expired API credentials
// send the user back through login; everything else becomes an error page or,
// for htmx requests, a toast.
func (h *UIHandlers) handleServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if apperrors.IsUnauthorized(err) {
		redirectToLogin(w, r)
		return
	}
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), action+" failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger().InfoContext(r.Context(), action+" rejected", "path", r.URL.Path, "error", err)
	}

	if IsHTMX(r) {
		triggerToast(w, apperrors.UserMessage(err), toastError)
		w.WriteHeader(status)
		return
	}
	h.renderErrorPage(w, r, status, apperrors.UserMessage(err))
}

// logAndRenderTemplateError logs template errors and shows them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if !h.IsDev {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<div class="dev-error"><h2>Template rendering error</h2>` +
		`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
		`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
		`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`))
}
