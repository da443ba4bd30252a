package httpx

import (
	"net/http"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/service"
)

const errMsgUnableLoadDashboard = "Unable to load record counts."

// Index serves the dashboard: one tile per resource plus the outbox backlog
// for admins.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	data, ok := h.dashboardData(w, r)
	if !ok {
		return
	}
	h.renderDashboardPage(w, r, data)
}

// DashboardTiles serves the tiles alone for htmx polling.
func (h *UIHandlers) DashboardTiles(w http.ResponseWriter, r *http.Request) {
	data, ok := h.dashboardData(w, r)
	if !ok {
		return
	}
	h.renderFragment(w, r, tmplDashboard, data)
}

func (h *UIHandlers) dashboardData(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	b := h.templateData(r, PageMeta{PageTitle: "Dashboard", CurrentPage: PageDashboard}).
		With("Dashboard", service.Dashboard{})

	if h.Dashboard == nil {
		return b.WithError(errMsgUnableLoadDashboard).Build(), true
	}
	var role domainauth.Role
	if sess := SessionFrom(r.Context()); sess != nil {
		role = sess.Role
	}
	d, err := h.Dashboard.Get(r.Context(), CredentialsFromContext(r.Context()), role)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			redirectToLogin(w, r)
			return nil, false
		}
		h.logger().WarnContext(r.Context(), "dashboard counts failed", "error", err)
		return b.WithError(errMsgUnableLoadDashboard).Build(), true
	}
	return b.With("Dashboard", d).Build(), true
}
