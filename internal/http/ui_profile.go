package httpx

import (
	"net/http"

	apperrors "github.com/target/realty-admin/internal/errors"
)

// Profile shows the signed-in user's API profile next to their session.
// GET /profile.
func (h *UIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	b := h.templateData(r, PageMeta{PageTitle: "My profile", CurrentPage: PageProfile})
	if s := SessionFrom(r.Context()); s != nil {
		b.With("Session", s)
	}

	rec, err := h.Resources.Profile(r.Context(), CredentialsFromContext(r.Context()))
	switch {
	case err == nil:
		b.With("Profile", rec)
	case apperrors.IsUnauthorized(err):
		redirectToLogin(w, r)
		return
	case apperrors.IsNotFound(err):
		b.WithError("The backend API has no profile for your account yet.")
	default:
		h.logger().WarnContext(r.Context(), "profile fetch failed", "error", err)
		b.WithError(apperrors.UserMessage(err))
	}
	h.renderDashboardPage(w, r, b.Build())
}
