package httpx

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// SignedOut renders a simple signed-out page with a Sign In button.
func (h *UIHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	redirect := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	loginURL := "/auth/login?redirect_uri=" + url.QueryEscape(redirect)
	if h.T == nil {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}
	data := map[string]any{
		"AppName":     h.appName(),
		"Title":       "Signed out - " + h.appName(),
		"RedirectURI": redirect,
		"LoginURL":    loginURL,
	}
	// Buffered so a template failure can still redirect.
	var buf bytes.Buffer
	if err := h.T.Execute(&buf, tmplSignedOut, data); err != nil {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger().Error("failed to write signed-out response", "error", err)
	}
}

// NotFound handles 404 errors: an HTML page for browsers and JSON otherwise.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("not found"),
		})
		return
	}
	h.renderErrorPage(w, r, http.StatusNotFound, "The page you're looking for doesn't exist.")
}

// renderErrorPage renders the standalone error layout.
func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	isAuthenticated := SessionFrom(r.Context()) != nil
	data := map[string]any{
		"AppName":         h.appName(),
		"Title":           http.StatusText(status) + " - " + h.appName(),
		"Code":            strconv.Itoa(status),
		"Message":         message,
		"IsAuthenticated": isAuthenticated,
		"ShowLogin":       !isAuthenticated,
		"RedirectURI":     r.URL.RequestURI(),
	}

	if h.T == nil {
		http.Error(w, message, status)
		return
	}
	var buf bytes.Buffer
	if err := h.T.Execute(&buf, "error-layout", data); err != nil {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
