package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/realty-admin/internal/ports"
)

func newTestRouter(t *testing.T, f uiFixture, readiness map[string]ReadinessCheck) http.Handler {
	t.Helper()
	skipIfNoTemplates(t)
	return NewRouter(RouterServices{
		Resources:  f.h.Resources,
		Mail:       f.h.Mail,
		UI:         f.h.Config,
		Readiness:  readiness,
		Metrics:    http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS(StaticPathFromTest),
	})
}

func serve(h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, newUIFixture(t), nil)

	w := serve(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, healthResponse, w.Body.String())

	w = serve(router, http.MethodHead, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRouter_Readiness(t *testing.T) {
	router := newTestRouter(t, newUIFixture(t), map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
	})

	w := serve(router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, newUIFixture(t), nil)
	w := serve(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())
}

func TestRouter_ResourceList(t *testing.T) {
	f := newUIFixture(t)
	router := newTestRouter(t, f, nil)
	f.api.EXPECT().List(gomock.Any(), gomock.Any(), "api/listings", gomock.Any()).Return(ports.ListResult{}, nil)

	w := serve(router, http.MethodGet, "/listings", map[string]string{"Accept": "text/html"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="toolbar-listings"`)
}

func TestRouter_ReadOnlyResourcesHaveNoCreate(t *testing.T) {
	router := newTestRouter(t, newUIFixture(t), nil)

	w := serve(router, http.MethodPost, "/applications", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t, newUIFixture(t), nil)

	t.Run("browser gets the error page", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/no-such-page", map[string]string{"Accept": "text/html"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "The page you&#39;re looking for doesn&#39;t exist.")
	})

	t.Run("api clients get json", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/no-such-page", map[string]string{"Accept": "application/json"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("missing static asset stays plain", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/static/css/missing.css", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotContains(t, w.Body.String(), "<html")
	})
}

func TestRouter_StaticCacheHeaders(t *testing.T) {
	router := newTestRouter(t, newUIFixture(t), nil)

	w := serve(router, http.MethodGet, "/static/css/app.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	w = serve(router, http.MethodGet, "/static/css/app.css?v=abc123", nil)
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
}
