package httpx

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfTestHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func TestCSRFProtection_GetIssuesCookie(t *testing.T) {
	w := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			csrfCookie = c
		}
	}
	require.NotNil(t, csrfCookie, "CSRF cookie not set")
	assert.NotEmpty(t, csrfCookie.Value)
	assert.False(t, csrfCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, csrfCookie.SameSite)
	assert.Equal(t, csrfCookie.Value, w.Body.String(), "token exposed to templates")
}

func TestCSRFProtection_ReusesExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "existing"})
	w := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(w, req)

	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, "existing", w.Body.String())
}

func TestCSRFProtection_PostWithoutTokenFails(t *testing.T) {
	w := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/properties", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_HeaderToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "matching", header: "tok", want: http.StatusOK},
		{name: "mismatch", header: "other", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/schedules/1/accept", nil)
			req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
			req.Header.Set(DefaultCSRFHeaderName, tt.header)
			w := httptest.NewRecorder()
			csrfTestHandler().ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCSRFProtection_FormToken(t *testing.T) {
	form := url.Values{"csrf_token": {"tok"}, "name": {"Azure Tower"}}
	req := httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	w := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_MultipartToken(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("csrf_token", "tok"))
	part, err := mw.CreateFormFile("images", "front.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/properties", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	w := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_HTMXFailureToasts(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/news", nil)
	req.Header.Set("Hx-Request", "true")
	w := httptest.NewRecorder()
	csrfTestHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Header().Get("Hx-Trigger"), eventShowToast)
}

func TestIsSecureRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isSecureRequest(req))
	req.Header.Set("X-Forwarded-Proto", "http, https")
	assert.True(t, isSecureRequest(req))
}
