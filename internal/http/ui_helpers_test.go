package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/mocks"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/service"
	"github.com/target/realty-admin/internal/service/emails"
)

var testCreds = ports.Credentials{Token: "api-token-1"}

// newTestRenderer loads the on-disk templates, skipping when the frontend
// tree is not next to the package.
func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	skipIfNoTemplates(t)
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS(StaticPathFromTest),
	})
	require.NoError(t, err)
	return tr
}

func skipIfNoTemplates(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); err != nil {
		t.Skip("frontend templates not available")
	}
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

type uiFixture struct {
	h      *UIHandlers
	api    *mocks.MockRealtyAPI
	outbox *mocks.MockOutbox
}

// newUIFixture wires the real resource service over a mocked backend API and
// outbox.
func newUIFixture(t *testing.T) uiFixture {
	t.Helper()
	tr := newTestRenderer(t)
	ctrl := gomock.NewController(t)
	api := mocks.NewMockRealtyAPI(ctrl)
	outbox := mocks.NewMockOutbox(ctrl)

	renderer, err := emails.NewRenderer(emails.RendererConfig{AppName: "Realty", SiteURL: "https://realty.example.ph"})
	require.NoError(t, err)
	notifier := service.NewNotificationService(service.NotificationServiceOptions{Outbox: outbox, Renderer: renderer})

	return uiFixture{
		h: &UIHandlers{
			T:         tr,
			Resources: service.NewResourceService(service.ResourceServiceOptions{API: api, Notifier: notifier}),
			Mail:      outbox,
			Config:    UIConfig{SchedulesRefresh: 30 * time.Second},
		},
		api:    api,
		outbox: outbox,
	}
}

func asUser(r *http.Request, role domainauth.Role) *http.Request {
	s := &domainauth.Session{
		ID:        "sess-1",
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "maria@example.ph",
		Role:      role,
		APIToken:  testCreds.Token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return r.WithContext(WithSession(r.Context(), s))
}

func htmxRequest(r *http.Request, target string) *http.Request {
	r.Header.Set("Hx-Request", "true")
	if target != "" {
		r.Header.Set("Hx-Target", target)
	}
	return r
}

// hxEvents decodes the Hx-Trigger header.
func hxEvents(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	raw := w.Header().Get("Hx-Trigger")
	if raw == "" {
		return map[string]any{}
	}
	events := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(raw), &events))
	return events
}

func toastOf(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	toast, ok := hxEvents(t, w)[eventShowToast].(map[string]any)
	if !ok {
		return "", ""
	}
	msg, _ := toast["message"].(string)
	kind, _ := toast["type"].(string)
	return msg, kind
}
