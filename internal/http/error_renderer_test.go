package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/realty-admin/internal/errors"
)

// mockRenderer captures the data passed to it.
type mockRenderer struct {
	called bool
	data   map[string]any
}

func (m *mockRenderer) render(_ http.ResponseWriter, _ *http.Request, data any) {
	m.called = true
	m.data, _ = data.(map[string]any)
}

func TestRenderError_FieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/properties", nil)
	mock := &mockRenderer{}

	RenderError(ErrorOpts{
		W: w, R: r,
		FieldErrors: map[string]string{"name": "Name is required."},
		Renderer:    mock.render,
		PageMeta:    PageMeta{PageTitle: "New Property", CurrentPage: PageResources},
	})

	require.True(t, mock.called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"name": "Name is required."}, mock.data["Errors"])
	assert.Equal(t, errMsgFixBelow, mock.data["ErrorMessage"])
	assert.Equal(t, "New Property - "+defaultAppName, mock.data["Title"])
}

func TestRenderError_APIFieldError(t *testing.T) {
	mock := &mockRenderer{}
	err := fmt.Errorf("update property: %w", apperrors.ValidationField("price", "Price must be positive."))

	RenderError(ErrorOpts{
		W: httptest.NewRecorder(), R: httptest.NewRequest(http.MethodPost, "/properties/1", nil),
		Err:      err,
		Renderer: mock.render,
		Data:     map[string]any{"Mode": FormModeEdit},
	})

	assert.Equal(t, map[string]string{"price": "Price must be positive."}, mock.data["Errors"])
	assert.Equal(t, errMsgFixBelow, mock.data["ErrorMessage"])
	assert.Equal(t, FormModeEdit, mock.data["Mode"])
}

func TestRenderError_GeneralErrorWithToastAndStatus(t *testing.T) {
	w := httptest.NewRecorder()
	mock := &mockRenderer{}

	RenderError(ErrorOpts{
		W: w, R: httptest.NewRequest(http.MethodPost, "/news", nil),
		Err:        apperrors.Conflict("A story with this title already exists."),
		Renderer:   mock.render,
		StatusCode: http.StatusConflict,
		ShowToast:  true,
		AppName:    "Casa Admin",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "A story with this title already exists.", mock.data["ErrorMessage"])
	assert.Contains(t, w.Header().Get("Hx-Trigger"), "already exists")
	assert.Equal(t, "Casa Admin", mock.data["AppName"])
}

func TestRenderError_NilRenderer(t *testing.T) {
	w := httptest.NewRecorder()
	RenderError(ErrorOpts{W: w, R: httptest.NewRequest(http.MethodGet, "/", nil)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProcessError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      string
		wantField string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "timeout", err: context.DeadlineExceeded, want: "Request timed out. Please try again."},
		{name: "canceled", err: fmt.Errorf("list: %w", context.Canceled), want: "Request was canceled."},
		{name: "app error", err: apperrors.NotFound("Listing not found."), want: "Listing not found."},
		{name: "field", err: apperrors.ValidationField("email", "Invalid email."), want: errMsgFixBelow, wantField: "email"},
		{name: "plain", err: errors.New("dial tcp: refused"), want: "An error occurred. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fieldErrs map[string]string
			assert.Equal(t, tt.want, processError(tt.err, &fieldErrs))
			if tt.wantField != "" {
				assert.Contains(t, fieldErrs, tt.wantField)
			} else {
				assert.Empty(t, fieldErrs)
			}
		})
	}
}

func TestDetermineErrorStatus(t *testing.T) {
	assert.Zero(t, DetermineErrorStatus(nil))
	assert.Zero(t, DetermineErrorStatus(apperrors.Validation("bad")))
	assert.Zero(t, DetermineErrorStatus(errors.New("boom")))
	assert.Equal(t, http.StatusConflict, DetermineErrorStatus(apperrors.Conflict("dup")))
	assert.Equal(t, http.StatusNotFound, DetermineErrorStatus(apperrors.NotFound("gone")))
}
