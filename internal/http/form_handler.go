package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/realty-admin/internal/errors"
)

// FormParser parses form data from an HTTP request and returns the parsed data
// along with any field-level validation errors.
type FormParser[T any] func(r *http.Request) (T, map[string]string)

// FormSaver persists parsed form data. id is empty in create mode.
type FormSaver[T any] func(ctx context.Context, id string, data T) error

// FormRenderer renders the form template with the given data.
type FormRenderer func(w http.ResponseWriter, r *http.Request, data map[string]any)

// FormHandlerOpts contains all options needed to handle a form submission.
type FormHandlerOpts[T any] struct {
	W        http.ResponseWriter
	R        *http.Request
	Mode     FormMode
	Parser   FormParser[T]
	Save     FormSaver[T]
	Renderer FormRenderer
	AppName  string
	PageMeta PageMeta
	// ExtraData is added to the template data when the form is re-rendered.
	ExtraData map[string]any
	// GetID extracts the record ID. Defaults to r.PathValue("id").
	GetID func(r *http.Request) string
	// OnSuccess answers a successful save. Defaults to an htmx redirect to
	// SuccessURL.
	OnSuccess  func(w http.ResponseWriter, r *http.Request, data T)
	SuccessURL string
}

// HandleForm processes a create or edit submission: parse, validate, save,
// then either re-render the form with errors or answer with success.
func HandleForm[T any](opts FormHandlerOpts[T]) {
	if opts.Parser == nil || opts.Save == nil || opts.Renderer == nil {
		http.Error(opts.W, "misconfigured form handler", http.StatusInternalServerError)
		return
	}
	switch opts.Mode {
	case FormModeEdit, FormModeCreate:
	default:
		http.Error(opts.W, "invalid form mode", http.StatusBadRequest)
		return
	}

	id, ok := checkFormID(opts)
	if !ok {
		return
	}

	data, fieldErrors := opts.Parser(opts.R)
	if len(fieldErrors) > 0 {
		opts.renderFormError(fieldErrors, nil, data)
		return
	}

	if err := opts.Save(opts.R.Context(), id, data); err != nil {
		handleFormServiceError(opts, err, data)
		return
	}

	if opts.OnSuccess != nil {
		opts.OnSuccess(opts.W, opts.R, data)
		return
	}
	HTMX(opts.W).Redirect(opts.SuccessURL)
}

// checkFormID returns the record ID in edit mode and "" in create mode.
func checkFormID[T any](opts FormHandlerOpts[T]) (string, bool) {
	if opts.Mode != FormModeEdit {
		return "", true
	}
	id := getFormID(opts)
	if id == "" {
		http.NotFound(opts.W, opts.R)
		return "", false
	}
	return id, true
}

func getFormID[T any](opts FormHandlerOpts[T]) string {
	if opts.GetID != nil {
		return opts.GetID(opts.R)
	}
	return opts.R.PathValue("id")
}

func handleFormServiceError[T any](opts FormHandlerOpts[T], err error, data T) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		http.Error(opts.W, "request canceled", http.StatusRequestTimeout)
		return
	}
	if apperrors.IsUnauthorized(err) {
		redirectToLogin(opts.W, opts.R)
		return
	}
	opts.renderFormError(nil, err, data)
}

// renderFormError renders the form again with errors and the submitted data.
func (fh FormHandlerOpts[T]) renderFormError(fieldErrors map[string]string, err error, data T) {
	extra := make(map[string]any, len(fh.ExtraData)+2)
	for k, v := range fh.ExtraData {
		extra[k] = v
	}
	extra["Mode"] = fh.Mode
	extra["FormData"] = data

	RenderError(ErrorOpts{
		W:           fh.W,
		R:           fh.R,
		Err:         err,
		FieldErrors: fieldErrors,
		AppName:     fh.AppName,
		PageMeta:    fh.PageMeta,
		Data:        extra,
		Renderer: func(w http.ResponseWriter, r *http.Request, data any) {
			m, _ := data.(map[string]any)
			fh.Renderer(w, r, m)
		},
	})
}
