package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/realty-admin/internal/errors"
)

// ErrorRenderer renders an error template with the given data.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, data any)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W   http.ResponseWriter
	R   *http.Request
	Err error // optional when only FieldErrors are set
	// FieldErrors maps field names to messages.
	FieldErrors map[string]string
	Renderer    ErrorRenderer
	PageMeta    PageMeta
	AppName     string
	// Data is merged into the template data: submitted values, the resource
	// being edited and so on.
	Data map[string]any
	// StatusCode defaults to 200 so htmx swaps the re-rendered form.
	StatusCode int
	ShowToast  bool
}

// DetermineErrorStatus returns the status an error response should carry, or
// 0 when the form should be re-rendered with the default status. Validation
// failures re-render; conflicts and missing records do not.
func DetermineErrorStatus(err error) int {
	if err == nil || apperrors.IsValidation(err) {
		return 0
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey, apperrors.ErrCodeNotFound:
		return apperrors.HTTPStatus(err)
	}
	return 0
}

// RenderError renders a page or form again with field errors and a general
// message derived from err.
func RenderError(opts ErrorOpts) {
	if opts.Renderer == nil {
		http.Error(opts.W, "misconfigured error renderer", http.StatusInternalServerError)
		return
	}
	appName := opts.AppName
	if appName == "" {
		appName = defaultAppName
	}
	builder := NewPageData(opts.R, opts.PageMeta, appName)

	generalError := processError(opts.Err, &opts.FieldErrors)
	builder.WithFieldErrors(opts.FieldErrors)
	switch {
	case generalError != "":
		builder.WithError(generalError)
	case len(opts.FieldErrors) > 0:
		builder.WithError(errMsgFixBelow)
	}

	for k, v := range opts.Data {
		builder.With(k, v)
	}

	if opts.ShowToast && generalError != "" {
		triggerToast(opts.W, generalError, toastError)
	}
	if opts.StatusCode != 0 {
		opts.W.WriteHeader(opts.StatusCode)
	}
	opts.Renderer(opts.W, opts.R, builder.Build())
}

// processError returns a user-facing message for err. A validation error the
// API attributed to a form field becomes a field error instead.
func processError(err error, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was canceled."
	}

	if field := apperrors.GetField(err); field != "" && apperrors.IsValidation(err) && fieldErrors != nil {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string)
		}
		(*fieldErrors)[field] = apperrors.UserMessage(err)
		return errMsgFixBelow
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.UserMessage(err)
	}
	return "An error occurred. Please try again."
}
