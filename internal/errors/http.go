package errors

import (
	"context"
	"errors"
	"net/http"
)

// FromStatus maps a backend API response status to an AppError. message is
// the API's own error text when it supplied one.
func FromStatus(status int, message string) *AppError {
	code := ErrCodeInternal
	fallback := "The backend API returned an unexpected error."
	switch status {
	case http.StatusNotFound:
		code, fallback = ErrCodeNotFound, "Record not found."
	case http.StatusConflict:
		code, fallback = ErrCodeConflict, "This record conflicts with an existing one."
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code, fallback = ErrCodeValidation, "The backend API rejected the submitted data."
	case http.StatusUnauthorized, http.StatusForbidden:
		code, fallback = ErrCodeUnauthorized, "Your session is not allowed to do that. Please sign in again."
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		code, fallback = ErrCodeTimeout, "The backend API timed out. Please try again."
	}
	if message == "" {
		message = fallback
	}
	return &AppError{Code: code, Message: message}
}

// FromTransport classifies a transport-level failure (no response received).
func FromTransport(err error) *AppError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "The backend API timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	default:
		return Wrap(err, ErrCodeInternal, "The backend API is unreachable.")
	}
}

// HTTPStatus returns the status code a handler should answer with for err.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeForeignKey:
		return http.StatusConflict
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
