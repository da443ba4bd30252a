package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "resource not found"},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_UnwrapThroughFmt(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("list properties: %w", Wrap(cause, ErrCodeInternal, "failed"))

	if !errors.Is(wrapped, cause) {
		t.Fatalf("errors.Is should reach the cause through AppError")
	}
	if GetCode(wrapped) != ErrCodeInternal {
		t.Errorf("GetCode() = %v, want %v", GetCode(wrapped), ErrCodeInternal)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  ErrorCode
		check func(error) bool
	}{
		{"not found", NotFound("x"), ErrCodeNotFound, IsNotFound},
		{"not found formatted", NotFoundf("property %s", "p1"), ErrCodeNotFound, IsNotFound},
		{"conflict", Conflict("x"), ErrCodeConflict, IsConflict},
		{"validation", Validation("x"), ErrCodeValidation, IsValidation},
		{"validation field", ValidationField("email", "x"), ErrCodeValidation, IsValidation},
		{"unauthorized", Unauthorized("x"), ErrCodeUnauthorized, IsUnauthorized},
		{"internal", Internal("x"), ErrCodeInternal, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if !tt.check(tt.err) {
				t.Errorf("predicate did not match %v", tt.err)
			}
		})
	}

	if got := NotFoundf("property %s", "p1").Message; got != "property p1" {
		t.Errorf("NotFoundf message = %q", got)
	}
	if got := Validation("100% required").Message; got != "100% required" {
		t.Errorf("message without args must not be formatted, got %q", got)
	}
	if got := ValidationField("email", "x").Field; got != "email" {
		t.Errorf("Field = %q, want email", got)
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, ErrCodeInternal, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(NotFound("Property not found.")); got != "Property not found." {
		t.Errorf("UserMessage(AppError) = %q", got)
	}
	if got := UserMessage(errors.New("dial tcp 10.0.0.1:443: refused")); got != "Something went wrong. Please try again." {
		t.Errorf("UserMessage(plain) leaked detail: %q", got)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status  int
		message string
		want    ErrorCode
		wantMsg string
	}{
		{http.StatusNotFound, "", ErrCodeNotFound, "Record not found."},
		{http.StatusConflict, "slug taken", ErrCodeConflict, "slug taken"},
		{http.StatusUnprocessableEntity, "price must be positive", ErrCodeValidation, "price must be positive"},
		{http.StatusBadRequest, "", ErrCodeValidation, "The backend API rejected the submitted data."},
		{http.StatusUnauthorized, "", ErrCodeUnauthorized, ""},
		{http.StatusForbidden, "", ErrCodeUnauthorized, ""},
		{http.StatusGatewayTimeout, "", ErrCodeTimeout, ""},
		{http.StatusBadGateway, "", ErrCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			got := FromStatus(tt.status, tt.message)
			if got.Code != tt.want {
				t.Errorf("FromStatus(%d).Code = %v, want %v", tt.status, got.Code, tt.want)
			}
			if tt.wantMsg != "" && got.Message != tt.wantMsg {
				t.Errorf("FromStatus(%d).Message = %q, want %q", tt.status, got.Message, tt.wantMsg)
			}
			if got.Message == "" {
				t.Errorf("FromStatus(%d) must always carry a message", tt.status)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Validation("x"), http.StatusUnprocessableEntity},
		{Unauthorized("x"), http.StatusUnauthorized},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
