package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "test error", 400)
	expected := "INVALID_INPUT: test error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestAppError_WithCause(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, ErrCodeInternal, "wrapped error", 500)

	if err.Cause != originalErr {
		t.Errorf("Cause = %v, want %v", err.Cause, originalErr)
	}
	if !errors.Is(err, originalErr) {
		t.Error("errors.Is must reach the cause through Unwrap")
	}
}

func TestAppError_WithField(t *testing.T) {
	err := NewInvalidInputError("Validation failed").
		WithField("name", "Channel name is required").
		WithField("url", "Channel URL is required")

	if err.Fields["name"] != "Channel name is required" {
		t.Errorf("Fields[name] = %v", err.Fields["name"])
	}
	if err.Fields["url"] != "Channel URL is required" {
		t.Errorf("Fields[url] = %v", err.Fields["url"])
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
	}{
		{"invalid input", NewInvalidInputError("bad"), ErrCodeInvalidInput, 400},
		{"not found", NewNotFoundError("Channel"), ErrCodeNotFound, 404},
		{"unauthorized", NewUnauthorizedError("no"), ErrCodeUnauthorized, 401},
		{"forbidden", NewForbiddenError("no"), ErrCodeForbidden, 403},
		{"duplicate", NewDuplicateError("taken"), ErrCodeDuplicate, 400},
		{"internal", NewInternalError("oops"), ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %v, want %v", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("Channel")
	if err.Message != "Channel not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Channel not found")
	}
}

func TestGetAppError(t *testing.T) {
	appErr := NewNotFoundError("User")

	if got := GetAppError(appErr); got != appErr {
		t.Errorf("GetAppError() on AppError = %v, want the same error", got)
	}

	wrapped := fmt.Errorf("handler: %w", appErr)
	if got := GetAppError(wrapped); got != appErr {
		t.Errorf("GetAppError() on wrapped = %v, want the inner AppError", got)
	}

	if got := GetAppError(errors.New("plain")); got != nil {
		t.Errorf("GetAppError() on plain error = %v, want nil", got)
	}

	if got := GetAppError(nil); got != nil {
		t.Errorf("GetAppError(nil) = %v, want nil", got)
	}
}
