package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeConnectionRefused, "refused", http.StatusBadGateway)
	if !err.Retryable {
		t.Error("ECONNREFUSED should be retryable")
	}
}

func TestConnectionRefused_NoCause(t *testing.T) {
	err := ConnectionRefused()
	if err.Code != ErrCodeConnectionRefused {
		t.Errorf("expected ECONNREFUSED, got %s", err.Code)
	}
	if err.Cause != nil {
		t.Error("expected no cause on normalized connection error")
	}
	if err.Error() != "ECONNREFUSED: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	a := ConnectionRefused()
	b := ConnectionRefused()
	if !stderrors.Is(a, b) {
		t.Error("expected two ECONNREFUSED errors to match")
	}

	wrapped := fmt.Errorf("call failed: %w", a)
	if !stderrors.Is(wrapped, ConnectionRefused()) {
		t.Error("expected wrapped ECONNREFUSED to match")
	}

	if stderrors.Is(a, NotFound("profile", "x")) {
		t.Error("expected different codes not to match")
	}
	if stderrors.Is(a, stderrors.New("connection refused")) {
		t.Error("expected plain error not to match")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("profile", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
	if err.Details["resource"] != "profile" {
		t.Errorf("expected resource=profile, got %v", err.Details["resource"])
	}
}

func TestAppError_Unsupported(t *testing.T) {
	err := Unsupported("fast", "version", "HTTP/2")
	if err.Code != ErrCodeUnsupported {
		t.Errorf("expected UNSUPPORTED, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "version=HTTP/2") {
		t.Errorf("expected option in message, got %q", err.Message)
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	root := fmt.Errorf("root cause")
	err := InvalidInput("timeout", "bad duration").WithCause(root)
	if !stderrors.Is(err, root) {
		t.Error("expected errors.Is to find root cause")
	}
	if !strings.Contains(err.Error(), "cause: root cause") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Errorf("expected k=v, got %v", err.Details["k"])
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ConnectionRefused", ConnectionRefused(), ErrCodeConnectionRefused, http.StatusBadGateway, true},
		{"Timeout", Timeout("call"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"InvalidInput", InvalidInput("f", "r"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Validation", Validation("bad"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"NotFound", NotFound("profile", "x"), ErrCodeNotFound, http.StatusNotFound, false},
		{"Unsupported", Unsupported("e", "o", 1), ErrCodeUnsupported, http.StatusBadRequest, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.HTTPStatus)
			}
			if tt.err.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, tt.err.Retryable)
			}
		})
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	wrapped := fmt.Errorf("wrapped: %w", NotFound("profile", "fast"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to fail for plain error")
	}
}
