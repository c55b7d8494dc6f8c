package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsStatusAndKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   error
		status int
	}{
		{name: "validation", err: NewValidationError("bad", nil), kind: ErrValidation, status: http.StatusBadRequest},
		{name: "transition", err: NewInvalidTransition("bad", nil), kind: ErrInvalidTransition, status: http.StatusUnprocessableEntity},
		{name: "assignment", err: NewInvalidAssignment("bad", nil), kind: ErrInvalidAssignment, status: http.StatusUnprocessableEntity},
		{name: "message", err: NewInvalidMessage("bad", nil), kind: ErrInvalidMessage, status: http.StatusUnprocessableEntity},
		{name: "not found", err: NewNotFound("ticket", nil), kind: ErrNotFound, status: http.StatusNotFound},
		{name: "tenant", err: NewTenantMismatch(nil), kind: ErrTenantMismatch, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Fatalf("errors.Is(%v, kind) = false", wrapped)
			}
			if got := ToDomainError(wrapped).HTTPStatus; got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestToDomainError(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil error should stay nil")
	}

	plain := errors.New("boom")
	got := ToDomainError(plain)
	if got.Code != CodeInternal || got.HTTPStatus != http.StatusInternalServerError || !errors.Is(got, plain) {
		t.Errorf("plain error mapped to %+v", got)
	}

	bare := ToDomainError(&DomainError{Code: CodeNotFound, Message: "gone"})
	if bare.HTTPStatus != http.StatusInternalServerError || bare.Code != CodeNotFound {
		t.Errorf("statusless error mapped to %+v", bare)
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFound("ticket", map[string]any{"id": "t-1"})
	if err.Error() != "ticket not found" {
		t.Errorf("message = %q", err.Error())
	}
}
