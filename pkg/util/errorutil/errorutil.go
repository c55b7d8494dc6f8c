package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can test kinds with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidAssignment = "INVALID_ASSIGNMENT"
	CodeInvalidMessage    = "INVALID_MESSAGE"
	CodeNotFound          = "NOT_FOUND"
	CodeTenantMismatch    = "TENANT_MISMATCH"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_ERROR"
)

// Kind sentinels for errors.Is.
var (
	ErrValidation        = &DomainError{Code: CodeValidation}
	ErrInvalidTransition = &DomainError{Code: CodeInvalidTransition}
	ErrInvalidAssignment = &DomainError{Code: CodeInvalidAssignment}
	ErrInvalidMessage    = &DomainError{Code: CodeInvalidMessage}
	ErrNotFound          = &DomainError{Code: CodeNotFound}
	ErrTenantMismatch    = &DomainError{Code: CodeTenantMismatch}
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewInvalidTransition(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidTransition, message, http.StatusUnprocessableEntity, details)
}

func NewInvalidAssignment(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidAssignment, message, http.StatusUnprocessableEntity, details)
}

func NewInvalidMessage(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidMessage, message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewTenantMismatch(details map[string]any) error {
	return NewDomainError(CodeTenantMismatch, "ticket belongs to another tenant", http.StatusForbidden, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus == 0 {
			cp := *domainErr
			cp.HTTPStatus = http.StatusInternalServerError
			return &cp
		}
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}
