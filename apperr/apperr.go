package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSignatureMismatch   = errors.New("payment signature mismatch")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add appends a field error. It returns the receiver so calls can be chained.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns e as an error when it holds at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-field validation error.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NotFound wraps ErrNotFound with the name of the missing entity.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

type messageError struct {
	kind error
	msg  string
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

// WithMessage returns an error that matches kind but reads as msg alone.
func WithMessage(kind error, msg string) error {
	return &messageError{kind: kind, msg: msg}
}

// Fields returns the field detail of a validation error, if any.
func Fields(err error) []FieldError {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Fields
	}
	return nil
}

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return "validation"

	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"

	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrConflict):
		return "conflict"

	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"

	case errors.Is(err, ErrForbidden):
		return "forbidden"

	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	default:
		return "internal"
	}
}

var kindToStatus = map[string]int{
	"":                     http.StatusOK,
	"validation":           http.StatusBadRequest,
	"invalid_amount":       http.StatusBadRequest,
	"signature_mismatch":   http.StatusBadRequest,
	"not_found":            http.StatusNotFound,
	"conflict":             http.StatusConflict,
	"unauthorized":         http.StatusUnauthorized,
	"forbidden":            http.StatusForbidden,
	"provider_unavailable": http.StatusBadGateway,
	"timeout":              http.StatusGatewayTimeout,
}

func HTTPStatus(err error) int {
	if s, ok := kindToStatus[Kind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
