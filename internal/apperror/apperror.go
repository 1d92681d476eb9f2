// Package apperror is the error taxonomy shared by every layer: components
// raise the most specific Kind they can, and the service façade wraps
// anything unclassified as Internal before it crosses the boundary.
package apperror

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Kind classifies a failure.
type Kind string

const (
	KindUserNotFound             Kind = "USER_NOT_FOUND"
	KindInvalidCredentials       Kind = "INVALID_CREDENTIALS"
	KindUserAlreadyExists        Kind = "USER_ALREADY_EXISTS"
	KindEmailAlreadyInUse        Kind = "EMAIL_ALREADY_IN_USE"
	KindCurrentPasswordIncorrect Kind = "CURRENT_PASSWORD_INCORRECT"
	KindURLNotFound              Kind = "URL_NOT_FOUND"
	KindInvalidURL               Kind = "INVALID_URL"
	KindCustomAliasTaken         Kind = "CUSTOM_ALIAS_TAKEN"
	KindShortCodeExhausted       Kind = "SHORT_CODE_EXHAUSTED"
	KindValidation               Kind = "VALIDATION_ERROR"
	KindStoreUnavailable         Kind = "STORE_UNAVAILABLE"
	KindInternal                 Kind = "INTERNAL_ERROR"
)

// FieldError is one validation violation, addressed by field path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is the single error type surfaced by the core. Operational errors
// are expected, user-facing failures; everything else is logged with full
// context and reported generically.
type Error struct {
	Kind        Kind
	Message     string
	Operational bool
	Fields      []FieldError
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an operational error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Operational: true}
}

// Validation builds a ValidationError carrying every violation found.
func Validation(fields []FieldError) *Error {
	return &Error{
		Kind:        KindValidation,
		Message:     "validation failed",
		Operational: true,
		Fields:      fields,
	}
}

// StoreUnavailable wraps a store-level failure.
func StoreUnavailable(err error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Message: "key-value store unavailable",
		Err:     err,
	}
}

// Internal wraps an unclassified failure, preserving the cause for logs.
func Internal(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the status the excluded web layer should emit.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUserNotFound, KindURLNotFound:
		return http.StatusNotFound
	case KindInvalidCredentials, KindCurrentPasswordIncorrect:
		return http.StatusUnauthorized
	case KindUserAlreadyExists, KindEmailAlreadyInUse, KindCustomAliasTaken:
		return http.StatusConflict
	case KindValidation, KindInvalidURL:
		return http.StatusBadRequest
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Log records err with structured fields. Operational errors log at WARN,
// everything else at ERROR with its cause.
func Log(err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		slog.Error("unclassified error", "error", err, "ts", time.Now().UTC())
		return
	}
	attrs := []any{
		"kind", string(appErr.Kind),
		"message", appErr.Message,
		"ts", time.Now().UTC(),
	}
	for _, f := range appErr.Fields {
		attrs = append(attrs, "field."+f.Path, f.Message)
	}
	if appErr.Operational {
		slog.Warn("operational error", attrs...)
		return
	}
	if appErr.Err != nil {
		attrs = append(attrs, "cause", appErr.Err.Error())
	}
	slog.Error("internal error", attrs...)
}
