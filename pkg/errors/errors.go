package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound marks an absent node, path, or uuid. Routinely
	// handled by callers and never treated as a failure by itself.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates input validation failure.
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing state.
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeStore marks an I/O or corruption failure in the backing
	// engine. Fatal to the current operation, surfaced unchanged.
	ErrorTypeStore ErrorType = "STORE_FAILURE"

	// ErrorTypeInconsistent marks a graph invariant violation, e.g. a
	// parent that cannot be resolved right after its recursive creation.
	ErrorTypeInconsistent ErrorType = "INCONSISTENT_GRAPH"

	// ErrorTypeInternal is the catch-all for unexpected failures.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// NotFound error codes distinguish what kind of handle missed, for caller
// diagnostics.
const (
	CodePathNotFound = "PATH_NOT_FOUND"
	CodeUUIDNotFound = "UUID_NOT_FOUND"
	CodeViewNotFound = "VIEW_NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// NewPathNotFoundError marks a lookup miss through the path index.
func NewPathNotFoundError(path string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodePathNotFound,
		Message:    fmt.Sprintf("no node at path %q", path),
		Details:    map[string]interface{}{"path": path},
		HTTPStatus: http.StatusNotFound,
	}
}

// NewUUIDNotFoundError marks a lookup miss by primary uuid alias.
func NewUUIDNotFoundError(id string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeUUIDNotFound,
		Message:    fmt.Sprintf("no node with uuid %s", id),
		Details:    map[string]interface{}{"uuid": id},
		HTTPStatus: http.StatusNotFound,
	}
}

// NewViewNotFoundError marks a missing saved view for a focal uuid.
func NewViewNotFoundError(focal string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeViewNotFound,
		Message:    fmt.Sprintf("no saved view for focal %s", focal),
		Details:    map[string]interface{}{"focal_uuid": focal},
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewStoreError wraps a backing-engine failure. No retry happens below
// this point; retry policy belongs to the caller.
func NewStoreError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeStore,
		Message:    fmt.Sprintf("store operation %q failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewInconsistentGraphError marks an invariant violation in the persisted
// graph. These indicate a bug, not a recoverable condition.
func NewInconsistentGraphError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInconsistent,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsNotFound reports whether the error chain contains a NotFound.
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsPathNotFound reports a NotFound that missed through the path index.
func IsPathNotFound(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound && appErr.Code == CodePathNotFound
}

// IsUUIDNotFound reports a NotFound that missed by uuid alias.
func IsUUIDNotFound(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound && appErr.Code == CodeUUIDNotFound
}

// IsStoreFailure reports whether the error chain contains a store failure.
func IsStoreFailure(err error) bool {
	return hasType(err, ErrorTypeStore)
}

// IsInconsistentGraph reports whether the chain contains an invariant
// violation.
func IsInconsistentGraph(err error) bool {
	return hasType(err, ErrorTypeInconsistent)
}

// IsValidation reports whether the chain contains a validation error.
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsConflict reports whether the chain contains a conflict error.
func IsConflict(err error) bool {
	return hasType(err, ErrorTypeConflict)
}

func hasType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}
