package errors

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrorCode represents a specific failure class
type ErrorCode string

const (
	// Collection errors
	ErrorCodeUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrorCodeProbeUnavailable    ErrorCode = "PROBE_UNAVAILABLE"
	ErrorCodeProbeTimeout        ErrorCode = "PROBE_TIMEOUT"

	// Store errors
	ErrorCodeDuplicateRecord  ErrorCode = "DUPLICATE_RECORD"
	ErrorCodeRecordNotFound   ErrorCode = "RECORD_NOT_FOUND"
	ErrorCodeInvalidRecord    ErrorCode = "INVALID_RECORD"
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Anything not classified above
	ErrorCodeUnknown ErrorCode = "UNKNOWN_FAILURE"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Timestamp  time.Time              `json:"timestamp"`
	RunID      string                 `json:"run_id,omitempty"`
	StackTrace string                 `json:"-"` // Logged at debug level only, never shown to the user
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for the error class. Zero is
// never returned; callers only reach this after a failed run.
func (e *AppError) ExitCode() int {
	switch e.Code {
	case ErrorCodeDuplicateRecord:
		return 2
	case ErrorCodeUnsupportedPlatform:
		return 3
	case ErrorCodeProbeUnavailable:
		return 4
	case ErrorCodeProbeTimeout:
		return 5
	case ErrorCodePermissionDenied:
		return 6
	case ErrorCodeRecordNotFound:
		return 7
	case ErrorCodeInvalidRecord:
		return 8
	default:
		return 1
	}
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Timestamp:  time.Now(),
		StackTrace: getStackTrace(),
	}
}

// NewAppErrorWithCause creates a new application error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Cause:      cause,
		Timestamp:  time.Now(),
		StackTrace: getStackTrace(),
	}
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRunID tags the error with the collection run it belongs to
func (e *AppError) WithRunID(runID string) *AppError {
	e.RunID = runID
	return e
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Predefined error constructors for common cases

// UnsupportedPlatformError creates an error for an OS the collector has no
// probe strategy for
func UnsupportedPlatformError(osName string) *AppError {
	return NewAppError(ErrorCodeUnsupportedPlatform,
		fmt.Sprintf("unsupported operating system: %s", osName)).
		WithDetail("operating_system", osName)
}

// ProbeUnavailableError creates an error for a probe that could not produce
// a value on this machine
func ProbeUnavailableError(probe string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeProbeUnavailable,
		fmt.Sprintf("probe '%s' could not produce a value", probe), cause).
		WithDetail("probe", probe)
}

// ProbeTimeoutError creates an error for a probe that overran its deadline
func ProbeTimeoutError(probe string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeProbeTimeout,
		fmt.Sprintf("probe '%s' overran its deadline", probe), cause).
		WithDetail("probe", probe)
}

// DuplicateRecordError creates an error for a machine that is already catalogued
func DuplicateRecordError(mac string) *AppError {
	return NewAppError(ErrorCodeDuplicateRecord, "machine already catalogued").
		WithDetail("mac_address", mac)
}

// RecordNotFoundError creates an error for a replace that matched nothing
func RecordNotFoundError(mac string) *AppError {
	return NewAppError(ErrorCodeRecordNotFound, "no catalogued record for this machine").
		WithDetail("mac_address", mac)
}

// InvalidRecordError creates an error for a record that fails validation
func InvalidRecordError(message string) *AppError {
	return NewAppError(ErrorCodeInvalidRecord, message)
}

// PermissionDeniedError creates an error for a store path the process may
// not read or write
func PermissionDeniedError(path string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodePermissionDenied,
		fmt.Sprintf("no permission to read or write '%s'", path), cause).
		WithDetail("path", path)
}

// UnknownError creates an error for an unclassified failure
func UnknownError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeUnknown, message, cause)
}

// Error handling utilities

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to AppError if possible, unwrapping as needed
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error's failure class, or ErrorCodeUnknown for errors
// that never went through this package
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrorCodeUnknown
}

// WrapError wraps a generic error as an unknown failure
func WrapError(err error, message string) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return NewAppErrorWithCause(ErrorCodeUnknown, message, err)
}
