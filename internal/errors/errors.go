package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates invalid input data; it never reaches the network.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeCaptcha indicates a missing, rejected or unverifiable captcha token.
	ErrCodeCaptcha ErrorCode = "captcha"
	// ErrCodeRateLimited indicates the identity service throttled the request.
	ErrCodeRateLimited ErrorCode = "rate_limited"
	// ErrCodeInvalidCredentials indicates an email/password mismatch.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeDuplicateAccount indicates the email is already registered.
	ErrCodeDuplicateAccount ErrorCode = "duplicate_account"
	// ErrCodeProvider indicates any other failure reported by the identity service.
	ErrCodeProvider ErrorCode = "provider"
	// ErrCodeProfileLookup indicates the post-authentication role lookup failed.
	ErrCodeProfileLookup ErrorCode = "profile_lookup"
	// ErrCodeSession indicates an absent, expired or unverifiable session.
	ErrCodeSession ErrorCode = "session"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// Message is always safe to show to end users; Cause carries the detail for logs.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field is the form field that caused the error (validation only)
	Field string
	// Fields carries every field error of a failed form validation
	Fields map[string]string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// ValidationFields creates a Validation error carrying a set of field errors.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "Please fix the errors below.",
		Fields:  fields,
	}
}

// Captcha creates a new Captcha error.
func Captcha(message string) *AppError {
	return &AppError{Code: ErrCodeCaptcha, Message: message}
}

// Session creates a new Session error.
func Session(message string) *AppError {
	return &AppError{Code: ErrCodeSession, Message: message}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// IsAppError reports whether err wraps an AppError with the given code.
func IsAppError(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return IsAppError(err, ErrCodeValidation) }

// IsCaptcha checks if an error is a Captcha error.
func IsCaptcha(err error) bool { return IsAppError(err, ErrCodeCaptcha) }

// IsAuthProvider reports whether err is any classified identity-service failure.
func IsAuthProvider(err error) bool {
	switch GetCode(err) {
	case ErrCodeRateLimited, ErrCodeInvalidCredentials, ErrCodeDuplicateAccount, ErrCodeProvider:
		return true
	default:
		return false
	}
}

// IsProfileLookup checks if an error is a ProfileLookup error.
func IsProfileLookup(err error) bool { return IsAppError(err, ErrCodeProfileLookup) }

// IsSession checks if an error is a Session error.
func IsSession(err error) bool { return IsAppError(err, ErrCodeSession) }

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return IsAppError(err, ErrCodeNotFound) }

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool { return IsAppError(err, ErrCodeInternal) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return IsAppError(err, ErrCodeTimeout) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// GetFields returns the field error map of a validation error (nil otherwise).
func GetFields(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// UserMessage returns the user-facing message of an AppError, or fallback for anything else.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
