// Package errors provides unified error handling across child-issue.
//
// Every failure that reaches the CLI is an *AppError carrying a stable code,
// a category and a severity. The template parser and the substitution
// engine never produce errors on the legacy path; the codes below cover the
// I/O glue around them (configuration, template retrieval, the GitHub API)
// and the opt-in strict parser.
//
// USAGE PATTERNS:
// - Create errors: use constructors such as MissingFieldError(), RetrievalError()
// - Wrap errors: use Wrap() to attach a code to an existing error
// - Check types: use IsAppError(), GetAppError() or HasCode()
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Input errors
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField      ErrorCode = "MISSING_FIELD"
	ErrCodeMalformedTemplate ErrorCode = "MALFORMED_TEMPLATE"

	// Retrieval errors
	ErrCodeTemplateRetrieval ErrorCode = "TEMPLATE_RETRIEVAL"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"

	// Remote API errors
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeIssueCreation  ErrorCode = "ISSUE_CREATION"
	ErrCodeNetworkFailure ErrorCode = "NETWORK_FAILURE"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"

	// Local tooling errors
	ErrCodeGitFailure    ErrorCode = "GIT_FAILURE"
	ErrCodeCancelled     ErrorCode = "CANCELLED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryTemplate       ErrorCategory = "template"
	CategoryNetwork        ErrorCategory = "network"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryGit            ErrorCategory = "git"
	CategorySystem         ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
		Retryable: isRetryable(code),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeInvalidInput, ErrCodeMissingField:
		return CategoryValidation, SeverityWarning
	case ErrCodeMalformedTemplate:
		return CategoryTemplate, SeverityWarning
	case ErrCodeTemplateRetrieval:
		return CategoryTemplate, SeverityCritical
	case ErrCodeNotFound:
		return CategoryTemplate, SeverityError
	case ErrCodeUnauthorized:
		return CategoryAuthentication, SeverityError
	case ErrCodeIssueCreation, ErrCodeNetworkFailure, ErrCodeTimeout:
		return CategoryNetwork, SeverityError
	case ErrCodeGitFailure:
		return CategoryGit, SeverityWarning
	case ErrCodeCancelled:
		return CategorySystem, SeverityInfo
	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical
	default:
		return CategorySystem, SeverityError
	}
}

// isRetryable determines if an error is retryable based on its code
func isRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeNetworkFailure, ErrCodeTimeout:
		return true
	default:
		return false
	}
}

// IsAppError checks if err is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsCancelled reports whether any error in err's cause chain is a
// cancellation, including a bare context.Canceled
func IsCancelled(err error) bool {
	if stderrors.Is(err, context.Canceled) {
		return true
	}
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == ErrCodeCancelled {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Common error constructors

func InvalidInputError(field, reason string) *AppError {
	return NewAppError(ErrCodeInvalidInput, fmt.Sprintf("Invalid value for %s: %s", field, reason)).
		WithContext("field", field)
}

func MissingFieldError(field string) *AppError {
	return NewAppError(ErrCodeMissingField, fmt.Sprintf("%s is required", field)).
		WithContext("field", field)
}

func MalformedTemplateError(reason string) *AppError {
	return NewAppError(ErrCodeMalformedTemplate, fmt.Sprintf("Malformed template: %s", reason))
}

// RetrievalError marks a template fetch failure; callers must stop
func RetrievalError(name string, err error) *AppError {
	return Wrap(err, ErrCodeTemplateRetrieval, fmt.Sprintf("Template %q could not be fetched", name)).
		WithContext("template", name)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func UnauthorizedError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeUnauthorized, fmt.Sprintf("Not authorized to %s", operation))
}

func IssueCreationError(err error) *AppError {
	return Wrap(err, ErrCodeIssueCreation, "Issue could not be created")
}

func NetworkError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeNetworkFailure, fmt.Sprintf("Network operation failed: %s", operation))
}

func GitError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeGitFailure, fmt.Sprintf("Git operation failed: %s", operation))
}

func CancelledError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCancelled, fmt.Sprintf("Cancelled: %s", operation))
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}
