package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppErrorCategorizes(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		category  ErrorCategory
		severity  ErrorSeverity
		retryable bool
	}{
		{ErrCodeMissingField, CategoryValidation, SeverityWarning, false},
		{ErrCodeMalformedTemplate, CategoryTemplate, SeverityWarning, false},
		{ErrCodeTemplateRetrieval, CategoryTemplate, SeverityCritical, false},
		{ErrCodeUnauthorized, CategoryAuthentication, SeverityError, false},
		{ErrCodeNetworkFailure, CategoryNetwork, SeverityError, true},
		{ErrCodeTimeout, CategoryNetwork, SeverityError, true},
		{ErrCodeIssueCreation, CategoryNetwork, SeverityError, false},
		{ErrCodeCancelled, CategorySystem, SeverityInfo, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewAppError(tt.code, "boom")
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.IsRetryable())
			assert.False(t, err.Timestamp.IsZero())
		})
	}
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NetworkError("fetch template", cause).WithDetails("after 3 attempts")

	assert.Equal(t, "NETWORK_FAILURE: Network operation failed: fetch template (after 3 attempts): connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestGetAppErrorUnwrapsChains(t *testing.T) {
	inner := MissingFieldError("title")
	wrapped := fmt.Errorf("building issue: %w", inner)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, inner, GetAppError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeMissingField))
	assert.False(t, HasCode(wrapped, ErrCodeNotFound))
	assert.Equal(t, "title", inner.Context["field"])

	plain := stderrors.New("plain")
	assert.False(t, IsAppError(plain))
	assert.False(t, HasCode(plain, ErrCodeInternalError))
	converted := GetAppError(plain)
	assert.Equal(t, ErrCodeInternalError, converted.Code)
	assert.ErrorIs(t, converted, plain)
}

func TestRetrievalErrorKeepsCause(t *testing.T) {
	notFound := NotFoundError("template bug.md")
	err := RetrievalError("bug.md", notFound)

	assert.Equal(t, ErrCodeTemplateRetrieval, err.Code)
	assert.Equal(t, "bug.md", err.Context["template"])
	assert.True(t, HasCode(err.Cause, ErrCodeNotFound))
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(NewAppError(ErrCodeCancelled, "stop")))
	assert.True(t, IsCancelled(context.Canceled))
	assert.True(t, IsCancelled(fmt.Errorf("fetch: %w", context.Canceled)))

	buried := IssueCreationError(CancelledError("create issue", stderrors.New("interrupt")))
	assert.False(t, HasCode(buried, ErrCodeCancelled))
	assert.True(t, IsCancelled(buried))
	assert.True(t, IsCancelled(RetrievalError("bug.md", NewAppError(ErrCodeCancelled, "stop"))))

	assert.False(t, IsCancelled(nil))
	assert.False(t, IsCancelled(context.DeadlineExceeded))
	assert.False(t, IsCancelled(NetworkError("get", stderrors.New("reset"))))
}

func TestErrorRecovery(t *testing.T) {
	r := NewErrorRecovery(2, 10*time.Millisecond)

	retryable := NetworkError("get", stderrors.New("reset"))
	assert.True(t, r.ShouldRetry(retryable, 0))
	assert.True(t, r.ShouldRetry(retryable, 1))
	assert.False(t, r.ShouldRetry(retryable, 2))
	assert.False(t, r.ShouldRetry(MissingFieldError("org"), 0))
	assert.False(t, r.ShouldRetry(nil, 0))

	assert.Equal(t, 10*time.Millisecond, r.GetRetryDelay(0))
	assert.Equal(t, 40*time.Millisecond, r.GetRetryDelay(2))
}

func TestCLIErrorHandler(t *testing.T) {
	var out, workflow bytes.Buffer
	h := NewCLIErrorHandler(&out, nil, false, true)
	h.Workflow = &workflow

	err := h.HandleError(UnauthorizedError("create issue", stderrors.New("401 Bad credentials")))
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeUnauthorized))

	assert.Contains(t, out.String(), "ERROR: Not authorized to create issue")
	assert.NotContains(t, out.String(), "Bad credentials", "causes are only shown when verbose")
	assert.Equal(t, "::error title=UNAUTHORIZED::Not authorized to create issue: 401 Bad credentials\n", workflow.String())

	assert.NoError(t, h.HandleError(nil))
}

func TestCLIErrorHandlerVerbose(t *testing.T) {
	var out bytes.Buffer
	h := NewCLIErrorHandler(&out, nil, true, false)

	h.HandleError(MissingFieldError("org").WithDetails("GitHub org not provided"))
	assert.Contains(t, out.String(), "WARNING: org is required")
	assert.Contains(t, out.String(), "details: GitHub org not provided")
	assert.NotContains(t, out.String(), "::error")
}

func TestActionsAnnotationEscapes(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "100% wrong\r\nsecond line")
	assert.Equal(t, "::error title=INVALID_INPUT::100%25 wrong%0D%0Asecond line", ActionsAnnotation(err))
}
