package errors

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

var (
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"})
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"})
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "11"})
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "24", Dark: "12"})
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"})
)

// CLIErrorHandler handles errors for the command line.
//
// When Actions is set the handler additionally writes a workflow command to
// Workflow so the failure is annotated on the GitHub Actions run.
type CLIErrorHandler struct {
	Verbose  bool
	Actions  bool
	Out      io.Writer
	Workflow io.Writer
	Logger   hclog.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(out io.Writer, logger hclog.Logger, verbose, actions bool) *CLIErrorHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CLIErrorHandler{
		Verbose:  verbose,
		Actions:  actions,
		Out:      out,
		Workflow: out,
		Logger:   logger,
	}
}

// HandleError logs err, writes the user-facing rendering and returns the AppError
func (h *CLIErrorHandler) HandleError(err error) error {
	if err == nil {
		return nil
	}
	appErr := GetAppError(err)

	args := []interface{}{"code", appErr.Code, "category", appErr.Category}
	if appErr.Cause != nil {
		args = append(args, "cause", appErr.Cause)
	}
	for k, v := range appErr.Context {
		args = append(args, k, v)
	}
	h.Logger.Debug(appErr.Message, args...)

	if h.Actions && h.Workflow != nil {
		fmt.Fprintln(h.Workflow, ActionsAnnotation(appErr))
	}
	fmt.Fprintln(h.Out, h.FormatError(appErr))
	return appErr
}

// FormatError formats an error for terminal display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	var line string
	switch appErr.Severity {
	case SeverityCritical:
		line = criticalStyle.Render("CRITICAL: " + appErr.Message)
	case SeverityError:
		line = errorStyle.Render("ERROR: " + appErr.Message)
	case SeverityWarning:
		line = warningStyle.Render("WARNING: " + appErr.Message)
	case SeverityInfo:
		line = infoStyle.Render("INFO: " + appErr.Message)
	default:
		line = errorStyle.Render(appErr.Message)
	}

	if !h.Verbose {
		return line
	}
	if appErr.Details != "" {
		line += "\n" + detailStyle.Render("  details: "+appErr.Details)
	}
	if appErr.Cause != nil {
		line += "\n" + detailStyle.Render(fmt.Sprintf("  caused by: %v", appErr.Cause))
	}
	return line
}

// ActionsAnnotation renders err as a GitHub Actions ::error workflow command
func ActionsAnnotation(err error) string {
	appErr := GetAppError(err)
	msg := appErr.Message
	if appErr.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, appErr.Cause)
	}
	return fmt.Sprintf("::error title=%s::%s", appErr.Code, escapeWorkflowData(msg))
}

func escapeWorkflowData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

// ErrorRecovery provides retry decisions for retryable errors
type ErrorRecovery struct {
	MaxRetries int
	RetryDelay time.Duration
}

// NewErrorRecovery creates a new error recovery instance
func NewErrorRecovery(maxRetries int, retryDelay time.Duration) *ErrorRecovery {
	return &ErrorRecovery{
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}
}

// ShouldRetry determines if an operation should be retried
func (r *ErrorRecovery) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= r.MaxRetries {
		return false
	}
	return GetAppError(err).IsRetryable()
}

// GetRetryDelay returns the delay before next retry
func (r *ErrorRecovery) GetRetryDelay(attempt int) time.Duration {
	// Exponential backoff: delay * 2^attempt
	return r.RetryDelay * time.Duration(1<<attempt)
}
