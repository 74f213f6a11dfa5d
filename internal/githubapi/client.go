// Package githubapi talks to the GitHub REST API: it fetches template files
// from a repository's content tree and creates issues.
package githubapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-hclog"

	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
)

const (
	defaultRetries    = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Options configures a Client
type Options struct {
	Token string
	// BaseURL overrides the API root, e.g. https://ghe.example.com/api/v3/
	BaseURL    string
	HTTPClient *http.Client
	Logger     hclog.Logger
	// Retries bounds retries of retryable read failures; 0 uses the default
	Retries    int
	RetryDelay time.Duration
}

// Client is an authenticated GitHub API client
type Client struct {
	gh       *github.Client
	logger   hclog.Logger
	recovery *errors.ErrorRecovery
}

// NewClient creates a GitHub client from opts
func NewClient(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	gh := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		gh = gh.WithAuthToken(opts.Token)
	}
	gh.UserAgent = "child-issue"

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errors.InvalidInputError("api-url", fmt.Sprintf("%q is not an absolute URL", opts.BaseURL))
		}
		gh.BaseURL = u
	}

	retries := opts.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return &Client{
		gh:       gh,
		logger:   logger.Named("github"),
		recovery: errors.NewErrorRecovery(retries, delay),
	}, nil
}

// Repository scopes the client to one repository
func (c *Client) Repository(owner, name string) *Repository {
	return &Repository{client: c, Owner: owner, Name: name}
}

// Repository is a single GitHub repository
type Repository struct {
	client *Client
	Owner  string
	Name   string
}

// FullName returns "owner/name"
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Fetch returns the decoded text of the file at path in the default branch.
// Every failure except cancellation is a TEMPLATE_RETRIEVAL error.
func (r *Repository) Fetch(ctx context.Context, path string) (string, error) {
	logger := r.client.logger.With("repository", r.FullName(), "path", path)

	var lastErr *errors.AppError
retry:
	for attempt := 0; ; attempt++ {
		content, err := r.fetchOnce(ctx, path)
		if err == nil {
			logger.Debug("fetched template", "bytes", len(content), "attempts", attempt+1)
			return content, nil
		}
		lastErr = err

		if !r.client.recovery.ShouldRetry(err, attempt) || ctx.Err() != nil {
			break
		}
		delay := r.client.recovery.GetRetryDelay(attempt)
		logger.Warn("template fetch failed, retrying", "error", err, "delay", delay)
		select {
		case <-ctx.Done():
			break retry
		case <-time.After(delay):
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		lastErr = classify("fetch template", nil, ctxErr)
	}
	if lastErr.Code == errors.ErrCodeCancelled {
		return "", lastErr
	}
	return "", errors.RetrievalError(path, lastErr)
}

func (r *Repository) fetchOnce(ctx context.Context, path string) (string, *errors.AppError) {
	file, dir, resp, err := r.client.gh.Repositories.GetContents(ctx, r.Owner, r.Name, path, nil)
	if err != nil {
		return "", classify("fetch template", resp, err)
	}
	if file == nil {
		return "", errors.InvalidInputError("template", fmt.Sprintf("%s is a directory with %d entries", path, len(dir)))
	}

	content, err := file.GetContent()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "Template content could not be decoded")
	}
	if !utf8.ValidString(content) {
		return "", errors.NewAppError(errors.ErrCodeInvalidInput, "Non UTF-8 contents in template")
	}
	return content, nil
}

// CreateIssue submits record as a new issue. Creation is never retried.
func (r *Repository) CreateIssue(ctx context.Context, record *models.IssueRecord) (*models.CreatedIssue, error) {
	labels := record.Labels
	if labels == nil {
		labels = []string{}
	}
	req := &github.IssueRequest{
		Title:     github.String(record.Title),
		Body:      record.Body,
		Labels:    &labels,
		Assignee:  record.Assignee,
		Milestone: record.Milestone,
	}

	issue, resp, err := r.client.gh.Issues.Create(ctx, r.Owner, r.Name, req)
	if err != nil {
		appErr := classify("create issue", resp, err)
		switch appErr.Code {
		case errors.ErrCodeUnauthorized, errors.ErrCodeTimeout, errors.ErrCodeCancelled:
			return nil, appErr
		}
		return nil, errors.IssueCreationError(appErr).WithContext("repository", r.FullName())
	}

	created := &models.CreatedIssue{Number: issue.GetNumber(), URL: issue.GetHTMLURL()}
	r.client.logger.Info("created issue", "repository", r.FullName(), "number", created.Number, "url", created.URL)
	return created, nil
}

// classify maps a go-github failure onto an application error code
func classify(operation string, resp *github.Response, err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, fmt.Sprintf("Timed out: %s", operation))
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.CancelledError(operation, err)
	}

	var rateErr *github.RateLimitError
	if stderrors.As(err, &rateErr) {
		appErr := errors.Wrap(err, errors.ErrCodeNetworkFailure, "GitHub rate limit exceeded").
			WithContext("reset", rateErr.Rate.Reset.Time)
		appErr.Retryable = false
		return appErr
	}

	if resp == nil || resp.Response == nil {
		return errors.NetworkError(operation, err)
	}

	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.UnauthorizedError(operation, err).WithContext("status", status)
	case status == http.StatusNotFound:
		return errors.NotFoundError(operation+" target").WithContext("status", status)
	case status >= 500:
		return errors.NetworkError(operation, err).WithContext("status", status)
	default:
		return errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("GitHub rejected request: %s", operation)).
			WithContext("status", status)
	}
}
