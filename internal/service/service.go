// Package service turns configuration and a template into an issue and submits it.
package service

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dpshade/child-issue/internal/config"
	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
	"github.com/dpshade/child-issue/internal/renderer"
	"github.com/dpshade/child-issue/internal/template"
)

// emptyAssignee is how templates spell "no assignee"
const emptyAssignee = "''"

// TemplateSource supplies raw template text by name
type TemplateSource interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// IssueCreator submits a finished issue record
type IssueCreator interface {
	CreateIssue(ctx context.Context, record *models.IssueRecord) (*models.CreatedIssue, error)
}

// Service provides the issue building workflow
type Service struct {
	source  TemplateSource
	creator IssueCreator
	logger  hclog.Logger
}

// NewService creates a new service instance. creator may be nil when only
// building records.
func NewService(source TemplateSource, creator IssueCreator, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		source:  source,
		creator: creator,
		logger:  logger,
	}
}

// RenderTemplate parses raw and substitutes placeholders in its body
func RenderTemplate(raw string, subs map[string]string, parserName, mode string) (models.TemplateMetadata, error) {
	parser, err := template.NewParser(parserName)
	if err != nil {
		return models.TemplateMetadata{}, err
	}
	r, err := renderer.NewRenderer(mode)
	if err != nil {
		return models.TemplateMetadata{}, err
	}

	meta, err := parser.Parse(raw)
	if err != nil {
		return models.TemplateMetadata{}, err
	}
	meta.Body = r.RenderText(meta.Body, subs)
	return meta, nil
}

// BuildIssue assembles the issue record described by cfg. With a template
// the template is fetched, parsed and substituted, then the configured
// title, assignee and labels are merged over it. A failed fetch stops the
// build.
func (s *Service) BuildIssue(ctx context.Context, cfg *config.Config) (*models.IssueRecord, error) {
	if cfg.Template == "" {
		return &models.IssueRecord{
			Title:     cfg.Title,
			Body:      models.StringPtr(cfg.Body),
			Labels:    cfg.Labels,
			Assignee:  models.StringPtr(cfg.Assignee),
			Milestone: cfg.Milestone,
		}, nil
	}

	if s.source == nil {
		return nil, errors.InternalError("no template source configured")
	}

	logger := s.logger.With("template", cfg.Template)
	raw, err := s.source.Fetch(ctx, cfg.Template)
	if err != nil {
		switch {
		case errors.IsCancelled(err):
			if !errors.IsAppError(err) {
				err = errors.CancelledError("fetch template", err)
			}
		case !errors.HasCode(err, errors.ErrCodeTemplateRetrieval):
			err = errors.RetrievalError(cfg.Template, err)
		}
		return nil, err
	}

	meta, err := RenderTemplate(raw, cfg.Substitutions, cfg.Parser, cfg.SubstitutionMode)
	if err != nil {
		return nil, err
	}
	if missing := renderer.Unmatched(meta.Body, cfg.Substitutions); len(missing) > 0 {
		logger.Warn("template placeholders left unsubstituted", "placeholders", missing)
	}
	logger.Debug("parsed template", "title", meta.Title, "labels", meta.Labels)

	record := TemplateRecord(meta)
	record.Labels = mergeLabels(record.Labels, cfg.Labels)
	record.Milestone = cfg.Milestone
	if cfg.Title != "" {
		record.Title = cfg.Title
	}
	if cfg.Assignee != "" {
		record.Assignee = models.StringPtr(cfg.Assignee)
	}

	if record.Title == "" {
		return nil, errors.MissingFieldError("title").WithDetails("neither the input nor the template provides a title")
	}
	return record, nil
}

// CreateIssue builds the record for cfg and submits it. On a dry run the
// record is returned without being submitted and the created issue is nil.
func (s *Service) CreateIssue(ctx context.Context, cfg *config.Config) (*models.IssueRecord, *models.CreatedIssue, error) {
	record, err := s.BuildIssue(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DryRun {
		s.logger.Info("dry run, issue not submitted", "title", record.Title)
		return record, nil, nil
	}
	if s.creator == nil {
		return record, nil, errors.InternalError("no issue creator configured")
	}

	created, err := s.creator.CreateIssue(ctx, record)
	if err != nil {
		return record, nil, err
	}
	return record, created, nil
}

// TemplateRecord converts parsed template metadata into an issue record.
// A blank assignee, or the quoted empty string templates use as a
// placeholder, means no assignee.
func TemplateRecord(meta models.TemplateMetadata) *models.IssueRecord {
	body := meta.Body
	record := &models.IssueRecord{
		Title:  meta.Title,
		Body:   &body,
		Labels: meta.Labels,
	}
	if meta.Assignee != nil {
		if a := strings.TrimSpace(*meta.Assignee); a != "" && a != emptyAssignee {
			record.Assignee = &a
		}
	}
	return record
}

// mergeLabels appends extra to labels, skipping exact duplicates
func mergeLabels(labels, extra []string) []string {
	if len(extra) == 0 {
		return labels
	}
	merged := append([]string(nil), labels...)
	seen := make(map[string]bool, len(merged))
	for _, l := range merged {
		seen[l] = true
	}
	for _, l := range extra {
		if !seen[l] {
			seen[l] = true
			merged = append(merged, l)
		}
	}
	return merged
}
