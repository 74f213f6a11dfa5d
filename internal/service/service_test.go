package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/child-issue/internal/config"
	"github.com/dpshade/child-issue/internal/errors"
	"github.com/dpshade/child-issue/internal/models"
)

const childTemplate = `---
name: Child
about: Child issue
title: Follow up
labels: new,bug
assignees: hubot

----

Parent: {{ parent }}
Owner: {{ owner }}`

type fakeSource struct {
	templates map[string]string
	err       error
	requested []string
}

func (f *fakeSource) Fetch(_ context.Context, name string) (string, error) {
	f.requested = append(f.requested, name)
	if f.err != nil {
		return "", f.err
	}
	raw, ok := f.templates[name]
	if !ok {
		return "", errors.RetrievalError(name, errors.NotFoundError(name))
	}
	return raw, nil
}

type fakeCreator struct {
	records []*models.IssueRecord
	err     error
}

func (f *fakeCreator) CreateIssue(_ context.Context, record *models.IssueRecord) (*models.CreatedIssue, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.records = append(f.records, record)
	return &models.CreatedIssue{Number: len(f.records), URL: "https://example.test/issues/1"}, nil
}

func newTestService() (*Service, *fakeSource, *fakeCreator) {
	source := &fakeSource{templates: map[string]string{"child.md": childTemplate}}
	creator := &fakeCreator{}
	return NewService(source, creator, nil), source, creator
}

func TestBuildIssueFromTemplate(t *testing.T) {
	svc, source, _ := newTestService()
	milestone := 5

	record, err := svc.BuildIssue(context.Background(), &config.Config{
		Template:      "child.md",
		Title:         "Child of #1",
		Milestone:     &milestone,
		Substitutions: map[string]string{"parent": "#1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"child.md"}, source.requested)
	assert.Equal(t, "Child of #1", record.Title)
	assert.Equal(t, []string{"new", "bug"}, record.Labels)
	require.NotNil(t, record.Body)
	assert.Equal(t, "Parent: #1\nOwner: {{ owner }}", *record.Body)
	require.NotNil(t, record.Assignee)
	assert.Equal(t, "hubot", *record.Assignee)
	assert.Equal(t, &milestone, record.Milestone)
}

func TestBuildIssueTemplateTitleIsFallback(t *testing.T) {
	svc, _, _ := newTestService()

	record, err := svc.BuildIssue(context.Background(), &config.Config{Template: "child.md"})
	require.NoError(t, err)
	assert.Equal(t, "Follow up", record.Title)
}

func TestBuildIssueOverrides(t *testing.T) {
	svc, _, _ := newTestService()

	record, err := svc.BuildIssue(context.Background(), &config.Config{
		Template: "child.md",
		Assignee: "octocat",
		Labels:   []string{"bug", "child"},
	})
	require.NoError(t, err)
	assert.Equal(t, "octocat", *record.Assignee)
	assert.Equal(t, []string{"new", "bug", "child"}, record.Labels)
}

func TestBuildIssueEmptyTemplateAssignee(t *testing.T) {
	source := &fakeSource{templates: map[string]string{
		"none.md": "---\nname: n\nabout: a\ntitle: t\nlabels: ''\nassignees: ''\n\n----\n\nbody",
	}}
	svc := NewService(source, nil, nil)

	record, err := svc.BuildIssue(context.Background(), &config.Config{Template: "none.md"})
	require.NoError(t, err)
	assert.Nil(t, record.Assignee)
	assert.Empty(t, record.Labels)
	assert.Equal(t, "body", *record.Body)
}

func TestBuildIssueWithoutTemplate(t *testing.T) {
	svc, source, _ := newTestService()

	record, err := svc.BuildIssue(context.Background(), &config.Config{
		Title:  "Plain",
		Body:   "Just a body",
		Labels: []string{"x"},
	})
	require.NoError(t, err)
	assert.Empty(t, source.requested)
	assert.Equal(t, "Plain", record.Title)
	assert.Equal(t, "Just a body", *record.Body)
	assert.Equal(t, []string{"x"}, record.Labels)
	assert.Nil(t, record.Assignee)

	record, err = svc.BuildIssue(context.Background(), &config.Config{Title: "No body"})
	require.NoError(t, err)
	assert.Nil(t, record.Body)
}

func TestBuildIssueRetrievalFailureIsFatal(t *testing.T) {
	svc, _, creator := newTestService()

	_, _, err := svc.CreateIssue(context.Background(), &config.Config{Template: "missing.md", Title: "t"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTemplateRetrieval))
	assert.Empty(t, creator.records)

	source := &fakeSource{err: stderrors.New("connection reset")}
	svc = NewService(source, creator, nil)
	_, err = svc.BuildIssue(context.Background(), &config.Config{Template: "child.md", Title: "t"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeTemplateRetrieval))
}

func TestBuildIssueKeepsCancellation(t *testing.T) {
	source := &fakeSource{err: errors.CancelledError("fetch template", context.Canceled)}
	svc := NewService(source, &fakeCreator{}, nil)

	_, err := svc.BuildIssue(context.Background(), &config.Config{Template: "child.md", Title: "t"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCancelled, errors.GetAppError(err).Code)

	source.err = context.Canceled
	_, err = svc.BuildIssue(context.Background(), &config.Config{Template: "child.md", Title: "t"})
	assert.Equal(t, errors.ErrCodeCancelled, errors.GetAppError(err).Code)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildIssueScanMode(t *testing.T) {
	source := &fakeSource{templates: map[string]string{
		"t.md": "---\nname: n\nabout: a\ntitle: t\nlabels: ''\nassignees: ''\n\n----\n\n{{ a }}",
	}}
	svc := NewService(source, nil, nil)
	subs := map[string]string{"a": "{{ b }}", "b": "B"}

	record, err := svc.BuildIssue(context.Background(), &config.Config{Template: "t.md", Substitutions: subs})
	require.NoError(t, err)
	assert.Equal(t, "B", *record.Body)

	record, err = svc.BuildIssue(context.Background(), &config.Config{Template: "t.md", Substitutions: subs, SubstitutionMode: "scan"})
	require.NoError(t, err)
	assert.Equal(t, "{{ b }}", *record.Body)
}

func TestBuildIssueKeyedParser(t *testing.T) {
	source := &fakeSource{templates: map[string]string{
		"keyed.md":  "---\ntitle: Keyed\nlabels: [a, b]\n---\n\nbody {{ x }}",
		"broken.md": "no front matter",
	}}
	svc := NewService(source, nil, nil)
	subs := map[string]string{"x": "X"}

	record, err := svc.BuildIssue(context.Background(), &config.Config{Template: "keyed.md", Parser: "keyed", Substitutions: subs})
	require.NoError(t, err)
	assert.Equal(t, "Keyed", record.Title)
	assert.Equal(t, []string{"a", "b"}, record.Labels)
	assert.Equal(t, "body X", *record.Body)

	_, err = svc.BuildIssue(context.Background(), &config.Config{Template: "broken.md", Parser: "keyed"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedTemplate))

	_, err = svc.BuildIssue(context.Background(), &config.Config{Template: "keyed.md", Parser: "xml"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestBuildIssueNeedsSomeTitle(t *testing.T) {
	source := &fakeSource{templates: map[string]string{"short.md": "---\nname: n"}}
	svc := NewService(source, nil, nil)

	_, err := svc.BuildIssue(context.Background(), &config.Config{Template: "short.md"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingField))
}

func TestCreateIssue(t *testing.T) {
	svc, _, creator := newTestService()

	record, created, err := svc.CreateIssue(context.Background(), &config.Config{Template: "child.md"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 1, created.Number)
	require.Len(t, creator.records, 1)
	assert.Same(t, record, creator.records[0])
}

func TestCreateIssueDryRun(t *testing.T) {
	svc, _, creator := newTestService()

	record, created, err := svc.CreateIssue(context.Background(), &config.Config{Template: "child.md", DryRun: true})
	require.NoError(t, err)
	assert.NotNil(t, record)
	assert.Nil(t, created)
	assert.Empty(t, creator.records)
}

func TestCreateIssuePropagatesCreatorErrors(t *testing.T) {
	creator := &fakeCreator{err: errors.UnauthorizedError("create issue", stderrors.New("401"))}
	svc := NewService(&fakeSource{}, creator, nil)

	record, created, err := svc.CreateIssue(context.Background(), &config.Config{Title: "t"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
	assert.NotNil(t, record)
	assert.Nil(t, created)
}

func TestRenderTemplate(t *testing.T) {
	meta, err := RenderTemplate(childTemplate, map[string]string{"parent": "#9", "owner": "me"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Parent: #9\nOwner: me", meta.Body)
	assert.Equal(t, "Follow up", meta.Title)
}

func TestTemplateRecord(t *testing.T) {
	empty := "''"
	record := TemplateRecord(models.TemplateMetadata{Title: "t", Labels: []string{"a"}, Assignee: &empty, Body: "b"})
	assert.Equal(t, "t", record.Title)
	assert.Equal(t, []string{"a"}, record.Labels)
	assert.Nil(t, record.Assignee)
	require.NotNil(t, record.Body)
	assert.Equal(t, "b", *record.Body)

	named := " octocat "
	record = TemplateRecord(models.TemplateMetadata{Assignee: &named})
	require.NotNil(t, record.Assignee)
	assert.Equal(t, "octocat", *record.Assignee)
}
