package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/child-issue/internal/models"
)

func typeText(f *PlaceholderForm, text string) {
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestPlaceholderFormFillAndSubmit(t *testing.T) {
	form := NewPlaceholderForm([]string{"name", "date"})

	typeText(form, "alice")
	form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, form.Submitted(), "enter on a middle field moves on")
	assert.Equal(t, 1, form.focused)

	typeText(form, "2024-01-01")
	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.True(t, form.Submitted())
	assert.False(t, form.Cancelled())
	assert.Equal(t, map[string]string{"name": "alice", "date": "2024-01-01"}, form.Values())
}

func TestPlaceholderFormNavigationWraps(t *testing.T) {
	form := NewPlaceholderForm([]string{"a", "b", "c"})

	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 2, form.focused)

	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, form.focused)

	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, form.focused)
	assert.True(t, form.inputs[1].Focused())
	assert.False(t, form.inputs[0].Focused())
}

func TestPlaceholderFormCancel(t *testing.T) {
	form := NewPlaceholderForm([]string{"a"})
	typeText(form, "x")

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, form.Cancelled())
	assert.False(t, form.Submitted())
}

func TestPlaceholderFormEmptyKeys(t *testing.T) {
	form := NewPlaceholderForm(nil)
	cmd := form.Init()
	require.NotNil(t, cmd)
	assert.True(t, form.Submitted())
	assert.Empty(t, form.Values())

	values, err := PromptPlaceholders(nil, strings.NewReader(""), &strings.Builder{})
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestPlaceholderFormView(t *testing.T) {
	form := NewPlaceholderForm([]string{"reviewer"})
	view := form.View()
	assert.Contains(t, view, "reviewer")
	assert.Contains(t, view, "esc cancel")

	form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, form.View())
}

func TestIssueMarkdown(t *testing.T) {
	body := "Details here"
	assignee := "octocat"
	record := &models.IssueRecord{
		Title:    "Broken build",
		Body:     &body,
		Labels:   []string{"bug", "ci"},
		Assignee: &assignee,
	}

	md := IssueMarkdown(record)
	assert.True(t, strings.HasPrefix(md, "# Broken build\n"))
	assert.Contains(t, md, "**Labels:** `bug` `ci`")
	assert.Contains(t, md, "**Assignee:** @octocat")
	assert.Contains(t, md, "Details here")

	bare := IssueMarkdown(&models.IssueRecord{Title: "Only title"})
	assert.Equal(t, "# Only title\n\n", bare)
}

func TestRenderIssueMarkdown(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "notty")
	out, err := RenderIssueMarkdown(&models.IssueRecord{Title: "Preview"}, DefaultWordWrap)
	require.NoError(t, err)
	assert.Contains(t, out, "Preview")
}

func TestRenderTemplateList(t *testing.T) {
	out := RenderTemplateList([]models.TemplateInfo{
		{Name: "bug.md", Title: "Bug report"},
		{Name: "chore.md"},
	})
	assert.Contains(t, out, "bug.md")
	assert.Contains(t, out, "Bug report")
	assert.Contains(t, out, "(no title)")

	assert.Contains(t, RenderTemplateList(nil), "No templates found")
}
