package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dpshade/child-issue/internal/models"
)

// DefaultWordWrap is the wrap width used for markdown previews
const DefaultWordWrap = 80

// NewMarkdownRenderer creates a glamour renderer with improved contrast handling
func NewMarkdownRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	// GLAMOUR_STYLE wins over detection
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()

	var styleOption glamour.TermRendererOption
	switch profile {
	case termenv.TrueColor, termenv.ANSI256:
		if lipgloss.HasDarkBackground() {
			styleOption = glamour.WithStandardStyle("dark")
		} else {
			styleOption = glamour.WithStandardStyle("light")
		}
	case termenv.Ascii:
		styleOption = glamour.WithStandardStyle("notty")
	default:
		styleOption = glamour.WithAutoStyle()
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// IssueMarkdown lays an issue record out as a markdown document
func IssueMarkdown(record *models.IssueRecord) string {
	var b strings.Builder
	b.WriteString("# " + record.Title + "\n\n")
	if len(record.Labels) > 0 {
		quoted := make([]string, 0, len(record.Labels))
		for _, label := range record.Labels {
			quoted = append(quoted, "`"+label+"`")
		}
		b.WriteString("**Labels:** " + strings.Join(quoted, " ") + "\n\n")
	}
	if record.Assignee != nil {
		b.WriteString("**Assignee:** @" + *record.Assignee + "\n\n")
	}
	if record.Body != nil {
		b.WriteString("---\n\n")
		b.WriteString(*record.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderIssueMarkdown renders record for the terminal through glamour
func RenderIssueMarkdown(record *models.IssueRecord, wordWrap int) (string, error) {
	r, err := NewMarkdownRenderer(wordWrap)
	if err != nil {
		return "", err
	}
	return r.Render(IssueMarkdown(record))
}
