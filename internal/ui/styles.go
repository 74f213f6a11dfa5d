package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/child-issue/internal/models"
)

// Design System Colors - each adapts to the terminal background
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "125", Dark: "205"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "24", Dark: "33"}

	ColorText      = lipgloss.AdaptiveColor{Light: "232", Dark: "252"}
	ColorTextMuted = lipgloss.AdaptiveColor{Light: "240", Dark: "244"}
	ColorTextDim   = lipgloss.AdaptiveColor{Light: "244", Dark: "240"}
	ColorBorder    = lipgloss.AdaptiveColor{Light: "248", Dark: "238"}
)

var (
	StyleTitle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1)

	StyleTextMuted = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	StyleTextDim = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	StyleFormLabel = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)

	StyleFormLabelFocused = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	StyleFormHelp = lipgloss.NewStyle().
		Foreground(ColorTextDim).
		Italic(true).
		Padding(0, 1)

	StyleCard = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(1, 2)
)

// forceThemeFromEnv lets GLAMOUR_STYLE pin the palette the same way it pins
// the markdown preview.
func forceThemeFromEnv() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}
}

func init() {
	forceThemeFromEnv()
}

// RenderTemplateList formats local templates for the templates command
func RenderTemplateList(infos []models.TemplateInfo) string {
	if len(infos) == 0 {
		return StyleTextMuted.Render("No templates found")
	}

	width := 0
	for _, info := range infos {
		if len(info.Name) > width {
			width = len(info.Name)
		}
	}

	var b strings.Builder
	for _, info := range infos {
		name := StyleFormLabel.Render(fmt.Sprintf("%-*s", width, info.Name))
		title := info.Title
		if title == "" {
			title = StyleTextDim.Render("(no title)")
		} else {
			title = StyleTextMuted.Render(title)
		}
		b.WriteString(name + "  " + title + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

