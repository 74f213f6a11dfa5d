package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/child-issue/internal/errors"
)

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var formKeys = formKeyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next / submit")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

// PlaceholderForm asks for a value for each placeholder the mapping left unmatched
type PlaceholderForm struct {
	keys      []string
	inputs    []textinput.Model
	focused   int
	submitted bool
	cancelled bool
}

// NewPlaceholderForm creates a form with one input per key, the first one focused
func NewPlaceholderForm(keys []string) *PlaceholderForm {
	inputs := make([]textinput.Model, len(keys))
	for i, k := range keys {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = k
		inputs[i].CharLimit = 500
		inputs[i].Width = 60
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}

	return &PlaceholderForm{
		keys:   keys,
		inputs: inputs,
	}
}

// Init implements tea.Model
func (f *PlaceholderForm) Init() tea.Cmd {
	if len(f.inputs) == 0 {
		f.submitted = true
		return tea.Quit
	}
	return textinput.Blink
}

// Update implements tea.Model
func (f *PlaceholderForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(f.inputs) == 0 {
		f.submitted = true
		return f, tea.Quit
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, formKeys.Cancel):
			f.cancelled = true
			return f, tea.Quit
		case key.Matches(msg, formKeys.Submit):
			if f.focused == len(f.inputs)-1 {
				f.submitted = true
				return f, tea.Quit
			}
			return f, f.focus(f.focused + 1)
		case key.Matches(msg, formKeys.Next):
			return f, f.focus((f.focused + 1) % len(f.inputs))
		case key.Matches(msg, formKeys.Prev):
			return f, f.focus((f.focused - 1 + len(f.inputs)) % len(f.inputs))
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return f, cmd
}

func (f *PlaceholderForm) focus(i int) tea.Cmd {
	f.inputs[f.focused].Blur()
	f.focused = i
	return f.inputs[f.focused].Focus()
}

// View implements tea.Model
func (f *PlaceholderForm) View() string {
	if f.submitted || f.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Fill in template placeholders"))
	b.WriteString("\n\n")
	for i, k := range f.keys {
		label := StyleFormLabel
		if i == f.focused {
			label = StyleFormLabelFocused
		}
		b.WriteString(label.Render(k))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	help := []string{
		formKeys.Next.Help().Key + " " + formKeys.Next.Help().Desc,
		formKeys.Submit.Help().Key + " " + formKeys.Submit.Help().Desc,
		formKeys.Cancel.Help().Key + " " + formKeys.Cancel.Help().Desc,
	}
	b.WriteString(StyleFormHelp.Render(strings.Join(help, " • ")))
	return StyleCard.Render(b.String())
}

// Submitted reports whether the last field was confirmed
func (f *PlaceholderForm) Submitted() bool {
	return f.submitted
}

// Cancelled reports whether the form was abandoned
func (f *PlaceholderForm) Cancelled() bool {
	return f.cancelled
}

// Values returns the entered values keyed by placeholder name. Empty inputs
// are included so the placeholder is replaced with nothing.
func (f *PlaceholderForm) Values() map[string]string {
	values := make(map[string]string, len(f.keys))
	for i, k := range f.keys {
		values[k] = f.inputs[i].Value()
	}
	return values
}

// PromptPlaceholders runs the form on the given terminal streams and returns
// the values entered for keys.
func PromptPlaceholders(keys []string, in io.Reader, out io.Writer) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	form := NewPlaceholderForm(keys)
	program := tea.NewProgram(form, tea.WithInput(in), tea.WithOutput(out))
	if _, err := program.Run(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "Interactive form failed")
	}
	if form.Cancelled() || !form.Submitted() {
		return nil, errors.NewAppError(errors.ErrCodeCancelled, "Placeholder entry cancelled")
	}
	return form.Values(), nil
}
