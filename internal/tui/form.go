package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formField describes one text input of a form
type formField struct {
	label       string
	placeholder string
	charLimit   int
	width       int
}

// form is a vertical list of text inputs with tab navigation
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

// formResult is returned by form.update
type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

func newForm(fields ...formField) *form {
	f := &form{
		labels: make([]string, len(fields)),
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.CharLimit = fd.charLimit
		in.Width = fd.width
		f.labels[i] = fd.label
		f.inputs[i] = in
	}
	return f
}

// start focuses the first field
func (f *form) start() tea.Cmd {
	f.focus = 0
	return f.inputs[0].Focus()
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) set(i int, v string) {
	f.inputs[i].SetValue(v)
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	n := len(f.inputs)
	f.focus = (f.focus + delta + n) % n
	return f.inputs[f.focus].Focus()
}

// update routes a message to the focused input. Enter on the last field
// and ctrl+s submit; esc cancels.
func (f *form) update(msg tea.Msg) (formResult, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return formCancelled, nil
		case "tab", "down":
			return formEditing, f.move(1)
		case "shift+tab", "up":
			return formEditing, f.move(-1)
		case "ctrl+s":
			return formSubmitted, nil
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return formSubmitted, nil
			}
			return formEditing, f.move(1)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formEditing, cmd
}

func (f *form) view() string {
	var b strings.Builder
	for i, label := range f.labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == f.focus {
			indicator = "> "
			labelStyle = focusedStyle
		}
		fmt.Fprintf(&b, "%s%s\n  %s\n\n", indicator, labelStyle.Render(label), f.inputs[i].View())
	}
	return b.String()
}
