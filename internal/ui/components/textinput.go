package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/autismart/autismart/internal/ui/theme"
)

// TextInput is a focused single-line field with an inline error line.
// Digits-only fields drop any other printable key.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
	Err         string
}

func NewTextInput(placeholder string, numericOnly bool, charLimit int) TextInput {
	m := textinput.New()
	m.Placeholder = placeholder
	if charLimit > 0 {
		m.CharLimit = charLimit
	}
	m.Focus()
	return TextInput{Model: m, NumericOnly: numericOnly}
}

func (t TextInput) Init() tea.Cmd { return t.Model.Focus() }

// Update forwards to the wrapped model. Editing clears Err.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if t.NumericOnly && rejectsKey(kmsg.String()) {
			return t, nil
		}
		t.Err = ""
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func rejectsKey(key string) bool {
	return len(key) == 1 && (key[0] < '0' || key[0] > '9')
}

func (t TextInput) View() string {
	if t.Err == "" {
		return t.Model.View()
	}
	return t.Model.View() + "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.Err)
}

// Value is the input with surrounding space trimmed.
func (t TextInput) Value() string { return strings.TrimSpace(t.Model.Value()) }

func (t TextInput) NumericValue() (int, error) { return strconv.Atoi(t.Value()) }

func (t *TextInput) Focus() tea.Cmd { return t.Model.Focus() }

func (t *TextInput) Blur() { t.Model.Blur() }
