package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/labelctl/internal/catalog"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// resultReceiver is a modal that stays open to show a failed submission.
type resultReceiver interface {
	showResult(res catalog.WriteResult) Modal
}

// renderModalFrame centers content in a rounded, accent-bordered box.
func renderModalFrame(theme Theme, width, height, modalWidth int, content string) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// --- Form ---

// formField is one labelled text input. name is the FieldErrors key the
// field reports under; "streaming_links" also collects
// "streaming_links.<platform>".
type formField struct {
	name  string
	label string
	input textinput.Model
}

func newField(name, label, value, placeholder string) formField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.Width = 44
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return formField{name: name, label: label, input: ti}
}

// submitFunc turns the form values into the command that performs the write.
type submitFunc func(values map[string]string) tea.Cmd

// formModal is a vertical stack of inputs submitted as one write.
type formModal struct {
	title   string
	fields  []formField
	focus   int
	errors  catalog.FieldErrors
	message string
	busy    bool
	submit  submitFunc
}

func newFormModal(title string, fields []formField, submit submitFunc) formModal {
	f := formModal{title: title, fields: fields, submit: submit}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// values returns the trimmed input values keyed by field name.
func (f formModal) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		out[field.name] = strings.TrimSpace(field.input.Value())
	}
	return out
}

// fieldError returns the validation message for a field, if any.
func (f formModal) fieldError(name string) string {
	if msg, ok := f.errors[name]; ok {
		return msg
	}
	for k, msg := range f.errors {
		if strings.HasPrefix(k, name+".") {
			return msg
		}
	}
	return ""
}

func (f *formModal) setFocus(idx int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (idx + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

// Update implements Modal.
func (f formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}
	if key.Matches(km, keys.Escape) {
		return f, nil, true
	}
	if f.busy {
		return f, nil, false
	}

	switch {
	case key.Matches(km, keys.Submit):
		return f.doSubmit()
	case key.Matches(km, keys.Confirm):
		if f.focus == len(f.fields)-1 {
			return f.doSubmit()
		}
		f.setFocus(f.focus + 1)
		return f, nil, false
	case key.Matches(km, keys.NextField):
		f.setFocus(f.focus + 1)
		return f, nil, false
	case key.Matches(km, keys.PrevField):
		f.setFocus(f.focus - 1)
		return f, nil, false
	}

	if len(f.fields) == 0 {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(km)
	return f, cmd, false
}

func (f formModal) doSubmit() (Modal, tea.Cmd, bool) {
	if f.submit == nil {
		return f, nil, true
	}
	f.busy = true
	f.errors = nil
	f.message = ""
	return f, f.submit(f.values()), false
}

// showResult implements resultReceiver.
func (f formModal) showResult(res catalog.WriteResult) Modal {
	f.busy = false
	f.errors = res.Fields
	f.message = firstNonEmpty(res.Error, res.Message, "Request failed")
	for i, field := range f.fields {
		if f.fieldError(field.name) != "" {
			f.setFocus(i)
			break
		}
	}
	return f
}

// View implements Modal.
func (f formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	labelWidth := 0
	for _, field := range f.fields {
		labelWidth = max(labelWidth, len(field.label)+2)
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")

	if f.message != "" {
		b.WriteString(styles.DangerText.Render(f.message))
		b.WriteString("\n\n")
	}

	for i, field := range f.fields {
		label := padRight(field.label+":", labelWidth)
		if i == f.focus {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(field.input.View())
		b.WriteString("\n")
		if msg := f.fieldError(field.name); msg != "" {
			b.WriteString(strings.Repeat(" ", labelWidth))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if f.busy {
		b.WriteString(styles.WarningText.Render("Saving..."))
	} else {
		b.WriteString(styles.FaintText.Render("Enter: Next/Save  •  Ctrl+S: Save  •  Esc: Cancel"))
	}

	return renderModalFrame(theme, width, height, min(labelWidth+54, max(width-4, 40)), b.String())
}

// --- Confirm ---

// confirmModal asks a yes/no question and runs onYes on yes.
type confirmModal struct {
	title  string
	prompt string
	onYes  tea.Cmd
}

// Update implements Modal.
func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Yes):
		return c, c.onYes, true
	case key.Matches(km, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

// View implements Modal.
func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.DangerText.Render(c.title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(c.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("y: Yes  •  n/Esc: No"))

	return renderModalFrame(theme, width, height, 50, b.String())
}
