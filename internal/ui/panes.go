package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// splitWidths divides the content width between a list and a detail pane.
// Extra wide terminals give the detail pane 70%, otherwise 60%.
func splitWidths(width int) (list, detail int) {
	if width >= LayoutExtraWideWidth {
		list = width * 30 / 100
	} else {
		list = width * 40 / 100
	}
	return list, width - list
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := range boxHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// visibleWindow returns the half-open row range of a list of n rows that
// fits height and keeps selected in view, roughly centred.
func visibleWindow(n, selected, height int) (start, end int) {
	if height <= 0 || n == 0 {
		return 0, 0
	}
	if n <= height {
		return 0, n
	}
	selected = min(max(selected, 0), n-1)
	start = max(selected-height/2, 0)
	end = start + height
	if end > n {
		end = n
		start = n - height
	}
	return start, end
}

// navDelta maps a navigation key to a cursor offset for a list showing page
// rows at a time.
func navDelta(msg tea.KeyMsg, keys keyMap, n, page int) (int, bool) {
	page = max(page, 1)
	switch {
	case key.Matches(msg, keys.Up):
		return -1, true
	case key.Matches(msg, keys.Down):
		return 1, true
	case key.Matches(msg, keys.Top):
		return -n, true
	case key.Matches(msg, keys.Bottom):
		return n, true
	case key.Matches(msg, keys.PageUp):
		return -page, true
	case key.Matches(msg, keys.PageDown):
		return page, true
	case key.Matches(msg, keys.HalfPageUp):
		return -max(page/2, 1), true
	case key.Matches(msg, keys.HalfPageDown):
		return max(page/2, 1), true
	}
	return 0, false
}

// moveSelection clamps a cursor moved by delta to a list of n rows.
func moveSelection(current, n, delta int) int {
	if n == 0 {
		return 0
	}
	return min(max(current+delta, 0), n-1)
}

// renderRow pads a list row to width with the row background, using the
// selection colors when selected.
func (m Model) renderRow(content string, width int, bgColor string, selected bool) string {
	if selected {
		bgColor = m.theme.SelectionBg
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bgColor)).
		Width(width).
		MaxWidth(width).
		Render(content)
}

// kv renders one "Label  value" detail line.
func kv(bg BgStyle, styles Styles, label, value string, labelWidth int) string {
	if value == "" {
		value = "-"
	}
	return bg.Render(padRight(label, labelWidth), styles.MutedText) + bg.Render(value, styles.Text)
}
