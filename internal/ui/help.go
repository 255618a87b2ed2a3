package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var helpTitles = []string{
	"Views",
	"Navigation",
	"Scrolling",
	"Releases",
	"Admin",
	"Carousel",
	"Logs",
	"General",
}

// renderHelp renders the help overlay from the key map.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	// Two columns keep the overlay inside short terminals.
	var columns [2]strings.Builder
	for i, group := range groups {
		col := &columns[i%2]
		if i < len(helpTitles) {
			col.WriteString(styles.AccentText.Bold(true).Render(helpTitles[i]))
			col.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			col.WriteString(keyStyle.Render(h.Key))
			col.WriteString(styles.Text.Render(h.Desc))
			col.WriteString("\n")
		}
		col.WriteString("\n")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(36).Render(strings.TrimRight(columns[0].String(), "\n")),
		strings.TrimRight(columns[1].String(), "\n"),
	))

	if !m.isAdmin() {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("Admin keys need a signed-in admin (L)"))
	}

	return renderModalFrame(m.theme, m.width, m.height, 80, b.String())
}
