package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/logtail"
)

// logLevels is the order F cycles the minimum level through.
var logLevels = []zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel}

// logState holds all log-related state.
type logState struct {
	entries     []logtail.Entry
	minLevel    zerolog.Level
	follow      bool
	lastRefresh time.Time
	err         error

	// Search
	searchActive   bool
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchInput    textinput.Model
	searchMatches  []int // indices into visibleEntries
	searchMatchIdx int

	// Content caching - skip re-render when unchanged
	contentVersion uint64
	lastRendered   uint64
}

type logLinesMsg struct {
	lines []string
	err   error
}

func newLogState() logState {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100
	ti.Prompt = "/"
	return logState{
		minLevel:    zerolog.DebugLevel,
		follow:      true,
		searchInput: ti,
	}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}

	// Box height is contentHeight-1 (status bar below), inner is two less.
	if width := max(m.width-2, 1); width != m.logViewport.Width {
		m.logState.contentVersion++
	}
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.contentHeight()-3, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.lastRendered == 0 || m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = max(m.logState.contentVersion, 1)
		m.logState.contentVersion = m.logState.lastRendered
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// visibleEntries applies the level filter.
func (m Model) visibleEntries() []logtail.Entry {
	return logtail.Filter(m.logState.entries, m.logState.minLevel)
}

// refreshLogs reads the tail of the log file, at most once per
// LogRefreshInterval.
func (m *Model) refreshLogs() tea.Cmd {
	path := m.config.LogFile
	if path == "" {
		return nil
	}
	if time.Since(m.logState.lastRefresh) < LogRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = time.Now()

	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = logtail.ParseLines(msg.lines)
	}
	if m.logState.searchRegex != nil {
		m.findSearchMatches()
	}
	m.logState.contentVersion++
	m.updateLogViewport()
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	height := m.contentHeight() - 1

	title := "Log"
	if m.logState.minLevel > zerolog.DebugLevel {
		title = fmt.Sprintf("Log (%s+)", strings.ToUpper(m.logState.minLevel.String()))
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, height, true)
	return box + "\n" + m.renderLogStatus(styles, bg)
}

// renderLogStatus renders the log status bar.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.searchActive {
		return bg.Render(m.logState.searchInput.View(), styles.AccentText)
	}

	if m.logState.searchRegex != nil && len(m.logState.searchMatches) > 0 {
		return bg.Render("/"+m.logState.searchQuery, styles.AccentText) +
			bg.Render(" - ", styles.FaintText) +
			bg.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches)), styles.WarningText) +
			bg.Render(" - Press ", styles.FaintText) +
			bg.Render("n", styles.AccentText) +
			bg.Render(" for next, ", styles.FaintText) +
			bg.Render("N", styles.AccentText) +
			bg.Render(" for previous, ", styles.FaintText) +
			bg.Render("Esc", styles.AccentText) +
			bg.Render(" to clear", styles.FaintText)
	}
	if m.logState.searchRegex != nil {
		return bg.Render("Pattern not found: "+m.logState.searchQuery, styles.DangerText)
	}

	var parts []string
	autoTail := ternary(m.logState.follow, "on", "off")
	parts = append(parts, bg.Render(fmt.Sprintf("%d lines auto-tail %s", len(m.visibleEntries()), autoTail), styles.FaintText))
	parts = append(parts, bg.Render("level "+m.logState.minLevel.String()+"+", styles.MutedText))
	if m.logState.err != nil {
		parts = append(parts, bg.Render(truncate(m.logState.err.Error(), 60), styles.DangerText))
	}
	if m.config.LogFile != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.config.LogFile, 50), styles.AccentText))
	}

	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return strings.Join(parts, sep)
}

// renderLogContent renders the colorized log lines.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if m.config.LogFile == "" {
		return bg.FillLine(bg.Render("File logging is disabled (set log_file)", styles.MutedText), width)
	}
	entries := m.visibleEntries()
	if len(entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	matchSet := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		matchSet[idx] = true
	}
	activeMatch := -1
	if m.logState.searchMatchIdx < len(m.logState.searchMatches) {
		activeMatch = m.logState.searchMatches[m.logState.searchMatchIdx]
	}

	var b strings.Builder
	for i, e := range entries {
		var line string
		switch {
		case i == activeMatch:
			hl := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.Warning)).
				Foreground(lipgloss.Color(m.theme.Background))
			line = hl.Render(fmt.Sprintf("%4d │ ", i+1) + e.String())
		case matchSet[i]:
			line = bg.Render(fmt.Sprintf("%4d │ ", i+1), styles.AccentText) + bg.Render(e.String(), styles.AccentText)
		default:
			line = bg.Render(fmt.Sprintf("%4d │ ", i+1), styles.FaintText) + m.colorizeEntry(e, styles, bg)
		}
		b.WriteString(bg.FillLine(line, width))
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// colorizeEntry styles the time, level and component of a structured entry.
// Plain lines render as they are.
func (m *Model) colorizeEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if !e.Structured() {
		return bg.Render(e.Raw, styles.Text)
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(bg.Render(e.Time.Local().Format(time.TimeOnly), styles.FaintText))
		b.WriteString(bg.Space())
	}
	if e.Level != zerolog.NoLevel {
		b.WriteString(bg.Render(strings.ToUpper(e.Level.String()), levelStyle(e.Level, styles).Bold(true)))
		b.WriteString(bg.Space())
	}
	if e.Component != "" {
		b.WriteString(bg.Render("["+e.Component+"]", styles.AccentText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(e.Message, styles.Text))

	// The remainder is the key=value tail String() already formats.
	plain := e
	plain.Time, plain.Level, plain.Component, plain.Message = time.Time{}, zerolog.NoLevel, "", ""
	if rest := strings.TrimSpace(plain.String()); rest != "" {
		b.WriteString(bg.Space())
		if e.Error != "" {
			b.WriteString(bg.Render(rest, styles.DangerText))
		} else {
			b.WriteString(bg.Render(rest, styles.MutedText))
		}
	}
	return b.String()
}

func levelStyle(level zerolog.Level, styles Styles) lipgloss.Style {
	switch level {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return styles.InfoText
	case zerolog.InfoLevel:
		return styles.SuccessText
	case zerolog.WarnLevel:
		return styles.WarningText
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return styles.DangerText
	default:
		return styles.Text
	}
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.CycleLevel):
		idx := 0
		for i, l := range logLevels {
			if l == m.logState.minLevel {
				idx = (i + 1) % len(logLevels)
			}
		}
		m.logState.minLevel = logLevels[idx]
		if m.logState.searchRegex != nil {
			m.findSearchMatches()
		}
		m.logState.contentVersion++
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchInput.SetValue("")
		return m, m.logState.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		m.nextSearchMatch()
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		m.previousSearchMatch()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.logState.searchRegex != nil {
			m.clearLogSearch()
			m.updateLogViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
		return m, nil
	}

	return m, nil
}

// handleLogSearchInput handles keyboard input during log search.
func (m Model) handleLogSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.logState.searchInput.Value()
		if query == "" {
			m.logState.searchActive = false
			m.logState.searchInput.Blur()
			return m, nil
		}

		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			// Invalid pattern; stay in search mode.
			return m, nil
		}

		m.logState.searchRegex = re
		m.logState.searchQuery = query
		m.logState.searchActive = false
		m.logState.searchInput.Blur()

		m.findSearchMatches()
		if len(m.logState.searchMatches) > 0 {
			m.logState.searchMatchIdx = 0
			m.scrollToSearchMatch()
		}
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.logState.searchActive = false
		m.logState.searchInput.Blur()
		m.logState.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return m, cmd
}

// clearLogSearch clears the search state.
func (m *Model) clearLogSearch() {
	m.logState.searchRegex = nil
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	m.logState.contentVersion++
}

// findSearchMatches finds all visible entries matching the search regex.
func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	if m.logState.searchRegex == nil {
		return
	}
	for i, e := range m.visibleEntries() {
		if m.logState.searchRegex.MatchString(e.String()) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		m.logState.searchMatchIdx = 0
	}
	m.logState.contentVersion++
}

func (m *Model) nextSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx + 1) % len(m.logState.searchMatches)
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

func (m *Model) previousSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	n := len(m.logState.searchMatches)
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx - 1 + n) % n
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// scrollToSearchMatch centres the current match in the viewport.
func (m *Model) scrollToSearchMatch() {
	if m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		return
	}
	target := m.logState.searchMatches[m.logState.searchMatchIdx]
	m.logState.follow = false
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}
