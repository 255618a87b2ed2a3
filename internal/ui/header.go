package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/labelctl/internal/api"
	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasReleases && !m.snapshot.HasHealth && m.snapshot.LastError == nil {
		return styles.Header.Width(m.width).Render(
			bg.Render("labelctl", styles.Logo) + bg.Spaces(2) +
				bg.Render("Connecting to "+m.config.BaseURL+"...", styles.WarningText.Bold(true)),
		)
	}

	return styles.Header.Width(m.width).Render(m.buildStatusContent(styles, bg))
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	var parts []string

	parts = append(parts, bg.Render("labelctl", styles.Logo))
	if label := firstNonEmpty(m.config.LabelName, m.config.Label); label != "" && !compact {
		parts = append(parts, bg.Render(label, styles.AccentText))
	}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	case m.snapshot.HasHealth && m.snapshot.Health.Healthy():
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	case m.snapshot.HasHealth:
		parts = append(parts, bg.Render("● "+strings.ToUpper(firstNonEmpty(m.snapshot.Health.Status, "unhealthy")), styles.WarningText))
	}

	if m.session.Authenticated() && m.session.User != nil {
		user := m.session.User.DisplayName()
		if m.session.User.IsAdmin {
			user += " (admin)"
		}
		parts = append(parts, bg.Render(user, styles.InfoText))
	} else {
		parts = append(parts, bg.Render("guest", styles.MutedText))
	}

	counts := fmt.Sprintf("%d", len(m.snapshot.Releases))
	vids := fmt.Sprintf("%d", len(m.snapshot.Videos))
	if compact {
		parts = append(parts,
			bg.Render("R:", styles.MutedText)+bg.Space()+bg.Render(counts, styles.Text)+bg.Spaces(2)+
				bg.Render("V:", styles.MutedText)+bg.Space()+bg.Render(vids, styles.Text))
	} else {
		parts = append(parts,
			bg.Render("Releases:", styles.MutedText)+bg.Space()+bg.Render(counts, styles.Text)+bg.Spaces(2)+
				bg.Render("Videos:", styles.MutedText)+bg.Space()+bg.Render(vids, styles.Text))
	}

	if pending := len(m.snapshot.Optimistic); pending > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d unsynced", pending), styles.WarningText))
	}

	if ts := m.formatTimestamp(time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.refreshing {
		parts = append(parts, bg.Render("refreshing...", styles.FaintText))
	}

	if m.flash.text != "" {
		style := ternary(m.flash.isError, styles.DangerText, styles.SuccessText)
		parts = append(parts, bg.Render(truncate(m.flash.text, ternary(compact, 40, 80)), style))
	}

	return bg.Join(parts, "  ")
}

// formatTimestamp formats the last successful refresh with a relative hint.
func (m Model) formatTimestamp(now time.Time) string {
	updated := m.snapshot.LastUpdated
	if updated.IsZero() {
		return ""
	}
	since := now.Sub(updated)
	out := updated.Local().Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// classifyError returns a short label for a failed read and whether retrying
// can help.
func classifyError(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	apiErr, ok := api.AsError(err)
	if !ok {
		var fields catalog.FieldErrors
		if errors.As(err, &fields) {
			return "INVALID", false
		}
		return "ERROR", true
	}
	switch apiErr.Kind {
	case api.KindNetwork:
		switch apiErr.Reason {
		case api.ReasonTimeout:
			return "TIMEOUT", true
		case api.ReasonOffline:
			return "OFFLINE", true
		default:
			return "NETWORK", true
		}
	case api.KindCors:
		return "CORS BLOCKED", false
	case api.KindHTTP:
		return fmt.Sprintf("HTTP %d", apiErr.Status), apiErr.Retryable()
	default:
		return "ERROR", true
	}
}

// renderErrorBanner renders the last read failure, or "" when the last
// refresh succeeded.
func (m Model) renderErrorBanner() string {
	err := m.snapshot.LastError
	if err == nil {
		return ""
	}
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	label, retry := classifyError(err)
	msg := err.Error()
	if apiErr, ok := api.AsError(err); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}

	parts := []string{bg.Render(label, styles.DangerText)}
	if m.snapshot.ConsecutiveFailures > 1 {
		parts = append(parts, bg.Render(fmt.Sprintf("x%d", m.snapshot.ConsecutiveFailures), styles.WarningText))
	}
	parts = append(parts, bg.Render(truncate(msg, max(m.width-40, 20)), styles.Text))
	if retry {
		parts = append(parts, bg.Render("r", styles.AccentText)+bg.Sep(":")+bg.Render("retry", styles.MutedText))
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Padding(0, 1).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		commands = []cmd{
			{"Space", ternary(m.logState.follow, "Pause", "Follow")},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"F", "Level " + m.logState.minLevel.String()},
			{"q", "Releases"},
		}
	case ViewCarousel:
		commands = []cmd{
			{"←/→", "Page"},
			{"Space", ternary(m.carousel.paused, "Resume", "Pause")},
			{"f", carouselTagLabel(m.carousel.tag)},
			{"q", "Releases"},
		}
	case ViewVideos:
		commands = []cmd{{"j/k", "Navigate"}}
		if m.isAdmin() {
			commands = append(commands, cmd{"N/E/D", "New/Edit/Delete"}, cmd{"H", "Homepage"})
		}
		commands = append(commands, cmd{"q", "Releases"})
	default:
		f := m.releases.filter
		commands = []cmd{
			{"/", "Search"},
			{"f", firstNonEmpty(f.Type.Label(), "All types")},
			{"s/o", sortLabel(f.Sort, f.Order)},
			{"d", viewLabel(f.View)},
		}
		if f.View == listing.ViewDiscography {
			commands = append(commands, cmd{"[/]", "Letter"})
		}
		if m.isAdmin() {
			commands = append(commands, cmd{"N/E/D", "New/Edit/Delete"})
		}
		commands = append(commands, cmd{"c/v/l", "Views"})
	}
	commands = append(commands,
		cmd{"L", ternary(m.session.Authenticated(), "Logout", "Login")},
		cmd{"?", "More"},
	)

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}
