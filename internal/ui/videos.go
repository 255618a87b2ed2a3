package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/labelctl/internal/catalog"
)

type videosState struct {
	selected   int
	selectedID int64

	detailID  int64
	detail    *catalog.Video
	related   []catalog.Video
	detailErr error
	loading   bool
}

func (m Model) selectedVideo() *catalog.Video {
	videos := m.snapshot.Videos
	if m.videos.selected < 0 || m.videos.selected >= len(videos) {
		return nil
	}
	v := videos[m.videos.selected]
	return &v
}

// homepageSlot returns the zero-based homepage position showing v, or -1.
// Slots are matched by YouTube id so watch and embed URLs compare equal.
func homepageSlot(v catalog.Video, slots [catalog.HomepageSlots]string) int {
	id := v.YouTubeID()
	for i, url := range slots {
		if url == "" {
			continue
		}
		if url == v.YouTubeURL || (id != "" && catalog.Video{YouTubeURL: url}.YouTubeID() == id) {
			return i
		}
	}
	return -1
}

func (m *Model) updateVideoSelection() {
	videos := m.snapshot.Videos
	if len(videos) == 0 {
		m.videos.selected = 0
		m.videos.selectedID = 0
		m.requestVideoDetail()
		return
	}
	if m.videos.selectedID != 0 {
		for i, v := range videos {
			if v.ID == m.videos.selectedID {
				m.videos.selected = i
				m.requestVideoDetail()
				return
			}
		}
	}
	m.videos.selected = min(max(m.videos.selected, 0), len(videos)-1)
	m.videos.selectedID = videos[m.videos.selected].ID
	m.requestVideoDetail()
}

func (m *Model) requestVideoDetail() {
	if m.currentView != ViewVideos {
		return
	}
	sel := m.selectedVideo()
	if sel == nil {
		m.videos.detailID = 0
		m.videos.detail = nil
		m.videos.related = nil
		m.videos.detailErr = nil
		m.videos.loading = false
		return
	}
	if sel.ID == m.videos.detailID {
		return
	}
	m.videos.detailID = sel.ID
	m.videos.detail = nil
	m.videos.related = nil
	m.videos.detailErr = nil
	m.videos.loading = true
	if m.detail != nil {
		m.detail.Submit(detailRequest{kind: detailVideo, id: sel.ID})
	}
}

// handleVideosKey processes keyboard input for the videos view.
func (m Model) handleVideosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.EditHomepage):
		if !m.requireAdmin() {
			return m, nil
		}
		m.modal = newHomepageForm(m.ctx, m.backend, m.snapshot.HomepageVideos)
		return m, nil

	case key.Matches(msg, m.keys.New):
		if !m.requireAdmin() {
			return m, nil
		}
		m.modal = newVideoForm(m.ctx, m.backend, catalog.VideoInput{})
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if !m.requireAdmin() {
			return m, nil
		}
		v := m.selectedVideo()
		if v == nil {
			return m, nil
		}
		if d := m.videos.detail; d != nil && d.ID == v.ID {
			v = d
		}
		m.modal = newVideoForm(m.ctx, m.backend, catalog.VideoInput{
			ID:          v.ID,
			Title:       v.Title,
			Artist:      v.Artist,
			YouTubeURL:  v.YouTubeURL,
			Description: v.Description,
		})
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if !m.requireAdmin() {
			return m, nil
		}
		v := m.selectedVideo()
		if v == nil {
			return m, nil
		}
		prompt := fmt.Sprintf("Delete video %q?", v.Title)
		if slot := homepageSlot(*v, m.snapshot.HomepageVideos); slot >= 0 {
			prompt += fmt.Sprintf(" It is homepage slot %d.", slot+1)
		}
		m.modal = confirmModal{title: "Delete video", prompt: prompt, onYes: deleteVideoCmd(m.ctx, m.backend, v.ID)}
		return m, nil
	}

	n := len(m.snapshot.Videos)
	if delta, ok := navDelta(msg, m.keys, n, m.contentHeight()-2); ok && n > 0 {
		m.videos.selected = moveSelection(m.videos.selected, n, delta)
		m.videos.selectedID = m.snapshot.Videos[m.videos.selected].ID
		m.requestVideoDetail()
	}
	return m, nil
}

// renderVideos renders the video list and its detail pane.
func (m Model) renderVideos() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if !m.snapshot.HasVideos && m.snapshot.LastError == nil {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Loading videos..."))
	}

	listWidth, detailWidth := splitWidths(m.width)
	title := fmt.Sprintf("Videos %d", len(m.snapshot.Videos))
	listPane := m.renderTitledBox(title, m.renderVideoList(listWidth-2, height-2), listWidth, height, true)
	detailPane := m.renderTitledBox("Details", m.renderVideoDetail(detailWidth-4), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) renderVideoList(width, height int) string {
	bgColor := m.theme.FocusBg
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	videos := m.snapshot.Videos
	if len(videos) == 0 {
		return bg.FillLine(bg.Render("No videos", styles.MutedText), width)
	}

	start, end := visibleWindow(len(videos), m.videos.selected, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		v := videos[i]
		selected := i == m.videos.selected
		rowBg := NewBgStyle(ternary(selected, m.theme.SelectionBg, bgColor))

		slotStyle, titleStyle, artistStyle := styles.WarningText, styles.Text, styles.MutedText
		if selected {
			sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			slotStyle, titleStyle, artistStyle = sel, sel, sel
		}

		slot := "  "
		if s := homepageSlot(v, m.snapshot.HomepageVideos); s >= 0 {
			slot = fmt.Sprintf("★%d", s+1)
		}
		avail := max(width-4, 8)
		title := truncate(v.Title, max(avail*3/5, 4))
		artist := truncate(v.Artist, max(avail-len([]rune(title))-3, 1))

		row := rowBg.Render(slot, slotStyle) + rowBg.Space() + rowBg.Render(title, titleStyle)
		if artist != "" {
			row += rowBg.Render(" · ", artistStyle) + rowBg.Render(artist, artistStyle)
		}
		lines = append(lines, m.renderRow(row, width, bgColor, selected))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderVideoDetail(width int) string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	styles := m.theme.Styles()

	const labelWidth = 12
	var lines []string
	add := func(label, value string) {
		lines = append(lines, kv(bg, styles, label, truncateMiddle(value, max(width-labelWidth, 8)), labelWidth))
	}

	if sel := m.selectedVideo(); sel != nil {
		v := *sel
		if d := m.videos.detail; d != nil && d.ID == v.ID {
			v = *d
		}
		lines = append(lines, bg.Render(truncate(v.Title, width), styles.Text.Bold(true)))
		lines = append(lines, bg.Render(truncate(v.Artist, width), styles.AccentText))
		lines = append(lines, "")
		add("YouTube ID", firstNonEmpty(v.YouTubeID(), "unrecognised link"))
		add("URL", v.YouTubeURL)
		add("ID", fmt.Sprintf("#%d", v.ID))
		if ts := formatStamp(v.CreatedAt); ts != "" {
			add("Created", ts)
		}
		if desc := wrapText(v.Description, width); len(desc) > 0 {
			lines = append(lines, "")
			for _, l := range desc {
				lines = append(lines, bg.Render(l, styles.Text))
			}
		}

		lines = append(lines, "", bg.Render("More from "+firstNonEmpty(v.Artist, "this artist"), styles.AccentText.Bold(true)))
		switch {
		case m.videos.loading:
			lines = append(lines, bg.Render("Loading...", styles.FaintText))
		case m.videos.detailErr != nil:
			lines = append(lines, bg.Render(truncate(m.videos.detailErr.Error(), width), styles.DangerText))
		case len(m.videos.related) == 0:
			lines = append(lines, bg.Render("Nothing else yet", styles.FaintText))
		default:
			for _, r := range m.videos.related {
				lines = append(lines, bg.Render("• "+truncate(r.Title, width-2), styles.Text))
			}
		}
	} else {
		lines = append(lines, bg.Render("Select a video", styles.MutedText))
	}

	lines = append(lines, "", bg.Render("Homepage", styles.AccentText.Bold(true)))
	for i, url := range m.snapshot.HomepageVideos {
		label := fmt.Sprintf("Slot %d", i+1)
		if url == "" {
			lines = append(lines, bg.Render(padRight(label, labelWidth), styles.MutedText)+bg.Render("empty", styles.FaintText))
			continue
		}
		name := url
		for _, v := range m.snapshot.Videos {
			if homepageSlot(v, m.snapshot.HomepageVideos) == i {
				name = v.Title
				break
			}
		}
		add(label, name)
	}
	return strings.Join(lines, "\n")
}
