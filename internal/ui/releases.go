package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

// releasesState is the release list selection, its filter and the detail
// pane behind it.
type releasesState struct {
	filter     listing.FilterState
	selected   int
	selectedID int64

	searching   bool
	searchInput textinput.Model

	// detailID is the release the detail pane shows or is loading.
	detailID  int64
	detail    *catalog.Release
	detailErr error
	loading   bool
}

func newReleasesState(filter listing.FilterState) releasesState {
	ti := textinput.New()
	ti.Placeholder = "Search title or artist..."
	ti.CharLimit = 100
	ti.Prompt = "/"
	return releasesState{filter: filter, searchInput: ti}
}

var sortCycle = []catalog.SortKey{catalog.SortReleaseDate, catalog.SortTitle, catalog.SortCreatedAt}

var viewCycle = []listing.View{listing.ViewAll, listing.ViewMain, listing.ViewDiscography}

func viewLabel(v listing.View) string {
	switch v {
	case listing.ViewMain:
		return "Main"
	case listing.ViewDiscography:
		return "Discography"
	default:
		return "All"
	}
}

func sortLabel(k catalog.SortKey, o catalog.SortOrder) string {
	label := map[catalog.SortKey]string{
		catalog.SortReleaseDate: "date",
		catalog.SortTitle:       "title",
		catalog.SortCreatedAt:   "added",
	}[k]
	if label == "" {
		label = "none"
	}
	return label + ternary(o == catalog.OrderDesc, " ↓", " ↑")
}

// visibleReleases is the filtered, sorted list the pane shows.
func (m Model) visibleReleases() []catalog.Release {
	return listing.Apply(m.snapshot.Releases, m.releases.filter)
}

// letterKeys lists the discography letters available under the current
// filter, ignoring the active letter itself.
func (m Model) letterKeys() []string {
	f := m.releases.filter
	f.Letter = ""
	f.View = listing.ViewDiscography
	return listing.Group(listing.Apply(m.snapshot.Releases, f)).Keys()
}

func (m Model) selectedRelease() *catalog.Release {
	rels := m.visibleReleases()
	if m.releases.selected < 0 || m.releases.selected >= len(rels) {
		return nil
	}
	r := rels[m.releases.selected]
	return &r
}

// updateReleaseSelection keeps the cursor on the same release across
// refreshes and filter changes.
func (m *Model) updateReleaseSelection() {
	rels := m.visibleReleases()
	if len(rels) == 0 {
		m.releases.selected = 0
		m.releases.selectedID = 0
		m.requestReleaseDetail()
		return
	}
	if m.releases.selectedID != 0 {
		for i, r := range rels {
			if r.ID == m.releases.selectedID {
				m.releases.selected = i
				m.requestReleaseDetail()
				return
			}
		}
	}
	m.releases.selected = min(max(m.releases.selected, 0), len(rels)-1)
	m.releases.selectedID = rels[m.releases.selected].ID
	m.requestReleaseDetail()
}

// requestReleaseDetail schedules a debounced fetch when the selection moved
// to a release the pane is not showing.
func (m *Model) requestReleaseDetail() {
	if m.currentView != ViewReleases {
		return
	}
	sel := m.selectedRelease()
	if sel == nil {
		m.releases.detailID = 0
		m.releases.detail = nil
		m.releases.detailErr = nil
		m.releases.loading = false
		return
	}
	if sel.ID == m.releases.detailID {
		return
	}
	m.releases.detailID = sel.ID
	m.releases.detail = nil
	m.releases.detailErr = nil
	m.releases.loading = true
	if m.detail != nil {
		m.detail.Submit(detailRequest{kind: detailRelease, id: sel.ID})
	}
}

func (m *Model) setReleaseCursor(idx int) {
	rels := m.visibleReleases()
	if len(rels) == 0 {
		return
	}
	m.releases.selected = min(max(idx, 0), len(rels)-1)
	m.releases.selectedID = rels[m.releases.selected].ID
	m.requestReleaseDetail()
}

// handleSearchInput feeds the search box; the filter follows after the
// debounce quiet period.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.releases.searchInput.Value())
		m.releases.searching = false
		m.releases.searchInput.Blur()
		m.releases.filter.Search = value
		m.search.Submit(value)
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.releases.searching = false
		m.releases.searchInput.Blur()
		m.releases.searchInput.SetValue("")
		m.releases.filter.Search = ""
		m.search.Submit("")
		m.updateReleaseSelection()
		return m, nil
	}

	before := m.releases.searchInput.Value()
	var cmd tea.Cmd
	m.releases.searchInput, cmd = m.releases.searchInput.Update(msg)
	if after := m.releases.searchInput.Value(); after != before {
		m.search.Submit(strings.TrimSpace(after))
	}
	return m, cmd
}

// handleReleasesKey processes keyboard input for the release list.
func (m Model) handleReleasesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.releases.filter

	switch {
	case key.Matches(msg, m.keys.Search):
		m.releases.searching = true
		m.releases.searchInput.SetValue(f.Search)
		m.releases.searchInput.CursorEnd()
		return m, m.releases.searchInput.Focus()

	case key.Matches(msg, m.keys.Escape):
		if f.Search != "" {
			f.Search = ""
			m.releases.searchInput.SetValue("")
			m.search.Submit("")
			m.updateReleaseSelection()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleType):
		types := append([]catalog.ReleaseType{""}, catalog.ReleaseTypes...)
		f.Type = types[(slices.Index(types, f.Type)+1)%len(types)]
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		f.Sort = sortCycle[(slices.Index(sortCycle, f.Sort)+1)%len(sortCycle)]
		m.savePrefs()
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.ToggleOrder):
		if f.Order == catalog.OrderDesc {
			f.Order = catalog.OrderAsc
		} else {
			f.Order = catalog.OrderDesc
		}
		m.savePrefs()
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.CycleView):
		f.View = viewCycle[(slices.Index(viewCycle, f.View)+1)%len(viewCycle)]
		f.Letter = ""
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.PrevLetter), key.Matches(msg, m.keys.NextLetter):
		letters := m.letterKeys()
		if len(letters) == 0 {
			m.setFlash("No discography letters under this filter", true)
			return m, nil
		}
		forward := key.Matches(msg, m.keys.NextLetter)
		idx := slices.Index(letters, f.Letter)
		switch {
		case idx < 0 && forward:
			idx = 0
		case idx < 0:
			idx = len(letters) - 1
		case forward:
			idx = (idx + 1) % len(letters)
		default:
			idx = (idx - 1 + len(letters)) % len(letters)
		}
		f.View = listing.ViewDiscography
		f.Letter = letters[idx]
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.ClearLetter):
		f.Letter = ""
		m.updateReleaseSelection()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if f.View == listing.ViewDiscography {
			if sel := m.selectedRelease(); sel != nil {
				f.Letter = listing.ToggleLetter(f.Letter, listing.GroupKey(*sel))
				m.updateReleaseSelection()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		if !m.requireAdmin() {
			return m, nil
		}
		m.modal = newReleaseForm(m.ctx, m.backend, catalog.ReleaseInput{
			Type:              catalog.TypeSingle,
			Tag:               catalog.TagNone,
			ShowInMain:        true,
			ShowInDiscography: true,
			TrackCount:        1,
		})
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if !m.requireAdmin() {
			return m, nil
		}
		sel := m.selectedRelease()
		if sel == nil {
			return m, nil
		}
		if m.releases.detail == nil || m.releases.detail.ID != sel.ID {
			m.setFlash("Release details are still loading", true)
			m.releases.detailID = 0
			m.requestReleaseDetail()
			return m, nil
		}
		m.modal = newReleaseForm(m.ctx, m.backend, catalog.InputFromRelease(*m.releases.detail))
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if !m.requireAdmin() {
			return m, nil
		}
		sel := m.selectedRelease()
		if sel == nil {
			return m, nil
		}
		m.modal = confirmModal{
			title:  "Delete release",
			prompt: fmt.Sprintf("Delete %q by %s? This cannot be undone.", sel.Title, firstNonEmpty(sel.PrimaryArtist(), "unknown artist")),
			onYes:  deleteReleaseCmd(m.ctx, m.backend, sel.ID),
		}
		return m, nil
	}

	rels := m.visibleReleases()
	if delta, ok := navDelta(msg, m.keys, len(rels), m.releaseListHeight()); ok {
		m.setReleaseCursor(moveSelection(m.releases.selected, len(rels), delta))
	}
	return m, nil
}

// releaseListHeight is the number of rows the list pane shows.
func (m Model) releaseListHeight() int {
	h := m.contentHeight() - 2
	if m.releases.filter.View == listing.ViewDiscography {
		h--
	}
	if m.releases.searching || m.releases.filter.Search != "" {
		h--
	}
	return max(h, 1)
}

// renderReleases renders the release list and the detail pane side by side.
func (m Model) renderReleases() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if !m.snapshot.HasReleases && m.snapshot.LastError == nil {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Loading releases..."))
	}

	listWidth, detailWidth := splitWidths(m.width)
	rels := m.visibleReleases()

	title := fmt.Sprintf("Releases %d/%d · %s", len(rels), len(m.snapshot.Releases), m.filterSummary())
	listPane := m.renderTitledBox(title, m.renderReleaseList(rels, listWidth-2), listWidth, height, true)

	detailTitle := "Details"
	if m.releases.loading {
		detailTitle = "Details (loading)"
	}
	detailPane := m.renderTitledBox(detailTitle, m.renderReleaseDetail(detailWidth-4), detailWidth, height, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// filterSummary describes the active view, type and sort.
func (m Model) filterSummary() string {
	f := m.releases.filter
	parts := []string{viewLabel(f.View)}
	if f.Type != "" {
		parts = append(parts, f.Type.Label())
	}
	if f.Letter != "" {
		parts = append(parts, f.Letter)
	}
	parts = append(parts, sortLabel(f.Sort, f.Order))
	return strings.Join(parts, " · ")
}

func (m Model) renderReleaseList(rels []catalog.Release, width int) string {
	bgColor := m.theme.FocusBg
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	f := m.releases.filter

	var lines []string
	if m.releases.searching {
		lines = append(lines, bg.FillLine(m.releases.searchInput.View(), width))
	} else if f.Search != "" {
		lines = append(lines, bg.FillLine(
			bg.Render("/"+f.Search, styles.AccentText)+bg.Space()+bg.Render("(esc clears)", styles.FaintText), width))
	}
	if f.View == listing.ViewDiscography {
		lines = append(lines, bg.FillLine(m.renderLetterBar(bg, styles), width))
	}

	if len(rels) == 0 {
		msg := "No releases"
		if f.Search != "" || f.Type != "" || f.Letter != "" {
			msg = "No releases match the current filter"
		}
		lines = append(lines, bg.FillLine(bg.Render(msg, styles.MutedText), width))
		return strings.Join(lines, "\n")
	}

	start, end := visibleWindow(len(rels), m.releases.selected, m.releaseListHeight())
	for i := start; i < end; i++ {
		selected := i == m.releases.selected
		rowBg := ternary(selected, m.theme.SelectionBg, bgColor)
		lines = append(lines, m.renderRow(m.formatReleaseRow(rels[i], width, rowBg, selected), width, bgColor, selected))
	}
	return strings.Join(lines, "\n")
}

// renderLetterBar shows the available discography letters with the active
// one highlighted.
func (m Model) renderLetterBar(bg BgStyle, styles Styles) string {
	letters := m.letterKeys()
	if len(letters) == 0 {
		return bg.Render("No letters", styles.FaintText)
	}
	parts := make([]string, 0, len(letters))
	for _, l := range letters {
		if l == m.releases.filter.Letter {
			parts = append(parts, bg.Render("["+l+"]", styles.AccentText.Bold(true)))
		} else {
			parts = append(parts, bg.Render(l, styles.MutedText))
		}
	}
	return bg.Join(parts, " ")
}

// formatReleaseRow formats one row: "Title · Artist   2024 Tag".
func (m Model) formatReleaseRow(r catalog.Release, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	var titleStyle, artistStyle, metaStyle, markStyle lipgloss.Style
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		titleStyle, artistStyle, metaStyle, markStyle = sel, sel, sel, sel
	} else {
		titleStyle, artistStyle, metaStyle, markStyle = styles.Text, styles.MutedText, styles.FaintText, styles.WarningText
		if r.Hidden() {
			titleStyle = styles.FaintText
		}
	}

	var marks []string
	if m.snapshot.Optimistic[r.ID] {
		marks = append(marks, "~")
	}
	if r.Status != "" && !strings.EqualFold(r.Status, "published") {
		marks = append(marks, strings.ToLower(r.Status))
	}
	if !r.Publishable() {
		marks = append(marks, "no cover")
	}

	year := ""
	if !r.ReleaseDate.IsZero() {
		year = r.ReleaseDate.Time.Format("2006")
	}

	right := bg.Render(year, metaStyle)
	rightLen := len(year)
	if r.Tag != "" && r.Tag != catalog.TagNone {
		tag := string(r.Tag)
		right += bg.Space() + styles.TagStyle(r.Tag).Render(tag)
		rightLen += len(tag) + 3
	}
	if len(marks) > 0 {
		mark := strings.Join(marks, ",")
		right = bg.Render(mark, markStyle) + bg.Space() + right
		rightLen += len(mark) + 1
	}

	prefix := ""
	if m.releases.filter.View == listing.ViewDiscography {
		prefix = listing.GroupKey(r) + " "
	}

	artist := r.PrimaryArtist()
	leftWidth := max(width-rightLen-len(prefix)-2, 8)
	titleWidth := max(leftWidth*3/5, 4)
	if len([]rune(artist)) < leftWidth-titleWidth-3 {
		titleWidth = leftWidth - len([]rune(artist)) - 3
	}
	title := truncate(r.Title, titleWidth)
	artist = truncate(artist, max(leftWidth-len([]rune(title))-3, 1))

	left := bg.Render(prefix, metaStyle) + bg.Render(title, titleStyle)
	if artist != "" {
		left += bg.Render(" · ", metaStyle) + bg.Render(artist, artistStyle)
	}

	gap := max(width-lipgloss.Width(left)-rightLen, 1)
	return left + bg.Spaces(gap) + right
}

// renderReleaseDetail renders the detail pane. While the full record loads,
// the list row is shown.
func (m Model) renderReleaseDetail(width int) string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	styles := m.theme.Styles()

	sel := m.selectedRelease()
	if sel == nil {
		return bg.Render("Select a release", styles.MutedText)
	}
	r := *sel
	if d := m.releases.detail; d != nil && d.ID == r.ID {
		r = *d
	}

	const labelWidth = 12
	var lines []string
	add := func(label, value string) {
		lines = append(lines, kv(bg, styles, label, truncateMiddle(value, max(width-labelWidth, 8)), labelWidth))
	}

	lines = append(lines, bg.Render(truncate(r.Title, width), styles.Text.Bold(true)))
	lines = append(lines, bg.Render(truncate(r.ArtistsWithRoles(), width), styles.AccentText))
	lines = append(lines, "")

	typeLine := r.Type.Label()
	if !r.ReleaseDate.IsZero() {
		typeLine += " · " + r.ReleaseDate.String()
	}
	if r.TrackCount > 0 {
		typeLine += fmt.Sprintf(" · %d %s", r.TrackCount, ternary(r.TrackCount == 1, "track", "tracks"))
	}
	add("Release", typeLine)

	tag := r.Tag
	if tag == "" {
		tag = catalog.TagNone
	}
	lines = append(lines, bg.Render(padRight("Tag", labelWidth), styles.MutedText)+styles.TagStyle(tag).Render(string(tag)))

	add("Status", firstNonEmpty(r.Status, "published"))
	var shown []string
	if r.ShowInMain {
		shown = append(shown, "main")
	}
	if r.ShowInDiscography {
		shown = append(shown, "discography")
	}
	add("Shown in", firstNonEmpty(strings.Join(shown, ", "), "hidden"))
	add("ID", fmt.Sprintf("#%d  %s", r.ID, r.Slug))
	if r.LabelName != "" || r.LabelID != 0 {
		add("Label", firstNonEmpty(r.LabelName, fmt.Sprintf("#%d", r.LabelID)))
	}
	if r.Publishable() {
		add("Cover", r.CoverImage)
	} else {
		lines = append(lines, bg.Render(padRight("Cover", labelWidth), styles.MutedText)+
			bg.Render("missing, not publishable", styles.WarningText))
	}

	lines = append(lines, "", bg.Render("Streaming", styles.AccentText.Bold(true)))
	var linked int
	for _, p := range catalog.Platforms {
		if l, ok := r.Link(p); ok {
			add(titleCase(p), l.URL)
			linked++
		}
	}
	for _, l := range r.StreamingLinks {
		if !l.Active && l.URL != "" {
			lines = append(lines, bg.Render(padRight(titleCase(l.Platform), labelWidth), styles.FaintText)+
				bg.Render("(inactive) "+truncateMiddle(l.URL, max(width-labelWidth-11, 8)), styles.FaintText))
			linked++
		} else if l.Active && !slices.Contains(catalog.Platforms, l.Platform) && l.URL != "" {
			add(titleCase(l.Platform), l.URL)
			linked++
		}
	}
	if linked == 0 {
		lines = append(lines, bg.Render("No links", styles.FaintText))
	}

	if desc := wrapText(r.Description, width); len(desc) > 0 {
		lines = append(lines, "")
		for _, l := range desc {
			lines = append(lines, bg.Render(l, styles.Text))
		}
	}

	lines = append(lines, "")
	if ts := formatStamp(r.CreatedAt); ts != "" {
		add("Created", ts)
	}
	if ts := formatStamp(r.UpdatedAt); ts != "" {
		add("Updated", ts)
	}

	switch {
	case m.releases.detailErr != nil && m.releases.detailID == r.ID:
		lines = append(lines, bg.Render("Full record unavailable: "+truncate(m.releases.detailErr.Error(), width-26), styles.DangerText))
	case m.releases.loading:
		lines = append(lines, bg.Render("Loading full record...", styles.FaintText))
	case m.snapshot.Optimistic[r.ID]:
		lines = append(lines, bg.Render("Saved locally, waiting for the server copy", styles.WarningText))
	}

	return strings.Join(lines, "\n")
}
