package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

// carouselState is the homepage rotation preview.
type carouselState struct {
	tag     catalog.Tag
	items   []catalog.CarouselItem
	loaded  bool
	err     error
	pager   listing.Carousel
	perPage int

	paused      bool
	lastAdvance time.Time
}

// carouselTags is the order f cycles through; the empty tag shows every
// release.
var carouselTags = []catalog.Tag{catalog.TagFeatured, catalog.TagNew, catalog.TagRecent, ""}

type carouselMsg struct {
	tag   catalog.Tag
	items []catalog.CarouselItem
	err   error
}

func (m Model) loadCarouselCmd() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	ctx, b, tag := m.ctx, m.backend, m.carousel.tag
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		items, err := b.Carousel(ctx, tag, CarouselLimit)
		return carouselMsg{tag: tag, items: items, err: err}
	}
}

func (m *Model) handleCarousel(msg carouselMsg) {
	if msg.tag != m.carousel.tag {
		return
	}
	m.carousel.items = msg.items
	m.carousel.err = msg.err
	m.carousel.loaded = true
	m.carousel.pager = m.carousel.pager.Resize(len(msg.items))
	if m.carousel.perPage == 0 {
		m.resizeCarousel()
	}
}

// resizeCarousel fits as many cards per page as the terminal allows.
func (m *Model) resizeCarousel() {
	perPage := max((m.width-2)/CarouselCardWidth, 1)
	if perPage != m.carousel.perPage {
		m.carousel.perPage = perPage
		m.carousel.pager = listing.NewCarousel(len(m.carousel.items), perPage)
		return
	}
	m.carousel.pager = m.carousel.pager.Resize(len(m.carousel.items))
}

// autoAdvanceCarousel turns the page once per CarouselInterval unless paused.
func (m *Model) autoAdvanceCarousel(now time.Time) {
	if m.carousel.paused || m.carousel.pager.Pages() <= 1 {
		return
	}
	if now.Sub(m.carousel.lastAdvance) < CarouselInterval {
		return
	}
	m.carousel.pager = m.carousel.pager.Next()
	m.carousel.lastAdvance = now
}

func (m Model) handleCarouselKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextPage):
		m.carousel.pager = m.carousel.pager.Next()
		m.carousel.lastAdvance = time.Now()
	case key.Matches(msg, m.keys.PrevPage):
		m.carousel.pager = m.carousel.pager.Prev()
		m.carousel.lastAdvance = time.Now()
	case key.Matches(msg, m.keys.ToggleAuto):
		m.carousel.paused = !m.carousel.paused
		m.carousel.lastAdvance = time.Now()
	case key.Matches(msg, m.keys.CycleTag):
		m.carousel.tag = carouselTags[(slices.Index(carouselTags, m.carousel.tag)+1)%len(carouselTags)]
		m.carousel.items = nil
		m.carousel.loaded = false
		m.carousel.err = nil
		m.carousel.pager = listing.NewCarousel(0, m.carousel.perPage)
		return m, m.loadCarouselCmd()
	}
	return m, nil
}

func carouselTagLabel(tag catalog.Tag) string {
	if tag == "" {
		return "All"
	}
	return string(tag)
}

// renderCarousel renders one page of release cards and a page indicator.
func (m Model) renderCarousel() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	title := "Carousel · " + carouselTagLabel(m.carousel.tag)
	if m.carousel.paused {
		title += " (paused)"
	}

	var body string
	switch {
	case !m.carousel.loaded:
		body = styles.MutedText.Render("Loading carousel...")
	case m.carousel.err != nil && len(m.carousel.items) == 0:
		body = styles.DangerText.Render("Carousel unavailable: " + truncate(m.carousel.err.Error(), m.width-30))
	case len(m.carousel.items) == 0:
		body = styles.MutedText.Render("No " + strings.ToLower(carouselTagLabel(m.carousel.tag)) + " releases")
	default:
		page := listing.PageItems(m.carousel.items, m.carousel.pager)
		cards := make([]string, 0, len(page))
		for _, item := range page {
			cards = append(cards, m.renderCarouselCard(item))
		}
		body = lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.JoinHorizontal(lipgloss.Top, cards...),
			"",
			m.renderPageDots(styles),
		)
	}

	inner := lipgloss.Place(m.width-2, height-2, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.FocusBg)))
	return m.renderTitledBox(title, inner, m.width, height, true)
}

func (m Model) renderCarouselCard(item catalog.CarouselItem) string {
	styles := m.theme.Styles()
	inner := CarouselCardWidth - 5

	tag := item.Tag
	if tag == "" {
		tag = catalog.TagNone
	}
	cover := "no cover"
	if item.CoverImage != "" {
		cover = truncateMiddle(item.CoverImage, inner)
	}

	content := strings.Join([]string{
		styles.Text.Bold(true).Render(truncate(item.Title, inner)),
		styles.AccentText.Render(truncate(item.Artist, inner)),
		styles.MutedText.Render(firstNonEmpty(item.ReleaseDate, "undated")),
		"",
		styles.TagStyle(tag).Render(string(tag)),
		styles.FaintText.Render(cover),
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(CarouselCardWidth - 3).
		MarginRight(1).
		Render(content)
}

func (m Model) renderPageDots(styles Styles) string {
	pages := m.carousel.pager.Pages()
	if pages <= 1 {
		return ""
	}
	dots := make([]string, 0, pages)
	for i := range pages {
		if i == m.carousel.pager.Page() {
			dots = append(dots, styles.AccentText.Render("●"))
		} else {
			dots = append(dots, styles.FaintText.Render("○"))
		}
	}
	return strings.Join(dots, " ") + styles.MutedText.Render(fmt.Sprintf("  %d/%d", m.carousel.pager.Page()+1, pages))
}
