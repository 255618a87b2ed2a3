package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/config"
	"github.com/five82/labelctl/internal/listing"
	"github.com/five82/labelctl/internal/prefs"
	"github.com/five82/labelctl/internal/session"
	"github.com/five82/labelctl/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewReleases View = iota
	ViewCarousel
	ViewVideos
	ViewLogs
)

var viewOrder = []View{ViewReleases, ViewCarousel, ViewVideos, ViewLogs}

// Backend is everything the UI asks of the application. *app.Services
// implements it.
type Backend interface {
	Snapshot() state.Snapshot
	SessionState() session.Snapshot
	Refresh(ctx context.Context) error

	ReleaseDetail(ctx context.Context, id int64) (*catalog.Release, error)
	Carousel(ctx context.Context, tag catalog.Tag, limit int) ([]catalog.CarouselItem, error)
	VideoDetail(ctx context.Context, id int64) (*catalog.Video, []catalog.Video, error)

	Login(ctx context.Context, identifier, password string) catalog.LoginResult
	Logout(ctx context.Context) session.Snapshot

	SaveRelease(ctx context.Context, in catalog.ReleaseInput) catalog.WriteResult
	DeleteRelease(ctx context.Context, id int64) catalog.WriteResult
	SaveVideo(ctx context.Context, in catalog.VideoInput) catalog.WriteResult
	DeleteVideo(ctx context.Context, id int64) catalog.WriteResult
	SaveHomepageVideos(ctx context.Context, urls [catalog.HomepageSlots]string) catalog.WriteResult
	UploadCover(ctx context.Context, path string) (string, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	Config    config.Config
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    zerolog.Logger
}

// flashMessage is a transient confirmation or failure shown in the header.
type flashMessage struct {
	text    string
	isError bool
	until   time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	backend   Backend
	config    config.Config
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	logger    zerolog.Logger
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	session     session.Snapshot
	lastUpdated time.Time
	refreshing  bool

	// Debounced input arrives on events; waitForEvent re-arms after each one.
	events    chan tea.Msg
	search    *listing.Debouncer[string]
	detail    *listing.Debouncer[detailRequest]
	detailSeq *listing.Sequencer

	// Per-view state
	releases    releasesState
	carousel    carouselState
	videos      videosState
	logState    logState
	logViewport viewport.Model

	// Overlays
	modal    Modal
	showHelp bool
	flash    flashMessage
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	events := make(chan tea.Msg, 8)
	m := Model{
		ctx:         ctx,
		backend:     opts.Backend,
		config:      opts.Config,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		logger:      opts.Logger.With().Str("component", "ui").Logger(),
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewReleases,
		events:      events,
		search: listing.NewDebouncer(listing.DefaultQuiet, func(q string) {
			post(events, searchMsg(q))
		}),
		detail: listing.NewDebouncer(DetailQuiet, func(req detailRequest) {
			post(events, detailRequestMsg(req))
		}),
		detailSeq: listing.NewSequencer(),
		releases:  newReleasesState(opts.Prefs.ApplyTo(listing.DefaultFilter())),
		carousel:  carouselState{tag: catalog.TagFeatured},
		logState:  newLogState(),
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		waitForEvent(m.events),
	}
	if m.backend != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.backend))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeCarousel()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = msg.catalog
		m.session = msg.session
		m.lastUpdated = time.Now()
		m.updateReleaseSelection()
		m.updateVideoSelection()
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			m.logger.Debug().Err(msg.err).Msg("manual refresh failed")
		}
		return m, fetchSnapshotCmd(m.backend)

	case searchMsg:
		m.releases.filter.Search = string(msg)
		m.updateReleaseSelection()
		return m, waitForEvent(m.events)

	case detailRequestMsg:
		return m, tea.Batch(m.fetchDetail(detailRequest(msg)), waitForEvent(m.events))

	case releaseDetailMsg:
		m.handleReleaseDetail(msg)
		return m, nil

	case videoDetailMsg:
		m.handleVideoDetail(msg)
		return m, nil

	case carouselMsg:
		m.handleCarousel(msg)
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case actionResultMsg:
		return m.handleActionResult(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		if msg.String() == "ctrl+c" {
			m.modal = nil
			return m, nil
		}
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	// Text inputs swallow everything while focused.
	if m.currentView == ViewReleases && m.releases.searching {
		return m.handleSearchInput(msg)
	}
	if m.currentView == ViewLogs && m.logState.searchActive {
		return m.handleLogSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.logState.contentVersion++
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.adjacentView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.adjacentView(-1))

	case key.Matches(msg, m.keys.ViewReleases):
		return m.switchView(ViewReleases)

	case key.Matches(msg, m.keys.ViewCarousel):
		return m.switchView(ViewCarousel)

	case key.Matches(msg, m.keys.ViewVideos):
		return m.switchView(ViewVideos)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Session):
		return m.toggleSession()
	}

	switch m.currentView {
	case ViewReleases:
		return m.handleReleasesKey(msg)
	case ViewCarousel:
		return m.handleCarouselKey(msg)
	case ViewVideos:
		return m.handleVideosKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// adjacentView returns the view step places away in viewOrder.
func (m Model) adjacentView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewReleases
}

// switchView activates v and loads whatever it shows.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	switch v {
	case ViewCarousel:
		m.carousel.lastAdvance = time.Now()
		return m, m.loadCarouselCmd()
	case ViewLogs:
		m.logState.lastRefresh = time.Time{}
		return m, m.refreshLogs()
	case ViewVideos:
		m.requestVideoDetail()
	case ViewReleases:
		m.requestReleaseDetail()
	}
	return m, nil
}

// toggleSession opens the login form or signs out.
func (m Model) toggleSession() (tea.Model, tea.Cmd) {
	if m.backend == nil {
		return m, nil
	}
	if m.session.Authenticated() {
		return m, logoutCmd(m.ctx, m.backend)
	}
	m.modal = newLoginModal(m.ctx, m.backend, m.config.AdminEmail)
	return m, nil
}

// isAdmin reports whether write actions are available.
func (m Model) isAdmin() bool {
	return m.session.Authenticated() && m.session.User != nil && m.session.User.IsAdmin
}

// requireAdmin flashes a hint and returns false for anonymous users.
func (m *Model) requireAdmin() bool {
	if m.isAdmin() {
		return true
	}
	m.setFlash("Sign in as an admin first (L)", true)
	return false
}

// handleTick processes the polling tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.backend != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.backend))
	}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.currentView == ViewCarousel {
		m.autoAdvanceCarousel(now)
	}

	if !m.flash.until.IsZero() && now.After(m.flash.until) {
		m.flash = flashMessage{}
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// handleActionResult routes the outcome of a write or login.
func (m Model) handleActionResult(msg actionResultMsg) (tea.Model, tea.Cmd) {
	res := msg.result
	if !res.Success {
		m.logger.Warn().Str("action", msg.action).Str("error", res.Error).Msg("action failed")
		if receiver, ok := m.modal.(resultReceiver); ok {
			m.modal = receiver.showResult(res)
			return m, nil
		}
		m.setFlash(firstNonEmpty(res.Error, res.Message, msg.action+" failed"), true)
		return m, fetchSnapshotCmd(m.backend)
	}

	m.logger.Info().Str("action", msg.action).Int64("id", res.ID).Msg("action succeeded")
	m.modal = nil
	m.setFlash(firstNonEmpty(res.Message, msg.action+" done"), false)

	var cmds []tea.Cmd
	cmds = append(cmds, fetchSnapshotCmd(m.backend))
	// Force a detail reload; the record changed under the cached one.
	m.releases.detailID = 0
	m.videos.detailID = 0
	if m.currentView == ViewCarousel {
		cmds = append(cmds, m.loadCarouselCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = flashMessage{text: text, isError: isError, until: time.Now().Add(FlashDuration)}
}

// savePrefs persists the theme, label and sort selection.
func (m *Model) savePrefs() {
	m.prefs.Theme = m.theme.Name
	if m.config.Label != "" {
		m.prefs.Label = m.config.Label
	}
	m.prefs.Sort = string(m.releases.filter.Sort)
	m.prefs.Order = string(m.releases.filter.Order)
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

// refreshCmd runs a full reload in the background.
func (m *Model) refreshCmd() tea.Cmd {
	if m.backend == nil || m.refreshing {
		return nil
	}
	m.refreshing = true
	cmds := []tea.Cmd{refreshAllCmd(m.ctx, m.backend)}
	if m.currentView == ViewCarousel {
		cmds = append(cmds, m.loadCarouselCmd())
	}
	return tea.Batch(cmds...)
}

// stop releases the debouncer timers.
func (m Model) stop() {
	m.search.Stop()
	m.detail.Stop()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if banner := m.renderErrorBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	b.WriteString(m.renderContent())

	return b.String()
}

// contentHeight is the height left for the active view.
func (m Model) contentHeight() int {
	chrome := 2
	if m.snapshot.LastError != nil {
		chrome++
	}
	return max(m.height-chrome, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewReleases:
		return m.renderReleases()
	case ViewCarousel:
		return m.renderCarousel()
	case ViewVideos:
		return m.renderVideos()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	catalog state.Snapshot
	session session.Snapshot
}

type refreshDoneMsg struct{ err error }

type searchMsg string

type detailRequestMsg detailRequest

// actionResultMsg carries the outcome of a write or a login attempt.
type actionResultMsg struct {
	action string
	result catalog.WriteResult
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(b Backend) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg{catalog: b.Snapshot(), session: b.SessionState()}
	}
}

func refreshAllCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return refreshDoneMsg{err: b.Refresh(ctx)}
	}
}

func logoutCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		b.Logout(ctx)
		return actionResultMsg{action: "logout", result: catalog.WriteResult{Success: true, Message: "Signed out"}}
	}
}

// waitForEvent delivers the next debounced event.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// post queues msg without blocking; the oldest event is dropped when the
// buffer is full.
func post(ch chan tea.Msg, msg tea.Msg) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	defer m.stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
