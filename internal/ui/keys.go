package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	Session    key.Binding

	// View switching
	ViewReleases key.Binding
	ViewCarousel key.Binding
	ViewVideos   key.Binding
	ViewLogs     key.Binding

	// Release list
	Search      key.Binding
	CycleType   key.Binding
	CycleSort   key.Binding
	ToggleOrder key.Binding
	CycleView   key.Binding
	PrevLetter  key.Binding
	NextLetter  key.Binding
	ClearLetter key.Binding

	// Admin
	New          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	EditHomepage key.Binding

	// Carousel
	PrevPage   key.Binding
	NextPage   key.Binding
	ToggleAuto key.Binding
	CycleTag   key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Logs
	ToggleFollow key.Binding
	CycleLevel   key.Binding
	NextMatch    key.Binding
	PrevMatch    key.Binding

	// Forms and inputs
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Yes       key.Binding
	No        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh / retry"),
		),
		Session: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log in / out"),
		),

		ViewReleases: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Releases"),
		),
		ViewCarousel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Carousel"),
		),
		ViewVideos: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Videos"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle type filter"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		ToggleOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Toggle order"),
		),
		CycleView: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "All/main/discography"),
		),
		PrevLetter: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous letter"),
		),
		NextLetter: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next letter"),
		),
		ClearLetter: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Clear letter"),
		),

		New: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "New"),
		),
		Edit: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete"),
		),
		EditHomepage: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "Homepage videos"),
		),

		PrevPage: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("right", "Next page"),
		),
		ToggleAuto: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Pause rotation"),
		),
		CycleTag: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle tag"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Cycle minimum level"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewReleases, k.ViewCarousel, k.ViewVideos, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.HalfPageDown, k.HalfPageUp},
		{k.Search, k.CycleType, k.CycleSort, k.ToggleOrder, k.CycleView, k.PrevLetter, k.NextLetter, k.ClearLetter},
		{k.Session, k.New, k.Edit, k.Delete, k.EditHomepage},
		{k.PrevPage, k.NextPage, k.ToggleAuto, k.CycleTag},
		{k.ToggleFollow, k.CycleLevel, k.NextMatch, k.PrevMatch},
		{k.Refresh, k.CycleTheme, k.Help, k.Quit},
	}
}
