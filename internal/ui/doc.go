// Package ui is the Bubble Tea terminal interface for browsing and curating
// a label catalog.
//
// The root Model owns four views: the release list with its detail pane, the
// homepage carousel preview, the video catalog with the homepage slots, and
// the local log tail. All backend work goes through the Backend interface and
// runs inside tea.Cmds; results come back as messages and are applied in
// Update.
//
// Search input and list selection are debounced with listing.Debouncer. The
// debouncers post into a buffered channel that waitForEvent drains, so timer
// goroutines never touch the model. Detail fetches carry a listing.Token and a
// response is dropped unless it answers the newest request for the current
// selection.
//
// Write actions (release, video and homepage forms) are only offered to a
// signed-in admin. A rejected write keeps its form open with the server's
// field errors; a successful one closes it and flashes a confirmation in the
// header.
package ui
