// Package state provides thread-safe state management for labelctl.
//
// # Overview
//
// The Store is where background refreshes meet UI rendering. Refresh
// commands write the latest releases, videos, homepage slots and backend
// health; the UI reads immutable snapshots.
//
//	Producer (refresh cmds):        Consumer (UI):
//	┌─────────────────────┐        ┌────────────────┐
//	│ tok := Begin(q)     │        │                │
//	│ GetReleases()       │        │                │
//	│      ↓              │        │                │
//	│ UpdateReleases(tok) │───────→│ Snapshot()     │
//	└─────────────────────┘ (mutex)│      ↓         │
//	                                │ listing.Apply  │
//	                                └────────────────┘
//
// # Stale Responses
//
// Every fetch starts with Begin, which issues a listing.Token for a logical
// query (QueryReleases, QueryVideos). Update calls carrying a superseded
// token return false and change nothing, so a slow early response can never
// overwrite a newer one.
//
// # Update Semantics
//
//	// Success: replace the data, clear the error
//	store.UpdateReleases(tok, releases, nil)
//
//	// Error: keep old data, record the error, count the failure
//	store.UpdateReleases(tok, nil, err)
//
// IsOffline reports two or more consecutive refresh failures.
//
// # Optimistic Edits
//
// Admin writes are two-phase. After a successful save the UI calls
// ApplyOptimistic (or RemoveOptimistic for deletes), which patches the local
// list at once and supersedes any release fetch already in flight. The
// reload that follows goes through Reconcile, which replaces the patched
// list with the server's canonical records and clears Optimistic.
//
// # Defensive Copying
//
// Snapshot clones slices, the Optimistic set and the error so callers can
// never mutate stored state.
//
// The zero Store is ready to use.
package state
