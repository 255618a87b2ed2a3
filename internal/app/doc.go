// Package app provides the orchestration layer for labelctl.
//
// # Overview
//
// This package wires together configuration, logging, the API client, the
// domain services, the session and the state store, then hands them to the
// UI. It is the composition root: every singleton (one api.Client, one
// session.Session, one state.Store) is created here and passed explicitly.
//
// # Architecture
//
//  1. Load preferences, then the label config (flag label, else the saved
//     label, else config/env)
//  2. Open the log file; the TUI owns the terminal so logs go to disk
//  3. Build Services: transport, release/video/site services, session
//  4. Probe the cookie session and run one synchronous refresh
//  5. Launch the background poller
//  6. Start the TUI and block until the user exits or the context cancels
//
// With Options.HealthOnly the program instead prints one health line via
// CheckHealth and exits.
//
// # Components
//
//   - app.go: Run and the one-shot CheckHealth
//   - services.go: Services, the refresh and write operations the UI calls
//   - poller.go: background refresh loop with exponential backoff
//
// # Data Flow
//
//	ui ──> Services.SaveRelease
//	         ├─> ReleaseService.UpsertRelease      (server write)
//	         ├─> Store.ApplyOptimistic             (immediate local patch)
//	         └─> GetReleases + Store.Reconcile     (canonical records win)
//
//	poller ──> Services.Refresh
//	             ├─> SiteService.Health   -> Store.UpdateHealth
//	             ├─> GetReleases          -> Store.UpdateReleases
//	             └─> GetVideos + homepage -> Store.UpdateVideos
//
// Each reload takes a sequencer token from the store before the request
// goes out. A response whose token has been superseded, for example by an
// optimistic patch made while it was in flight, is dropped.
//
// # Polling Behavior
//
// The poller refreshes every Config.PollInterval (default 30s, -poll
// overrides). After consecutive failures the wait doubles per failure up to
// 30 seconds; one success resets it. Failures are logged and recorded in the
// store, where the UI shows them as an error banner.
//
// # Error Handling
//
// Fatal errors (returned from Run): invalid config or unknown label, an
// unopenable log file, a malformed base URL, and UI startup failures.
// Everything else is recoverable and surfaces through the store snapshot or
// a catalog.WriteResult.
package app
