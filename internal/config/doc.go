// Package config loads labelctl configuration.
//
// # Overview
//
// labelctl talks to one label backend at a time. A label is selected by key
// ("adedr" or "nickeldime"); each key has a built-in Profile with the label's
// display name, API base URL and the body field that carries the CSRF token
// on writes. Everything else layers on top of that profile.
//
// # Resolution Order
//
// Later sources win:
//
//  1. Built-in defaults
//  2. The selected label's Profile
//  3. The TOML file (~/.config/labelctl/config.toml unless a path is given)
//  4. A .env file in the same directory as the TOML file
//  5. LABELCTL_* process environment variables
//
// The label argument to Load (the -label flag) beats every source above. An
// unknown label is an error.
//
// # TOML Format
//
//	label = "nickeldime"
//	poll_interval = "30s"
//	log_file = "~/.local/state/labelctl/labelctl.log"
//	log_level = "info"
//	admin_email = "ops@example.com"
//
//	[api]
//	base_url = "http://localhost:8080/api"
//	origin = "http://localhost:5173"
//	token_field = "dev_token"
//	timeout = "10s"
//	retry_attempts = 3
//	retry_delay = "1s"
//
//	[api.headers]
//	X-Client = "labelctl"
//
// Every field is optional. Durations use time.ParseDuration syntax; zero
// durations fall back to defaults and negative ones are rejected. token_field
// may be set to "" explicitly to stop sending the token in request bodies.
//
// # Environment
//
// LABELCTL_LABEL, LABELCTL_BASE_URL, LABELCTL_ORIGIN, LABELCTL_TOKEN_FIELD,
// LABELCTL_TIMEOUT, LABELCTL_RETRY_ATTEMPTS, LABELCTL_RETRY_DELAY,
// LABELCTL_POLL_INTERVAL, LABELCTL_LOG_FILE, LABELCTL_LOG_LEVEL and
// LABELCTL_ADMIN_EMAIL map onto the matching fields.
//
// # Error Handling
//
// Missing config and .env files are not errors. Unreadable files, invalid
// TOML, malformed durations and unknown labels are.
package config
