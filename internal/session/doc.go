// Package session holds the process-wide authentication state.
//
// A Session starts Unknown. Probe resolves it to Authenticated or Anonymous
// from the backend's cookie session; Login and Logout move between the two.
// A failed login records a message (cleared by ClearError) and never leaves
// the session Authenticated unless it already was.
//
// New registers Session.Token with the transport so every authenticated POST
// carries the current token without callers passing it around. Tokens that
// are JWTs are checked for expiry locally; an expired token is withheld.
package session
