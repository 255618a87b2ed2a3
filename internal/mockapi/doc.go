// Package mockapi is an in-memory stand-in for the label backend.
//
// It serves the same PHP-style paths the client calls (/get-releases.php,
// /login.php, /upload-cover-image.php and so on) from a gin engine, so the
// TUI and the catalog services can be exercised without a live site. The
// labelmock command wraps it in an HTTP server; tests mount Handler on an
// httptest.Server.
//
// Sessions use a PHPSESSID cookie. Login also hands out an HS256 JWT as the
// csrf token; when Config.TokenField is set every write must echo it back in
// that body field (or multipart form field for uploads). The single admin
// account's password is stored as a bcrypt hash.
//
// Records keep the backend's wire quirks: 0/1 flags, a flattened "artist"
// display string next to the credit list, and list rows without nested
// links.
package mockapi
