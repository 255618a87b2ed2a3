// Package api provides the HTTP transport for the label backend API.
//
// # Overview
//
// Every outbound call to the PHP backend goes through a single *Client. It
// owns the base URL, timeout, default headers, the cookie jar that carries the
// backend session, and the retry policy. Domain packages depend on the
// Transport interface rather than the concrete type.
//
// # Operations
//
//   - Get(ctx, path, query, dest): query values are encoded as given
//   - Post/Put/Delete(ctx, path, body, dest): body is encoded as JSON
//   - Upload(ctx, path, file, fields, dest): multipart form, file field "file"
//
// A 2xx response is decoded into dest. Decoding failures wrap ErrDecode and
// are not retried.
//
// # Token Injection
//
// SetTokenGetter registers a callback consulted on every POST except
// /login.php and /health.php. When Config.TokenField is set and the callback
// returns a non-empty token, the token is merged into the JSON object body or
// added as a multipart field.
//
// # Error Taxonomy
//
// Failures are returned as *Error with exactly one Kind:
//
//   - KindNetwork: no response (Reason timeout, offline or transport)
//   - KindCors: the response did not allow the configured Origin
//   - KindHTTP: non-2xx status; Status, StatusText and Body are populated
//
// Message prefers the backend's own "error" text when the body carries one.
// Timestamp records when the failure was classified.
//
// # Retry Policy
//
// Network failures and 5xx responses are retried until Config.RetryAttempts
// total attempts have been made. The wait before retry n (zero based) is
// RetryDelay * 1.5^n. Waits are sequential and abort when the context is
// cancelled. 4xx and CORS failures are returned immediately. After the last
// attempt the final classified error is returned.
//
// # Logging
//
// Each attempt is logged at debug level with a per-request X-Request-ID
// (also sent to the server). Retries are logged at warn level.
package api
