package catalog

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/api"
)

// ErrNotFound is recorded when the backend reports that a record is missing.
var ErrNotFound = errors.New("not found")

// networkErrorMessage is shown for write failures that never reached a
// server decision.
const networkErrorMessage = "Network error. Please try again."

// envelope is the common {success, error, message} wrapper.
type envelope struct {
	Success flexBool `json:"success"`
	Error   string   `json:"error"`
	Message string   `json:"message"`
}

// tracker remembers the most recent read failure so list pages can show an
// error banner while rendering an empty result.
type tracker struct {
	mu      sync.Mutex
	lastErr error
	logger  zerolog.Logger
	now     func() time.Time
}

func (t *tracker) init(logger *zerolog.Logger, component string) {
	base := zerolog.Nop()
	if logger != nil {
		base = *logger
	}
	t.logger = base.With().Str("component", component).Logger()
	t.now = time.Now
}

func (t *tracker) record(op string, err error) {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
	if err == nil {
		return
	}
	ev := t.logger.Warn().Err(err).Str("op", op)
	if apiErr, ok := api.AsError(err); ok {
		ev = ev.Str("kind", string(apiErr.Kind)).Int("status", apiErr.Status)
	}
	ev.Msg("read degraded")
}

// LastError returns the most recent read failure, or nil after a successful
// read.
func (t *tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// writeFailure converts a transport error from a mutating call into a
// WriteResult. HTTP rejections keep the backend's message; everything else
// collapses to the generic network message.
func writeFailure(err error) WriteResult {
	if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindHTTP {
		msg := strings.TrimSpace(apiErr.Message)
		return WriteResult{Success: false, Error: msg, Message: msg}
	}
	return WriteResult{Success: false, Error: networkErrorMessage, Message: networkErrorMessage}
}

// writeRejected builds the result for a 2xx body that reported failure.
func writeRejected(env envelope, fallback string) WriteResult {
	msg := firstNonEmpty(env.Error, env.Message, fallback)
	return WriteResult{Success: false, Error: msg, Message: msg}
}
