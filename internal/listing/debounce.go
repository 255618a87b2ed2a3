package listing

import (
	"sync"
	"time"
)

// DefaultQuiet is the search input quiet period.
const DefaultQuiet = 300 * time.Millisecond

// Debouncer delivers only the last value submitted within a quiet period
// (trailing edge). fire runs on its own goroutine.
type Debouncer[T any] struct {
	quiet time.Duration
	fire  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	gen     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer calling fire after quiet has passed
// without a new Submit. quiet <= 0 uses DefaultQuiet.
func NewDebouncer[T any](quiet time.Duration, fire func(T)) *Debouncer[T] {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer[T]{quiet: quiet, fire: fire}
}

// Submit records v and restarts the quiet period.
func (d *Debouncer[T]) Submit(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.flush(gen) })
}

func (d *Debouncer[T]) flush(gen uint64) {
	d.mu.Lock()
	// A Submit that raced with this timer supersedes it.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.mu.Unlock()
	d.fire(v)
}

// Stop cancels any pending value. Later submits are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
