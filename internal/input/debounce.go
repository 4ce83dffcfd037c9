package input

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kriansa/drive-pi/internal/session"
	"github.com/kriansa/drive-pi/internal/syncutil"
)

// Debouncer drops presses of a button that come within interval of the last
// accepted press of that same button.
type Debouncer struct {
	mu       syncutil.Mutex
	clock    clockwork.Clock
	interval time.Duration
	last     map[session.Button]time.Time
}

// NewDebouncer creates a debouncer on the given clock
func NewDebouncer(clock clockwork.Clock, interval time.Duration) *Debouncer {
	return &Debouncer{
		clock:    clock,
		interval: interval,
		last:     make(map[session.Button]time.Time),
	}
}

// Allow reports whether a press of b now should be accepted
func (d *Debouncer) Allow(b session.Button) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if last, ok := d.last[b]; ok && now.Sub(last) < d.interval {
		return false
	}
	d.last[b] = now
	return true
}
