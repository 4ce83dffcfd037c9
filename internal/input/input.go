// Package input turns button presses from the hardware, the keyboard or the
// control socket into events for the panel loop.
package input

import (
	"context"
	"errors"

	"github.com/kriansa/drive-pi/internal/session"
)

// ErrShutdown is returned by a Source when the user asked to stop the panel
// from outside the session, e.g. by quitting the simulator.
var ErrShutdown = errors.New("shutdown requested")

// Event is one button press. If Done is set, the loop closes it once the
// press has been applied to the session.
type Event struct {
	Button session.Button
	Done   chan struct{}
}

// Source produces events until ctx is done or it fails
type Source interface {
	Run(ctx context.Context, events chan<- Event) error
}

// Send delivers an event unless ctx is done first
func Send(ctx context.Context, events chan<- Event, ev Event) error {
	select {
	case events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
