// Package panel runs the event loop: button events from every input source
// are applied to the session one at a time and the display is redrawn after
// each of them.
package panel

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/kriansa/drive-pi/internal/display"
	"github.com/kriansa/drive-pi/internal/input"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/render"
	"github.com/kriansa/drive-pi/internal/session"
)

// Panel ties the session to its display and input sources
type Panel struct {
	session *session.Session
	display display.Display
	sources []input.Source
}

// New creates a panel
func New(s *session.Session, d display.Display, sources ...input.Source) *Panel {
	return &Panel{
		session: s,
		display: d,
		sources: sources,
	}
}

// Run processes events until the user confirms exit, a source asks for
// shutdown or ctx is done. Those all return nil; a failing source ends the
// loop with its error. The session is not closed here.
func (p *Panel) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(egCtx)

	events := make(chan input.Event)
	for _, src := range p.sources {
		eg.Go(func() error {
			return src.Run(loopCtx, events)
		})
	}

	p.redraw()

	p.loop(loopCtx, events)
	stop()

	err := eg.Wait()
	if errors.Is(err, input.ErrShutdown) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Panel) loop(ctx context.Context, events <-chan input.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			// A press runs to completion: shutdown waits for an in-flight
			// mount or enumeration instead of killing it
			p.session.HandleButton(context.WithoutCancel(ctx), ev.Button)
			p.redraw()
			if ev.Done != nil {
				close(ev.Done)
			}
			if p.session.QuitRequested() {
				return
			}
		}
	}
}

func (p *Panel) redraw() {
	if err := p.display.Show(render.Frame(p.session.View())); err != nil {
		log.Warn("failed to update display", "error", err)
	}
}
