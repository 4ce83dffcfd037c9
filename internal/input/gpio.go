package input

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/session"
)

// edgeTimeout bounds each wait for an edge so cancellation is noticed
const edgeTimeout = 100 * time.Millisecond

// GPIO reads the four buttons from GPIO lines, one per button in A, B, C, D
// order, on their rising edge.
type GPIO struct {
	pins     [4]gpio.PinIn
	debounce *Debouncer
}

// OpenGPIO initializes the host drivers and looks up the pins by name
func OpenGPIO(names []string, debounce *Debouncer) (*GPIO, error) {
	if len(names) != len(session.Buttons) {
		return nil, fmt.Errorf("need %d gpio pins, got %d", len(session.Buttons), len(names))
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize host drivers: %w", err)
	}

	var pins [4]gpio.PinIn
	for i, name := range names {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("gpio pin %s not found", name)
		}
		pins[i] = pin
	}

	return NewGPIO(pins, debounce), nil
}

// NewGPIO creates a source from already resolved pins
func NewGPIO(pins [4]gpio.PinIn, debounce *Debouncer) *GPIO {
	return &GPIO{
		pins:     pins,
		debounce: debounce,
	}
}

// Run watches every pin until ctx is done
func (g *GPIO) Run(ctx context.Context, events chan<- Event) error {
	for i, pin := range g.pins {
		if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
			return fmt.Errorf("configure %s for button %s: %w", pin, session.Buttons[i], err)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, pin := range g.pins {
		button := session.Buttons[i]
		eg.Go(func() error {
			return g.watch(ctx, pin, button, events)
		})
	}

	err := eg.Wait()
	for _, pin := range g.pins {
		if herr := pin.Halt(); herr != nil {
			log.Warn("failed to release gpio pin", "pin", pin.String(), "error", herr)
		}
	}
	return err
}

func (g *GPIO) watch(ctx context.Context, pin gpio.PinIn, button session.Button, events chan<- Event) error {
	log.Debug("watching button", "button", button.String(), "pin", pin.String())

	for ctx.Err() == nil {
		if !pin.WaitForEdge(edgeTimeout) {
			continue
		}
		if !g.debounce.Allow(button) {
			log.Debug("button bounce ignored", "button", button.String())
			continue
		}
		if err := Send(ctx, events, Event{Button: button}); err != nil {
			return nil
		}
	}
	return nil
}
