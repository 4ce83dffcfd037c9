// Package simulator runs the panel in a terminal: the display is drawn with
// half-block characters and the buttons are keyboard keys.
package simulator

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/kriansa/drive-pi/internal/input"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/session"
	"github.com/kriansa/drive-pi/internal/syncutil"
)

const help = "a/7 b/9 c/1 d/3: buttons  q/Esc: quit"

var (
	pixelOn  = tcell.ColorWhite
	pixelOff = tcell.ColorBlack
)

// Terminal is both the display and the input source in simulator mode
type Terminal struct {
	mu     syncutil.Mutex
	screen tcell.Screen
	last   image.Image
}

// Open takes over the terminal
func Open() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create terminal screen: %w", err)
	}
	return New(screen)
}

// New uses an existing tcell screen, initializing it
func New(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initialize terminal screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Foreground(pixelOn).Background(pixelOff))
	screen.Clear()
	return &Terminal{screen: screen}, nil
}

// Show draws the frame two pixel rows per terminal row: the upper half block
// takes the top pixel as foreground and the bottom one as background.
func (t *Terminal) Show(img image.Image) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = img
	t.draw()
	return nil
}

func (t *Terminal) draw() {
	t.screen.Clear()

	b := t.last.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := lit(t.last, x, y)
			bottom := y+1 < b.Max.Y && lit(t.last, x, y+1)
			style := tcell.StyleDefault.Foreground(pixelColor(top)).Background(pixelColor(bottom))
			t.screen.SetContent(x-b.Min.X, (y-b.Min.Y)/2, '▀', nil, style)
		}
	}

	row := (b.Dy()+1)/2 + 1
	for i, r := range help {
		t.screen.SetContent(i, row, r, nil, tcell.StyleDefault)
	}

	t.screen.Show()
}

func lit(img image.Image, x, y int) bool {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y >= 0x80
}

func pixelColor(on bool) tcell.Color {
	if on {
		return pixelOn
	}
	return pixelOff
}

// Run reads keys until ctx is done. Quitting the simulator returns
// input.ErrShutdown.
func (t *Terminal) Run(ctx context.Context, events chan<- input.Event) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// Wake up PollEvent
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		ev := t.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				log.Info("simulator quit")
				return input.ErrShutdown
			}
			if ev.Key() != tcell.KeyRune {
				continue
			}
			button, err := session.ParseButton(string(ev.Rune()))
			if err != nil {
				continue
			}
			if err := input.Send(ctx, events, input.Event{Button: button}); err != nil {
				return nil
			}
		case *tcell.EventResize:
			t.mu.Lock()
			if t.last != nil {
				t.draw()
			}
			t.mu.Unlock()
			t.screen.Sync()
		}
	}
}

// Close gives the terminal back
func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}
