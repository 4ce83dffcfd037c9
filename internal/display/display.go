// Package display shows rendered frames on the panel's screen.
package display

import (
	"image"

	"github.com/kriansa/drive-pi/internal/syncutil"
)

// Display shows a full frame at a time
type Display interface {
	Show(img image.Image) error
	Close() error
}

// Nop is the display used when there's no screen attached. It keeps the last
// frame it was given.
type Nop struct {
	mu    syncutil.Mutex
	last  image.Image
	shown int
}

// NewNop creates a display that draws nothing
func NewNop() *Nop {
	return &Nop{}
}

func (n *Nop) Show(img image.Image) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.last = img
	n.shown++
	return nil
}

// Last returns the last frame shown and how many frames were shown in total
func (n *Nop) Last() (image.Image, int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.last, n.shown
}

func (n *Nop) Close() error {
	return nil
}
