// Package session holds the panel state machine: the current screen, what
// each button does on it, and the device actions behind those buttons.
package session

import (
	"context"
	"fmt"

	"github.com/kriansa/drive-pi/internal/device"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/syncutil"
)

// Messages shown on the error screen.
const (
	MsgNoDevices     = "Could not get devices"
	MsgNetwork       = "Network not implemented"
	MsgShare         = "Samba not implemented"
	msgMountFormat   = "Could not mount %s"
	msgUnmountFormat = "Could not unmount %s"
)

// Mounts mounts and unmounts a device on its mount point.
type Mounts interface {
	Mount(ctx context.Context, dev device.Device) error
	Unmount(ctx context.Context, dev device.Device) error
}

// Teardown releases everything the session mounted. It must not fail.
type Teardown interface {
	Run(ctx context.Context)
}

// Session is a single run of the panel. HandleButton, View and Close are safe
// to call from different goroutines; they're serialized.
type Session struct {
	mu       syncutil.Mutex
	screen   Screen
	quit     bool
	closed   bool
	root     string
	devices  device.Enumerator
	mounts   Mounts
	teardown Teardown
}

// New creates a session on the Home screen.
func New(root string, devices device.Enumerator, mounts Mounts, teardown Teardown) *Session {
	return &Session{
		screen:   Home{},
		root:     root,
		devices:  devices,
		mounts:   mounts,
		teardown: teardown,
	}
}

// Root returns the mount root the session works under.
func (s *Session) Root() string {
	return s.root
}

// HandleButton applies a button press to the current screen. Failures end up
// on an ErrorMessage screen; nothing is returned to the caller.
func (s *Session) HandleButton(ctx context.Context, b Button) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		log.Debug("button ignored, session closed", "button", b.String())
		return
	}

	log.Debug("button pressed", "button", b.String(), "screen", screenName(s.screen))

	switch sc := s.screen.(type) {
	case Home:
		s.screen = s.handleHome(ctx, b)
	case DeviceList:
		s.screen = s.handleDeviceList(ctx, sc, b)
	case ErrorMessage:
		if b == ButtonA {
			s.screen = Home{}
		}
	case ConfirmExit:
		switch b {
		case ButtonA:
			log.Info("quit requested")
			s.quit = true
		case ButtonB:
			s.screen = Home{}
		}
	default:
		panic(fmt.Sprintf("session: unknown screen %T", sc))
	}
}

func (s *Session) handleHome(ctx context.Context, b Button) Screen {
	switch b {
	case ButtonA:
		return ErrorMessage{Text: MsgNetwork}
	case ButtonB:
		return ErrorMessage{Text: MsgShare}
	case ButtonC:
		return s.enumerate(ctx, 0)
	case ButtonD:
		return ConfirmExit{}
	}
	return Home{}
}

func (s *Session) handleDeviceList(ctx context.Context, list DeviceList, b Button) Screen {
	switch b {
	case ButtonA:
		return list.prev()
	case ButtonB:
		return list.next()
	case ButtonC:
		dev, ok := list.Current()
		if !ok {
			return list
		}
		if err := s.toggle(ctx, dev); err != nil {
			return ErrorMessage{Text: err.Error()}
		}
		return s.enumerate(ctx, list.Cursor)
	case ButtonD:
		return Home{}
	}
	return list
}

// toggleError is the user-facing text of a failed mount or unmount.
type toggleError string

func (e toggleError) Error() string { return string(e) }

func (s *Session) toggle(ctx context.Context, dev device.Device) error {
	if dev.Mounted {
		if err := s.mounts.Unmount(ctx, dev); err != nil {
			log.Error("unmount failed", "device", dev.Name, "error", err)
			return toggleError(fmt.Sprintf(msgUnmountFormat, dev.Name))
		}
		return nil
	}

	if err := s.mounts.Mount(ctx, dev); err != nil {
		log.Error("mount failed", "device", dev.Name, "error", err)
		return toggleError(fmt.Sprintf(msgMountFormat, dev.Name))
	}
	return nil
}

func (s *Session) enumerate(ctx context.Context, cursor int) Screen {
	devices, err := s.devices.List(ctx)
	if err != nil {
		log.Error("enumeration failed", "error", err)
		return ErrorMessage{Text: MsgNoDevices}
	}
	log.Debug("devices enumerated", "count", len(devices))
	return newDeviceList(devices, cursor)
}

// View returns a copy of the current screen.
func (s *Session) View() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list, ok := s.screen.(DeviceList); ok {
		return list.clone()
	}
	return s.screen
}

// QuitRequested reports whether the user confirmed exit.
func (s *Session) QuitRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quit
}

// Close runs the teardown. Only the first call does anything, and buttons
// pressed afterwards are ignored.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	log.Info("session closing, running teardown", "root", s.root)
	s.teardown.Run(ctx)
}

func screenName(sc Screen) string {
	switch sc.(type) {
	case Home:
		return "home"
	case DeviceList:
		return "devices"
	case ErrorMessage:
		return "error"
	case ConfirmExit:
		return "confirm_exit"
	default:
		return fmt.Sprintf("%T", sc)
	}
}
