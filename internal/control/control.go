// Package control serves the panel over a unix socket, speaking the plugin
// JSON-over-HTTP protocol: POST /Panel.Press presses a button and POST
// /Panel.Screen returns what the display shows.
package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/docker/go-plugins-helpers/sdk"

	"github.com/kriansa/drive-pi/internal/input"
	"github.com/kriansa/drive-pi/internal/log"
	"github.com/kriansa/drive-pi/internal/render"
	"github.com/kriansa/drive-pi/internal/session"
)

const (
	manifest   = `{"Implements": ["Panel"]}`
	pressPath  = "/Panel.Press"
	screenPath = "/Panel.Screen"
)

// Viewer gives read access to the session
type Viewer interface {
	View() session.Screen
	QuitRequested() bool
}

// PressRequest is the body of /Panel.Press
type PressRequest struct {
	Button string
}

// ScreenResponse is returned by both endpoints
type ScreenResponse struct {
	render.View
	Quit bool `json:",omitempty"`
}

// ErrorResponse is returned with a non-2xx status
type ErrorResponse struct {
	Err string
}

// Server is an input.Source listening on a unix socket
type Server struct {
	path   string
	viewer Viewer
}

// NewServer creates a control server for the socket at path
func NewServer(path string, viewer Viewer) *Server {
	return &Server{
		path:   path,
		viewer: viewer,
	}
}

// Run serves requests until ctx is done. The socket file is replaced if it
// exists and removed on return.
func (s *Server) Run(ctx context.Context, events chan<- input.Event) error {
	// Ensure socket directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	// Remove existing socket if present (stale from previous run)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}

	// Clean up socket on exit
	defer func() {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove socket on shutdown", "path", s.path, "error", err)
		}
	}()

	h := s.handler(ctx, events)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = listener.Close()
	}()

	log.Info("listening on socket", "path", s.path)

	err = h.Serve(listener)
	if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return fmt.Errorf("serve control socket: %w", err)
}

func (s *Server) handler(ctx context.Context, events chan<- input.Event) sdk.Handler {
	h := sdk.NewHandler(manifest)

	h.HandleFunc(pressPath, func(w http.ResponseWriter, r *http.Request) {
		var req PressRequest
		if err := sdk.DecodeRequest(w, r, &req); err != nil {
			return
		}

		button, err := session.ParseButton(req.Button)
		if err != nil {
			sdk.EncodeResponse(w, ErrorResponse{Err: err.Error()}, true)
			return
		}

		log.Debug("control press", "button", button.String())

		done := make(chan struct{})
		if err := input.Send(ctx, events, input.Event{Button: button, Done: done}); err != nil {
			sdk.EncodeResponse(w, ErrorResponse{Err: "panel is shutting down"}, true)
			return
		}

		select {
		case <-done:
		case <-r.Context().Done():
			return
		case <-ctx.Done():
			// The press that quits the panel is done before the loop stops
			select {
			case <-done:
			default:
				sdk.EncodeResponse(w, ErrorResponse{Err: "panel is shutting down"}, true)
				return
			}
		}

		sdk.EncodeResponse(w, s.screen(), false)
	})

	h.HandleFunc(screenPath, func(w http.ResponseWriter, r *http.Request) {
		sdk.EncodeResponse(w, s.screen(), false)
	})

	return h
}

func (s *Server) screen() ScreenResponse {
	return ScreenResponse{
		View: render.Describe(s.viewer.View()),
		Quit: s.viewer.QuitRequested(),
	}
}
