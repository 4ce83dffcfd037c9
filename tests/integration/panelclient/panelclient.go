//go:build integration

package panelclient

// PanelClient drives the panel over its control socket
type PanelClient interface {
	Press(button string) (*Screen, error)
	Screen() (*Screen, error)
}

// Request/Response types matching the control socket protocol

// PressRequest is the request for Panel.Press
type PressRequest struct {
	Button string `json:"Button"`
}

// Device is one entry of the device list screen
type Device struct {
	Name      string `json:"Name"`
	Size      string `json:"Size"`
	FSType    string `json:"FSType"`
	MountPath string `json:"MountPath"`
	Mounted   bool   `json:"Mounted"`
}

// Screen is the response of both Panel.Press and Panel.Screen
type Screen struct {
	Screen  string    `json:"Screen"`
	Labels  [4]string `json:"Labels"`
	Lines   []string  `json:"Lines"`
	Cursor  int       `json:"Cursor"`
	Devices []Device  `json:"Devices"`
	Quit    bool      `json:"Quit"`
	Err     string    `json:"Err"`
}

// Current returns the device under the cursor, nil if the list is empty
func (s *Screen) Current() *Device {
	if s.Cursor < 0 || s.Cursor >= len(s.Devices) {
		return nil
	}
	return &s.Devices[s.Cursor]
}

// Find returns the index of the named device, -1 if it's not listed
func (s *Screen) Find(name string) int {
	for i, d := range s.Devices {
		if d.Name == name {
			return i
		}
	}
	return -1
}
