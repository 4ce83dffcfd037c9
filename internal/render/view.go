package render

import (
	"fmt"

	"github.com/kriansa/drive-pi/internal/session"
)

// View is the text form of a screen, as served on the control socket
type View struct {
	Screen  string
	Labels  [4]string
	Lines   []string
	Cursor  int          `json:",omitempty"`
	Devices []DeviceView `json:",omitempty"`
}

// DeviceView describes one listed device
type DeviceView struct {
	Name      string
	Size      string
	FSType    string `json:",omitempty"`
	MountPath string
	Mounted   bool
}

// Describe builds the text view of a screen
func Describe(sc session.Screen) View {
	v := View{
		Labels: Labels(sc),
		Lines:  Lines(sc),
	}

	switch sc := sc.(type) {
	case session.Home:
		v.Screen = "home"
	case session.DeviceList:
		v.Screen = "devices"
		v.Cursor = sc.Cursor
		v.Devices = make([]DeviceView, len(sc.Devices))
		for i, d := range sc.Devices {
			v.Devices[i] = DeviceView{
				Name:      d.Name,
				Size:      d.Size,
				FSType:    d.FSType,
				MountPath: d.MountPath,
				Mounted:   d.Mounted,
			}
		}
	case session.ErrorMessage:
		v.Screen = "error"
	case session.ConfirmExit:
		v.Screen = "confirm_exit"
	default:
		panic(fmt.Sprintf("render: unknown screen %T", sc))
	}

	return v
}
