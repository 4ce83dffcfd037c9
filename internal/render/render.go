// Package render turns a session screen into what the panel shows: the four
// corner labels, a 128x64 monochrome frame and a plain text description.
package render

import (
	"fmt"
	"strings"

	"github.com/kriansa/drive-pi/internal/session"
)

const (
	// Title is shown at the top of every screen
	Title = "DrivePi"
	// NoDevices replaces the list when nothing can be mounted
	NoDevices = "NO DEVICES"
)

// ExitPrompt is the question on the exit confirmation screen.
var ExitPrompt = []string{"Are you sure", "you want to exit"}

// Labels returns the corner labels for buttons A, B, C and D. An empty label
// means the button does nothing on this screen.
func Labels(sc session.Screen) [4]string {
	switch sc := sc.(type) {
	case session.Home:
		return [4]string{"NET", "SMB", "MNT", "EXIT"}
	case session.DeviceList:
		dev, ok := sc.Current()
		if !ok {
			return [4]string{"", "", "", "BACK"}
		}
		action := "MNT"
		if dev.Mounted {
			action = "UMT"
		}
		return [4]string{"^", "v", action, "BACK"}
	case session.ErrorMessage:
		return [4]string{"BACK", "", "", ""}
	case session.ConfirmExit:
		return [4]string{"YES", "NO", "", ""}
	default:
		panic(fmt.Sprintf("render: unknown screen %T", sc))
	}
}

// Lines returns the body text of a screen, one entry per display row.
func Lines(sc session.Screen) []string {
	switch sc := sc.(type) {
	case session.Home:
		return nil
	case session.DeviceList:
		visible := sc.Visible(session.WindowSize)
		if len(visible) == 0 {
			return []string{NoDevices}
		}
		lines := make([]string, len(visible))
		for i, dev := range visible {
			marker := " "
			if i == 0 {
				marker = ">"
			}
			mounted := ""
			if dev.Mounted {
				mounted = " *"
			}
			lines[i] = fmt.Sprintf("%s%-8s %5s%s", marker, dev.Name, dev.Size, mounted)
		}
		return lines
	case session.ErrorMessage:
		return wrap(sc.Text, maxColumns)
	case session.ConfirmExit:
		return append([]string(nil), ExitPrompt...)
	default:
		panic(fmt.Sprintf("render: unknown screen %T", sc))
	}
}

// wrap breaks text on spaces into lines of at most width characters. Words
// longer than width are cut.
func wrap(text string, width int) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
