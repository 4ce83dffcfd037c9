package session

import (
	"fmt"
	"strings"
)

// Button is one of the four panel buttons, numbered from the top left corner
// clockwise: A top left, B top right, C bottom left, D bottom right.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonC
	ButtonD
)

// Buttons lists every button in corner order.
var Buttons = [...]Button{ButtonA, ButtonB, ButtonC, ButtonD}

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonC:
		return "C"
	case ButtonD:
		return "D"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// ParseButton accepts a button letter in any case, or the numeric keypad key
// sitting in the same corner (7, 9, 1, 3).
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "7":
		return ButtonA, nil
	case "b", "9":
		return ButtonB, nil
	case "c", "1":
		return ButtonC, nil
	case "d", "3":
		return ButtonD, nil
	default:
		return 0, fmt.Errorf("unknown button %q", s)
	}
}
