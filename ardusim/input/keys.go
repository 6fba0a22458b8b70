package input

import (
	"strings"

	"github.com/valerio/go-ardusim/ardusim/mcu"
)

// Button is one of the six Arduboy buttons.
type Button int

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB

	numButtons
)

var buttonNames = [numButtons]string{"up", "down", "left", "right", "a", "b"}

func (b Button) String() string {
	if b < 0 || b >= numButtons {
		return "unknown"
	}
	return buttonNames[b]
}

// ParseButton maps a case-insensitive button name to its Button.
func ParseButton(name string) (Button, bool) {
	name = strings.ToLower(name)
	for i, n := range buttonNames {
		if n == name {
			return Button(i), true
		}
	}
	return 0, false
}

// Scancode is a physical key position as a USB HID usage ID, the same
// numbering SDL uses for its scancodes.
type Scancode uint16

const (
	ScancodeUnknown Scancode = 0
	ScancodeA       Scancode = 4
	ScancodeS       Scancode = 22
	ScancodeF12     Scancode = 69
	ScancodeRight   Scancode = 79
	ScancodeLeft    Scancode = 80
	ScancodeDown    Scancode = 81
	ScancodeUp      Scancode = 82
)

// Binding ties a button to its host key and its input pin.
type Binding struct {
	Button   Button
	Scancode Scancode
	Pin      mcu.Signal
}

// DefaultBindings is the Arduboy pinout with arrow keys for the D-pad and
// A/S for the A and B buttons.
var DefaultBindings = [numButtons]Binding{
	{ButtonUp, ScancodeUp, mcu.Pin('F', 7)},
	{ButtonDown, ScancodeDown, mcu.Pin('F', 4)},
	{ButtonLeft, ScancodeLeft, mcu.Pin('F', 5)},
	{ButtonRight, ScancodeRight, mcu.Pin('F', 6)},
	{ButtonA, ScancodeA, mcu.Pin('E', 6)},
	{ButtonB, ScancodeS, mcu.Pin('B', 4)},
}

// PinFor returns the default input pin of b.
func PinFor(b Button) mcu.Signal {
	return DefaultBindings[b].Pin
}

// ScancodeFor returns the default host key of b.
func ScancodeFor(b Button) Scancode {
	return DefaultBindings[b].Scancode
}
