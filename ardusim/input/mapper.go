package input

import (
	"log/slog"

	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/mcu"
)

// PinDriver sets input pin levels without notifying bus observers, which
// lets the mapper run on the render goroutine. *mcu.Machine and *mcu.Bus
// satisfy it.
type PinDriver interface {
	Drive(sig mcu.Signal, value uint32)
}

// Pin levels for the buttons' pull-up wiring.
const (
	levelPressed  = 0
	levelReleased = 1
)

// Mapper turns host key transitions into button pin levels. Buttons are
// active low. The new level is visible to the processor at its next step.
type Mapper struct {
	out      PinDriver
	bindings map[Scancode]Binding
}

// NewMapper returns a mapper with DefaultBindings driving out.
func NewMapper(out PinDriver) *Mapper {
	m := &Mapper{
		out:      out,
		bindings: make(map[Scancode]Binding, len(DefaultBindings)),
	}
	for _, b := range DefaultBindings {
		m.bindings[b.Scancode] = b
	}
	return m
}

// Trigger applies a key event. It returns false for scancodes bound to no
// button, which are ignored; hold events are accepted but change nothing.
func (m *Mapper) Trigger(sc Scancode, evt event.Type) bool {
	b, ok := m.bindings[sc]
	if !ok {
		return false
	}

	switch evt {
	case event.Press:
		m.Press(b.Button)
		slog.Debug("Button pressed", "button", b.Button, "pin", b.Pin)
	case event.Release:
		m.Lift(b.Button)
		slog.Debug("Button released", "button", b.Button, "pin", b.Pin)
	}
	return true
}

// Press pushes a button directly, bypassing the scancode table.
func (m *Mapper) Press(b Button) {
	m.out.Drive(PinFor(b), levelPressed)
}

// Lift lets a button go directly.
func (m *Mapper) Lift(b Button) {
	m.out.Drive(PinFor(b), levelReleased)
}

// Release drives every button pin to its idle level.
func (m *Mapper) Release() {
	for _, b := range m.bindings {
		m.out.Drive(b.Pin, levelReleased)
	}
}
