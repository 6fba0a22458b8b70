package backend

import (
	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/timing"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// Backend represents a host platform (window, input and audio output).
// The event loop drives it once per iteration: Poll, then Present, then
// waits on Limiter.
type Backend interface {
	// Init configures the backend with the provided configuration. Any
	// error is fatal; Cleanup is still called.
	Init(config BackendConfig) error

	// Poll drains pending host events and translates them. Button keys
	// are reported as action.Key events carrying their scancode.
	Poll() []InputEvent

	// Present shows a frame. The frame is reused by the caller after
	// Present returns.
	Present(frame *video.FrameBuffer) error

	// Limiter paces the loop; backends that block on vsync return a no-op.
	Limiter() timing.Limiter

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is one translated host event.
type InputEvent struct {
	Action   action.Action
	Scancode input.Scancode // set for action.Key
	Type     event.Type
}

// KeyEvent builds a button key event.
func KeyEvent(sc input.Scancode, typ event.Type) InputEvent {
	return InputEvent{Action: action.Key, Scancode: sc, Type: typ}
}

// QuitEvent is the event every backend emits to shut down.
func QuitEvent() InputEvent {
	return InputEvent{Action: action.Quit, Type: event.Press}
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title string
	Name  string // firmware name, used for snapshot file names
	Scale int
	VSync bool

	// Audio is the sample ring the backend's audio output drains. Nil or
	// AudioEnabled false means silence.
	Audio        *audio.Ring
	AudioEnabled bool
}
