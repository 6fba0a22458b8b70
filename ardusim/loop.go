package ardusim

import (
	"log/slog"

	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/debug"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// LoopState is the state of the host event loop.
type LoopState int

const (
	Polling LoopState = iota
	Rendering
	Quitting
)

func (s LoopState) String() string {
	switch s {
	case Polling:
		return "polling"
	case Rendering:
		return "rendering"
	case Quitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Loop is the host side of the simulator, run on the main goroutine:
// poll input, render the display, wait for the next frame.
type Loop struct {
	backend backend.Backend
	mapper  *input.Mapper
	display video.Source
	snap    *video.Snapshotter
	onQuit  func()

	// Name prefixes snapshot files.
	Name string

	state      LoopState
	iterations uint64
	snapshot   func(frame *video.FrameBuffer, name string)
}

// NewLoop creates a loop presenting display on b. onQuit runs once, in
// the iteration that receives the quit event.
func NewLoop(b backend.Backend, mapper *input.Mapper, display video.Source, onQuit func()) *Loop {
	if onQuit == nil {
		onQuit = func() {}
	}
	return &Loop{
		backend:  b,
		mapper:   mapper,
		display:  display,
		snap:     video.NewSnapshotter(),
		onQuit:   onQuit,
		snapshot: debug.TakeSnapshot,
	}
}

// Iterate runs one iteration and reports whether the loop should go on.
// The iteration that sees quit still renders its frame.
func (l *Loop) Iterate() bool {
	if l.state != Quitting {
		l.state = Polling
	}

	wantSnapshot := false
	for _, evt := range l.backend.Poll() {
		switch evt.Action {
		case action.Key:
			l.mapper.Trigger(evt.Scancode, evt.Type)
		case action.Snapshot:
			wantSnapshot = wantSnapshot || evt.Type == event.Press
		case action.Quit:
			if l.state != Quitting {
				slog.Debug("Quit requested", "iteration", l.iterations)
				l.state = Quitting
				l.onQuit()
			}
		}
	}

	quitting := l.state == Quitting
	if !quitting {
		l.state = Rendering
	}

	frame := l.snap.Snapshot(l.display)
	if wantSnapshot {
		l.snapshot(frame, l.Name)
	}
	if err := l.backend.Present(frame); err != nil {
		slog.Warn("Failed to present frame", "error", err)
	}
	l.iterations++

	if quitting {
		return false
	}
	l.backend.Limiter().WaitForNextFrame()
	return true
}

// Run iterates until quit.
func (l *Loop) Run() {
	for l.Iterate() {
	}
	slog.Debug("Event loop finished", "iterations", l.iterations)
}

func (l *Loop) State() LoopState {
	return l.state
}

// Iterations returns the number of completed iterations.
func (l *Loop) Iterations() uint64 {
	return l.iterations
}
