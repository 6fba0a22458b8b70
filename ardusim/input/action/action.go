package action

// Action represents host-level input the event loop acts on.
type Action int

const (
	// Key is a button key transition; the event carries the scancode.
	Key Action = iota
	// Quit asks the frontend to shut down (window close, Ctrl-C, SIGINT).
	Quit
	// Snapshot saves the current frame as a PNG.
	Snapshot
)

func (a Action) String() string {
	switch a {
	case Key:
		return "key"
	case Quit:
		return "quit"
	case Snapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// IsUI reports whether the action controls the frontend rather than the
// emulated device.
func (a Action) IsUI() bool {
	return a != Key
}
