//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/timing"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// Available reports whether this build includes the SDL2 backend.
const Available = false

// Backend stub for when SDL2 is not available
type Backend struct{}

// New creates a stub SDL2 backend that returns an error
func New() *Backend {
	return &Backend{}
}

// Init returns an error indicating SDL2 is not available
func (s *Backend) Init(config backend.BackendConfig) error {
	return fmt.Errorf("SDL2 backend not available - build with -tags sdl2 to enable")
}

func (s *Backend) Poll() []backend.InputEvent {
	return nil
}

// Present returns an error
func (s *Backend) Present(frame *video.FrameBuffer) error {
	return fmt.Errorf("SDL2 backend not available")
}

func (s *Backend) Limiter() timing.Limiter {
	return timing.NewNoOpLimiter()
}

// Cleanup does nothing
func (s *Backend) Cleanup() error {
	return nil
}
