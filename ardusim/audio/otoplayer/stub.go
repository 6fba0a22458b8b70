//go:build headless

package otoplayer

import (
	"errors"

	"github.com/valerio/go-ardusim/ardusim/audio"
)

// Available reports whether this build can open a sound device.
const Available = false

// Player is a stand-in for builds without a sound device.
type Player struct{}

// New always fails in headless builds.
func New(ring *audio.Ring) (*Player, error) {
	return nil, errors.New("audio output not available in headless builds")
}

func (p *Player) Start() {}

func (p *Player) Close() error {
	return nil
}
