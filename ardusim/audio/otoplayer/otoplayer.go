//go:build !headless

// Package otoplayer plays the sample ring through the host sound device
// using oto. Builds with the headless tag get a silent stand-in.
package otoplayer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/valerio/go-ardusim/ardusim/audio"
)

// Available reports whether this build can open a sound device.
const Available = true

// oto keeps a single context per process.
var (
	ctxOnce sync.Once
	ctx     *oto.Context
	ctxErr  error
)

func sharedContext() (*oto.Context, error) {
	ctxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   audio.SampleRate,
			ChannelCount: audio.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   audio.BlockDuration,
		}

		var ready chan struct{}
		ctx, ready, ctxErr = oto.NewContext(op)
		if ctxErr != nil {
			return
		}
		<-ready
	})
	return ctx, ctxErr
}

// Player pulls host blocks from the ring on oto's goroutine.
type Player struct {
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

// New opens the sound device and prepares a player reading from ring.
func New(ring *audio.Ring) (*Player, error) {
	c, err := sharedContext()
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}

	p := &Player{player: c.NewPlayer(audio.NewReader(ring))}
	// one block of device buffering, matching the host callback size
	p.player.SetBufferSize(audio.BlockSize * audio.BytesPerSample)

	slog.Info("Audio output opened", "driver", "oto", "rate", audio.SampleRate, "block", audio.BlockSize)
	return p, nil
}

func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		p.player.Play()
		p.started = true
	}
}

// Close stops playback and releases the player.
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	p.started = false
	err := p.player.Close()
	p.player = nil
	return err
}
