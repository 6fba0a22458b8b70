package ardusim_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ardusim/ardusim"
	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/config"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/mcu"
	_ "github.com/valerio/go-ardusim/ardusim/pattern"
	"github.com/valerio/go-ardusim/ardusim/timing"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// untilSamples quits once the ring has seen the given number of samples,
// which makes the run length a matter of emulated time.
type untilSamples struct {
	config    backend.BackendConfig
	target    uint64
	deadline  time.Time
	first     []backend.InputEvent
	polls     int
	lastFrame *video.FrameBuffer
	initErr   error
	cleanedUp bool
}

func (u *untilSamples) Init(cfg backend.BackendConfig) error {
	u.config = cfg
	u.deadline = time.Now().Add(30 * time.Second)
	return u.initErr
}

func (u *untilSamples) Poll() []backend.InputEvent {
	u.polls++
	if u.polls == 1 {
		return u.first
	}
	if u.config.Audio.Produced() >= u.target || time.Now().After(u.deadline) {
		return []backend.InputEvent{backend.QuitEvent()}
	}
	return nil
}

func (u *untilSamples) Present(frame *video.FrameBuffer) error {
	if u.lastFrame == nil {
		u.lastFrame = video.NewFrameBuffer()
	}
	copy(u.lastFrame.ToSlice(), frame.ToSlice())
	return nil
}

func (u *untilSamples) Limiter() timing.Limiter { return timing.NewNoOpLimiter() }

func (u *untilSamples) Cleanup() error {
	u.cleanedUp = true
	return nil
}

func TestSimulatorRunsPatternCore(t *testing.T) {
	sim, err := ardusim.New(config.DefaultConfig(), nil)
	require.NoError(t, err)

	b := &untilSamples{target: audio.SampleRate}
	require.NoError(t, sim.Run(b))

	assert.True(t, b.cleanedUp)
	assert.Equal(t, "ardusim - pattern", b.config.Title)
	assert.Same(t, sim.Ring(), b.config.Audio)
	assert.Equal(t, ardusim.Stopped, sim.Runner().State())
	require.GreaterOrEqual(t, sim.Ring().Produced(), uint64(audio.SampleRate))

	// machine is idle now, so its clock can be read
	assert.GreaterOrEqual(t, sim.Machine().Now(), uint64(mcu.DefaultFrequency))
	assert.True(t, sim.Display().State().On)

	require.NotNil(t, b.lastFrame)
	assert.True(t, video.IsLit(b.lastFrame.GetPixel(60, 28)), "cursor block is drawn")
}

func TestSimulatorButtonsReachCore(t *testing.T) {
	sim, err := ardusim.New(nil, nil)
	require.NoError(t, err)

	// two emulated seconds is enough for the cursor to hit the right edge
	b := &untilSamples{
		target: 2 * audio.SampleRate,
		first:  []backend.InputEvent{backend.KeyEvent(input.ScancodeRight, event.Press)},
	}
	require.NoError(t, sim.Run(b))

	require.NotNil(t, b.lastFrame)
	assert.True(t, video.IsLit(b.lastFrame.GetPixel(127, 28)))
	assert.Equal(t, uint32(0), sim.Machine().Level(input.PinFor(input.ButtonRight)))
	assert.Equal(t, uint32(1), sim.Machine().Level(input.PinFor(input.ButtonLeft)))
}

func TestSimulatorInitFailure(t *testing.T) {
	sim, err := ardusim.New(nil, nil)
	require.NoError(t, err)

	boom := errors.New("no display")
	b := &untilSamples{initErr: boom}
	err = sim.Run(b)

	assert.ErrorIs(t, err, boom)
	assert.True(t, b.cleanedUp, "cleanup runs after a failed init")
	assert.Zero(t, sim.Runner().Steps())
}

func TestSimulatorUnknownCore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Core = "avr-missing"

	_, err := ardusim.New(cfg, nil)
	assert.ErrorIs(t, err, mcu.ErrUnknownCore)
}

func TestNewWithFileMissing(t *testing.T) {
	_, err := ardusim.NewWithFile(filepath.Join(t.TempDir(), "missing.hex"), nil)
	assert.Error(t, err)
}
