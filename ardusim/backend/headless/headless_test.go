package headless_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/backend/headless"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/video"
)

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}

func TestHeadlessBackend(t *testing.T) {
	t.Run("frame budget", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test"}))

		frame := video.NewFrameBuffer()
		for i := 0; i < 3; i++ {
			events := h.Poll()
			if i < 2 {
				assert.Empty(t, events)
			} else {
				// quit arrives with the last frame, which is still presented
				require.Len(t, events, 1)
				assert.Equal(t, action.Quit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
			require.NoError(t, h.Present(frame))
		}

		assert.Equal(t, 3, h.Frames())
		assert.Empty(t, h.Poll(), "quit is sent once")
		assert.NoError(t, h.Cleanup())
	})

	t.Run("needs budget or script", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		assert.Error(t, h.Init(backend.BackendConfig{}))
	})

	t.Run("wav without ring", func(t *testing.T) {
		h := headless.New(1, headless.SnapshotConfig{}, headless.WithWAV(filepath.Join(t.TempDir(), "out.wav")))
		assert.Error(t, h.Init(backend.BackendConfig{}))
	})
}

func TestHeadlessSnapshots(t *testing.T) {
	dir := t.TempDir()
	cfg, err := headless.CreateSnapshotConfig(2, dir, "/games/demo.hex")
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.True(t, cfg.Enabled)

	h := headless.New(3, cfg)
	require.NoError(t, h.Init(backend.BackendConfig{}))
	frame := video.NewFrameBuffer()
	for i := 0; i < 3; i++ {
		h.Poll()
		require.NoError(t, h.Present(frame))
	}
	require.NoError(t, h.Cleanup())

	// frame 2 by interval, frame 3 as the final frame
	files, err := filepath.Glob(filepath.Join(dir, "demo_frame_*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCreateSnapshotConfigDisabled(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "demo.hex")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Directory)
}

func TestHeadlessScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.lua")
	src := `
function on_frame(n)
  if n == 0 then press("b") end
  if n == 1 then release("b"); quit() end
end
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	h := headless.New(0, headless.SnapshotConfig{}, headless.WithScript(path))
	require.NoError(t, h.Init(backend.BackendConfig{}))
	defer h.Cleanup()

	frame := video.NewFrameBuffer()
	assert.Equal(t, []backend.InputEvent{backend.KeyEvent(input.ScancodeS, event.Press)}, h.Poll())
	require.NoError(t, h.Present(frame))
	assert.Equal(t, []backend.InputEvent{
		backend.KeyEvent(input.ScancodeS, event.Release),
		backend.QuitEvent(),
	}, h.Poll())
}

func TestHeadlessWAVCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	ring := audio.NewRing()

	h := headless.New(1, headless.SnapshotConfig{}, headless.WithWAV(path))
	require.NoError(t, h.Init(backend.BackendConfig{Audio: ring, AudioEnabled: true}))
	require.NoError(t, h.Cleanup())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(audio.SampleRate), dec.SampleRate)
	assert.Equal(t, uint16(audio.Channels), dec.NumChans)
}
