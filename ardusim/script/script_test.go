package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
)

const walkRight = `
function on_frame(n)
  if n == 1 then press("right") end
  if n == 3 then release("right"); press("A") end
  if n == 5 then snapshot(); quit() end
end
`

func TestScriptFrames(t *testing.T) {
	s, err := LoadString("walk", walkRight)
	require.NoError(t, err)
	defer s.Close()

	tests := []struct {
		frame int
		want  []backend.InputEvent
	}{
		{0, []backend.InputEvent{}},
		{1, []backend.InputEvent{backend.KeyEvent(input.ScancodeRight, event.Press)}},
		{2, []backend.InputEvent{}},
		{3, []backend.InputEvent{
			backend.KeyEvent(input.ScancodeRight, event.Release),
			backend.KeyEvent(input.ScancodeA, event.Press),
		}},
		{5, []backend.InputEvent{
			{Action: action.Snapshot, Type: event.Press},
			backend.QuitEvent(),
		}},
	}

	for _, tt := range tests {
		got, err := s.Frame(tt.frame)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "frame %d", tt.frame)
	}
}

func TestScriptUnknownButton(t *testing.T) {
	s, err := LoadString("bad", `function on_frame(n) press("start") end`)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Frame(0)
	assert.ErrorContains(t, err, "unknown button")
}

func TestScriptWithoutHook(t *testing.T) {
	_, err := LoadString("empty", `x = 1`)
	assert.ErrorIs(t, err, ErrNoFrameHook)
}

func TestScriptSyntaxError(t *testing.T) {
	_, err := LoadString("broken", `function on_frame(`)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quit.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function on_frame(n) log("tick"); quit() end`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Frame(7)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{backend.QuitEvent()}, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
