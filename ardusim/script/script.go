// Package script drives the buttons from a Lua program, one callback per
// presented frame. It exists for unattended runs of the headless backend.
//
// A script defines on_frame(n) and may call:
//
//	press(name)    hold a button ("up", "down", "left", "right", "a", "b")
//	release(name)  let it go
//	snapshot()     save a PNG of the current frame
//	quit()         end the run
//	log(msg)       write an info line
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
)

const frameHook = "on_frame"

// ErrNoFrameHook is returned when a script does not define on_frame.
var ErrNoFrameHook = errors.New("script: on_frame is not defined")

// Script is a loaded Lua program. It is not safe for concurrent use.
type Script struct {
	name    string
	state   *lua.LState
	onFrame *lua.LFunction
	events  []backend.InputEvent
}

// Load reads and runs the script at path.
func Load(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return LoadString(path, string(src))
}

// LoadString runs src as a script called name. Top-level code runs once;
// on_frame must be defined by the time it returns.
func LoadString(name, src string) (*Script, error) {
	s := &Script{
		name:  name,
		state: lua.NewState(),
	}

	s.state.SetGlobal("press", s.state.NewFunction(s.button(event.Press)))
	s.state.SetGlobal("release", s.state.NewFunction(s.button(event.Release)))
	s.state.SetGlobal("snapshot", s.state.NewFunction(s.snapshot))
	s.state.SetGlobal("quit", s.state.NewFunction(s.quit))
	s.state.SetGlobal("log", s.state.NewFunction(s.log))

	if err := s.state.DoString(src); err != nil {
		s.state.Close()
		return nil, fmt.Errorf("failed to run script %s: %w", name, err)
	}

	fn, ok := s.state.GetGlobal(frameHook).(*lua.LFunction)
	if !ok {
		s.state.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoFrameHook)
	}
	s.onFrame = fn

	slog.Info("Loaded input script", "script", name)
	return s, nil
}

// Frame calls on_frame(n) and returns the events it requested.
func (s *Script) Frame(n int) ([]backend.InputEvent, error) {
	s.events = s.events[:0]
	err := s.state.CallByParam(lua.P{
		Fn:      s.onFrame,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(n))
	if err != nil {
		return nil, fmt.Errorf("%s: frame %d: %w", s.name, n, err)
	}

	out := make([]backend.InputEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Close releases the interpreter.
func (s *Script) Close() {
	s.state.Close()
}

func (s *Script) button(typ event.Type) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		b, ok := input.ParseButton(name)
		if !ok {
			L.ArgError(1, fmt.Sprintf("unknown button %q", name))
			return 0
		}
		s.events = append(s.events, backend.KeyEvent(input.ScancodeFor(b), typ))
		return 0
	}
}

func (s *Script) snapshot(L *lua.LState) int {
	s.events = append(s.events, backend.InputEvent{Action: action.Snapshot, Type: event.Press})
	return 0
}

func (s *Script) quit(L *lua.LState) int {
	s.events = append(s.events, backend.QuitEvent())
	return 0
}

func (s *Script) log(L *lua.LState) int {
	slog.Info("script: "+L.CheckString(1), "script", s.name)
	return 0
}
