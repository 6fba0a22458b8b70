//go:build sdl2

package sdl2

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/timing"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// Available reports whether this build includes the SDL2 backend.
const Available = true

const (
	bytesPerPixel = 4
	// keep at most this many blocks queued on the device
	maxQueuedBlocks = 2
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	config   backend.BackendConfig
	limiter  timing.Limiter

	audioDev  sdl.AudioDeviceID
	audioPump *audio.Pump
	audioBuf  []byte

	events  []backend.InputEvent
	handler *input.Handler
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{handler: input.NewHandler()}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	if config.Scale < 1 {
		config.Scale = 1
	}
	s.config = config

	flags := uint32(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
	if config.AudioEnabled && config.Audio != nil {
		flags |= sdl.INIT_AUDIO
	}
	if err := sdl.Init(flags); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*config.Scale),
		int32(video.FramebufferHeight*config.Scale),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	// letterbox the panel when the window is resized
	if err := renderer.SetLogicalSize(video.FramebufferWidth, video.FramebufferHeight); err != nil {
		return fmt.Errorf("failed to set logical size: %w", err)
	}

	// frame pixels are packed ARGB, upload them as is
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	if _, err := sdl.ShowCursor(sdl.DISABLE); err != nil {
		slog.Warn("Failed to hide cursor", "error", err)
	}

	if config.VSync {
		s.limiter = timing.NewNoOpLimiter()
	} else {
		s.limiter = timing.NewAdaptiveLimiter()
	}

	if config.AudioEnabled && config.Audio != nil {
		if err := s.openAudio(config.Audio); err != nil {
			return err
		}
	}

	slog.Info("SDL2 backend initialized", "scale", config.Scale, "vsync", config.VSync, "audio", s.audioDev != 0)
	return nil
}

func (s *Backend) openAudio(ring *audio.Ring) error {
	wanted := &sdl.AudioSpec{
		Freq:     audio.SampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: audio.Channels,
		Samples:  audio.BlockSize,
	}
	var obtained sdl.AudioSpec

	dev, err := sdl.OpenAudioDevice("", false, wanted, &obtained, 0)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	s.audioDev = dev

	if obtained.Freq != wanted.Freq || obtained.Format != wanted.Format || obtained.Channels != wanted.Channels {
		return fmt.Errorf("%w (got %d Hz, format 0x%X, %d channels)",
			ErrAudioFormat, obtained.Freq, obtained.Format, obtained.Channels)
	}

	s.audioBuf = make([]byte, audio.BlockSize*audio.BytesPerSample)
	s.audioPump = audio.NewPump(ring, audio.SinkFunc(s.queueAudio))
	s.audioPump.Start()
	sdl.PauseAudioDevice(dev, false)
	return nil
}

// queueAudio runs on the pump goroutine. Blocks are dropped while the
// device still has enough queued so latency stays bounded.
func (s *Backend) queueAudio(block []int16) error {
	if sdl.GetQueuedAudioSize(s.audioDev) > uint32(maxQueuedBlocks*len(s.audioBuf)) {
		return nil
	}
	for i, v := range block {
		binary.LittleEndian.PutUint16(s.audioBuf[i*audio.BytesPerSample:], uint16(v))
	}
	return sdl.QueueAudio(s.audioDev, s.audioBuf)
}

// Poll drains the SDL event queue.
func (s *Backend) Poll() []backend.InputEvent {
	s.events = s.events[:0]
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}
	return s.events
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.events = append(s.events, backend.QuitEvent())

	case *sdl.KeyboardEvent:
		// key repeat would re-press a held button
		if e.Repeat != 0 {
			return
		}

		typ := event.Release
		if e.Type == sdl.KEYDOWN {
			typ = event.Press
		}

		switch e.Keysym.Scancode {
		case sdl.SCANCODE_ESCAPE:
			if typ == event.Press {
				s.events = append(s.events, backend.QuitEvent())
			}
		case sdl.SCANCODE_F12:
			if typ == event.Press && s.handler.ProcessEvent(action.Snapshot, typ) {
				s.events = append(s.events, backend.InputEvent{Action: action.Snapshot, Type: typ})
			}
		default:
			// SDL scancodes are USB HID usage IDs
			s.events = append(s.events, backend.KeyEvent(input.Scancode(e.Keysym.Scancode), typ))
		}
	}
}

// Present uploads the frame to the streaming texture and shows it.
func (s *Backend) Present(frame *video.FrameBuffer) error {
	pixels := frame.ToSlice()

	if err := s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*bytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}
	if err := s.renderer.Clear(); err != nil {
		return err
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return err
	}
	s.renderer.Present()
	return nil
}

func (s *Backend) Limiter() timing.Limiter {
	return s.limiter
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.audioPump != nil {
		s.audioPump.Stop()
	}
	if s.audioDev != 0 {
		sdl.CloseAudioDevice(s.audioDev)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}
