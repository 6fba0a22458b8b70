// Package ardusim wires an emulated Arduboy to a host backend. The
// simulation runs on its own goroutine, paced only by emulated cycles; the
// host loop samples its display and feeds it button levels, and the
// backend's audio output drains the speaker's sample ring.
package ardusim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/config"
	"github.com/valerio/go-ardusim/ardusim/display"
	"github.com/valerio/go-ardusim/ardusim/firmware"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/mcu"
)

// Simulator is one emulated device. Run it once.
type Simulator struct {
	cfg     *config.Config
	image   *firmware.Image
	machine *mcu.Machine
	oled    *display.Controller
	ring    *audio.Ring
	speaker *audio.Speaker
	mapper  *input.Mapper
	runner  *Runner
}

// New builds the device: the configured core, the SSD1306 on its Arduboy
// wiring, the speaker sampler on PC6 and PC7, and the button mapper. img
// may be nil for cores that run without firmware. A nil cfg means
// config.DefaultConfig.
func New(cfg *config.Config, img *firmware.Image) (*Simulator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m, err := mcu.NewMachine(cfg.Core, cfg.Frequency, img)
	if err != nil {
		return nil, fmt.Errorf("failed to create emulation core: %w", err)
	}

	s := &Simulator{
		cfg:     cfg,
		image:   img,
		machine: m,
		oled:    display.NewController(),
		ring:    audio.NewRing(),
		mapper:  input.NewMapper(m),
		runner:  NewRunner(m),
	}
	s.oled.Connect(m.Bus(), display.ArduboyWiring)
	s.speaker = audio.NewSpeaker(s.ring, cfg.Audio.Amplitude)
	s.speaker.Attach(m, audio.ArduboySpeakerPins...)

	slog.Info("Simulator created", "core", cfg.Core, "frequency", cfg.Frequency, "firmware", s.Name())
	return s, nil
}

// NewWithFile loads the firmware at path and creates a simulator for it.
func NewWithFile(path string, cfg *config.Config) (*Simulator, error) {
	img, err := firmware.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, img)
}

// Name identifies the running firmware, falling back to the core name.
func (s *Simulator) Name() string {
	if s.image != nil && s.image.Name != "" {
		return s.image.Name
	}
	return s.cfg.Core
}

// Run initializes b, runs the simulation until the backend quits, then
// stops and joins the simulation goroutine before cleaning b up.
func (s *Simulator) Run(b backend.Backend) (err error) {
	bcfg := backend.BackendConfig{
		Title:        "ardusim - " + s.Name(),
		Name:         s.Name(),
		Scale:        s.cfg.Scale,
		VSync:        s.cfg.VSync,
		Audio:        s.ring,
		AudioEnabled: s.cfg.Audio.Enabled,
	}

	defer func() {
		if cerr := b.Cleanup(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("backend cleanup: %w", cerr))
		}
	}()
	if err := b.Init(bcfg); err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}

	// buttons idle high before the first instruction
	s.mapper.Release()
	s.runner.Start()

	loop := NewLoop(b, s.mapper, s.oled, s.runner.Stop)
	loop.Name = s.Name()
	loop.Run()

	s.runner.Stop()
	s.runner.Wait()

	slog.Info("Simulation stopped",
		"steps", s.runner.Steps(),
		"cycles", s.machine.Now(),
		"samples", s.ring.Produced(),
		"display_bytes", s.oled.Written())
	return nil
}

func (s *Simulator) Machine() *mcu.Machine {
	return s.machine
}

func (s *Simulator) Display() *display.Controller {
	return s.oled
}

func (s *Simulator) Ring() *audio.Ring {
	return s.ring
}

func (s *Simulator) Runner() *Runner {
	return s.runner
}
