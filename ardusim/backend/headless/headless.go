// Package headless runs the simulator without a window: a fixed frame
// budget, optional PNG snapshots, WAV capture of the audio stream and a
// Lua script standing in for the player.
package headless

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/audio/wavwriter"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/debug"
	"github.com/valerio/go-ardusim/ardusim/script"
	"github.com/valerio/go-ardusim/ardusim/timing"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.BackendConfig
	frameCount     int
	maxFrames      int
	quitSent       bool
	snapshotConfig SnapshotConfig

	wavPath    string
	scriptPath string
	wav        *wavwriter.Writer
	pump       *audio.Pump
	script     *script.Script
	limiter    *timing.TickerLimiter
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	Name      string // firmware name for snapshot filenames
	Scale     int
}

// Option configures optional headless features.
type Option func(*Backend)

// WithWAV records the audio stream to path.
func WithWAV(path string) Option {
	return func(h *Backend) { h.wavPath = path }
}

// WithScript drives input from the Lua script at path.
func WithScript(path string) Option {
	return func(h *Backend) { h.scriptPath = path }
}

// New creates a headless backend that quits after maxFrames presented
// frames. Zero frames means no budget; the script must quit instead.
func New(maxFrames int, snapshotConfig SnapshotConfig, opts ...Option) *Backend {
	h := &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config
	if h.maxFrames <= 0 && h.scriptPath == "" {
		return errors.New("headless: needs a frame budget or a script")
	}

	if h.scriptPath != "" {
		s, err := script.Load(h.scriptPath)
		if err != nil {
			return err
		}
		h.script = s
	}

	if h.wavPath != "" {
		if config.Audio == nil {
			return errors.New("headless: WAV capture needs an audio ring")
		}
		w, err := wavwriter.New(h.wavPath)
		if err != nil {
			return err
		}
		h.wav = w
		h.pump = audio.NewPump(config.Audio, w)
		h.pump.Start()
	}

	h.limiter = timing.NewTickerLimiter()

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory,
		"wav", h.wavPath,
		"script", h.scriptPath)
	return nil
}

// Poll reports the script's input for the upcoming frame, and quit when
// that frame is the last one of the budget.
func (h *Backend) Poll() []backend.InputEvent {
	var events []backend.InputEvent

	if h.script != nil {
		scripted, err := h.script.Frame(h.frameCount)
		if err != nil {
			slog.Error("Input script failed, stopping", "error", err)
			return h.quit(events)
		}
		events = append(events, scripted...)
	}

	if h.maxFrames > 0 && h.frameCount+1 >= h.maxFrames {
		events = h.quit(events)
	}
	return events
}

func (h *Backend) quit(events []backend.InputEvent) []backend.InputEvent {
	if h.quitSent {
		return events
	}
	h.quitSent = true
	return append(events, backend.QuitEvent())
}

// Present counts the frame and saves snapshots.
func (h *Backend) Present(frame *video.FrameBuffer) error {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	// Log progress periodically
	if h.frameCount%60 == 0 {
		slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount == h.maxFrames {
		// Save final snapshot if enabled and we haven't just saved one
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}

		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.maxFrames, "png_snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.maxFrames)
		}
	}
	return nil
}

// Frames returns the number of frames presented so far.
func (h *Backend) Frames() int {
	return h.frameCount
}

func (h *Backend) Limiter() timing.Limiter {
	if h.limiter == nil {
		return timing.NewNoOpLimiter()
	}
	return h.limiter
}

// Cleanup stops audio capture and finalizes the WAV file.
func (h *Backend) Cleanup() error {
	var errs []error
	if h.pump != nil {
		h.pump.Stop()
		h.pump = nil
	}
	if h.wav != nil {
		slog.Info("WAV capture finished", "path", h.wavPath, "samples", h.wav.Samples())
		errs = append(errs, h.wav.Close())
		h.wav = nil
	}
	if h.script != nil {
		h.script.Close()
		h.script = nil
	}
	if h.limiter != nil {
		h.limiter.Stop()
		h.limiter = nil
	}
	return errors.Join(errs...)
}

// CreateSnapshotConfig creates a snapshot configuration from settings
func CreateSnapshotConfig(interval int, directory, firmwarePath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		Scale:    debug.DefaultSnapshotScale,
	}

	if !config.Enabled {
		return config, nil
	}

	// Set up snapshot directory
	if directory == "" {
		tempDir, err := os.MkdirTemp("", "ardusim-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.Name = filepath.Base(firmwarePath)
	config.Name = strings.TrimSuffix(config.Name, filepath.Ext(config.Name))

	return config, nil
}

// saveSnapshot saves a PNG snapshot for the current frame
func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.Name, h.frameCount)

	scale := h.snapshotConfig.Scale
	if scale < 1 {
		scale = 1
	}
	if _, err := debug.SaveFramePNGToDir(frame, baseName, h.snapshotConfig.Directory, scale); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}
