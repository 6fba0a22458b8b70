package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/valerio/go-ardusim/ardusim"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/backend/headless"
	"github.com/valerio/go-ardusim/ardusim/backend/sdl2"
	"github.com/valerio/go-ardusim/ardusim/backend/terminal"
	"github.com/valerio/go-ardusim/ardusim/config"
	_ "github.com/valerio/go-ardusim/ardusim/pattern"
	"github.com/valerio/go-ardusim/ardusim/statsview"
)

func init() {
	// SDL wants its calls on the main thread
	runtime.LockOSThread()
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ardusim"
	app.Description = "An Arduboy simulator"
	app.Usage = "ardusim <firmware file>"
	app.ArgsUsage = "<firmware-path>"
	app.HideVersion = true
	app.Action = runSimulator
	return app
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running simulator", "error", err)
		os.Exit(1)
	}
}

func runSimulator(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return errors.New("no firmware path provided")
	}
	firmwarePath := c.Args().First()

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.StatsView != "" {
		stop := statsview.Launch(cfg.StatsView)
		defer stop()
	}

	sim, err := ardusim.NewWithFile(firmwarePath, cfg)
	if err != nil {
		return err
	}

	b, err := newBackend(cfg, firmwarePath)
	if err != nil {
		return err
	}
	return sim.Run(b)
}

func newBackend(cfg *config.Config, firmwarePath string) (backend.Backend, error) {
	name := cfg.ResolveBackend(sdl2.Available)
	slog.Debug("Selected backend", "backend", name)

	switch name {
	case config.BackendSDL2:
		return sdl2.New(), nil
	case config.BackendTerminal:
		return terminal.New(), nil
	case config.BackendHeadless:
		h := cfg.Headless
		snapshots, err := headless.CreateSnapshotConfig(h.SnapshotInterval, h.SnapshotDir, firmwarePath)
		if err != nil {
			return nil, err
		}
		var opts []headless.Option
		if h.WAVPath != "" {
			opts = append(opts, headless.WithWAV(h.WAVPath))
		}
		if h.Script != "" {
			opts = append(opts, headless.WithScript(h.Script))
		}
		return headless.New(h.Frames, snapshots, opts...), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
