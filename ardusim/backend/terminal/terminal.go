// Package terminal renders the panel with half-block glyphs in a tcell
// screen. Terminals report no key-up events, so a key counts as held
// until its auto-repeat stops for keyTimeout.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-ardusim/ardusim/audio/otoplayer"
	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/backend/terminal/render"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
	"github.com/valerio/go-ardusim/ardusim/timing"
	"github.com/valerio/go-ardusim/ardusim/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two panel rows per terminal cell, plus the border
	panelRows     = height / 2
	minTermWidth  = width + 2
	minTermHeight = panelRows + 3

	logCapacity = 200
)

// Key expiry timeout - slightly longer than typical key repeat interval
const keyTimeout = 100 * time.Millisecond

var keyScancodes = map[tcell.Key]input.Scancode{
	tcell.KeyUp:    input.ScancodeUp,
	tcell.KeyDown:  input.ScancodeDown,
	tcell.KeyLeft:  input.ScancodeLeft,
	tcell.KeyRight: input.ScancodeRight,
}

var runeScancodes = map[rune]input.Scancode{
	'a': input.ScancodeA,
	'A': input.ScancodeA,
	's': input.ScancodeS,
	'S': input.ScancodeS,
}

// Backend implements backend.Backend on a tcell screen.
type Backend struct {
	screen    tcell.Screen
	config    backend.BackendConfig
	limiter   timing.Limiter
	player    *otoplayer.Player
	logBuffer *render.LogBuffer
	logLevel  slog.Level
	prevLog   *slog.Logger

	keyStates  map[input.Scancode]time.Time // last auto-repeat seen per key
	activeKeys map[input.Scancode]bool      // keys reported pressed last poll
	queue      []backend.InputEvent
	handler    *input.Handler

	quitRequested atomic.Bool
	signals       chan os.Signal

	now       func() time.Time
	newScreen func() (tcell.Screen, error)
}

// New creates a terminal backend on the real terminal.
func New() *Backend {
	return &Backend{
		logLevel:  slog.LevelInfo,
		now:       time.Now,
		newScreen: tcell.NewScreen,
	}
}

// Init takes over the terminal, routes logging into the side panel and
// starts audio if enabled. Audio failure is not fatal here: a terminal is
// often a remote session with no sound device.
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keyStates = make(map[input.Scancode]time.Time)
	t.activeKeys = make(map[input.Scancode]bool)
	t.handler = input.NewHandler()
	t.limiter = timing.NewAdaptiveLimiter()

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen = screen
	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// stderr would scribble over the screen
	t.logBuffer = render.NewLogBuffer(logCapacity)
	t.prevLog = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	if config.AudioEnabled && config.Audio != nil {
		t.startAudio()
	}

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go t.handleSignals(t.signals)

	slog.Info("Terminal backend initialized", "firmware", config.Name)
	return nil
}

func (t *Backend) startAudio() {
	if !otoplayer.Available {
		slog.Warn("Audio output not compiled in, running silent")
		return
	}
	player, err := otoplayer.New(t.config.Audio)
	if err != nil {
		slog.Warn("Audio output unavailable, running silent", "error", err)
		return
	}
	player.Start()
	t.player = player
}

func (t *Backend) handleSignals(signals <-chan os.Signal) {
	if _, ok := <-signals; ok {
		t.quitRequested.Store(true)
	}
}

// Poll drains terminal events and synthesizes Press, Hold and Release for
// the button keys from their auto-repeat.
func (t *Backend) Poll() []backend.InputEvent {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	var events []backend.InputEvent
	current := make(map[input.Scancode]bool)
	for sc, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, sc)
			continue
		}
		current[sc] = true
		if t.activeKeys[sc] {
			events = append(events, backend.KeyEvent(sc, event.Hold))
		} else {
			slog.Debug("Key press", "scancode", sc)
			events = append(events, backend.KeyEvent(sc, event.Press))
		}
	}
	for sc := range t.activeKeys {
		if !current[sc] {
			slog.Debug("Key release", "scancode", sc)
			events = append(events, backend.KeyEvent(sc, event.Release))
		}
	}
	t.activeKeys = current

	events = append(events, t.queue...)
	t.queue = t.queue[:0]

	if t.quitRequested.Swap(false) {
		events = append(events, backend.QuitEvent())
	}
	return events
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.queue = append(t.queue, backend.QuitEvent())
		return
	case tcell.KeyF12:
		if t.handler.ProcessEvent(action.Snapshot, event.Press) {
			t.queue = append(t.queue, backend.InputEvent{Action: action.Snapshot, Type: event.Press})
		}
		return
	case tcell.KeyRune:
		t.processRuneKey(ev.Rune(), now)
		return
	}

	if sc, ok := keyScancodes[ev.Key()]; ok {
		t.keyStates[sc] = now
	}
}

func (t *Backend) processRuneKey(r rune, now time.Time) {
	if sc, ok := runeScancodes[r]; ok {
		t.keyStates[sc] = now
		return
	}

	switch r {
	case 'q':
		t.queue = append(t.queue, backend.QuitEvent())
	case '+', '=':
		t.changeLogLevel(-1)
	case '-', '_':
		t.changeLogLevel(1)
	}
}

// changeLogLevel moves the log panel filter; a negative direction shows
// more detail.
func (t *Backend) changeLogLevel(direction int) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	idx := 0
	for i, l := range levels {
		if l == t.logLevel {
			idx = i
		}
	}
	idx += direction
	if idx < 0 || idx >= len(levels) {
		return
	}
	old := t.logLevel
	t.logLevel = levels[idx]
	slog.Info("Log filter changed", "from", old, "to", t.logLevel)
}

// Present draws the frame and the log panel.
func (t *Backend) Present(frame *video.FrameBuffer) error {
	t.render(frame)
	t.screen.Show()
	return nil
}

func (t *Backend) Limiter() timing.Limiter {
	return t.limiter
}

// Cleanup restores the terminal and the previous default logger.
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
		close(t.signals)
		t.signals = nil
	}

	var err error
	if t.player != nil {
		err = t.player.Close()
		t.player = nil
	}
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	if t.prevLog != nil {
		slog.SetDefault(t.prevLog)
		t.prevLog = nil
	}
	slog.Info("Terminal backend cleaned up")
	return err
}

func (t *Backend) render(frame *video.FrameBuffer) {
	t.screen.Clear()
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	t.drawBorder()
	t.drawPanel(frame)

	logsY := panelRows + 2
	t.drawLogs(logsY, termWidth, termHeight-1)
	t.drawText(0, termHeight-1, termWidth,
		"arrows: d-pad  a/s: A/B  F12: snapshot  +/-: log level  q/Esc: quit",
		tcell.StyleDefault.Foreground(tcell.ColorGray))
}

func (t *Backend) drawBorder() {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	right, bottom := width+1, panelRows+1
	for x := 1; x < right; x++ {
		t.screen.SetContent(x, 0, '─', nil, style)
		t.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := 1; y < bottom; y++ {
		t.screen.SetContent(0, y, '│', nil, style)
		t.screen.SetContent(right, y, '│', nil, style)
	}
	t.screen.SetContent(0, 0, '┌', nil, style)
	t.screen.SetContent(right, 0, '┐', nil, style)
	t.screen.SetContent(0, bottom, '└', nil, style)
	t.screen.SetContent(right, bottom, '┘', nil, style)

	title := " " + t.config.Title + " "
	t.drawText(2, 0, width-2, title, tcell.StyleDefault.Foreground(tcell.ColorYellow))
}

func (t *Backend) drawPanel(frame *video.FrameBuffer) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for row := 0; row < panelRows; row++ {
		for x := 0; x < width; x++ {
			top := video.IsLit(frame.GetPixel(uint(x), uint(row*2)))
			bottom := video.IsLit(frame.GetPixel(uint(x), uint(row*2+1)))
			t.screen.SetContent(x+1, row+1, render.HalfBlock(top, bottom), nil, style)
		}
	}
}

func (t *Backend) drawLogs(y, termWidth, maxY int) {
	lines := maxY - y
	if lines <= 0 {
		return
	}
	entries := t.logBuffer.GetRecent(lines, t.logLevel)
	// oldest at the top
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch {
		case entry.Level >= slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		case entry.Level >= slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = style.Foreground(tcell.ColorGray)
		}
		t.drawText(0, y, termWidth, render.FormatLogEntry(entry), style)
		y++
	}
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	for i, ch := range []rune(render.Truncate(text, maxWidth)) {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}
