// Package pattern provides a built-in core that needs no firmware. It
// drives the same lines a real sketch would: an SSD1306 update over SPI
// every frame, the speaker pins, and the button inputs. Import it for its
// side effect of registering the "pattern" core.
package pattern

import (
	"log/slog"

	"github.com/valerio/go-ardusim/ardusim/audio"
	"github.com/valerio/go-ardusim/ardusim/bit"
	"github.com/valerio/go-ardusim/ardusim/display"
	"github.com/valerio/go-ardusim/ardusim/firmware"
	"github.com/valerio/go-ardusim/ardusim/input"
	"github.com/valerio/go-ardusim/ardusim/mcu"
	"github.com/valerio/go-ardusim/ardusim/video"
)

// Name is the registry name of the core.
const Name = "pattern"

const (
	frameRate = 60

	// an SPI byte at fosc/2 takes 8 bit times of 2 cycles
	byteCycles = 16
	idleCycles = 64

	cursorSize = 8
	maxCursorX = video.FramebufferWidth - cursorSize
	maxCursorY = video.FramebufferHeight - cursorSize

	toneA = 440
	toneB = 880
)

// boot sequence: charge pump on, display on
var bootCommands = []byte{0x8D, 0x14, 0xAF}

// full-screen horizontal window
var windowCommands = []byte{0x20, 0x00, 0x21, 0, video.FramebufferWidth - 1, 0x22, 0, video.Pages - 1}

func init() {
	mcu.Register(Name, New)
}

// op is one line change the core performs on a step.
type op struct {
	sig   mcu.Signal
	value uint32
}

// Processor is the pattern core. All state belongs to the simulation
// goroutine.
type Processor struct {
	wiring display.Wiring

	ops    []op
	next   int
	booted bool

	frame            int
	cursorX, cursorY int
	dropped          int

	speaker uint32
}

// New creates the core on m and arms its frame and tone timers. The
// firmware image, if any, is ignored.
func New(m *mcu.Machine, img *firmware.Image) (mcu.Processor, error) {
	if img != nil {
		slog.Info("Pattern core ignores firmware", "firmware", img.Name)
	}

	p := &Processor{
		wiring:  display.ArduboyWiring,
		cursorX: maxCursorX / 2,
		cursorY: maxCursorY / 2,
	}

	frameCycles := m.Frequency() / frameRate
	if frameCycles == 0 {
		frameCycles = 1
	}
	m.Schedule(frameCycles, func(when uint64) uint64 {
		p.startFrame(m)
		return when + frameCycles
	})
	m.Schedule(1, func(when uint64) uint64 {
		return p.tone(m, when)
	})
	return p, nil
}

// Step performs the next queued line change, or idles.
func (p *Processor) Step(m *mcu.Machine) uint64 {
	if p.next >= len(p.ops) {
		return idleCycles
	}

	o := p.ops[p.next]
	p.next++
	if p.next == len(p.ops) {
		p.ops = p.ops[:0]
		p.next = 0
	}
	m.Raise(o.sig, o.value)
	if o.sig == mcu.SPIOutput {
		return byteCycles
	}
	return 1
}

// Frame returns the number of frames started so far.
func (p *Processor) Frame() int {
	return p.frame
}

// Cursor returns the top-left corner of the cursor block.
func (p *Processor) Cursor() (x, y int) {
	return p.cursorX, p.cursorY
}

func (p *Processor) startFrame(m *mcu.Machine) {
	if p.next < len(p.ops) {
		// previous transfer still in flight
		p.dropped++
		slog.Debug("Pattern frame dropped", "frame", p.frame, "dropped", p.dropped)
		return
	}

	p.moveCursor(m)

	if !p.booted {
		p.booted = true
		p.ops = append(p.ops,
			op{p.wiring.RST, 1},
			op{p.wiring.RST, 0},
			op{p.wiring.RST, 1},
			op{p.wiring.CS, 0},
		)
		p.commands(bootCommands...)
	}

	p.commands(windowCommands...)
	p.ops = append(p.ops, op{p.wiring.DC, 1})
	for page := 0; page < video.Pages; page++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			p.ops = append(p.ops, op{mcu.SPIOutput, uint32(p.pixels(page, x))})
		}
	}
	p.frame++
}

func (p *Processor) commands(bytes ...byte) {
	p.ops = append(p.ops, op{p.wiring.DC, 0})
	for _, b := range bytes {
		p.ops = append(p.ops, op{mcu.SPIOutput, uint32(b)})
	}
}

// pixels returns the VRAM byte at (page, x): scrolling dotted stripes with
// the cursor block drawn solid over them.
func (p *Processor) pixels(page, x int) byte {
	var b byte
	if ((x+p.frame)>>3)&1 == 1 {
		b = 0x55
	}
	if x < p.cursorX || x >= p.cursorX+cursorSize {
		return b
	}
	top := p.cursorY - page*8
	bottom := top + cursorSize - 1
	if bottom < 0 || top > 7 {
		return b
	}
	return b | bit.Mask(uint8(min(bottom, 7)), uint8(max(top, 0)))
}

func pressed(m *mcu.Machine, b input.Button) bool {
	return m.Level(input.PinFor(b)) == 0
}

func (p *Processor) moveCursor(m *mcu.Machine) {
	switch {
	case pressed(m, input.ButtonLeft) && p.cursorX > 0:
		p.cursorX--
	case pressed(m, input.ButtonRight) && p.cursorX < maxCursorX:
		p.cursorX++
	}
	switch {
	case pressed(m, input.ButtonUp) && p.cursorY > 0:
		p.cursorY--
	case pressed(m, input.ButtonDown) && p.cursorY < maxCursorY:
		p.cursorY++
	}
}

// tone toggles the speaker pins at the pitch of the held button and holds
// them low otherwise, checking again every millisecond.
func (p *Processor) tone(m *mcu.Machine, when uint64) uint64 {
	pitch := uint64(0)
	switch {
	case pressed(m, input.ButtonB):
		pitch = toneB
	case pressed(m, input.ButtonA):
		pitch = toneA
	}

	if pitch == 0 {
		p.setSpeaker(m, 0)
		return when + max(m.Frequency()/1000, 1)
	}

	p.setSpeaker(m, p.speaker^1)
	return when + max(m.Frequency()/(2*pitch), 1)
}

func (p *Processor) setSpeaker(m *mcu.Machine, level uint32) {
	p.speaker = level
	for _, pin := range audio.ArduboySpeakerPins {
		m.Raise(pin, level)
	}
}
