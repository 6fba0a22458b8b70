// Package display emulates the SSD1306 OLED controller as wired on the
// Arduboy: a 4-wire SPI slave with chip select, data/command and reset
// lines, driving a 128x64 monochrome panel.
package display

import (
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-ardusim/ardusim/bit"
	"github.com/valerio/go-ardusim/ardusim/mcu"
	"github.com/valerio/go-ardusim/ardusim/video"
)

const (
	lastColumn = video.FramebufferWidth - 1
	lastPage   = video.Pages - 1

	defaultContrast = 0x7F
)

// Wiring names the controller's control lines on the processor side.
type Wiring struct {
	CS  mcu.Signal // chip select, active low
	DC  mcu.Signal // high for data, low for commands
	RST mcu.Signal // reset, active low
}

// ArduboyWiring is the Arduboy board: CS on PD6, DC on PD4, RST on PD7.
var ArduboyWiring = Wiring{
	CS:  mcu.Pin('D', 6),
	DC:  mcu.Pin('D', 4),
	RST: mcu.Pin('D', 7),
}

// State is the controller configuration as last set by the firmware.
type State struct {
	On         bool
	Inverted   bool
	EntireOn   bool
	ChargePump bool
	Contrast   uint8
	Mode       AddressingMode
	Column     uint8
	Page       uint8
}

// Controller is one SSD1306. Display RAM is stored per byte in atomics so
// the render goroutine can copy it while the simulation writes; a copy may
// mix two frames. Everything else is driven from the simulation goroutine.
type Controller struct {
	ram [video.Pages][video.FramebufferWidth]atomic.Uint32

	selected bool // CS low
	data     bool // DC high

	cmd     byte
	args    [maxArgs]byte
	nargs   int
	pending int

	mode                AddressingMode
	colStart, colEnd    uint8
	pageStart, pageEnd  uint8
	col, page           uint8
	on, inverted        bool
	entireOn, chargePmp bool
	contrast            uint8

	// bytes written to RAM since creation, for diagnostics
	written atomic.Uint64
}

// NewController returns a controller in its power-on state with blank RAM.
func NewController() *Controller {
	c := &Controller{}
	c.reset()
	return c
}

// Connect subscribes the controller to its control lines and the SPI output
// of b. The current CS and DC levels are sampled so a controller attached
// after the firmware has configured its pins starts in step.
func (c *Controller) Connect(b *mcu.Bus, w Wiring) {
	c.selected = b.Level(w.CS) == 0
	c.data = b.Level(w.DC) != 0

	b.Subscribe(w.CS, mcu.ObserverFunc(func(_ mcu.Signal, v uint32) {
		c.selected = v == 0
	}))
	b.Subscribe(w.DC, mcu.ObserverFunc(func(_ mcu.Signal, v uint32) {
		c.data = v != 0
	}))
	b.Subscribe(w.RST, mcu.ObserverFunc(func(_ mcu.Signal, v uint32) {
		if v == 0 {
			c.reset()
		}
	}))
	b.Subscribe(mcu.SPIOutput, mcu.ObserverFunc(func(_ mcu.Signal, v uint32) {
		c.Write(byte(v))
	}))
}

// Write feeds one byte shifted in over SPI.
func (c *Controller) Write(b byte) {
	if !c.selected {
		return
	}
	if c.data {
		c.writeData(b)
		return
	}
	c.writeCommand(b)
}

// CopyVRAM copies display RAM into dst. It implements video.Source.
func (c *Controller) CopyVRAM(dst *video.VRAM) {
	for p := range c.ram {
		for x := range c.ram[p] {
			dst[p][x] = byte(c.ram[p][x].Load())
		}
	}
}

// State reports the configuration registers. Call it from the simulation
// goroutine, or after the machine has stopped.
func (c *Controller) State() State {
	return State{
		On:         c.on,
		Inverted:   c.inverted,
		EntireOn:   c.entireOn,
		ChargePump: c.chargePmp,
		Contrast:   c.contrast,
		Mode:       c.mode,
		Column:     c.col,
		Page:       c.page,
	}
}

// Written returns the number of data bytes stored since creation.
func (c *Controller) Written() uint64 {
	return c.written.Load()
}

// reset restores the power-on register values. RAM keeps its contents.
func (c *Controller) reset() {
	c.pending = 0
	c.nargs = 0
	c.mode = PageAddressing
	c.colStart, c.colEnd = 0, lastColumn
	c.pageStart, c.pageEnd = 0, lastPage
	c.col, c.page = 0, 0
	c.on = false
	c.inverted = false
	c.entireOn = false
	c.chargePmp = false
	c.contrast = defaultContrast
	slog.Debug("SSD1306 reset")
}

func (c *Controller) writeData(b byte) {
	c.ram[c.page][c.col].Store(uint32(b))
	c.written.Add(1)

	switch c.mode {
	case HorizontalAddressing:
		if c.col >= c.colEnd {
			c.col = c.colStart
			if c.page >= c.pageEnd {
				c.page = c.pageStart
			} else {
				c.page++
			}
		} else {
			c.col++
		}
	case VerticalAddressing:
		if c.page >= c.pageEnd {
			c.page = c.pageStart
			if c.col >= c.colEnd {
				c.col = c.colStart
			} else {
				c.col++
			}
		} else {
			c.page++
		}
	default:
		if c.col >= lastColumn {
			c.col = 0
		} else {
			c.col++
		}
	}
}

func (c *Controller) writeCommand(b byte) {
	if c.pending > 0 {
		c.args[c.nargs] = b
		c.nargs++
		c.pending--
		if c.pending == 0 {
			c.execute(c.cmd, c.args[:c.nargs])
		}
		return
	}

	c.cmd = b
	c.nargs = 0
	c.pending = argCount(b)
	if c.pending == 0 {
		c.execute(b, nil)
	}
}

func (c *Controller) execute(cmd byte, args []byte) {
	switch {
	case cmd <= 0x0F:
		c.col = c.col&0xF0 | bit.ExtractBits(cmd, 3, 0)
	case cmd <= 0x1F:
		c.col = bit.ExtractBits(cmd, 2, 0)<<4 | c.col&0x0F
	case cmd >= cmdPageStart && cmd <= cmdPageStart+lastPage:
		c.page = cmd - cmdPageStart
	case cmd >= cmdStartLine && cmd <= 0x7F:
		// display start line only shifts the panel scan, not RAM
	}

	switch cmd {
	case cmdAddressingMode:
		mode := AddressingMode(args[0] & 0x03)
		if mode > PageAddressing {
			slog.Debug("SSD1306 ignoring invalid addressing mode", "value", args[0])
			return
		}
		c.mode = mode
	case cmdColumnRange:
		c.colStart = args[0] & lastColumn
		c.colEnd = args[1] & lastColumn
		c.col = c.colStart
	case cmdPageRange:
		c.pageStart = args[0] & lastPage
		c.pageEnd = args[1] & lastPage
		c.page = c.pageStart
	case cmdContrast:
		c.contrast = args[0]
	case cmdChargePump:
		c.chargePmp = bit.IsSet(2, args[0])
	case cmdFollowRAM:
		c.entireOn = false
	case cmdEntireOn:
		c.entireOn = true
	case cmdNormal:
		c.inverted = false
	case cmdInvert:
		c.inverted = true
	case cmdDisplayOff:
		c.on = false
	case cmdDisplayOn:
		c.on = true
	}
}
