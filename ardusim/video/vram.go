package video

import "github.com/valerio/go-ardusim/ardusim/bit"

// Pages is the number of 8-row pages in SSD1306 display RAM.
const Pages = FramebufferHeight / 8

// VRAM is SSD1306 display RAM: page-major, one byte per column per page,
// bit k of vram[p][x] is row p*8+k.
type VRAM [Pages][FramebufferWidth]byte

// Source is anything that can copy out a VRAM image. The copy may race
// with the writer and show a partially updated frame.
type Source interface {
	CopyVRAM(dst *VRAM)
}

// CopyVRAM lets a plain VRAM value act as a Source.
func (v *VRAM) CopyVRAM(dst *VRAM) {
	*dst = *v
}

// Pixel reports whether the dot at (x, y) is lit.
func (v *VRAM) Pixel(x, y int) bool {
	return bit.IsSet(uint8(y%8), v[y/8][x])
}

// SetPixel lights or clears the dot at (x, y).
func (v *VRAM) SetPixel(x, y int, on bool) {
	row := uint8(y % 8)
	if on {
		v[y/8][x] = bit.Set(row, v[y/8][x])
	} else {
		v[y/8][x] = bit.Reset(row, v[y/8][x])
	}
}
