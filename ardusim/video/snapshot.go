package video

import "github.com/valerio/go-ardusim/ardusim/bit"

// Snapshotter turns display RAM into pixels once per host refresh. It owns
// its buffers, so the returned frame is overwritten by the next call.
type Snapshotter struct {
	vram  VRAM
	frame *FrameBuffer
}

func NewSnapshotter() *Snapshotter {
	return &Snapshotter{frame: NewFrameBuffer()}
}

// Snapshot copies the current display RAM out of src and converts it.
func (s *Snapshotter) Snapshot(src Source) *FrameBuffer {
	src.CopyVRAM(&s.vram)
	Convert(&s.vram, s.frame)
	return s.frame
}

// Convert expands vram into fb: white where the bit is set, black elsewhere.
func Convert(vram *VRAM, fb *FrameBuffer) {
	pixels := fb.ToSlice()
	for page := 0; page < Pages; page++ {
		for x := 0; x < FramebufferWidth; x++ {
			b := vram[page][x]
			for row := uint8(0); row < 8; row++ {
				color := BlackColor
				if bit.IsSet(row, b) {
					color = WhiteColor
				}
				y := page*8 + int(row)
				pixels[y*FramebufferWidth+x] = uint32(color)
			}
		}
	}
}
