package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSinglePixel(t *testing.T) {
	var vram VRAM
	vram[0][0] = 0b00000001

	frame := NewSnapshotter().Snapshot(&vram)

	for y := uint(0); y < FramebufferHeight; y++ {
		for x := uint(0); x < FramebufferWidth; x++ {
			want := uint32(BlackColor)
			if x == 0 && y == 0 {
				want = uint32(WhiteColor)
			}
			require.Equal(t, want, frame.GetPixel(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestSnapshotBitOrder(t *testing.T) {
	tests := []struct {
		name string
		page int
		col  int
		bits byte
		x, y uint
	}{
		{"top bit of page 0", 0, 5, 0b10000000, 5, 7},
		{"first row of page 1", 1, 0, 0b00000001, 0, 8},
		{"last pixel", 7, 127, 0b10000000, 127, 63},
		{"middle", 3, 64, 0b00010000, 64, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vram VRAM
			vram[tt.page][tt.col] = tt.bits

			frame := NewSnapshotter().Snapshot(&vram)

			assert.Equal(t, uint32(WhiteColor), frame.GetPixel(tt.x, tt.y))
			assert.True(t, vram.Pixel(int(tt.x), int(tt.y)))

			lit := 0
			for _, p := range frame.ToSlice() {
				if IsLit(p) {
					lit++
				}
			}
			assert.Equal(t, 1, lit)
		})
	}
}

func TestSnapshotReusesFrame(t *testing.T) {
	s := NewSnapshotter()
	var vram VRAM

	first := s.Snapshot(&vram)
	vram.SetPixel(10, 20, true)
	second := s.Snapshot(&vram)

	assert.Same(t, first, second)
	assert.Equal(t, uint32(WhiteColor), second.GetPixel(10, 20))

	vram.SetPixel(10, 20, false)
	s.Snapshot(&vram)
	assert.Equal(t, uint32(BlackColor), second.GetPixel(10, 20))
}

func TestSnapshotAllocations(t *testing.T) {
	s := NewSnapshotter()
	var vram VRAM
	allocs := testing.AllocsPerRun(10, func() {
		s.Snapshot(&vram)
	})
	assert.Zero(t, allocs)
}

func TestFrameBuffer(t *testing.T) {
	fb := NewFrameBuffer()
	assert.Equal(t, uint(FramebufferWidth), fb.Width())
	assert.Equal(t, uint(FramebufferHeight), fb.Height())
	assert.Len(t, fb.ToSlice(), FramebufferWidth*FramebufferHeight)
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(0, 0))

	fb.SetPixel(127, 63, WhiteColor)
	assert.Equal(t, uint32(WhiteColor), fb.ToSlice()[len(fb.ToSlice())-1])

	fb.Fill(WhiteColor)
	for _, p := range fb.ToSlice() {
		require.True(t, IsLit(p))
	}
}
