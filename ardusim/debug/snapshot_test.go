package debug

import (
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ardusim/ardusim/video"
)

func TestToImage(t *testing.T) {
	frame := video.NewFrameBuffer()
	frame.SetPixel(3, 2, video.WhiteColor)

	img := ToImage(frame)
	assert.Equal(t, video.FramebufferWidth, img.Bounds().Dx())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(3, 2))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
}

func TestSaveFramePNGToDir(t *testing.T) {
	tests := []struct {
		name  string
		scale int
	}{
		{"native size", 1},
		{"doubled", 2},
		{"quadrupled", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := video.NewFrameBuffer()
			frame.SetPixel(127, 63, video.WhiteColor)

			path, err := SaveFramePNGToDir(frame, "test", t.TempDir(), tt.scale)
			require.NoError(t, err)

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			img, err := png.Decode(f)
			require.NoError(t, err)
			b := img.Bounds()
			assert.Equal(t, video.FramebufferWidth*tt.scale, b.Dx())
			assert.Equal(t, video.FramebufferHeight*tt.scale, b.Dy())

			r, g, bl, _ := img.At(b.Max.X-1, b.Max.Y-1).RGBA()
			assert.Equal(t, []uint32{0xFFFF, 0xFFFF, 0xFFFF}, []uint32{r, g, bl})
			r, _, _, _ = img.At(0, 0).RGBA()
			assert.Zero(t, r)
		})
	}
}

func TestSaveFramePNGToMissingDir(t *testing.T) {
	_, err := SaveFramePNGToDir(video.NewFrameBuffer(), "test", "/nonexistent/dir/for/snapshots", 1)
	assert.Error(t, err)
}
