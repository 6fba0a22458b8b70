package video

// Color is a packed ARGB8888 pixel.
type Color uint32

const (
	WhiteColor Color = 0xFFFFFFFF
	BlackColor Color = 0xFF000000
)

// SSD1306 panel geometry
const (
	FramebufferWidth  = 128
	FramebufferHeight = 64
)

type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer the size of the panel, all black.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferWidth*FramebufferHeight),
	}
	fb.Fill(BlackColor)
	return fb
}

func (fb *FrameBuffer) Width() uint  { return fb.width }
func (fb *FrameBuffer) Height() uint { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color Color) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Fill sets every pixel to color.
func (fb *FrameBuffer) Fill(color Color) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice exposes the pixels row by row. The slice aliases the buffer.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// IsLit reports whether a pixel value is a lit OLED dot.
func IsLit(pixel uint32) bool {
	return pixel == uint32(WhiteColor)
}
