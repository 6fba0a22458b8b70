package audio

import "io"

// Reader exposes the ring as an endless PCM byte stream for pull-style
// players. Read always fills p and never returns an error.
type Reader struct {
	ring *Ring
}

var _ io.Reader = (*Reader)(nil)

func NewReader(ring *Ring) *Reader {
	return &Reader{ring: ring}
}

func (r *Reader) Read(p []byte) (int, error) {
	r.ring.ConsumeBytes(p)
	return len(p), nil
}
