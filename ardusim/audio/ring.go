package audio

import (
	"encoding/binary"
	"sync/atomic"
)

// Provider is the consumer side of the ring, as seen by host outputs.
type Provider interface {
	Consume(dst []int16)
}

var _ Provider = (*Ring)(nil)

// Ring is a single-producer single-consumer sample ring. The producer
// never blocks: when it laps the reader the oldest unread samples are
// overwritten. The consumer never blocks either: reading past the writer
// returns whatever the cells last held.
//
// Both cursors count samples since creation and index the cells modulo
// RingCapacity. Each cursor is stored only by its owner.
type Ring struct {
	cells [RingCapacity]atomic.Int32
	write atomic.Uint64
	read  atomic.Uint64
}

func NewRing() *Ring {
	return &Ring{}
}

// Produce appends one sample. Simulation goroutine only.
func (r *Ring) Produce(sample int16) {
	w := r.write.Load()
	r.cells[w%RingCapacity].Store(int32(sample))
	r.write.Store(w + 1)
}

// Consume fills dst with the next len(dst) samples. Consumer goroutine only.
func (r *Ring) Consume(dst []int16) {
	pos := r.start()
	for i := range dst {
		dst[i] = int16(r.cells[(pos+uint64(i))%RingCapacity].Load())
	}
	r.read.Store(pos + uint64(len(dst)))
}

// ConsumeBytes fills p with little-endian samples, the layout host audio
// callbacks expect. A trailing odd byte is zeroed.
func (r *Ring) ConsumeBytes(p []byte) {
	n := len(p) / BytesPerSample
	pos := r.start()
	for i := 0; i < n; i++ {
		s := r.cells[(pos+uint64(i))%RingCapacity].Load()
		binary.LittleEndian.PutUint16(p[i*BytesPerSample:], uint16(int16(s)))
	}
	if len(p)%BytesPerSample != 0 {
		p[len(p)-1] = 0
	}
	r.read.Store(pos + uint64(n))
}

// start returns the read position, moved up to the oldest live sample if
// the producer has lapped the reader since the last read.
func (r *Ring) start() uint64 {
	pos := r.read.Load()
	w := r.write.Load()
	if int64(w-pos) > RingCapacity {
		pos = w - RingCapacity
	}
	return pos
}

// Produced returns the total number of samples ever produced.
func (r *Ring) Produced() uint64 {
	return r.write.Load()
}

// Buffered returns how many produced samples the consumer has not read,
// capped at the ring capacity. Zero when the consumer is ahead.
func (r *Ring) Buffered() int {
	d := int64(r.write.Load() - r.read.Load())
	switch {
	case d < 0:
		return 0
	case d > RingCapacity:
		return RingCapacity
	default:
		return int(d)
	}
}
