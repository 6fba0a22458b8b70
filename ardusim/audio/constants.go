package audio

import "time"

// Host audio format: signed 16-bit mono.
const (
	SampleRate     = 8000
	Channels       = 1
	BytesPerSample = 2
	// BlockSize is the number of samples the host pulls per callback.
	BlockSize = 1024
	// RingCapacity is the number of samples the ring holds before the
	// producer starts overwriting unread ones.
	RingCapacity = 1024
)

// BlockDuration is the wall-clock length of one host block.
const BlockDuration = time.Second * BlockSize / SampleRate
