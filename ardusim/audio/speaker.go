package audio

import (
	"math"

	"github.com/valerio/go-ardusim/ardusim/mcu"
)

// DefaultAmplitude is the sample value for a high speaker pin.
const DefaultAmplitude = math.MaxInt16

// ArduboySpeakerPins are the two pins driving the piezo.
var ArduboySpeakerPins = []mcu.Signal{mcu.Pin('C', 6), mcu.Pin('C', 7)}

// Speaker samples the speaker pins on a virtual-time timer and feeds the
// ring, one sample per 1/SampleRate of emulated time. It lives entirely on
// the simulation goroutine.
type Speaker struct {
	ring      *Ring
	amplitude int16
	level     uint32
	period    uint64
}

// NewSpeaker returns a speaker writing into ring. A zero amplitude selects
// DefaultAmplitude.
func NewSpeaker(ring *Ring, amplitude int16) *Speaker {
	if amplitude == 0 {
		amplitude = DefaultAmplitude
	}
	return &Speaker{ring: ring, amplitude: amplitude}
}

// Notify records the level of a speaker pin; the last pin written wins.
func (s *Speaker) Notify(_ mcu.Signal, value uint32) {
	s.level = value
}

// Sample is the clock timer: it emits one sample for the current level and
// asks to run again one period later.
func (s *Speaker) Sample(when uint64) uint64 {
	var v int16
	if s.level != 0 {
		v = s.amplitude
	}
	s.ring.Produce(v)
	return when + s.period
}

// Period returns the sampling period in cycles, zero before Attach.
func (s *Speaker) Period() uint64 {
	return s.period
}

// Attach subscribes to pins and starts the sampling timer on m.
func (s *Speaker) Attach(m *mcu.Machine, pins ...mcu.Signal) {
	for _, pin := range pins {
		m.Subscribe(pin, s)
	}

	s.period = m.Frequency() / SampleRate
	if s.period == 0 {
		s.period = 1
	}
	m.Schedule(s.period, s.Sample)
}
