package mcu

import (
	"fmt"
	"sync/atomic"
)

// Observer receives level changes on a bus line.
type Observer interface {
	Notify(sig Signal, value uint32)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(sig Signal, value uint32)

// Notify calls f(sig, value).
func (f ObserverFunc) Notify(sig Signal, value uint32) {
	f(sig, value)
}

type line struct {
	value     atomic.Uint32
	observers []Observer
	// every write is an event, not only changes
	unfiltered bool
}

// Bus is the pin notification fabric between a processor and its
// peripherals. Levels are stored atomically so any goroutine may Drive or
// read a Level. Observers run synchronously on the goroutine that raised
// the line, so only the simulation goroutine may Raise; the host side sets
// input pins with Drive and the processor samples them with Level.
type Bus struct {
	lines [numLines]line
}

// NewBus returns a bus with every line at level 0.
func NewBus() *Bus {
	b := &Bus{}
	b.lines[SPIOutput.index()].unfiltered = true
	return b
}

// Subscribe registers obs for sig. Observers must be registered before the
// machine starts stepping; the observer list is not guarded.
func (b *Bus) Subscribe(sig Signal, obs Observer) {
	idx := sig.index()
	if idx < 0 {
		panic(fmt.Sprintf("mcu: subscribe to invalid signal %s", sig))
	}
	b.lines[idx].observers = append(b.lines[idx].observers, obs)
}

// Raise sets the level of sig. Pin observers are notified only when the
// level changes; SPI observers see every byte.
func (b *Bus) Raise(sig Signal, value uint32) {
	idx := sig.index()
	if idx < 0 {
		return
	}

	l := &b.lines[idx]
	old := l.value.Swap(value)
	if old == value && !l.unfiltered {
		return
	}
	for _, obs := range l.observers {
		obs.Notify(sig, value)
	}
}

// Drive sets the level of sig without notifying observers. It is how code
// outside the simulation goroutine, such as the key mapper, moves input
// pins.
func (b *Bus) Drive(sig Signal, value uint32) {
	idx := sig.index()
	if idx < 0 {
		return
	}
	b.lines[idx].value.Store(value)
}

// Level returns the last value raised on sig, or 0 for an invalid signal.
func (b *Bus) Level(sig Signal) uint32 {
	idx := sig.index()
	if idx < 0 {
		return 0
	}
	return b.lines[idx].value.Load()
}
