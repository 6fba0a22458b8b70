package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sink receives whole blocks of samples pulled by a Pump. The block is
// reused after WriteSamples returns.
type Sink interface {
	WriteSamples(block []int16) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(block []int16) error

func (f SinkFunc) WriteSamples(block []int16) error {
	return f(block)
}

// Pump is a wall-clock audio consumer for outputs that are pushed to
// rather than pulling through a callback: every BlockDuration it takes one
// block from the provider and hands it to the sink. A sink error is logged
// once and the pump keeps draining so the ring cursor stays in step.
type Pump struct {
	src      Provider
	sink     Sink
	interval time.Duration
	block    []int16

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPump returns a pump moving BlockSize samples per BlockDuration.
func NewPump(src Provider, sink Sink) *Pump {
	return &Pump{
		src:      src,
		sink:     sink,
		interval: BlockDuration,
		block:    make([]int16, BlockSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the pump goroutine. Only the first call has an effect.
func (p *Pump) Start() {
	if p.started.CompareAndSwap(false, true) {
		go p.run()
	}
}

// Stop halts the pump and waits for it to exit. It may be called more than
// once, and on a pump that never started.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	if p.started.CompareAndSwap(false, true) {
		// never started; nobody will close done
		return
	}
	<-p.done
}

func (p *Pump) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failed := false
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.src.Consume(p.block)
			if err := p.sink.WriteSamples(p.block); err != nil && !failed {
				failed = true
				slog.Warn("Audio sink failed, dropping further blocks", "error", err)
			}
		}
	}
}
