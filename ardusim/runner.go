package ardusim

import (
	"sync/atomic"
)

// RunState is the lifecycle state of a Runner.
type RunState int32

const (
	Stopped RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Stepper executes one unit of emulation. *mcu.Machine satisfies it.
type Stepper interface {
	Step()
}

// Runner owns the simulation goroutine. It steps as fast as it can with no
// throttling and checks its stop flag once per step, so after Stop at most
// one more step completes.
type Runner struct {
	stepper Stepper

	stop    atomic.Bool
	state   atomic.Int32
	steps   atomic.Uint64
	started atomic.Bool
	done    chan struct{}
}

func NewRunner(s Stepper) *Runner {
	return &Runner{
		stepper: s,
		done:    make(chan struct{}),
	}
}

// Start launches the simulation goroutine. Only the first call has an effect.
func (r *Runner) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	r.state.Store(int32(Running))
	go r.run()
}

func (r *Runner) run() {
	defer close(r.done)
	defer r.state.Store(int32(Stopped))

	for !r.stop.Load() {
		r.stepper.Step()
		r.steps.Add(1)
	}
}

// Stop asks the goroutine to exit. It does not wait and may be called
// any number of times, from any goroutine.
func (r *Runner) Stop() {
	r.stop.Store(true)
}

// Wait blocks until the goroutine has exited. It returns at once if the
// runner was never started.
func (r *Runner) Wait() {
	if !r.started.Load() {
		return
	}
	<-r.done
}

func (r *Runner) State() RunState {
	return RunState(r.state.Load())
}

// Steps returns the number of completed steps.
func (r *Runner) Steps() uint64 {
	return r.steps.Load()
}
