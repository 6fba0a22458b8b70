package mcu

// DefaultFrequency is the ATmega32u4 clock on an Arduboy.
const DefaultFrequency = 16_000_000

// Machine binds a processor to its pin bus and virtual clock. Step, the
// clock, Raise and every Subscribe call belong to the simulation goroutine;
// Drive and Level are safe from anywhere.
type Machine struct {
	freq  uint64
	bus   *Bus
	clock *Clock
	proc  Processor
}

func newMachine(freq uint64) *Machine {
	return &Machine{
		freq:  freq,
		bus:   NewBus(),
		clock: NewClock(),
	}
}

// Step runs one processor step and advances the clock by the cycles it
// consumed, firing any timers that came due.
func (m *Machine) Step() {
	cycles := m.proc.Step(m)
	if cycles == 0 {
		cycles = 1
	}
	m.clock.Advance(cycles)
}

// Frequency returns the emulated clock rate in Hz.
func (m *Machine) Frequency() uint64 {
	return m.freq
}

func (m *Machine) Bus() *Bus {
	return m.bus
}

func (m *Machine) Clock() *Clock {
	return m.clock
}

// Now returns the current virtual cycle.
func (m *Machine) Now() uint64 {
	return m.clock.Now()
}

func (m *Machine) Subscribe(sig Signal, obs Observer) {
	m.bus.Subscribe(sig, obs)
}

func (m *Machine) Raise(sig Signal, value uint32) {
	m.bus.Raise(sig, value)
}

func (m *Machine) Drive(sig Signal, value uint32) {
	m.bus.Drive(sig, value)
}

func (m *Machine) Level(sig Signal) uint32 {
	return m.bus.Level(sig)
}

// Schedule arms fn after the given number of cycles.
func (m *Machine) Schedule(after uint64, fn TimerFunc) {
	m.clock.Schedule(after, fn)
}

// ScheduleMicros arms fn after us microseconds of virtual time.
func (m *Machine) ScheduleMicros(us uint64, fn TimerFunc) {
	m.clock.Schedule(m.MicrosToCycles(us), fn)
}

// MicrosToCycles converts virtual microseconds to cycles at the machine
// frequency.
func (m *Machine) MicrosToCycles(us uint64) uint64 {
	return us * m.freq / 1_000_000
}
