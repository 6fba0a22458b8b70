package mcu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ardusim/ardusim/firmware"
)

func TestSignal(t *testing.T) {
	tests := []struct {
		sig   Signal
		name  string
		valid bool
	}{
		{Pin('C', 7), "PC7", true},
		{Pin('A', 0), "PA0", true},
		{Pin('F', 4), "PF4", true},
		{SPIOutput, "SPI", true},
		{Pin('G', 0), "Signal(0x4700)", false},
		{Signal(0), "Signal(0x0000)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.sig.String())
			assert.Equal(t, tt.valid, tt.sig.Valid())
		})
	}
}

func TestSignalIndicesAreDistinct(t *testing.T) {
	seen := make(map[int]Signal)
	for port := byte('A'); port <= 'F'; port++ {
		for b := uint8(0); b < 8; b++ {
			sig := Pin(port, b)
			idx := sig.index()
			require.GreaterOrEqual(t, idx, 0)
			prev, dup := seen[idx]
			require.False(t, dup, "%s and %s share slot %d", sig, prev, idx)
			seen[idx] = sig
		}
	}
	_, dup := seen[SPIOutput.index()]
	assert.False(t, dup)
}

type recorder struct {
	values []uint32
}

func (r *recorder) Notify(_ Signal, value uint32) {
	r.values = append(r.values, value)
}

func TestBusPinNotifiesOnChangeOnly(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.Subscribe(Pin('C', 6), rec)

	for _, v := range []uint32{1, 1, 0, 0, 1} {
		bus.Raise(Pin('C', 6), v)
	}

	assert.Equal(t, []uint32{1, 0, 1}, rec.values)
	assert.Equal(t, uint32(1), bus.Level(Pin('C', 6)))
}

func TestBusSPINotifiesEveryByte(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.Subscribe(SPIOutput, rec)

	for _, v := range []uint32{0xAA, 0xAA, 0x00, 0x00} {
		bus.Raise(SPIOutput, v)
	}

	assert.Equal(t, []uint32{0xAA, 0xAA, 0x00, 0x00}, rec.values)
}

func TestBusObserverFunc(t *testing.T) {
	bus := NewBus()
	var got []Signal
	obs := ObserverFunc(func(sig Signal, _ uint32) { got = append(got, sig) })
	bus.Subscribe(Pin('C', 6), obs)
	bus.Subscribe(Pin('C', 7), obs)

	bus.Raise(Pin('C', 7), 1)
	bus.Raise(Pin('C', 6), 1)
	bus.Raise(Pin('D', 0), 1)

	assert.Equal(t, []Signal{Pin('C', 7), Pin('C', 6)}, got)
}

func TestBusDriveStoresWithoutNotifying(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.Subscribe(Pin('E', 6), rec)

	for _, v := range []uint32{1, 0, 1} {
		bus.Drive(Pin('E', 6), v)
		assert.Equal(t, v, bus.Level(Pin('E', 6)))
	}
	assert.Empty(t, rec.values)

	bus.Raise(Pin('E', 6), 0)
	assert.Equal(t, []uint32{0}, rec.values, "raise still notifies against the driven level")
}

func TestBusInvalidSignal(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Raise(Pin('Z', 1), 1) })
	assert.NotPanics(t, func() { bus.Drive(Pin('Z', 1), 1) })
	assert.Equal(t, uint32(0), bus.Level(Pin('Z', 1)))
	assert.Panics(t, func() { bus.Subscribe(Pin('Z', 1), &recorder{}) })
}

func TestClockFiresInDeadlineOrder(t *testing.T) {
	c := NewClock()
	var fired []string

	c.Schedule(30, func(uint64) uint64 { fired = append(fired, "c"); return 0 })
	c.Schedule(10, func(uint64) uint64 { fired = append(fired, "a"); return 0 })
	c.Schedule(20, func(uint64) uint64 { fired = append(fired, "b"); return 0 })

	c.Advance(15)
	assert.Equal(t, []string{"a"}, fired)

	c.Advance(100)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, uint64(115), c.Now())
	assert.Equal(t, 0, c.Pending())
}

func TestClockPeriodicTimerCatchesUp(t *testing.T) {
	c := NewClock()
	var deadlines []uint64
	c.Schedule(100, func(when uint64) uint64 {
		deadlines = append(deadlines, when)
		return when + 100
	})

	// one large step covers several periods; each fires with its own deadline
	c.Advance(350)

	assert.Equal(t, []uint64{100, 200, 300}, deadlines)
	assert.Equal(t, 1, c.Pending())
}

func TestClockCancel(t *testing.T) {
	tests := []struct {
		name string
		next func(when uint64) uint64
	}{
		{"zero", func(uint64) uint64 { return 0 }},
		{"same deadline", func(when uint64) uint64 { return when }},
		{"past deadline", func(when uint64) uint64 { return when - 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock()
			calls := 0
			c.Schedule(5, func(when uint64) uint64 {
				calls++
				return tt.next(when)
			})

			c.Advance(10)
			c.Advance(10)

			assert.Equal(t, 1, calls)
			assert.Equal(t, 0, c.Pending())
		})
	}
}

func TestClockScheduleFromTimer(t *testing.T) {
	c := NewClock()
	var fired []uint64
	c.Schedule(10, func(when uint64) uint64 {
		fired = append(fired, when)
		c.Schedule(1, func(inner uint64) uint64 {
			fired = append(fired, inner)
			return 0
		})
		return 0
	})

	c.Advance(20)

	assert.Equal(t, []uint64{10}, fired)
	c.Advance(1)
	assert.Equal(t, []uint64{10, 21}, fired)
}

func TestRegistry(t *testing.T) {
	Register("test-nop", func(m *Machine, img *firmware.Image) (Processor, error) {
		return ProcessorFunc(func(*Machine) uint64 { return 4 }), nil
	})

	_, ok := Lookup("test-nop")
	assert.True(t, ok)
	assert.Contains(t, Names(), "test-nop")

	assert.Panics(t, func() {
		Register("test-nop", func(*Machine, *firmware.Image) (Processor, error) { return nil, nil })
	})
	assert.Panics(t, func() { Register("test-nil", nil) })
}

func TestNewMachineUnknownCore(t *testing.T) {
	_, err := NewMachine("no-such-core", DefaultFrequency, nil)
	assert.ErrorIs(t, err, ErrUnknownCore)
}

func TestNewMachineFactoryError(t *testing.T) {
	boom := errors.New("boom")
	Register("test-broken", func(*Machine, *firmware.Image) (Processor, error) {
		return nil, boom
	})

	_, err := NewMachine("test-broken", DefaultFrequency, nil)
	assert.ErrorIs(t, err, boom)
}

func TestMachineStepAdvancesClock(t *testing.T) {
	Register("test-zero", func(*Machine, *firmware.Image) (Processor, error) {
		return ProcessorFunc(func(*Machine) uint64 { return 0 }), nil
	})

	m, err := NewMachine("test-zero", DefaultFrequency, nil)
	require.NoError(t, err)

	m.Step()
	m.Step()

	// a processor must always make progress
	assert.Equal(t, uint64(2), m.Now())
}

func TestMachineScheduleMicros(t *testing.T) {
	Register("test-tick", func(*Machine, *firmware.Image) (Processor, error) {
		return ProcessorFunc(func(*Machine) uint64 { return 1000 }), nil
	})

	m, err := NewMachine("test-tick", DefaultFrequency, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), m.MicrosToCycles(125))

	var fired uint64
	m.ScheduleMicros(125, func(when uint64) uint64 {
		fired = when
		return 0
	})

	m.Step()
	assert.Zero(t, fired)
	m.Step()
	assert.Equal(t, uint64(2000), fired)
}
