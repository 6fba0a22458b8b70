package mcu

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/valerio/go-ardusim/ardusim/firmware"
)

// ErrUnknownCore is returned by NewMachine for a name nobody registered.
var ErrUnknownCore = errors.New("mcu: unknown emulation core")

// Processor executes firmware. Step runs one unit of work, typically one
// instruction, and returns the cycles it took. Button pins are driven from
// the host goroutine without notification; a processor reads them with
// Level during Step or a timer rather than subscribing to them.
type Processor interface {
	Step(m *Machine) uint64
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(m *Machine) uint64

func (f ProcessorFunc) Step(m *Machine) uint64 {
	return f(m)
}

// Factory builds a processor for a machine. It may subscribe to pins and
// arm timers on m; the machine is not stepping yet.
type Factory func(m *Machine, img *firmware.Image) (Processor, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a core available under name. It panics if the name is
// taken or f is nil, mirroring database/sql.Register.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if f == nil {
		panic("mcu: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("mcu: Register called twice for core " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := factories[name]
	return f, ok
}

// Names returns the registered core names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewMachine creates a machine running the named core at freq Hz.
func NewMachine(name string, freq uint64, img *firmware.Image) (*Machine, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownCore, name, Names())
	}
	if freq == 0 {
		return nil, fmt.Errorf("mcu: core %q needs a non-zero frequency", name)
	}

	m := newMachine(freq)
	proc, err := f(m, img)
	if err != nil {
		return nil, fmt.Errorf("failed to create core %q: %w", name, err)
	}
	m.proc = proc

	slog.Debug("Created machine", "core", name, "frequency", freq)
	return m, nil
}
