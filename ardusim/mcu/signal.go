package mcu

import "fmt"

// Signal identifies a notification line on the emulated microcontroller:
// either a GPIO pin (port letter and bit) or a peripheral output line.
type Signal uint16

const (
	firstPort   = 'A'
	lastPort    = 'F'
	numPorts    = lastPort - firstPort + 1
	pinsPerPort = 8

	spiPort = 0xFF
)

// SPIOutput carries every byte shifted out by the SPI peripheral.
const SPIOutput = Signal(spiPort << 8)

// numLines is the number of addressable lines: all port pins plus SPI.
const numLines = numPorts*pinsPerPort + 1

// Pin returns the signal for bit of the given port letter, e.g. Pin('C', 7).
func Pin(port byte, bit uint8) Signal {
	return Signal(uint16(port)<<8 | uint16(bit&7))
}

// Port returns the port letter of a pin signal.
func (s Signal) Port() byte {
	return byte(s >> 8)
}

// Bit returns the bit index of a pin signal.
func (s Signal) Bit() uint8 {
	return uint8(s)
}

// Valid reports whether the signal addresses a known line.
func (s Signal) Valid() bool {
	return s.index() >= 0
}

// index maps the signal to a slot in the bus line table, or -1.
func (s Signal) index() int {
	if s == SPIOutput {
		return numLines - 1
	}
	port := s.Port()
	if port < firstPort || port > lastPort || s.Bit() >= pinsPerPort {
		return -1
	}
	return int(port-firstPort)*pinsPerPort + int(s.Bit())
}

func (s Signal) String() string {
	if s == SPIOutput {
		return "SPI"
	}
	if !s.Valid() {
		return fmt.Sprintf("Signal(0x%04X)", uint16(s))
	}
	return fmt.Sprintf("P%c%d", s.Port(), s.Bit())
}
