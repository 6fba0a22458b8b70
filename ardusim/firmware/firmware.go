// Package firmware loads program images for the simulated microcontroller.
// The format is picked from the file name: anything containing ".elf" is read
// as an ELF executable, everything else as Intel HEX.
package firmware

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies the container a firmware image was read from.
type Format int

const (
	FormatHex Format = iota
	FormatELF
)

func (f Format) String() string {
	switch f {
	case FormatHex:
		return "ihex"
	case FormatELF:
		return "elf"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Maximum image size (1MB safety limit, far above any AVR flash)
const maxImageSize = 1 << 20

// erasedByte is the value of unprogrammed flash.
const erasedByte = 0xFF

var (
	// ErrChecksum is returned when an Intel HEX record fails its checksum.
	ErrChecksum = errors.New("firmware: hex record checksum mismatch")
	// ErrUnexpectedEOF is returned when an Intel HEX file has no end-of-file record.
	ErrUnexpectedEOF = errors.New("firmware: missing end-of-file record")
	// ErrNoSegments is returned when a file holds no loadable bytes.
	ErrNoSegments = errors.New("firmware: no loadable data")
	// ErrTooLarge is returned when the loadable bytes span more than maxImageSize.
	ErrTooLarge = errors.New("firmware: image exceeds maximum size")
)

// Image is a flat program image. Data[0] belongs at flash address Base;
// gaps between loaded regions are filled with erased flash (0xFF).
type Image struct {
	Name   string
	Format Format
	Base   uint32
	Entry  uint32
	Data   []byte
}

// Size returns the number of bytes in the image.
func (img *Image) Size() int {
	return len(img.Data)
}

// FormatFor returns the format implied by a file name.
func FormatFor(path string) Format {
	if strings.Contains(strings.ToLower(filepath.Base(path)), ".elf") {
		return FormatELF
	}
	return FormatHex
}

// Load reads the firmware at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open firmware: %w", err)
	}
	defer f.Close()

	var img *Image
	format := FormatFor(path)
	switch format {
	case FormatELF:
		img, err = ParseELF(f)
	default:
		img, err = ParseHex(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s firmware %s: %w", format, path, err)
	}

	img.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	slog.Info("Loaded firmware", "path", path, "format", format, "bytes", img.Size(),
		"base", fmt.Sprintf("0x%04X", img.Base), "entry", fmt.Sprintf("0x%04X", img.Entry))

	return img, nil
}

// chunk is one contiguous run of bytes at an absolute address.
type chunk struct {
	addr uint32
	data []byte
}

// flatten lays the chunks out into a single image, later chunks overwriting
// earlier ones where they overlap.
func flatten(chunks []chunk) (base uint32, data []byte, err error) {
	if len(chunks) == 0 {
		return 0, nil, ErrNoSegments
	}

	lo, hi := uint64(chunks[0].addr), uint64(chunks[0].addr)
	for _, c := range chunks {
		if a := uint64(c.addr); a < lo {
			lo = a
		}
		if end := uint64(c.addr) + uint64(len(c.data)); end > hi {
			hi = end
		}
	}
	if hi-lo > maxImageSize {
		return 0, nil, ErrTooLarge
	}

	data = make([]byte, hi-lo)
	for i := range data {
		data[i] = erasedByte
	}
	for _, c := range chunks {
		copy(data[uint64(c.addr)-lo:], c.data)
	}

	return uint32(lo), data, nil
}
