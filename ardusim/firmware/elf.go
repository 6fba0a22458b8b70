package firmware

import (
	"debug/elf"
	"fmt"
	"io"
)

// avr-gcc places SRAM, EEPROM and fuse sections at these offsets in the
// physical address space; everything below is program flash.
const avrDataSpace = 0x800000

// ParseELF collects the PT_LOAD segments that land in program flash, using
// their physical (load) addresses so initialised .data is placed after .text.
func ParseELF(r io.ReaderAt) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("not an ELF file: %w", err)
	}
	defer f.Close()

	var chunks []chunk
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		if prog.Paddr >= avrDataSpace {
			continue
		}

		if prog.Filesz > maxImageSize {
			return nil, fmt.Errorf("segment at 0x%X: %w", prog.Paddr, ErrTooLarge)
		}

		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read segment at 0x%X: %w", prog.Paddr, err)
		}
		chunks = append(chunks, chunk{addr: uint32(prog.Paddr), data: data})
	}

	base, data, err := flatten(chunks)
	if err != nil {
		return nil, err
	}

	return &Image{
		Format: FormatELF,
		Base:   base,
		Entry:  uint32(f.Entry),
		Data:   data,
	}, nil
}
