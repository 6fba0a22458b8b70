package firmware

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/marcinbor85/gohex"
)

// ParseHex reads an Intel HEX stream. Data, end-of-file, extended linear
// address and start linear address records are understood; avr-objcopy
// emits nothing else for parts with 64K of flash or less.
func ParseHex(r io.Reader) (*Image, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(src)); err != nil {
		return nil, hexError(err, src)
	}

	segments := mem.GetDataSegments()
	chunks := make([]chunk, 0, len(segments))
	for _, s := range segments {
		chunks = append(chunks, chunk{addr: s.Address, data: s.Data})
	}

	base, data, err := flatten(chunks)
	if err != nil {
		return nil, err
	}

	var entry uint32
	if start, ok := mem.GetStartAddress(); ok {
		entry = start
	}

	return &Image{
		Format: FormatHex,
		Base:   base,
		Entry:  entry,
		Data:   data,
	}, nil
}

// hexError maps parser failures onto the package sentinels where one applies.
func hexError(err error, src []byte) error {
	var perr *gohex.ParseError
	if errors.As(err, &perr) && perr.ErrorType == gohex.CHECKSUM_ERROR {
		return fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	if !hasEOFRecord(src) {
		return ErrUnexpectedEOF
	}
	return fmt.Errorf("malformed hex: %w", err)
}

func hasEOFRecord(src []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if len(line) >= 9 && line[0] == ':' && line[7:9] == "01" {
			return true
		}
	}
	return false
}
