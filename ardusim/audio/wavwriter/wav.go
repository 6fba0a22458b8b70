// Package wavwriter records the sample stream to a WAV file.
package wavwriter

import (
	"fmt"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/valerio/go-ardusim/ardusim/audio"
)

const (
	bitDepth  = 16
	formatPCM = 1
)

// Writer streams blocks into a 16-bit mono PCM file. It implements
// audio.Sink and is driven by a single pump goroutine.
type Writer struct {
	filename string
	file     *os.File
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	samples  int
}

var _ audio.Sink = (*Writer)(nil)

// New creates filename and writes the WAV header.
func New(filename string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("wavwriter: %w", err)
	}

	w := &Writer{
		filename: filename,
		file:     f,
		enc:      wav.NewEncoder(f, audio.SampleRate, bitDepth, audio.Channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: audio.Channels,
				SampleRate:  audio.SampleRate,
			},
			Data:           make([]int, 0, audio.BlockSize),
			SourceBitDepth: bitDepth,
		},
	}

	// The encoder emits its header on the first Write; an empty block gets
	// it on disk so a capture closed before any audio is still a valid file.
	if err := w.enc.Write(w.buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("wavwriter: %w", err)
	}

	slog.Info("Recording audio", "path", filename)
	return w, nil
}

// WriteSamples appends a block to the file.
func (w *Writer) WriteSamples(block []int16) error {
	w.buf.Data = w.buf.Data[:0]
	for _, s := range block {
		w.buf.Data = append(w.buf.Data, int(s))
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	w.samples += len(block)
	return nil
}

// Samples returns the number of samples written so far.
func (w *Writer) Samples() int {
	return w.samples
}

// Close patches the header sizes and closes the file.
func (w *Writer) Close() (rerr error) {
	defer func() {
		if err := w.file.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	slog.Info("Audio recording saved", "path", w.filename, "samples", w.samples)
	return nil
}
