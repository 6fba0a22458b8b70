package wavwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ardusim/ardusim/audio"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	w, err := New(path)
	require.NoError(t, err)

	block := make([]int16, audio.BlockSize)
	for i := range block {
		if (i/8)%2 == 0 {
			block[i] = audio.DefaultAmplitude
		}
	}
	require.NoError(t, w.WriteSamples(block))
	require.NoError(t, w.WriteSamples(block))
	assert.Equal(t, 2*audio.BlockSize, w.Samples())
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(audio.SampleRate), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, 2*audio.BlockSize)
	assert.Equal(t, int(audio.DefaultAmplitude), buf.Data[0])
	assert.Equal(t, 0, buf.Data[8])
}

func TestWriterClosedWithoutSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")

	w, err := New(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, 0, w.Samples())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(audio.SampleRate), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
}

func TestNewFailsOnBadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "out.wav"))
	assert.Error(t, err)
}
