package sdl2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-ardusim/ardusim/backend"
	"github.com/valerio/go-ardusim/ardusim/backend/sdl2"
)

func TestImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*sdl2.Backend)(nil)
}

func TestStubInitFails(t *testing.T) {
	if sdl2.Available {
		t.Skip("SDL2 compiled in")
	}
	b := sdl2.New()
	assert.Error(t, b.Init(backend.BackendConfig{}))
	assert.Empty(t, b.Poll())
	assert.NoError(t, b.Cleanup())
}
