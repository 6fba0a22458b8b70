package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandLineFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"help", []string{"ardusim", "--help"}, false},
		{"version is not a flag", []string{"ardusim", "--version"}, true},
		{"unknown flag", []string{"ardusim", "--scale", "2"}, true},
		{"missing firmware", []string{"ardusim"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Writer = io.Discard
			app.ErrWriter = io.Discard

			err := app.Run(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
