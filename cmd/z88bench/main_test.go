package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-z88bench/z88bench/memory"
	"github.com/valerio/go-z88bench/z88bench/video"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"success", nil, 0, ""},
		{"missing ROM", fmt.Errorf("failed to open %q: %w", "rom.bin", memory.ErrROM), -1, "Cannot open ROM file for reading."},
		{"ROM joined with close error", errors.Join(fmt.Errorf("read: %w", memory.ErrROM), errors.New("close")), -1, "Cannot open ROM file for reading."},
		{"other failure", errors.New("no ROM path provided"), 1, "no ROM path provided"},
		{"wrapped format error", fmt.Errorf("machine x: %w", video.ErrFormat), 1, "machine x: " + video.ErrFormat.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := exitCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestNewObserver(t *testing.T) {
	_, err := newObserver("plain", nil)
	assert.NoError(t, err)
	_, err = newObserver("none", nil)
	assert.NoError(t, err)
	_, err = newObserver("fancy", nil)
	assert.EqualError(t, err, `unknown monitor "fancy"`)
}
