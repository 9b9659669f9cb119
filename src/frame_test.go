package wsprcodex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameLayout(t *testing.T) {
	tests := []struct {
		name     string
		chunk    Chunk
		mode     Mode
		expected []byte
	}{
		{
			name:     "basic",
			chunk:    Chunk{MessageID: 0x2a, Sequence: 1, Total: 2, Payload: []byte("o")},
			mode:     Basic,
			expected: []byte{0x2a, 0x11, 'o', 0, 0, 0},
		},
		{
			name:     "basic last of sixteen",
			chunk:    Chunk{MessageID: 0xff, Sequence: 15, Total: 16, Payload: []byte("abcd")},
			mode:     Basic,
			expected: []byte{0xff, 0xff, 'a', 'b', 'c', 'd'},
		},
		{
			name:     "extended",
			chunk:    Chunk{MessageID: 7, Sequence: 200, Total: 256, Payload: []byte("xyz")},
			mode:     Extended,
			expected: []byte{7, 200, 255, 'x', 'y', 'z'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var block, err = Frame(tt.chunk, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, block)

			var c, parseErr = ParseFrame(block, tt.mode)
			require.NoError(t, parseErr)
			assert.Equal(t, tt.chunk.MessageID, c.MessageID)
			assert.Equal(t, tt.chunk.Sequence, c.Sequence)
			assert.Equal(t, tt.chunk.Total, c.Total)
			assert.Len(t, c.Payload, tt.mode.PayloadBytes())
		})
	}
}

func TestFrameRejects(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
		mode  Mode
	}{
		{"basic total too big", Chunk{Sequence: 0, Total: 17}, Basic},
		{"zero total", Chunk{Sequence: 0, Total: 0}, Basic},
		{"sequence past total", Chunk{Sequence: 2, Total: 2}, Basic},
		{"negative sequence", Chunk{Sequence: -1, Total: 2}, Extended},
		{"extended total too big", Chunk{Sequence: 0, Total: 257}, Extended},
		{"basic payload too wide", Chunk{Sequence: 0, Total: 1, Payload: []byte("abcde")}, Basic},
		{"extended payload too wide", Chunk{Sequence: 0, Total: 1, Payload: []byte("abcd")}, Extended},
		{"unknown mode", Chunk{Sequence: 0, Total: 1}, Mode(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var _, err = Frame(tt.chunk, tt.mode)
			require.ErrorIs(t, err, ErrFormatInvalid)
		})
	}
}

func TestParseFrameSize(t *testing.T) {
	var _, err = ParseFrame([]byte{1, 2, 3}, Basic)
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestModes(t *testing.T) {
	assert.Equal(t, Basic, ModeFor(1))
	assert.Equal(t, Basic, ModeFor(64))
	assert.Equal(t, Extended, ModeFor(65))
	assert.Equal(t, Extended, ModeFor(768))

	assert.Equal(t, "basic", Basic.String())
	assert.Equal(t, "extended", Extended.String())
	assert.Equal(t, 64, BasicMaxPayload)
	assert.Equal(t, 768, ExtendedMaxPayload)

	var m, err = ParseMode("Extended")
	require.NoError(t, err)
	assert.Equal(t, Extended, m)

	var _, badErr = ParseMode("turbo")
	require.ErrorIs(t, badErr, ErrFormatInvalid)
}
