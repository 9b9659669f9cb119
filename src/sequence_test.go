package wsprcodex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMessagesFor(t *testing.T) {
	var capacity = WSPRCapacity()

	tests := []struct {
		name     string
		value    *big.Int
		expected int
	}{
		{"zero", big.NewInt(0), 1},
		{"largest single", new(big.Int).Sub(capacity, big.NewInt(1)), 1},
		{"smallest pair", capacity, 2},
		{"largest pair", new(big.Int).Sub(new(big.Int).Mul(capacity, capacity), big.NewInt(1)), 2},
		{"smallest triple", new(big.Int).Mul(capacity, capacity), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n, err = MessagesFor(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}

	var _, err = MessagesFor(big.NewInt(-1))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSequenceRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var raw = rapid.SliceOfN(rapid.Byte(), 0, 40).Draw(t, "raw")
		var value = new(big.Int).SetBytes(raw)

		var messages, err = EncodeSequence(value)
		require.NoError(t, err)

		var n, _ = MessagesFor(value)
		assert.Len(t, messages, n)

		var back, decErr = DecodeSequence(messages)
		require.NoError(t, decErr)
		assert.Equal(t, 0, value.Cmp(back))
	})
}

func TestSequenceCodec(t *testing.T) {
	var s, err = NewSequenceCodec(2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count())

	var expected = new(big.Int).Mul(WSPRCapacity(), WSPRCapacity())
	assert.Equal(t, 0, expected.Cmp(s.Capacity()))

	// The first message is the most significant.
	var messages, encErr = s.Encode(WSPRCapacity())
	require.NoError(t, encErr)
	assert.Equal(t, "AAAAAA AA00 3", messages[0].String())
	assert.Equal(t, "AAAAAA AA00 0", messages[1].String())

	var _, overflowErr = s.Encode(s.Capacity())
	require.ErrorIs(t, overflowErr, ErrOverflow)

	var _, sizeErr = s.Decode(messages[:1])
	require.ErrorIs(t, sizeErr, ErrSizeMismatch)

	var _, emptyErr = s.Decode(nil)
	require.ErrorIs(t, emptyErr, ErrEmptyInput)

	var _, countErr = NewSequenceCodec(0)
	require.ErrorIs(t, countErr, ErrFormatInvalid)

	var _, seqErr = DecodeSequence(nil)
	require.ErrorIs(t, seqErr, ErrEmptyInput)
}
