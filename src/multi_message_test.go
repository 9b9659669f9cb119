package wsprcodex

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixedIDCodec(id byte) *MultiMessageCodec {
	return NewMultiMessageCodec(WithRandom(bytes.NewReader([]byte{id})))
}

func TestMultiMessageKnown(t *testing.T) {
	var messages, err = fixedIDCodec(0x2a).Encode([]byte("Hello"))
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "BIYBGD CE80 40", messages[0].String())
	assert.Equal(t, "BI0QEF FE52 40", messages[1].String())

	var data, decErr = NewMultiMessageCodec().Decode(messages)
	require.NoError(t, decErr)
	assert.Equal(t, []byte("Hello"), data)
}

func TestMultiMessageRoundTrip(t *testing.T) {
	var codec = NewMultiMessageCodec()

	rapid.Check(t, func(t *rapid.T) {
		var data = rapid.SliceOfN(rapid.Byte(), 1, ExtendedMaxPayload).Draw(t, "data")
		if data[len(data)-1] == 0 {
			data[len(data)-1] = 1
		}

		var messages, err = codec.Encode(data)
		require.NoError(t, err)

		var mode = ModeFor(len(data))
		var width = mode.PayloadBytes()
		assert.Len(t, messages, (len(data)+width-1)/width)

		var shuffled = rapid.Permutation(messages).Draw(t, "order")

		var back, decErr = codec.Decode(shuffled)
		require.NoError(t, decErr)
		assert.Equal(t, data, back)

		var forced, forcedErr = codec.DecodeWithMode(shuffled, mode)
		require.NoError(t, forcedErr)
		assert.Equal(t, data, forced)
	})
}

func TestMultiMessageModeBoundary(t *testing.T) {
	var codec = fixedIDCodec(1)

	var basic, err = codec.EncodeWithID(bytes.Repeat([]byte{'a'}, 64), 1)
	require.NoError(t, err)
	assert.Len(t, basic, 16)

	var extended, extErr = codec.EncodeWithID(bytes.Repeat([]byte{'a'}, 65), 1)
	require.NoError(t, extErr)
	assert.Len(t, extended, 22)

	var chunks, chunkErr = codec.Chunks(extended, Extended)
	require.NoError(t, chunkErr)
	assert.Equal(t, 22, chunks[0].Total)
	assert.Equal(t, 21, chunks[21].Sequence)

	var back, decErr = codec.Decode(extended)
	require.NoError(t, decErr)
	assert.Len(t, back, 65)
}

func TestMultiMessageLargest(t *testing.T) {
	var data = bytes.Repeat([]byte{0x5a}, ExtendedMaxPayload)

	var messages, err = fixedIDCodec(9).Encode(data)
	require.NoError(t, err)
	assert.Len(t, messages, ExtendedMaxChunks)

	var back, decErr = NewMultiMessageCodec().Decode(messages)
	require.NoError(t, decErr)
	assert.Equal(t, data, back)

	var _, tooBigErr = NewMultiMessageCodec().Encode(append(data, 1))
	require.ErrorIs(t, tooBigErr, ErrCapacityExceeded)
}

func TestMultiMessageTrailingZeros(t *testing.T) {
	var codec = NewMultiMessageCodec()

	tests := []struct {
		name     string
		data     []byte
		expected []byte
	}{
		{"trailing zeros are lost", []byte("ab\x00"), []byte("ab")},
		{"zeros inside are kept", []byte("a\x00\x00\x00b"), []byte("a\x00\x00\x00b")},
		{"zeros in an earlier chunk are kept", []byte("abc\x00d"), []byte("abc\x00d")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var messages, err = codec.Encode(tt.data)
			require.NoError(t, err)

			var back, decErr = codec.Decode(messages)
			require.NoError(t, decErr)
			assert.Equal(t, tt.expected, back)
		})
	}
}

func TestMultiMessageTampering(t *testing.T) {
	var codec = NewMultiMessageCodec()
	var data = []byte("The quick brown fox")

	var messages, err = codec.EncodeWithID(data, 0x10)
	require.NoError(t, err)
	require.Len(t, messages, 5)

	var other, otherErr = codec.EncodeWithID(data, 0x11)
	require.NoError(t, otherErr)

	tests := []struct {
		name      string
		messages  []Message
		missing   []int
		duplicate []int
	}{
		{
			name:     "dropped",
			messages: []Message{messages[0], messages[1], messages[3], messages[4]},
			missing:  []int{2},
		},
		{
			name:      "duplicated",
			messages:  []Message{messages[0], messages[1], messages[2], messages[2], messages[3], messages[4]},
			duplicate: []int{2},
		},
		{
			name:      "replaced by a duplicate",
			messages:  []Message{messages[0], messages[1], messages[1], messages[3], messages[4]},
			missing:   []int{2},
			duplicate: []int{1},
		},
		{
			name:     "foreign message id",
			messages: []Message{messages[0], messages[1], other[2], messages[3], messages[4]},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var _, decErr = codec.Decode(tt.messages)
			require.ErrorIs(t, decErr, ErrIncompleteSequence)

			var seqErr *SequenceError
			require.True(t, errors.As(decErr, &seqErr))
			assert.Equal(t, tt.missing, seqErr.Missing)
			assert.Equal(t, tt.duplicate, seqErr.Duplicate)
			assert.Equal(t, "incomplete_sequence", ErrorKind(decErr))
		})
	}
}

func TestMultiMessageEmpty(t *testing.T) {
	var codec = NewMultiMessageCodec()

	var _, encErr = codec.Encode(nil)
	require.ErrorIs(t, encErr, ErrEmptyInput)

	var _, encIDErr = codec.EncodeWithID([]byte{}, 3)
	require.ErrorIs(t, encIDErr, ErrEmptyInput)

	var _, decErr = codec.Decode(nil)
	require.ErrorIs(t, decErr, ErrEmptyInput)

	require.ErrorIs(t, ValidateChunks(nil), ErrEmptyInput)
}

func TestMultiMessageNotAFrame(t *testing.T) {
	// Decodes fine as a message but the value needs more than 6 bytes.
	var _, err = NewMultiMessageCodec().Decode([]Message{{"999999", "RR99", 60}})
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMultiMessageRandomFailure(t *testing.T) {
	var codec = NewMultiMessageCodec(WithRandom(bytes.NewReader(nil)))

	var _, err = codec.Encode([]byte("x"))
	require.Error(t, err)
}

func TestDetectMode(t *testing.T) {
	var basic = [][]byte{
		{1, 0x01, 'a', 'b', 'c', 'd'},
		{1, 0x11, 'e', 0, 0, 0},
	}
	assert.Equal(t, Basic, DetectMode(basic))

	var extended = make([][]byte, 20)
	for i := range extended {
		extended[i] = []byte{1, byte(i), 19, 'x', 'y', 'z'}
	}
	assert.Equal(t, Extended, DetectMode(extended))

	// A single extended chunk reads as a valid one chunk basic frame.
	var single = [][]byte{{1, 0x00, 0x00, 'x', 'y', 'z'}}
	assert.Equal(t, Basic, DetectMode(single))
}

func TestValidateChunksOutOfRange(t *testing.T) {
	var err = ValidateChunks([]Chunk{
		{MessageID: 1, Sequence: 0, Total: 2},
		{MessageID: 1, Sequence: 5, Total: 2},
	})
	require.ErrorIs(t, err, ErrIncompleteSequence)
	assert.Contains(t, err.Error(), "out of range [5]")

	var totalErr = ValidateChunks([]Chunk{
		{MessageID: 1, Sequence: 0, Total: 2},
		{MessageID: 1, Sequence: 1, Total: 3},
	})
	require.ErrorIs(t, totalErr, ErrIncompleteSequence)
}
