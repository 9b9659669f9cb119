package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Send a payload bigger than one WSPR message as a set
 *		of framed chunks, and put it back together from
 *		messages received in any order.
 *
 * Description:	encode:	bytes -> chunks -> frames -> integers
 *			-> symbols -> messages
 *
 *		decode:	the reverse, plus working out the frame mode,
 *			checking the set is complete and consistent,
 *			sorting, and dropping the zero padding from
 *			the last chunk.
 *
 *		The padding is indistinguishable from real trailing zero
 *		bytes, so a payload ending in 0x00 comes back shorter.
 *		Callers who care should not end payloads with zeros.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"slices"
)

type MultiMessageCodec struct {
	random io.Reader
}

type Option func(*MultiMessageCodec)

// WithRandom sets where Encode gets message ids from.  Default crypto/rand.Reader.
// The reader must be safe for concurrent use if the codec is shared.
func WithRandom(r io.Reader) Option {
	return func(c *MultiMessageCodec) {
		c.random = r
	}
}

func NewMultiMessageCodec(opts ...Option) *MultiMessageCodec {
	var c = &MultiMessageCodec{random: rand.Reader}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MaxPayloadBytes is the capacity of a single message, for callers who want to check
// before encoding.
func (c *MultiMessageCodec) MaxPayloadBytes() int {
	return MaxPayloadBytes()
}

// MaxDataBytes is the largest payload Encode accepts.
func (c *MultiMessageCodec) MaxDataBytes() int {
	return ExtendedMaxPayload
}

// RandomMessageID draws one byte from the codec's random source.
func (c *MultiMessageCodec) RandomMessageID() (byte, error) {
	var b [1]byte

	var _, err = io.ReadFull(c.random, b[:])
	if err != nil {
		return 0, fmt.Errorf("message id: %w", err)
	}

	return b[0], nil
}

// Encode is EncodeWithID with a random message id.
func (c *MultiMessageCodec) Encode(data []byte) ([]Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: nothing to encode", ErrEmptyInput)
	}

	var id, err = c.RandomMessageID()
	if err != nil {
		return nil, err
	}

	return c.EncodeWithID(data, id)
}

/*------------------------------------------------------------------
 *
 * Name:	EncodeWithID
 *
 * Purpose:	Split data into chunks and encode each as a message.
 *
 * Inputs:	data		- 1 to 768 bytes.
 *		messageID	- Tags every chunk of this payload.
 *
 * Returns:	Messages in sequence order.
 *
 * Errors:	ErrEmptyInput, ErrCapacityExceeded.
 *
 *------------------------------------------------------------------*/

func (c *MultiMessageCodec) EncodeWithID(data []byte, messageID byte) ([]Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: nothing to encode", ErrEmptyInput)
	}

	if len(data) > ExtendedMaxPayload {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrCapacityExceeded, len(data), ExtendedMaxPayload)
	}

	var mode = ModeFor(len(data))
	var width = mode.PayloadBytes()
	var total = (len(data) + width - 1) / width

	Assert(total <= mode.MaxChunks())

	var messages = make([]Message, 0, total)

	for seq := 0; seq < total; seq++ {
		var end = min((seq+1)*width, len(data))

		var block, err = Frame(Chunk{
			MessageID: messageID,
			Sequence:  seq,
			Total:     total,
			Payload:   data[seq*width : end],
		}, mode)
		if err != nil {
			return nil, err
		}

		var m, encErr = EncodeValue(new(big.Int).SetBytes(block))
		if encErr != nil {
			return nil, fmt.Errorf("chunk %d: %w", seq, encErr)
		}

		messages = append(messages, m)
	}

	logger.Debug("encoded", "bytes", len(data), "mode", mode, "id", messageID, "messages", len(messages))

	return messages, nil
}

// Decode reassembles messages from EncodeWithID, in any order, guessing the mode.
func (c *MultiMessageCodec) Decode(messages []Message) ([]byte, error) {
	var blocks, err = messageBlocks(messages)
	if err != nil {
		return nil, err
	}

	var mode = DetectMode(blocks)

	logger.Debug("detected mode", "mode", mode, "messages", len(messages))

	return reassemble(blocks, mode)
}

// DecodeWithMode is Decode for callers who know the mode, which avoids the guess.
func (c *MultiMessageCodec) DecodeWithMode(messages []Message, mode Mode) ([]byte, error) {
	var blocks, err = messageBlocks(messages)
	if err != nil {
		return nil, err
	}

	return reassemble(blocks, mode)
}

// Chunks decodes each message to its chunk without checking the set.
func (c *MultiMessageCodec) Chunks(messages []Message, mode Mode) ([]Chunk, error) {
	var blocks, err = messageBlocks(messages)
	if err != nil {
		return nil, err
	}

	var chunks = make([]Chunk, len(blocks))
	for i, b := range blocks {
		chunks[i], err = ParseFrame(b, mode)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}

	return chunks, nil
}

func messageBlocks(messages []Message) ([][]byte, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages to decode", ErrEmptyInput)
	}

	var blocks = make([][]byte, len(messages))

	for i, m := range messages {
		var b, err = MessageBlock(m)
		if err != nil {
			return nil, fmt.Errorf("message %d %q: %w", i, m, err)
		}

		blocks[i] = b
	}

	return blocks, nil
}

/*------------------------------------------------------------------
 *
 * Name:	MessageBlock
 *
 * Purpose:	Decode one message to its frame bytes.
 *
 * Description:	The integer is written big endian into exactly
 *		FrameSize bytes.  Leading zero bytes must be kept,
 *		so pad up, never trim down.  A value that needs more
 *		than FrameSize bytes can't have come from a frame.
 *
 *------------------------------------------------------------------*/

func MessageBlock(m Message) ([]byte, error) {
	var value, err = DecodeValue(m)
	if err != nil {
		return nil, err
	}

	if value.BitLen() > FrameSize*8 {
		return nil, fmt.Errorf("%w: %s does not fit in a %d byte frame", ErrOverflow, value, FrameSize)
	}

	return value.FillBytes(make([]byte, FrameSize)), nil
}

/*------------------------------------------------------------------
 *
 * Name:	DetectMode
 *
 * Purpose:	Guess the frame mode of a set of blocks.
 *
 * Description:	Look at the first block.  If its Basic reading of
 *		"total" matches the number of blocks (and that's at
 *		most 16), Basic.  Otherwise if its Extended reading
 *		matches, Extended.  Otherwise go by the count.
 *
 *		This can be fooled: one Extended chunk whose sequence
 *		byte is zero reads as a valid one chunk Basic frame.
 *		Use DecodeWithMode when the mode is known.
 *
 *------------------------------------------------------------------*/

func DetectMode(blocks [][]byte) Mode {
	var count = len(blocks)
	if count == 0 || len(blocks[0]) != FrameSize {
		return ModeFor(count * BasicPayloadBytes)
	}

	var first = blocks[0]
	var basicTotal = int(first[1]&0x0f) + 1
	var extendedTotal = int(first[2]) + 1

	if count <= BasicMaxChunks && count == basicTotal {
		return Basic
	}

	if count == extendedTotal {
		return Extended
	}

	if count <= BasicMaxChunks {
		return Basic
	}

	return Extended
}

func reassemble(blocks [][]byte, mode Mode) ([]byte, error) {
	var chunks = make([]Chunk, len(blocks))

	for i, b := range blocks {
		var c, err = ParseFrame(b, mode)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}

		chunks[i] = c
	}

	var err = ValidateChunks(chunks)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(chunks, func(a, b Chunk) int {
		return a.Sequence - b.Sequence
	})

	var out = make([]byte, 0, len(chunks)*mode.PayloadBytes())
	for _, c := range chunks {
		out = append(out, c.Payload...)
	}

	// Only the last chunk's padding.  Zeros inside the data stay.
	var last = chunks[len(chunks)-1].Payload
	var padding = len(last) - len(bytes.TrimRight(last, "\x00"))

	return out[:len(out)-padding], nil
}

/*------------------------------------------------------------------
 *
 * Name:	ValidateChunks
 *
 * Purpose:	Check a set of chunks is exactly one complete payload.
 *
 * Errors:	*SequenceError (ErrIncompleteSequence) if the message
 *		ids or totals disagree, the count is wrong, or any
 *		sequence number is missing, repeated or out of range.
 *
 *------------------------------------------------------------------*/

func ValidateChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks", ErrEmptyInput)
	}

	var first = chunks[0]

	for _, c := range chunks[1:] {
		if c.MessageID != first.MessageID {
			return &SequenceError{ //nolint:exhaustruct
				Reason: fmt.Sprintf("mixed message ids 0x%02x and 0x%02x", first.MessageID, c.MessageID),
			}
		}
	}

	for _, c := range chunks[1:] {
		if c.Total != first.Total {
			return &SequenceError{ //nolint:exhaustruct
				Reason: fmt.Sprintf("chunks disagree on total, %d and %d", first.Total, c.Total),
			}
		}
	}

	var seen = make([]int, first.Total)
	var duplicate, unexpected []int

	for _, c := range chunks {
		if c.Sequence >= first.Total {
			unexpected = append(unexpected, c.Sequence)
			continue
		}

		seen[c.Sequence]++
		if seen[c.Sequence] == 2 {
			duplicate = append(duplicate, c.Sequence)
		}
	}

	var missing []int
	for seq, n := range seen {
		if n == 0 {
			missing = append(missing, seq)
		}
	}

	slices.Sort(duplicate)

	if len(chunks) != first.Total {
		return &SequenceError{
			Reason:    fmt.Sprintf("expected %d chunks, received %d", first.Total, len(chunks)),
			Missing:   missing,
			Duplicate: duplicate,
		}
	}

	if len(missing) > 0 || len(duplicate) > 0 || len(unexpected) > 0 {
		var reason = "sequence numbers are not 0-" + fmt.Sprint(first.Total-1)
		if len(unexpected) > 0 {
			reason += fmt.Sprintf(", out of range %v", unexpected)
		}

		return &SequenceError{
			Reason:    reason,
			Missing:   missing,
			Duplicate: duplicate,
		}
	}

	return nil
}
