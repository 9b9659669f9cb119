package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Fixed size frames that carry one slice of a larger
 *		payload in one WSPR message.
 *
 * Description:	Every frame is FrameSize bytes, which is what one
 *		message can hold.
 *
 *		Basic		+----+---------+---------------+
 *				| id | seq|n-1 |   payload 4   |
 *				+----+---------+---------------+
 *				Sequence and total-1 are nibbles, so at
 *				most 16 chunks or 64 bytes.
 *
 *		Extended	+----+-----+-----+-------------+
 *				| id | seq | n-1 |  payload 3  |
 *				+----+-----+-----+-------------+
 *				At most 256 chunks or 768 bytes.
 *
 *		Only the last chunk of a set can be short.  It is padded
 *		with zero bytes.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"fmt"
	"strings"
)

const FrameSize = 6

type Mode int

const (
	Basic Mode = iota
	Extended
)

const (
	BasicPayloadBytes    = 4
	BasicMaxChunks       = 16
	BasicMaxPayload      = BasicPayloadBytes * BasicMaxChunks
	ExtendedPayloadBytes = 3
	ExtendedMaxChunks    = 256
	ExtendedMaxPayload   = ExtendedPayloadBytes * ExtendedMaxChunks
)

func (m Mode) String() string {
	switch m {
	case Basic:
		return "basic"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// PayloadBytes is the payload width of one frame.
func (m Mode) PayloadBytes() int {
	if m == Basic {
		return BasicPayloadBytes
	}

	return ExtendedPayloadBytes
}

func (m Mode) MaxChunks() int {
	if m == Basic {
		return BasicMaxChunks
	}

	return ExtendedMaxChunks
}

func (m Mode) headerBytes() int {
	return FrameSize - m.PayloadBytes()
}

// ParseMode accepts "basic" or "extended", any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "basic":
		return Basic, nil
	case "extended":
		return Extended, nil
	default:
		return Basic, fmt.Errorf("%w: unknown mode %q", ErrFormatInvalid, s)
	}
}

// ModeFor picks the mode for a payload of n bytes.
func ModeFor(n int) Mode {
	if n <= BasicMaxPayload {
		return Basic
	}

	return Extended
}

type Chunk struct {
	MessageID byte
	Sequence  int // 0 based.
	Total     int
	Payload   []byte
}

/*------------------------------------------------------------------
 *
 * Name:	Frame
 *
 * Purpose:	Serialize a chunk.
 *
 * Returns:	FrameSize bytes.
 *
 * Errors:	ErrFormatInvalid if sequence or total don't fit the
 *		mode's header, or the payload is wider than the mode's.
 *
 *------------------------------------------------------------------*/

func Frame(c Chunk, mode Mode) ([]byte, error) {
	if mode != Basic && mode != Extended {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrFormatInvalid, int(mode))
	}

	if c.Total < 1 || c.Total > mode.MaxChunks() {
		return nil, fmt.Errorf("%w: %s mode total must be 1-%d, got %d", ErrFormatInvalid, mode, mode.MaxChunks(), c.Total)
	}

	if c.Sequence < 0 || c.Sequence >= c.Total {
		return nil, fmt.Errorf("%w: sequence %d out of range for total %d", ErrFormatInvalid, c.Sequence, c.Total)
	}

	if len(c.Payload) > mode.PayloadBytes() {
		return nil, fmt.Errorf("%w: %s mode payload is %d bytes, got %d", ErrFormatInvalid, mode, mode.PayloadBytes(), len(c.Payload))
	}

	var block = make([]byte, FrameSize)

	block[0] = c.MessageID

	switch mode {
	case Basic:
		block[1] = byte(c.Sequence<<4 | (c.Total - 1))
	case Extended:
		block[1] = byte(c.Sequence)
		block[2] = byte(c.Total - 1)
	}

	copy(block[mode.headerBytes():], c.Payload)

	return block, nil
}

// ParseFrame is the inverse of Frame.  The payload is always full width.
func ParseFrame(block []byte, mode Mode) (Chunk, error) {
	if len(block) != FrameSize {
		return Chunk{}, fmt.Errorf("%w: frame must be %d bytes, got %d", ErrSizeMismatch, FrameSize, len(block))
	}

	var c = Chunk{
		MessageID: block[0],
		Payload:   bytes.Clone(block[mode.headerBytes():]),
	}

	switch mode {
	case Basic:
		c.Sequence = int(block[1] >> 4)
		c.Total = int(block[1]&0x0f) + 1
	case Extended:
		c.Sequence = int(block[1])
		c.Total = int(block[2]) + 1
	default:
		return Chunk{}, fmt.Errorf("%w: unknown mode %d", ErrFormatInvalid, int(mode))
	}

	return c, nil
}
