package wsprcodex

// One big integer spread over a fixed number of WSPR messages, with no framing.
// The symbol list is the WSPR list repeated, so the first message is the most
// significant.  Order matters and nothing checks it; use MultiMessageCodec for
// anything that might arrive out of order.

import (
	"fmt"
	"math/big"
)

type SequenceCodec struct {
	count int
	codec *Codec
}

func NewSequenceCodec(count int) (*SequenceCodec, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: a sequence needs at least one message, got %d", ErrFormatInvalid, count)
	}

	var symbols = make([]Symbol, 0, count*len(wsprSymbols))
	for loopIdx := 0; loopIdx < count; loopIdx++ {
		symbols = append(symbols, wsprSymbols...)
	}

	return &SequenceCodec{count: count, codec: NewCodec(symbols...)}, nil
}

func (s *SequenceCodec) Count() int {
	return s.count
}

func (s *SequenceCodec) Capacity() *big.Int {
	return s.codec.Capacity()
}

func (s *SequenceCodec) Encode(value *big.Int) ([]Message, error) {
	var seq, err = s.codec.Encode(value)
	if err != nil {
		return nil, err
	}

	var per = len(wsprSymbols)
	var out = make([]Message, s.count)

	for i := 0; i < s.count; i++ {
		out[i], err = ToFields(seq[i*per : (i+1)*per])
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}

	return out, nil
}

func (s *SequenceCodec) Decode(messages []Message) (*big.Int, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages to decode", ErrEmptyInput)
	}

	if len(messages) != s.count {
		return nil, fmt.Errorf("%w: got %d messages, sequence is %d", ErrSizeMismatch, len(messages), s.count)
	}

	var seq = make([][]byte, 0, s.count*len(wsprSymbols))

	for i, m := range messages {
		var part, err = m.Sequence()
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}

		seq = append(seq, part...)
	}

	return s.codec.Decode(seq)
}

// MessagesFor returns the fewest messages whose combined capacity holds value.
func MessagesFor(value *big.Int) (int, error) {
	if value.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrOverflow, value)
	}

	var per = WSPRCapacity()
	var capacity = new(big.Int).Set(per)
	var n = 1

	for capacity.Cmp(value) <= 0 {
		capacity.Mul(capacity, per)
		n++
	}

	return n, nil
}

// EncodeSequence encodes value in as few messages as it takes.
func EncodeSequence(value *big.Int) ([]Message, error) {
	var n, err = MessagesFor(value)
	if err != nil {
		return nil, err
	}

	var s, _ = NewSequenceCodec(n)

	return s.Encode(value)
}

// DecodeSequence is the inverse of EncodeSequence.
func DecodeSequence(messages []Message) (*big.Int, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages to decode", ErrEmptyInput)
	}

	var s, _ = NewSequenceCodec(len(messages))

	return s.Decode(messages)
}
