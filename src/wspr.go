package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	The symbol list for one WSPR transmission and the
 *		conversion to and from the fields an operator sees.
 *
 * Description:	Q  C C C C C C  G G  N N  P
 *
 *		Q	literal marker, never transmitted.
 *		C	callsign, A-Z 0-9 in all six positions.
 *		G	grid field, A-R.
 *		N	grid square, 0-9.
 *		P	power, one of the 19 legal dBm values.
 *
 *		Real WSPR callsigns are stricter (digit in the third
 *		position, letter or space in the last three) but that
 *		only holds about 2^47.2 values and a chunk frame is 48
 *		bits.  The looser alphabet gives 36^6 * 18^2 * 10^2 * 19,
 *		just over 2^50.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	CallsignLength   = 6
	GridSquareLength = 4
)

var wsprMarker = Literal("Q")

var wsprSymbols = []Symbol{
	wsprMarker,
	CallLetterNumber,
	CallLetterNumber,
	CallLetterNumber,
	CallLetterNumber,
	CallLetterNumber,
	CallLetterNumber,
	GridLetter,
	GridLetter,
	GridNumber,
	GridNumber,
	Power,
}

// Positions within wsprSymbols.
const (
	wsprCallsignStart = 1
	wsprGridStart     = wsprCallsignStart + CallsignLength
	wsprPowerPos      = wsprGridStart + GridSquareLength
)

var wsprCodec = NewCodec(wsprSymbols...)

// WSPRSymbols returns a copy of the symbol list for one transmission.
func WSPRSymbols() []Symbol {
	return append([]Symbol(nil), wsprSymbols...)
}

// WSPRCodec is the mixed radix codec over WSPRSymbols.
func WSPRCodec() *Codec {
	return wsprCodec
}

func WSPRCapacity() *big.Int {
	return wsprCodec.Capacity()
}

/*------------------------------------------------------------------
 *
 * Name:	MaxPayloadBytes
 *
 * Purpose:	How many whole bytes always fit in one message.
 *
 * Description:	Any integer of bitlen(capacity)-1 bits is below the
 *		capacity, so that many bits, rounded down to bytes.
 *
 *------------------------------------------------------------------*/

func MaxPayloadBytes() int {
	return (wsprCodec.capacity.BitLen() - 1) / 8
}

// Message is one WSPR transmission as the radio sees it.
type Message struct {
	Callsign   string `json:"callsign" yaml:"callsign"`
	GridSquare string `json:"grid" yaml:"grid"`
	PowerDbm   int    `json:"power" yaml:"power"`
}

// NewMessage validates the fields.  Errors are ErrFormatInvalid.
func NewMessage(callsign, gridSquare string, powerDbm int) (Message, error) {
	var m = Message{Callsign: callsign, GridSquare: gridSquare, PowerDbm: powerDbm}

	var err = m.Validate()
	if err != nil {
		return Message{}, err
	}

	return m, nil
}

// String is the wire form, e.g. "KA1BCD FN31 23".
func (m Message) String() string {
	return fmt.Sprintf("%s %s %d", m.Callsign, m.GridSquare, m.PowerDbm)
}

func (m Message) Validate() error {
	if len(m.Callsign) != CallsignLength {
		return fmt.Errorf("%w: callsign %q must be exactly %d characters", ErrFormatInvalid, m.Callsign, CallsignLength)
	}

	var call = CallLetterNumber.(alphabet)
	for i := 0; i < len(m.Callsign); i++ {
		if !call.contains(m.Callsign[i]) {
			return fmt.Errorf("%w: callsign %q position %d must be A-Z or 0-9", ErrFormatInvalid, m.Callsign, i+1)
		}
	}

	if len(m.GridSquare) != GridSquareLength {
		return fmt.Errorf("%w: grid square %q must be exactly %d characters", ErrFormatInvalid, m.GridSquare, GridSquareLength)
	}

	var field = GridLetter.(alphabet)
	var square = GridNumber.(alphabet)
	for i := 0; i < 2; i++ {
		if !field.contains(m.GridSquare[i]) {
			return fmt.Errorf("%w: grid square %q position %d must be A-R", ErrFormatInvalid, m.GridSquare, i+1)
		}

		if !square.contains(m.GridSquare[i+2]) {
			return fmt.Errorf("%w: grid square %q position %d must be 0-9", ErrFormatInvalid, m.GridSquare, i+3)
		}
	}

	if PowerIndex(m.PowerDbm) < 0 {
		return fmt.Errorf("%w: power %d dBm is not one of %v", ErrFormatInvalid, m.PowerDbm, PowerLevels)
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	ParseMessage
 *
 * Purpose:	Read the "<callsign> <grid> <power>" text produced by
 *		a WSPR decoder.
 *
 * Description:	Lower case is accepted and folded to upper case.
 *		Any amount of white space separates the fields.
 *
 *------------------------------------------------------------------*/

func ParseMessage(text string) (Message, error) {
	var fields = strings.Fields(strings.ToUpper(text))
	if len(fields) != 3 {
		return Message{}, fmt.Errorf("%w: %q should be \"callsign grid power\"", ErrFormatInvalid, text)
	}

	var power, err = strconv.Atoi(fields[2])
	if err != nil {
		return Message{}, fmt.Errorf("%w: power %q is not a number", ErrFormatInvalid, fields[2])
	}

	return NewMessage(fields[0], fields[1], power)
}

// ParseMessages reads one message per line, skipping blank lines and # comments.
func ParseMessages(text string) ([]Message, error) {
	var out []Message

	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var m, err = ParseMessage(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}

		out = append(out, m)
	}

	return out, nil
}

// ToFields groups an encoded sequence over WSPRSymbols into a Message.
func ToFields(seq [][]byte) (Message, error) {
	if len(seq) != len(wsprSymbols) {
		return Message{}, fmt.Errorf("%w: got %d values for %d WSPR symbols", ErrSizeMismatch, len(seq), len(wsprSymbols))
	}

	var call, grid strings.Builder
	for _, b := range seq[wsprCallsignStart:wsprGridStart] {
		call.Write(b)
	}

	for _, b := range seq[wsprGridStart:wsprPowerPos] {
		grid.Write(b)
	}

	var power, err = strconv.Atoi(string(seq[wsprPowerPos]))
	if err != nil {
		return Message{}, fmt.Errorf("%w: power %q is not a number", ErrFormatInvalid, seq[wsprPowerPos])
	}

	return NewMessage(call.String(), grid.String(), power)
}

// FromFields is the inverse of ToFields, validating each field first.
func FromFields(callsign, gridSquare string, powerDbm int) ([][]byte, error) {
	var m = Message{Callsign: callsign, GridSquare: gridSquare, PowerDbm: powerDbm}

	var err = m.Validate()
	if err != nil {
		return nil, err
	}

	var seq = make([][]byte, 0, len(wsprSymbols))

	seq = append(seq, []byte(wsprMarker))
	for i := 0; i < len(callsign); i++ {
		seq = append(seq, []byte{callsign[i]})
	}

	for i := 0; i < len(gridSquare); i++ {
		seq = append(seq, []byte{gridSquare[i]})
	}

	seq = append(seq, []byte(strconv.Itoa(powerDbm)))

	return seq, nil
}

// Sequence is FromFields on m's own fields.
func (m Message) Sequence() ([][]byte, error) {
	return FromFields(m.Callsign, m.GridSquare, m.PowerDbm)
}

// EncodeValue encodes one integer below WSPRCapacity as a single message.
func EncodeValue(value *big.Int) (Message, error) {
	var seq, err = wsprCodec.Encode(value)
	if err != nil {
		return Message{}, err
	}

	return ToFields(seq)
}

// DecodeValue is the inverse of EncodeValue.
func DecodeValue(m Message) (*big.Int, error) {
	var seq, err = m.Sequence()
	if err != nil {
		return nil, err
	}

	return wsprCodec.Decode(seq)
}
