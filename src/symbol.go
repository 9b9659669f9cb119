package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Finite alphabets used as digits of a mixed radix number.
 *
 * Description:	A Symbol has a radix (how many values it can take) and
 *		converts between a digit in [0, radix) and its external
 *		representation.  The representation is always a byte
 *		slice: one character for the callsign and grid alphabets,
 *		decimal text for power, one raw byte for Byte.
 *
 *		A radix of 1 is a literal.  It carries no information and
 *		only ever encodes to, or decodes from, its fixed value.
 *
 *		Symbols have no state and the ones below are shared.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"fmt"
	"strconv"
)

type Symbol interface {
	Radix() int
	Encode(digit int) ([]byte, error)
	Decode(rep []byte) (int, error)
	String() string
}

// Table driven symbol, one byte per digit.
type alphabet struct {
	name  string
	chars string
}

func (a alphabet) Radix() int {
	return len(a.chars)
}

func (a alphabet) String() string {
	return a.name
}

func (a alphabet) Encode(digit int) ([]byte, error) {
	if digit < 0 || digit >= len(a.chars) {
		return nil, fmt.Errorf("%w: %d is not a %s digit (0-%d)", ErrSymbolMismatch, digit, a.name, len(a.chars)-1)
	}

	return []byte{a.chars[digit]}, nil
}

func (a alphabet) Decode(rep []byte) (int, error) {
	if len(rep) == 1 {
		var i = bytes.IndexByte([]byte(a.chars), rep[0])
		if i >= 0 {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q is not a valid %s", ErrSymbolMismatch, rep, a.name)
}

// contains reports whether c is in the alphabet.
func (a alphabet) contains(c byte) bool {
	return bytes.IndexByte([]byte(a.chars), c) >= 0
}

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	decimalDigit = "0123456789"
)

var (
	CallLetterNumber Symbol = alphabet{"CallLetterNumber", upperLetters + decimalDigit}
	CallLetter       Symbol = alphabet{"CallLetter", upperLetters}
	CallLetterSpace  Symbol = alphabet{"CallLetterSpace", upperLetters + " "}
	CallAny          Symbol = alphabet{"CallAny", upperLetters + decimalDigit + " "}
	CallNumber       Symbol = alphabet{"CallNumber", decimalDigit}
	GridLetter       Symbol = alphabet{"GridLetter", upperLetters[:18]} // A-R
	GridNumber       Symbol = alphabet{"GridNumber", decimalDigit}
	Binary           Symbol = alphabet{"Binary", "01"}
	Power            Symbol = powerSymbol{}
	Byte             Symbol = byteSymbol{}
)

// Literal is a radix 1 symbol: a fixed marker such as the leading "Q" of a WSPR message.
type Literal []byte

func (l Literal) Radix() int {
	return 1
}

func (l Literal) String() string {
	return fmt.Sprintf("Literal(%q)", []byte(l))
}

func (l Literal) Encode(_ int) ([]byte, error) {
	return bytes.Clone(l), nil
}

func (l Literal) Decode(rep []byte) (int, error) {
	if !bytes.Equal(rep, l) {
		return 0, fmt.Errorf("%w: expected %q, got %q", ErrSymbolMismatch, []byte(l), rep)
	}

	return 0, nil
}

// The only power levels WSPR can send, in dBm.  Digit n is PowerLevels[n].
var PowerLevels = [19]int{0, 3, 7, 10, 13, 17, 20, 23, 27, 30, 33, 37, 40, 43, 47, 50, 53, 57, 60}

// PowerIndex returns the digit for a dBm value, or -1 if WSPR can't send it.
func PowerIndex(dbm int) int {
	for i, p := range PowerLevels {
		if p == dbm {
			return i
		}
	}

	return -1
}

type powerSymbol struct{}

func (powerSymbol) Radix() int {
	return len(PowerLevels)
}

func (powerSymbol) String() string {
	return "Power"
}

func (powerSymbol) Encode(digit int) ([]byte, error) {
	if digit < 0 || digit >= len(PowerLevels) {
		return nil, fmt.Errorf("%w: %d is not a Power digit (0-%d)", ErrSymbolMismatch, digit, len(PowerLevels)-1)
	}

	return []byte(strconv.Itoa(PowerLevels[digit])), nil
}

func (powerSymbol) Decode(rep []byte) (int, error) {
	var dbm, err = strconv.Atoi(string(rep))
	if err == nil {
		var i = PowerIndex(dbm)
		if i >= 0 && strconv.Itoa(dbm) == string(rep) { // No "+7" or "07".
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q is not a WSPR power level", ErrSymbolMismatch, rep)
}

type byteSymbol struct{}

func (byteSymbol) Radix() int {
	return 256
}

func (byteSymbol) String() string {
	return "Byte"
}

func (byteSymbol) Encode(digit int) ([]byte, error) {
	if digit < 0 || digit > 255 {
		return nil, fmt.Errorf("%w: %d is not a Byte digit (0-255)", ErrSymbolMismatch, digit)
	}

	return []byte{byte(digit)}, nil
}

func (byteSymbol) Decode(rep []byte) (int, error) {
	if len(rep) != 1 {
		return 0, fmt.Errorf("%w: Byte needs exactly one byte, got %d", ErrSymbolMismatch, len(rep))
	}

	return int(rep[0]), nil
}
