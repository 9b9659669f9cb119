package wsprcodex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolRadix(t *testing.T) {
	tests := []struct {
		symbol Symbol
		radix  int
	}{
		{CallLetterNumber, 36},
		{CallLetter, 26},
		{CallLetterSpace, 27},
		{CallAny, 37},
		{CallNumber, 10},
		{GridLetter, 18},
		{GridNumber, 10},
		{Binary, 2},
		{Power, 19},
		{Byte, 256},
		{Literal("Q"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.symbol.String(), func(t *testing.T) {
			assert.Equal(t, tt.radix, tt.symbol.Radix())
		})
	}
}

func TestSymbolEveryDigitRoundTrips(t *testing.T) {
	for _, s := range []Symbol{CallLetterNumber, CallLetter, CallLetterSpace, CallAny, CallNumber, GridLetter, GridNumber, Binary, Power, Byte} {
		t.Run(s.String(), func(t *testing.T) {
			for d := 0; d < s.Radix(); d++ {
				var rep, err = s.Encode(d)
				require.NoError(t, err)

				var back, decErr = s.Decode(rep)
				require.NoError(t, decErr)
				assert.Equal(t, d, back, "rep %q", rep)
			}

			var _, lowErr = s.Encode(-1)
			require.ErrorIs(t, lowErr, ErrSymbolMismatch)

			var _, highErr = s.Encode(s.Radix())
			require.ErrorIs(t, highErr, ErrSymbolMismatch)
		})
	}
}

func TestGridLetterStopsAtR(t *testing.T) {
	var rep, err = GridLetter.Encode(17)
	require.NoError(t, err)
	assert.Equal(t, []byte("R"), rep)

	var _, decErr = GridLetter.Decode([]byte("S"))
	require.ErrorIs(t, decErr, ErrSymbolMismatch)
}

func TestAlphabetDecodeRejects(t *testing.T) {
	for _, rep := range []string{"", "a", "AB", "-"} {
		var _, err = CallLetterNumber.Decode([]byte(rep))
		require.ErrorIs(t, err, ErrSymbolMismatch, "rep %q", rep)
	}
}

func TestLiteral(t *testing.T) {
	var q = Literal("Q")

	var rep, err = q.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("Q"), rep)

	var d, decErr = q.Decode([]byte("Q"))
	require.NoError(t, decErr)
	assert.Equal(t, 0, d)

	var _, mismatchErr = q.Decode([]byte("R"))
	require.ErrorIs(t, mismatchErr, ErrSymbolMismatch)

	// Encode hands out a copy.
	rep[0] = 'X'
	assert.Equal(t, Literal("Q"), q)
}

func TestPower(t *testing.T) {
	var rep, err = Power.Encode(7)
	require.NoError(t, err)
	assert.Equal(t, []byte("23"), rep)

	var d, decErr = Power.Decode([]byte("60"))
	require.NoError(t, decErr)
	assert.Equal(t, 18, d)

	for _, bad := range []string{"5", "07", "+7", "61", "-3", "", "x"} {
		var _, badErr = Power.Decode([]byte(bad))
		require.ErrorIs(t, badErr, ErrSymbolMismatch, "power %q", bad)
	}

	assert.Equal(t, 0, PowerIndex(0))
	assert.Equal(t, 18, PowerIndex(60))
	assert.Equal(t, -1, PowerIndex(5))
}

func TestByte(t *testing.T) {
	var rep, err = Byte.Encode(0xfe)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe}, rep)

	var _, decErr = Byte.Decode([]byte{1, 2})
	require.ErrorIs(t, decErr, ErrSymbolMismatch)
}
