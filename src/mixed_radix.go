package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Convert between a non-negative integer and a sequence
 *		of symbols, treating the symbol list as a mixed radix
 *		number, most significant position first.
 *
 * Description:	The weight of position i is the product of the radices
 *		of every symbol after it.  Literals have radix 1 so they
 *		neither add capacity nor change any weight.
 *
 *		Example:  [GridLetter, GridNumber] has capacity 180
 *		and 57 encodes as "F7" (5*10 + 7).
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math/big"
)

type Codec struct {
	symbols  []Symbol
	weights  []*big.Int // weights[i] = product of radices after i.
	capacity *big.Int
}

// NewCodec panics on an empty symbol list or a symbol with radix < 1; both are
// programming errors in a fixed table rather than anything a caller can recover from.
func NewCodec(symbols ...Symbol) *Codec {
	if len(symbols) == 0 {
		panic("wsprcodex: codec needs at least one symbol")
	}

	var c = &Codec{
		symbols: append([]Symbol(nil), symbols...),
		weights: make([]*big.Int, len(symbols)),
	}

	var w = big.NewInt(1)
	for i := len(symbols) - 1; i >= 0; i-- {
		var r = symbols[i].Radix()
		if r < 1 {
			panic(fmt.Sprintf("wsprcodex: symbol %s has radix %d", symbols[i], r))
		}

		c.weights[i] = new(big.Int).Set(w)
		w.Mul(w, big.NewInt(int64(r)))
	}

	c.capacity = w

	return c
}

// Capacity is one more than the largest encodable value.
func (c *Codec) Capacity() *big.Int {
	return new(big.Int).Set(c.capacity)
}

func (c *Codec) Symbols() []Symbol {
	return append([]Symbol(nil), c.symbols...)
}

func (c *Codec) Len() int {
	return len(c.symbols)
}

/*------------------------------------------------------------------
 *
 * Name:	Encode
 *
 * Purpose:	Integer to one representation per symbol.
 *
 * Inputs:	value	- 0 <= value < Capacity().
 *
 * Returns:	Representations in symbol order.
 *
 * Errors:	ErrOverflow if value is negative or too big.
 *
 *------------------------------------------------------------------*/

func (c *Codec) Encode(value *big.Int) ([][]byte, error) {
	var digits, err = c.digits(value)
	if err != nil {
		return nil, err
	}

	var out = make([][]byte, len(c.symbols))
	for i, s := range c.symbols {
		var rep, encErr = s.Encode(digits[i])
		if encErr != nil {
			return nil, fmt.Errorf("position %d: %w", i, encErr)
		}

		out[i] = rep
	}

	return out, nil
}

// digits does the arithmetic half of Encode.  A literal gets digit 0.
func (c *Codec) digits(value *big.Int) ([]int, error) {
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative", ErrOverflow, value)
	}

	if value.Cmp(c.capacity) >= 0 {
		return nil, fmt.Errorf("%w: %s does not fit, capacity is %s", ErrOverflow, value, c.capacity)
	}

	var digits = make([]int, len(c.symbols))
	var remainder = new(big.Int).Set(value)
	var q = new(big.Int)
	var r = new(big.Int)

	for i, s := range c.symbols {
		var radix = s.Radix()
		if radix == 1 {
			logger.Debug("encode step", "pos", i, "symbol", s, "literal", true)
			continue
		}

		if i == len(c.symbols)-1 {
			// Last position takes whatever is left.  Anything >= radix is caught below.
			q.Set(remainder)
			remainder.SetInt64(0)
		} else {
			q.QuoRem(remainder, c.weights[i], r)
			remainder.Set(r)
		}

		// Clamp to the top digit.  This can't happen for value < capacity, so if it
		// does the weights are wrong and we refuse rather than emit a wrong digit.
		if !q.IsInt64() || q.Int64() > int64(radix-1) {
			return nil, fmt.Errorf("%w: digit %s too big for %s at position %d", ErrOverflow, q, s, i)
		}

		digits[i] = int(q.Int64())

		logger.Debug("encode step", "pos", i, "symbol", s, "weight", c.weights[i], "digit", digits[i], "remainder", remainder)
	}

	if remainder.Sign() != 0 {
		return nil, fmt.Errorf("%w: %s left over after encoding %s", ErrOverflow, remainder, value)
	}

	return digits, nil
}

/*------------------------------------------------------------------
 *
 * Name:	Decode
 *
 * Purpose:	Inverse of Encode.
 *
 * Inputs:	seq	- One representation per symbol.
 *
 * Errors:	ErrSizeMismatch if len(seq) is wrong.
 *		ErrSymbolMismatch if any representation isn't in its
 *		symbol's alphabet, or a literal doesn't match.
 *
 *------------------------------------------------------------------*/

func (c *Codec) Decode(seq [][]byte) (*big.Int, error) {
	if len(seq) != len(c.symbols) {
		return nil, fmt.Errorf("%w: got %d values for %d symbols", ErrSizeMismatch, len(seq), len(c.symbols))
	}

	var total = new(big.Int)
	var term = new(big.Int)

	for i, s := range c.symbols {
		var d, err = s.Decode(seq[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}

		if s.Radix() == 1 {
			continue
		}

		term.Mul(big.NewInt(int64(d)), c.weights[i])
		total.Add(total, term)

		logger.Debug("decode step", "pos", i, "symbol", s, "digit", d, "weight", c.weights[i])
	}

	return total, nil
}
