// Package position computes float sort keys for sibling-ordered records.
// Inserting between two siblings never touches the siblings themselves: the
// new key is placed in the gap between their positions.
package position

import (
	"errors"
	"math"
)

// Open-ended sides of an insert. Allocate(NoLower, NoUpper) asks for a
// position in an empty sibling set.
var (
	NoLower = math.Inf(-1)
	NoUpper = math.Inf(1)
)

// DefaultStart is the position of the first item in an empty sibling set.
const DefaultStart = 65535.0

var (
	// ErrPrecisionExhausted means the gap between the two neighbors cannot
	// hold another distinct float64. The sibling set needs a rebalance
	// before the insert can succeed.
	ErrPrecisionExhausted = errors.New("position: no representable value between neighbors")

	// ErrInvalidNeighbors means lower >= upper, which no well-formed
	// enumeration of siblings can produce.
	ErrInvalidNeighbors = errors.New("position: lower neighbor not below upper neighbor")
)

// Allocate returns a position strictly between lower and upper. Open sides
// use the NoLower/NoUpper sentinels: appending doubles the current maximum,
// prepending halves the current minimum, and an empty set gets DefaultStart.
func Allocate(lower, upper float64) (float64, error) {
	switch {
	case math.IsInf(lower, -1) && math.IsInf(upper, 1):
		return DefaultStart, nil

	case math.IsInf(upper, 1):
		// Doubling a non-positive lower cannot move past it; step instead.
		if lower <= 0 {
			return lower + DefaultStart, nil
		}
		next := lower * 2
		if math.IsInf(next, 1) || next <= lower {
			return 0, ErrPrecisionExhausted
		}
		return next, nil

	case math.IsInf(lower, -1):
		prev := upper / 2
		if prev <= 0 || prev >= upper {
			return 0, ErrPrecisionExhausted
		}
		return prev, nil

	default:
		if lower >= upper {
			return 0, ErrInvalidNeighbors
		}
		mid := lower + (upper-lower)/2
		if mid <= lower || mid >= upper {
			return 0, ErrPrecisionExhausted
		}
		return mid, nil
	}
}

// Spread returns n evenly spaced positions for a rebalance: DefaultStart,
// 2*DefaultStart, and so on, restoring room on both sides of every sibling.
func Spread(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) * DefaultStart
	}
	return out
}
