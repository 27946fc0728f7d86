package position_test

import (
	"math"
	"testing"

	"taskboard/internal/position"

	"github.com/stretchr/testify/assert"
)

func TestAllocate_EmptySiblingSet(t *testing.T) {
	pos, err := position.Allocate(position.NoLower, position.NoUpper)

	assert.NoError(t, err)
	assert.Equal(t, position.DefaultStart, pos)
}

func TestAllocate_AppendDoublesMax(t *testing.T) {
	pos, err := position.Allocate(65535.0, position.NoUpper)

	assert.NoError(t, err)
	assert.Equal(t, 131070.0, pos)
}

func TestAllocate_PrependHalvesMin(t *testing.T) {
	pos, err := position.Allocate(position.NoLower, 65535.0)

	assert.NoError(t, err)
	assert.Equal(t, 32767.5, pos)
	assert.Greater(t, pos, 0.0)
}

func TestAllocate_BetweenNeighbors(t *testing.T) {
	pos, err := position.Allocate(100.0, 200.0)

	assert.NoError(t, err)
	assert.Greater(t, pos, 100.0)
	assert.Less(t, pos, 200.0)
	assert.Equal(t, 150.0, pos)
}

func TestAllocate_RepeatedBisectionStaysInBounds(t *testing.T) {
	lower, upper := 1.0, 2.0
	for i := 0; i < 40; i++ {
		pos, err := position.Allocate(lower, upper)
		assert.NoError(t, err)
		assert.Greater(t, pos, lower)
		assert.Less(t, pos, upper)
		upper = pos
	}
}

func TestAllocate_AdjacentFloatsExhaustPrecision(t *testing.T) {
	lower := 1.0
	upper := math.Nextafter(1.0, 2.0)

	_, err := position.Allocate(lower, upper)

	assert.ErrorIs(t, err, position.ErrPrecisionExhausted)
}

func TestAllocate_AppendAfterNonPositiveLower(t *testing.T) {
	pos, err := position.Allocate(0.0, position.NoUpper)

	assert.NoError(t, err)
	assert.Equal(t, position.DefaultStart, pos)

	pos, err = position.Allocate(-100.0, position.NoUpper)

	assert.NoError(t, err)
	assert.Greater(t, pos, -100.0)
}

func TestAllocate_AppendOverflowExhaustsPrecision(t *testing.T) {
	_, err := position.Allocate(math.MaxFloat64, position.NoUpper)

	assert.ErrorIs(t, err, position.ErrPrecisionExhausted)
}

func TestAllocate_PrependUnderflowExhaustsPrecision(t *testing.T) {
	_, err := position.Allocate(position.NoLower, math.SmallestNonzeroFloat64)

	assert.ErrorIs(t, err, position.ErrPrecisionExhausted)
}

func TestAllocate_ReversedNeighborsRejected(t *testing.T) {
	_, err := position.Allocate(200.0, 100.0)
	assert.ErrorIs(t, err, position.ErrInvalidNeighbors)

	_, err = position.Allocate(100.0, 100.0)
	assert.ErrorIs(t, err, position.ErrInvalidNeighbors)
}

func TestSpread(t *testing.T) {
	got := position.Spread(3)

	assert.Equal(t, []float64{65535.0, 131070.0, 196605.0}, got)
}

func TestSpread_Empty(t *testing.T) {
	assert.Empty(t, position.Spread(0))
}
