package model_test

import (
	"testing"
	"time"

	"taskboard/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSoftDelete_Tombstone(t *testing.T) {
	var card model.Card
	assert.True(t, card.Visible())

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	card.Tombstone(first)

	assert.False(t, card.Visible())
	assert.NotNil(t, card.DeletedAt)
	assert.Equal(t, first, *card.DeletedAt)
}

func TestSoftDelete_TombstoneIsIdempotent(t *testing.T) {
	var list model.List

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	list.Tombstone(first)

	// A later tombstone must not move the deletion timestamp.
	list.Tombstone(first.Add(time.Hour))

	assert.False(t, list.Visible())
	assert.Equal(t, first, *list.DeletedAt)
}
