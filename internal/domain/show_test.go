package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShowPriceFor(t *testing.T) {
	show := Show{Price: decimal.NewFromInt(250)}

	assert.True(t, decimal.NewFromInt(500).Equal(show.PriceFor(2)))
	assert.True(t, decimal.NewFromInt(250).Equal(show.PriceFor(1)))
	assert.True(t, decimal.Zero.Equal(show.PriceFor(0)))
}

func TestSeatConflictErrorUnwrapsToSentinel(t *testing.T) {
	err := &SeatConflictError{Seats: []string{"A1", "A2"}}

	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.Contains(t, err.Error(), "A1")
}
