package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Show is one scheduled screening. OccupiedSeats maps a seat label to the id
// of the user holding that seat; it is mutated only as part of a booking
// commit and read by clients to render seat maps.
type Show struct {
	ID            string
	MovieTitle    string
	TheaterID     string
	StartTime     time.Time
	Price         decimal.Decimal
	OccupiedSeats map[string]string
	CreatedAt     time.Time
}

// PriceFor returns the server-computed amount for seatCount seats. Client
// supplied amounts are never trusted.
func (s *Show) PriceFor(seatCount int) decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(seatCount)))
}

type ShowRepository interface {
	Create(ctx context.Context, show *Show) error
	GetById(ctx context.Context, id string) (*Show, error)
	GetAll(ctx context.Context) ([]Show, error)

	// SeatsTaken returns the subset of labels already present in the show's
	// occupied-seats ledger. A pre-check only: commit-time conflicts are
	// still possible and are caught by the storage constraint.
	SeatsTaken(ctx context.Context, showID string, labels []string) ([]string, error)

	// DeleteExpiredWithoutBookings removes every show whose start time is
	// strictly before now and that has no referencing bookings. Idempotent.
	DeleteExpiredWithoutBookings(ctx context.Context, now time.Time) (int64, error)
}
