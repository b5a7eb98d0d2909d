package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShowNotFound         = errors.New("show not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrOrderNotFound        = errors.New("payment order not found or expired")
	ErrInvalidSeats         = errors.New("one or more seat labels are invalid")
	ErrSeatConflict         = errors.New("seat already occupied")
	ErrDuplicateBookingID   = errors.New("booking id already exists")
	ErrPaymentUnverified    = errors.New("payment could not be verified")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayMisconfigured = errors.New("payment gateway keys are not configured")
)

// SeatConflictError reports the seat labels that were already occupied when a
// reservation tried to claim them. The conflicting labels are included so
// clients can re-render availability.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.Seats, ", "))
}

// Unwrap makes errors.Is(err, ErrSeatConflict) work on the typed error.
func (e *SeatConflictError) Unwrap() error {
	return ErrSeatConflict
}
