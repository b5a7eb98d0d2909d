package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentMethodRazorpay is the single supported remote gateway.
const PaymentMethodRazorpay = "razorpay"

// Booking is one confirmed, paid reservation. A booking with IsPaid set must
// have non-empty Seats, each present in its show's occupied-seats ledger and
// mapped to this booking's user.
type Booking struct {
	ID               string
	UserID           string
	ShowID           string
	Seats            []string
	Amount           decimal.Decimal
	IsPaid           bool
	PaymentMethod    string
	PaymentStatus    PaymentStatus
	GatewayOrderID   string
	GatewayPaymentID string
	CreatedAt        time.Time
}

type BookingRepository interface {
	// CreateWithSeats persists the booking and marks its seats occupied in
	// one transaction. It fails with ErrSeatConflict when any seat is
	// already taken and with ErrDuplicateBookingID on a booking id
	// collision. Either failure leaves both stores untouched.
	CreateWithSeats(ctx context.Context, booking *Booking) error

	GetByBookingIdAndUserId(ctx context.Context, bookingID, userID string) (*Booking, error)
	GetAllByUserId(ctx context.Context, userID string) ([]Booking, error)

	// DeleteAllByUserId removes the user's booking history. It never touches
	// the occupied-seats ledger: seat occupancy and booking history are
	// independent facts once committed.
	DeleteAllByUserId(ctx context.Context, userID string) (int64, error)
}
