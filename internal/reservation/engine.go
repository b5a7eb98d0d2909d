// Package reservation implements the booking state machine: pricing a seat
// request into a remote payment order, and later turning a verified payment
// into a committed booking plus seat-ledger update as one logical unit.
//
// No seats are held between order creation and payment completion. Two users
// can both receive a priced order for the same seat; the commit decides the
// winner, and a charged-but-rejected payment must be refunded out-of-band.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxCreateAttempts bounds booking-id regeneration on store collisions.
const maxCreateAttempts = 3

var minorUnitsPerUnit = decimal.NewFromInt(100)

type Engine struct {
	shows    domain.ShowRepository
	bookings domain.BookingRepository
	orders   domain.OrderContextStore
	gateway  domain.PaymentProvider
	logger   *slog.Logger
	currency string
}

func NewEngine(
	shows domain.ShowRepository,
	bookings domain.BookingRepository,
	orders domain.OrderContextStore,
	gateway domain.PaymentProvider,
	logger *slog.Logger,
	currency string) *Engine {

	return &Engine{
		shows:    shows,
		bookings: bookings,
		orders:   orders,
		gateway:  gateway,
		logger:   logger,
		currency: currency,
	}
}

// Initiate prices the requested seats against the show's unit price and
// registers a matching order on the payment gateway. It does not reserve
// anything: the seats stay up for grabs until a verified payment commits
// them. The pricing context is stored server-side, keyed by the order id, so
// Confirm can use it instead of the client's copy.
func (e *Engine) Initiate(
	ctx context.Context,
	showID string,
	seats []string,
	userID string) (*domain.PaymentOrder, error) {

	if err := domain.ValidateSeatLabels(seats); err != nil {
		return nil, err
	}

	show, err := e.shows.GetById(ctx, showID)
	if err != nil {
		return nil, err
	}

	amount := show.PriceFor(len(seats))
	amountMinor := amount.Mul(minorUnitsPerUnit).IntPart()

	order, err := e.gateway.CreateOrder(ctx, amountMinor, e.currency, newReceipt())
	if err != nil {
		return nil, err
	}

	err = e.orders.Put(ctx, domain.OrderContext{
		OrderID:  order.ID,
		ShowID:   showID,
		Seats:    seats,
		UserID:   userID,
		Amount:   amount,
		Currency: e.currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store order context: %w", err)
	}

	e.logger.Info("payment order created",
		"order_id", order.ID, "show_id", showID, "user_id", userID, "amount", amount)

	return order, nil
}

type ConfirmParams struct {
	OrderID   string
	PaymentID string
	Signature string

	// Client-echoed pricing context, used only when the server-held order
	// record has expired.
	ShowID string
	Seats  []string
	UserID string
}

// Confirm turns a completed gateway payment into a committed booking.
//
// It verifies the payment's signature first and performs no state change on
// failure. It then re-checks seat availability (seats may have been claimed
// since the order was created) and commits the booking record together with
// the seat grants in one transaction, so a conflict or crash at any point
// leaves both stores unchanged. At most one confirmation ever wins a given
// seat; all others observe a SeatConflictError.
func (e *Engine) Confirm(ctx context.Context, params ConfirmParams) (*domain.Booking, error) {
	err := e.gateway.VerifySignature(params.OrderID, params.PaymentID, params.Signature)
	if err != nil {
		return nil, err
	}

	showID, seats, amount, err := e.resolveOrderContext(ctx, params)
	if err != nil {
		return nil, err
	}

	taken, err := e.shows.SeatsTaken(ctx, showID, seats)
	if err != nil {
		return nil, fmt.Errorf("failed to check seat availability: %w", err)
	}
	if len(taken) > 0 {
		return nil, &domain.SeatConflictError{Seats: taken}
	}

	booking := &domain.Booking{
		ID:               newBookingID(),
		UserID:           params.UserID,
		ShowID:           showID,
		Seats:            seats,
		Amount:           amount,
		IsPaid:           true,
		PaymentMethod:    domain.PaymentMethodRazorpay,
		PaymentStatus:    domain.PaymentStatusCompleted,
		GatewayOrderID:   params.OrderID,
		GatewayPaymentID: params.PaymentID,
	}

	if err = e.createBooking(ctx, booking, showID, seats); err != nil {
		return nil, err
	}

	// Best effort: the order context has served its purpose.
	if err = e.orders.Delete(ctx, params.OrderID); err != nil {
		e.logger.Warn("failed to delete order context", "order_id", params.OrderID, "error", err)
	}

	e.logger.Info("booking committed",
		"booking_id", booking.ID, "show_id", showID, "user_id", params.UserID, "seats", seats)

	return booking, nil
}

// resolveOrderContext prefers the server-held record written at Initiate
// time. Only when that record has expired does it fall back to the
// client-echoed show and seats, with the amount re-derived from the ledger
// price rather than trusted from the client.
func (e *Engine) resolveOrderContext(
	ctx context.Context,
	params ConfirmParams) (string, []string, decimal.Decimal, error) {

	orderCtx, err := e.orders.Get(ctx, params.OrderID)
	if err == nil {
		if orderCtx.UserID != params.UserID {
			e.logger.Warn("order confirmed by a different user than it was created for",
				"order_id", params.OrderID, "user_id", params.UserID)
			return "", nil, decimal.Zero, domain.ErrPaymentUnverified
		}

		return orderCtx.ShowID, orderCtx.Seats, orderCtx.Amount, nil
	}

	if !errors.Is(err, domain.ErrOrderNotFound) {
		return "", nil, decimal.Zero, fmt.Errorf("failed to load order context: %w", err)
	}

	if err = domain.ValidateSeatLabels(params.Seats); err != nil {
		return "", nil, decimal.Zero, err
	}

	show, err := e.shows.GetById(ctx, params.ShowID)
	if err != nil {
		return "", nil, decimal.Zero, err
	}

	return show.ID, params.Seats, show.PriceFor(len(params.Seats)), nil
}

func (e *Engine) createBooking(ctx context.Context, booking *domain.Booking, showID string, seats []string) error {
	for attempt := 1; ; attempt++ {
		err := e.bookings.CreateWithSeats(ctx, booking)
		if err == nil {
			return nil
		}

		if errors.Is(err, domain.ErrDuplicateBookingID) && attempt < maxCreateAttempts {
			booking.ID = newBookingID()
			continue
		}

		if errors.Is(err, domain.ErrSeatConflict) {
			return e.seatConflict(ctx, showID, seats)
		}

		return fmt.Errorf("failed to create booking: %w", err)
	}
}

// seatConflict names the losing seats after a commit-time unique violation.
// If the follow-up read fails the full request set is reported instead.
func (e *Engine) seatConflict(ctx context.Context, showID string, seats []string) error {
	taken, err := e.shows.SeatsTaken(ctx, showID, seats)
	if err != nil || len(taken) == 0 {
		taken = seats
	}

	return &domain.SeatConflictError{Seats: taken}
}

func newBookingID() string {
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")

	return fmt.Sprintf("BK%d-%s", time.Now().UnixMilli(), suffix)
}

func newReceipt() string {
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")

	return fmt.Sprintf("rcpt-%s", suffix)
}
