package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/cineseat/cineseat/internal/reservation"
)

type CreateOrderRequest struct {
	ShowId      string   `json:"showId" validate:"required"`
	BookedSeats []string `json:"bookedSeats" validate:"required,min=1,max=10,dive,seat_label"`
}

type Order struct {
	Id       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type OrderResponse struct {
	Success bool  `json:"success"`
	Order   Order `json:"order"`
}

type VerifyPaymentRequest struct {
	OrderId     string   `json:"orderId" validate:"required"`
	PaymentId   string   `json:"paymentId" validate:"required"`
	Signature   string   `json:"signature" validate:"required"`
	ShowId      string   `json:"showId" validate:"required"`
	BookedSeats []string `json:"bookedSeats" validate:"required,min=1,max=10,dive,seat_label"`
}

// CreatePaymentOrderHandler prices the requested seats server-side and
// registers a matching order on the payment gateway. No seats are reserved
// yet; the winner is decided when a verified payment commits.
func (app *Application) CreatePaymentOrderHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateOrderRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	order, err := app.engine.Initiate(r.Context(), input.ShowId, input.BookedSeats, userID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := OrderResponse{
		Success: true,
		Order: Order{
			Id:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
		},
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// VerifyPaymentHandler accepts the gateway's confirmation payload, lets the
// reservation engine verify and commit, and reports the booking. A verified
// payment can still lose the seats to a concurrent booking; that surfaces as
// a conflict listing the contested seats, and the charge must be refunded
// out-of-band.
func (app *Application) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var input VerifyPaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	booking, err := app.engine.Confirm(r.Context(), reservationConfirmParams(input, userID))
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	app.sendBookingConfirmation(app.contextGetUserEmail(r), booking)

	resp := BookingResponse{
		Success: true,
		Booking: toApiBooking(*booking),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// reservationErrorResponse maps the engine's typed outcomes onto HTTP
// responses. Misconfiguration is logged loudly for operators but surfaced to
// the user as a generic failure, never downgraded to success.
func (app *Application) reservationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var conflictErr *domain.SeatConflictError

	switch {
	case errors.Is(err, domain.ErrShowNotFound):
		app.notFoundResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrInvalidSeats):
		app.badRequestResponse(w, r, err)
	case errors.As(err, &conflictErr):
		app.seatConflictResponse(w, r, conflictErr.Seats)
	case errors.Is(err, domain.ErrPaymentUnverified):
		app.errorResponse(w, r, http.StatusBadRequest, "Payment verification failed")
	case errors.Is(err, domain.ErrGatewayUnavailable):
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusBadGateway, "Payment gateway is unavailable, please try again later")
	case errors.Is(err, domain.ErrGatewayMisconfigured):
		app.logger.Error("payment gateway keys are not configured", "method", r.Method, "uri", r.URL.RequestURI())
		app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func reservationConfirmParams(input VerifyPaymentRequest, userID string) reservation.ConfirmParams {
	return reservation.ConfirmParams{
		OrderID:   input.OrderId,
		PaymentID: input.PaymentId,
		Signature: input.Signature,
		ShowID:    input.ShowId,
		Seats:     input.BookedSeats,
		UserID:    userID,
	}
}

func (app *Application) sendBookingConfirmation(email string, booking *domain.Booking) {
	if email == "" {
		return
	}

	bookingID := booking.ID
	showID := booking.ShowID
	seats := booking.Seats
	amount := booking.Amount

	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		show, err := app.showRepo.GetById(ctx, showID)
		if err != nil {
			app.logger.Error("failed to load show for confirmation email", "show_id", showID, "error", err)
			return
		}

		data := map[string]any{
			"BookingID":  bookingID,
			"MovieTitle": show.MovieTitle,
			"StartTime":  show.StartTime.Format(time.RFC1123),
			"Seats":      strings.Join(seats, ", "),
			"Amount":     amount,
			"Currency":   app.config.Gateway.Currency,
		}

		err = app.mailer.Send(email, "booking_confirmation.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send booking confirmation email", "booking_id", bookingID, "error", err)
		}
	})
}
