package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Booking struct {
	BookingId     string          `json:"bookingId"`
	ShowId        string          `json:"showId"`
	UserId        string          `json:"userId"`
	BookedSeats   []string        `json:"bookedSeats"`
	Amount        decimal.Decimal `json:"amount"`
	IsPaid        bool            `json:"isPaid"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	OrderId       string          `json:"orderId,omitempty"`
	PaymentId     string          `json:"paymentId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type BookingsResponse struct {
	Success  bool      `json:"success"`
	Bookings []Booking `json:"bookings"`
}

type BookingResponse struct {
	Success bool    `json:"success"`
	Booking Booking `json:"booking"`
}

type DeleteBookingsResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	userID := app.contextGetUserId(r)

	bookings, err := app.bookingRepo.GetAllByUserId(r.Context(), userID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := BookingsResponse{
		Success:  true,
		Bookings: toApiBookings(bookings),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetUserBookingByIdHandler(w http.ResponseWriter, r *http.Request) {
	userID := app.contextGetUserId(r)
	bookingID := chi.URLParam(r, "bookingId")

	booking, err := app.bookingRepo.GetByBookingIdAndUserId(r.Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := BookingResponse{
		Success: true,
		Booking: toApiBooking(*booking),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// DeleteUserBookingsHandler clears the caller's booking history. Seats stay
// occupied on their shows: history and the seat ledger are independent facts
// once a booking has committed.
func (app *Application) DeleteUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	userID := app.contextGetUserId(r)

	count, err := app.bookingRepo.DeleteAllByUserId(r.Context(), userID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Info("deleted booking history", "user_id", userID, "count", count)

	resp := DeleteBookingsResponse{
		Success:      true,
		DeletedCount: count,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiBookings(bookings []domain.Booking) []Booking {
	apiBookings := make([]Booking, len(bookings))

	for i, v := range bookings {
		apiBookings[i] = toApiBooking(v)
	}

	return apiBookings
}

func toApiBooking(booking domain.Booking) Booking {
	return Booking{
		BookingId:     booking.ID,
		ShowId:        booking.ShowID,
		UserId:        booking.UserID,
		BookedSeats:   booking.Seats,
		Amount:        booking.Amount,
		IsPaid:        booking.IsPaid,
		PaymentMethod: booking.PaymentMethod,
		PaymentStatus: string(booking.PaymentStatus),
		OrderId:       booking.GatewayOrderID,
		PaymentId:     booking.GatewayPaymentID,
		CreatedAt:     booking.CreatedAt,
	}
}
