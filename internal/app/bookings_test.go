package app

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetUserBookingsHandler(t *testing.T) {
	t.Run("returns the caller's bookings", func(t *testing.T) {
		app, m := newTestApplication(t)

		m.bookings.On("GetAllByUserId", mock.Anything, "user-1").Return([]domain.Booking{
			{
				ID:            "BK1-abc",
				UserID:        "user-1",
				ShowID:        "show-1",
				Seats:         []string{"A1", "A2"},
				Amount:        decimal.NewFromInt(500),
				IsPaid:        true,
				PaymentMethod: domain.PaymentMethodRazorpay,
				PaymentStatus: domain.PaymentStatusCompleted,
			},
		}, nil)

		rr := authedRequest(t, app, http.MethodGet, "/bookings/user", "")

		require.Equal(t, http.StatusOK, rr.Code)

		var resp BookingsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		assert.True(t, resp.Success)
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, "BK1-abc", resp.Bookings[0].BookingId)
		assert.Equal(t, []string{"A1", "A2"}, resp.Bookings[0].BookedSeats)
		assert.True(t, resp.Bookings[0].IsPaid)
	})

	t.Run("returns an empty list for a user with no bookings", func(t *testing.T) {
		app, m := newTestApplication(t)

		m.bookings.On("GetAllByUserId", mock.Anything, "user-1").Return([]domain.Booking{}, nil)

		rr := authedRequest(t, app, http.MethodGet, "/bookings/user", "")

		require.Equal(t, http.StatusOK, rr.Code)

		var resp BookingsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(t, resp.Bookings)
	})
}

func TestGetUserBookingByIdHandler(t *testing.T) {
	t.Run("returns the booking", func(t *testing.T) {
		app, m := newTestApplication(t)

		m.bookings.On("GetByBookingIdAndUserId", mock.Anything, "BK1-abc", "user-1").
			Return(&domain.Booking{ID: "BK1-abc", UserID: "user-1", ShowID: "show-1"}, nil)

		rr := authedRequest(t, app, http.MethodGet, "/bookings/user/BK1-abc", "")

		require.Equal(t, http.StatusOK, rr.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "BK1-abc", resp.Booking.BookingId)
	})

	t.Run("returns 404 when the booking belongs to another user", func(t *testing.T) {
		app, m := newTestApplication(t)

		m.bookings.On("GetByBookingIdAndUserId", mock.Anything, "BK1-abc", "user-1").
			Return(nil, domain.ErrBookingNotFound)

		rr := authedRequest(t, app, http.MethodGet, "/bookings/user/BK1-abc", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteUserBookingsHandler(t *testing.T) {
	app, m := newTestApplication(t)

	m.bookings.On("DeleteAllByUserId", mock.Anything, "user-1").Return(int64(2), nil)

	rr := authedRequest(t, app, http.MethodDelete, "/bookings/user", "")

	require.Equal(t, http.StatusOK, rr.Code)

	var resp DeleteBookingsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.DeletedCount)
}
