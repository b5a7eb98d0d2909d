package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/cineseat/cineseat/internal/payment"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// stubGateway keeps the real HMAC verification but issues order ids locally
// instead of calling out to Razorpay.
type stubGateway struct {
	*payment.RazorpayProvider
	counter atomic.Int64
}

func newStubGateway(secret string) *stubGateway {
	return &stubGateway{
		RazorpayProvider: payment.NewRazorpayProvider("test-key", secret, time.Second),
	}
}

func (g *stubGateway) CreateOrder(
	ctx context.Context,
	amount int64,
	currency,
	receipt string) (*domain.PaymentOrder, error) {

	return &domain.PaymentOrder{
		ID:       fmt.Sprintf("order_test_%d", g.counter.Add(1)),
		Amount:   amount,
		Currency: currency,
	}, nil
}

func signPayment(orderID, paymentID string) string {
	return payment.Sign(orderID, paymentID, testGatewaySecret)
}

func signToken(t testing.TB, userID, email string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	return token
}

func authHeaders(t testing.TB, userID, email string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + signToken(t, userID, email)}
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "createdAt" || k == "bookingId" || k == "id"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func (s *BaseSuite) seedShow(t testing.TB, price int64, startTime time.Time) *domain.Show {
	t.Helper()

	show := &domain.Show{
		ID:         "show-" + uuid.NewString(),
		MovieTitle: "Blade Runner",
		TheaterID:  "theater-1",
		StartTime:  startTime,
		Price:      decimal.NewFromInt(price),
	}

	require.NoError(t, s.shows.Create(context.Background(), show))

	return show
}

type orderPayload struct {
	Id       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// createOrder drives POST /payments/order and returns the gateway order.
func (s *BaseSuite) createOrder(t testing.TB, userID, showID string, seats []string) orderPayload {
	t.Helper()

	body := fmt.Sprintf(`{"showId": %q, "bookedSeats": [%s]}`, showID, quoteJoin(seats))

	req := prepareRequest(http.MethodPost, "/payments/order", strings.NewReader(body),
		authHeaders(t, userID, userID+"@example.com"))

	rec := httptest.NewRecorder()
	s.app.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool         `json:"success"`
		Order   orderPayload `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	return resp.Order
}

// verifyPayment drives POST /payments/verify with a correctly signed payload
// and returns the raw response for the caller to assert on.
func (s *BaseSuite) verifyPayment(t testing.TB, userID, orderID, showID string, seats []string) *httptest.ResponseRecorder {
	t.Helper()

	paymentID := "pay_" + uuid.NewString()

	body := fmt.Sprintf(
		`{"orderId": %q, "paymentId": %q, "signature": %q, "showId": %q, "bookedSeats": [%s]}`,
		orderID, paymentID, signPayment(orderID, paymentID), showID, quoteJoin(seats))

	req := prepareRequest(http.MethodPost, "/payments/verify", strings.NewReader(body),
		authHeaders(t, userID, userID+"@example.com"))

	rec := httptest.NewRecorder()
	s.app.Routes().ServeHTTP(rec, req)

	return rec
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, v := range items {
		quoted[i] = fmt.Sprintf("%q", v)
	}

	return strings.Join(quoted, ", ")
}
