package app

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cineseat/cineseat/internal/mailer"
	"github.com/cineseat/cineseat/internal/mocks"
	"github.com/cineseat/cineseat/internal/reservation"
	appvalidator "github.com/cineseat/cineseat/internal/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

type testMocks struct {
	shows    *mocks.MockShowRepo
	bookings *mocks.MockBookingRepo
	orders   *mocks.MockOrderStore
	gateway  *mocks.MockPaymentProvider
	mailer   *mailer.MockMailer
}

// newTestApplication wires an Application around mocks, bypassing New() so no
// database or Redis connection is needed.
func newTestApplication(t *testing.T) (*Application, testMocks) {
	t.Helper()

	m := testMocks{
		shows:    new(mocks.MockShowRepo),
		bookings: new(mocks.MockBookingRepo),
		orders:   new(mocks.MockOrderStore),
		gateway:  new(mocks.MockPaymentProvider),
		mailer:   mailer.NewMockMailer(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &Application{
		config: Config{
			Env:     "test",
			Auth:    AuthConfig{JWTSecret: testJWTSecret},
			Gateway: GatewayConfig{Currency: "INR"},
		},
		logger:          logger,
		validator:       appvalidator.NewValidator(),
		mailer:          m.mailer,
		showRepo:        m.shows,
		bookingRepo:     m.bookings,
		orderStore:      m.orders,
		paymentProvider: m.gateway,
	}

	app.engine = reservation.NewEngine(m.shows, m.bookings, m.orders, m.gateway, logger, "INR")

	return app, m
}

func signTestToken(t *testing.T, userID, email, secret string) string {
	t.Helper()

	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func doRequest(t *testing.T, app *Application, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	app.Routes().ServeHTTP(rr, req)

	return rr
}

func authedRequest(t *testing.T, app *Application, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	token := signTestToken(t, "user-1", "user1@example.com", testJWTSecret)

	return doRequest(t, app, method, path, token, body)
}
