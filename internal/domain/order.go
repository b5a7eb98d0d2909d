package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentOrder is the system's view of an order created on the remote
// gateway: an opaque token plus the amount (in minor currency units) and
// currency it was created for. The gateway owns the rest of its lifecycle.
type PaymentOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// OrderContext is the server-held record of what a payment order was priced
// for. It is written when the order is created and read back at verification
// time instead of re-trusting the seat list the client sends along with the
// gateway's confirmation payload.
type OrderContext struct {
	OrderID  string          `json:"orderId"`
	ShowID   string          `json:"showId"`
	Seats    []string        `json:"seats"`
	UserID   string          `json:"userId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type OrderContextStore interface {
	Put(ctx context.Context, order OrderContext) error

	// Get fails with ErrOrderNotFound once the record's TTL has elapsed,
	// mirroring the gateway-side expiry of unconfirmed orders.
	Get(ctx context.Context, orderID string) (*OrderContext, error)

	Delete(ctx context.Context, orderID string) error
}
