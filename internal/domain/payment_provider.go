package domain

import "context"

// PaymentProvider abstracts the remote payment gateway. Implementations must
// fail closed: missing credentials yield ErrGatewayMisconfigured, never a
// fabricated order or an automatic verification pass.
type PaymentProvider interface {
	// CreateOrder registers an order for amount (minor currency units) on
	// the gateway. The call is bounded by the context deadline and surfaces
	// expiry as ErrGatewayUnavailable; it is never retried here.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*PaymentOrder, error)

	// VerifySignature checks the gateway's signature over orderID|paymentID.
	// A mismatch yields ErrPaymentUnverified.
	VerifySignature(orderID, paymentID, signature string) error
}
