package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	razorpay "github.com/razorpay/razorpay-go"
)

const defaultTimeout = 10 * time.Second

// RazorpayProvider creates orders on Razorpay and verifies completed
// payments. Verification recomputes the HMAC-SHA256 the gateway produces over
// "orderID|paymentID" with the shared key secret. With missing credentials
// every call fails closed with ErrGatewayMisconfigured; a fake order is never
// substituted.
type RazorpayProvider struct {
	keyID     string
	keySecret string
	timeout   time.Duration
	client    *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string, timeout time.Duration) *RazorpayProvider {
	p := &RazorpayProvider{
		keyID:     keyID,
		keySecret: keySecret,
		timeout:   timeout,
	}

	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}

	if keyID != "" && keySecret != "" {
		p.client = razorpay.NewClient(keyID, keySecret)
	}

	return p
}

func (p *RazorpayProvider) CreateOrder(
	ctx context.Context,
	amount int64,
	currency,
	receipt string) (*domain.PaymentOrder, error) {

	if p.client == nil {
		return nil, domain.ErrGatewayMisconfigured
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type orderResult struct {
		attrs map[string]interface{}
		err   error
	}

	// The SDK call is not context-aware, so it runs in its own goroutine and
	// the deadline is enforced here.
	resultCh := make(chan orderResult, 1)

	go func() {
		attrs, err := p.client.Order.Create(data, nil)
		resultCh <- orderResult{attrs: attrs, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, ctx.Err())
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, result.err)
		}

		orderID, _ := result.attrs["id"].(string)
		if orderID == "" {
			return nil, fmt.Errorf("%w: order response missing id", domain.ErrGatewayUnavailable)
		}

		return &domain.PaymentOrder{
			ID:       orderID,
			Amount:   amount,
			Currency: currency,
		}, nil
	}
}

func (p *RazorpayProvider) VerifySignature(orderID, paymentID, signature string) error {
	if p.keySecret == "" {
		return domain.ErrGatewayMisconfigured
	}

	expected := Sign(orderID, paymentID, p.keySecret)

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrPaymentUnverified
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 of "orderID|paymentID" under secret,
// matching the signature the gateway attaches to a completed payment.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))

	return hex.EncodeToString(mac.Sum(nil))
}
