package paymentgateway

import "context"

// Gateway wraps the external payment provider. Amounts are always in minor
// currency units.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	// VerifySignature checks the checkout signature over "orderID|paymentID".
	VerifySignature(orderID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the signature over the raw request bytes.
	VerifyWebhookSignature(rawBody []byte, signature string) bool
	// FetchPayment is best-effort enrichment and must never gate a transition.
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
	// PublicKey is the key id handed to clients to open checkout.
	PublicKey() string
}

type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

type PaymentDetails struct {
	ID       string
	OrderID  string
	Method   string
	Status   string
	Amount   int64
	Currency string
}
