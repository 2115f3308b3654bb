package payment

import "time"

type PaymentStatus string

const (
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusApproved   PaymentStatus = "APPROVED"
	StatusDeclined   PaymentStatus = "DECLINED"
)

const MethodCreditCard = "CREDIT_CARD"

// Payment is one capture attempt against an order. An order has at most one
// approved payment; further attempts on a paid order are rejected upstream.
type Payment struct {
	ID        int64         `json:"id"`
	OrderID   int64         `json:"order_id"`
	Method    string        `json:"method"`
	Amount    int64         `json:"amount"` // centavos, always equals the order total
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Instrument carries the card data of a settlement request. All fields are
// opaque strings except number and CVV, which are validated. Never persisted.
type Instrument struct {
	CardNumber string
	CVV        string
	Expiry     string
	HolderName string
}

type CaptureRequest struct {
	OrderID    int64
	Amount     int64
	Instrument Instrument
}
