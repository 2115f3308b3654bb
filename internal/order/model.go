package order

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Order captures a priced sale. Unit prices are snapshotted at order time and
// never recomputed from the catalog; Total is the sum of line extensions.
type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	MerchantID int64       `json:"merchant_id"`
	Status     OrderStatus `json:"status"`
	Total      int64       `json:"total"` // centavos
	CreatedAt  time.Time   `json:"created_at"`
	PaidAt     *time.Time  `json:"paid_at,omitempty"`
	Items      []OrderItem `json:"items"`
}

type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"` // centavos, captured at order time
}

// Subtotal is the line extension in centavos.
func (i OrderItem) Subtotal() int64 {
	return i.Quantity * i.UnitPrice
}

// legal lifecycle transitions; paid and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
