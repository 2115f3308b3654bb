package product

import "time"

// Product is a catalog row. Stock is a signed count: settlement decrements it
// without a sufficiency check, so a negative value means oversell that is
// reconciled out of band.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"` // centavos
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}
