package merchant

import "time"

// Merchant is a store operator account. RFC is the tax id printed on the
// invoices the merchant issues.
type Merchant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash
	RFC       string    `json:"rfc"`
	CreatedAt time.Time `json:"created_at"`
}
