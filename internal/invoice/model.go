package invoice

import "time"

// Fiscal defaults for the issuing regime.
const (
	DefaultSeries       = "A"
	DefaultPlaceOfIssue = "12345"
	PaymentMethodPUE    = "PUE"
	PaymentFormCard     = "03"
)

// Invoice is the immutable record produced by settlement. Line items are a
// value copy of the order items at issuance, so later catalog edits cannot
// alter a historical invoice. Only StampedAt may change after creation.
type Invoice struct {
	ID            int64         `json:"id"`
	OrderID       int64         `json:"order_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Folio         int64         `json:"folio"`
	Series        string        `json:"series"`
	FiscalUUID    string        `json:"fiscal_uuid"`
	PlaceOfIssue  string        `json:"place_of_issue"`
	PaymentMethod string        `json:"payment_method"`
	PaymentForm   string        `json:"payment_form"`
	Total         int64         `json:"total"` // centavos
	IssuedAt      time.Time     `json:"issued_at"`
	StampedAt     *time.Time    `json:"stamped_at,omitempty"`
	Items         []InvoiceItem `json:"items"`
}

type InvoiceItem struct {
	ID        int64 `json:"id"`
	InvoiceID int64 `json:"invoice_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"` // centavos, copied from the order line
}

func (i InvoiceItem) Subtotal() int64 {
	return i.Quantity * i.UnitPrice
}

// Party is the customer or merchant identity snapshot handed to the renderer.
type Party struct {
	Name      string `json:"name"`
	RFC       string `json:"rfc"`
	TaxRegime string `json:"tax_regime,omitempty"`
}
