package invoice

import "errors"

var (
	ErrInvoiceExists   = errors.New("invoice already exists for order")
	ErrInvoiceNotFound = errors.New("invoice not found")
)
