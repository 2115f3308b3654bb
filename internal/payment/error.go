package payment

import "errors"

var (
	ErrDeclined        = errors.New("payment declined")
	ErrPaymentNotFound = errors.New("payment not found")
)
