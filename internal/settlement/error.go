package settlement

import "errors"

var (
	ErrInvalidInstrument = errors.New("invalid payment instrument")
	ErrOrderNotPaid      = errors.New("order must be paid before invoicing")
	ErrStoreUnavailable  = errors.New("store temporarily unavailable")
)
