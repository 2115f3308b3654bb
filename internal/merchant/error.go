package merchant

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMerchantNotFound   = errors.New("merchant not found")
)
