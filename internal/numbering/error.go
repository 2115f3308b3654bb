package numbering

import "errors"

var ErrNumberingExhausted = errors.New("numbering allocation exhausted")
