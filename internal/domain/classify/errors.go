package classify

import "errors"

// Sentinel kinds for signature registration.
var (
	ErrInvalidSignature   = errors.New("invalid table signature")
	ErrDuplicateSignature = errors.New("duplicate table signature")
	ErrUnknownSignature   = errors.New("unknown table signature")
)
