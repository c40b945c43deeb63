package extract

import "errors"

// Sentinel kinds for extraction.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrUnknownEngine     = errors.New("unknown extraction engine")
	ErrNoCommand         = errors.New("tabula command not configured")
)
