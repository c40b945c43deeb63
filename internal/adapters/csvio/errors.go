package csvio

import "errors"

// Sentinel kinds for dataset files.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrBadRecord     = errors.New("malformed record")
)
