package normalize

import "errors"

// Sentinel kinds for normalization.
var (
	ErrSynonymMode = errors.New("unknown synonym mode")
)
