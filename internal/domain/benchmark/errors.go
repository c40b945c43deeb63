package benchmark

import "errors"

// Sentinel kinds for benchmark statistics.
var (
	ErrNoRates  = errors.New("no rates to describe")
	ErrNoSpread = errors.New("rates have zero spread")
	ErrSamples  = errors.New("invalid sample count")
	ErrBins     = errors.New("invalid histogram bins")
)
