package repository

import "errors"

// Sentinel kinds for run store errors.
var (
	ErrNotFound     = errors.New("run not found")
	ErrInvalidLimit = errors.New("invalid run list limit")
	ErrInvalidRun   = errors.New("invalid run")

	ErrRunInProgress = errors.New("a run is already in progress")
)
