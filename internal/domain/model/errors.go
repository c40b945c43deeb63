package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for pipeline errors. The typed errors below unwrap to these.
var (
	ErrExtraction          = errors.New("extraction failed")
	ErrUnrecognizedLayout  = errors.New("unrecognized rate card layout")
	ErrShoreClassification = errors.New("shore classification failed")
	ErrPivotConflict       = errors.New("pivot conflict")
	ErrTooManyTables       = errors.New("more than two rate card tables in document")
	ErrPriceFormat         = errors.New("unexpected price format")
	ErrUnknownDocument     = errors.New("document missing from dimension table")
)

// ExtractionError reports a document the extraction engine could not read.
// The document is skipped; sibling documents continue.
type ExtractionError struct {
	DocumentID string
	Path       string
	Cause      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.DocumentID, e.Cause)
}

// Unwrap exposes both the sentinel and the engine cause.
func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Cause} }

// UnrecognizedLayoutError reports a table whose shape no rule understands.
type UnrecognizedLayoutError struct {
	DocumentID string
	Table      int
	Cell       string
	Reason     string
}

func (e *UnrecognizedLayoutError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("%s: document %s table %d: %s (cell %q)", ErrUnrecognizedLayout, e.DocumentID, e.Table, e.Reason, e.Cell)
	}
	return fmt.Sprintf("%s: document %s table %d: %s", ErrUnrecognizedLayout, e.DocumentID, e.Table, e.Reason)
}

func (e *UnrecognizedLayoutError) Unwrap() error { return ErrUnrecognizedLayout }

// ShoreClassificationError reports a two-table document whose onshore and
// offshore tables cannot be told apart.
type ShoreClassificationError struct {
	DocumentID string
	Reason     string
}

func (e *ShoreClassificationError) Error() string {
	return fmt.Sprintf("%s: document %s: %s", ErrShoreClassification, e.DocumentID, e.Reason)
}

func (e *ShoreClassificationError) Unwrap() error { return ErrShoreClassification }

// PivotConflictError reports a duplicated pivot key.
type PivotConflictError struct {
	RateCardID   int
	Company      string
	LocationType LocationType
	LevelName    string
}

func (e *PivotConflictError) Error() string {
	return fmt.Sprintf("%s: duplicate (%d, %s, %s, %s)", ErrPivotConflict, e.RateCardID, e.Company, e.LocationType, e.LevelName)
}

func (e *PivotConflictError) Unwrap() error { return ErrPivotConflict }
