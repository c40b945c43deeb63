// Package repository keeps pipeline runs and their datasets.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ratecards/internal/domain/benchmark"
	"github.com/okian/ratecards/internal/domain/model"
)

// Status is the lifecycle state of a run.
type Status string

// Run states.
const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Failure is one document that stopped a run or was skipped.
type Failure struct {
	DocumentID string `json:"document_id"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
}

// Run is the record of one pipeline execution.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	Status     Status     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	Documents int       `json:"documents"`
	Skipped   []Failure `json:"skipped,omitempty"`
	Failures  []Failure `json:"failures,omitempty"`
	Error     string    `json:"error,omitempty"`

	Single    []model.NormalizedRow `json:"-"`
	Ranges    []model.PriceRangeRow `json:"-"`
	Gold      *model.GoldTable      `json:"-"`
	Benchmark *benchmark.Report     `json:"-"`
}

// Store provides read/write access to runs.
type Store interface {
	// Save inserts the run or replaces the one with the same id.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Run, error)

	// Latest returns the most recently started run or ErrNotFound.
	Latest(ctx context.Context) (*Run, error)

	// LatestSucceeded returns the most recent run that produced datasets.
	LatestSucceeded(ctx context.Context) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	Count(ctx context.Context) int
}
