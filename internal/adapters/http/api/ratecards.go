package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/ratecards/internal/adapters/repository"
	"github.com/okian/ratecards/internal/domain/model"
)

// RateCardsHandler serves the datasets of the latest successful run.
type RateCardsHandler struct {
	store repository.Store
}

// NewRateCardsHandler creates a new rate cards handler.
func NewRateCardsHandler(store repository.Store) *RateCardsHandler {
	return &RateCardsHandler{store: store}
}

func (h *RateCardsHandler) latest(ctx context.Context) (*repository.Run, error) {
	run, err := h.store.LatestSucceeded(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoRun, err)
	}
	return run, nil
}

// locationFilter reads ?location=. An empty value matches every row.
func locationFilter(r *http.Request) (model.LocationType, error) {
	switch loc := model.LocationType(r.URL.Query().Get("location")); loc {
	case "", model.Onshore, model.Offshore:
		return loc, nil
	default:
		return "", fmt.Errorf("%w: location must be onshore or offshore", ErrBadRequest)
	}
}

// HandleSingle handles GET /ratecards?location=onshore|offshore.
func (h *RateCardsHandler) HandleSingle(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.latest(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	rows := make([]model.NormalizedRow, 0, len(run.Single))
	for _, row := range run.Single {
		if loc == "" || row.LocationType == loc {
			rows = append(rows, row)
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleRanges handles GET /ratecards/ranges.
func (h *RateCardsHandler) HandleRanges(w http.ResponseWriter, r *http.Request) {
	run, err := h.latest(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	rows := run.Ranges
	if rows == nil {
		rows = []model.PriceRangeRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGold handles GET /ratecards/gold.
func (h *RateCardsHandler) HandleGold(w http.ResponseWriter, r *http.Request) {
	run, err := h.latest(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if run.Gold == nil {
		writeError(w, http.StatusNotFound, "not_found", ErrNoRun)
		return
	}
	writeJSON(w, http.StatusOK, run.Gold)
}

// HandleBenchmark handles GET /benchmark.
func (h *RateCardsHandler) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	run, err := h.latest(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if run.Benchmark == nil {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: benchmark disabled", ErrNoRun))
		return
	}
	writeJSON(w, http.StatusOK, run.Benchmark)
}
