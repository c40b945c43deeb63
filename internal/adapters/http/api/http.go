// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/ratecards/internal/adapters/repository"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Trigger starts a pipeline run in the background.
	Trigger(ctx context.Context) (*repository.Run, error)

	// Store exposes the recorded runs and their datasets.
	Store() repository.Store
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	runsHandler      *RunsHandler
	rateCardsHandler *RateCardsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		runsHandler:      NewRunsHandler(deps),
		rateCardsHandler: NewRateCardsHandler(deps.Store()),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /runs", MetricsMiddleware(s.runsHandler.HandleTrigger, "runs"))
	mux.HandleFunc("GET /runs", MetricsMiddleware(s.runsHandler.HandleList, "runs"))
	mux.HandleFunc("GET /runs/latest", MetricsMiddleware(s.runsHandler.HandleLatest, "runs_latest"))
	mux.HandleFunc("GET /runs/{id}", MetricsMiddleware(s.runsHandler.HandleGet, "run"))

	mux.HandleFunc("GET /ratecards", MetricsMiddleware(s.rateCardsHandler.HandleSingle, "ratecards"))
	mux.HandleFunc("GET /ratecards/ranges", MetricsMiddleware(s.rateCardsHandler.HandleRanges, "ratecards_ranges"))
	mux.HandleFunc("GET /ratecards/gold", MetricsMiddleware(s.rateCardsHandler.HandleGold, "ratecards_gold"))
	mux.HandleFunc("GET /benchmark", MetricsMiddleware(s.rateCardsHandler.HandleBenchmark, "benchmark"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError maps run store failures to a status code.
func writeStoreError(w http.ResponseWriter, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNoRun)
}

func parseRunID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errors.Join(ErrBadRequest, err)
	}
	return id, nil
}
