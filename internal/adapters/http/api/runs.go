package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/ratecards/internal/adapters/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// RunsHandler starts runs and reports on them.
type RunsHandler struct {
	deps Dependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleTrigger handles POST /runs. The run continues after the response.
func (h *RunsHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	run, err := h.deps.Trigger(r.Context())
	switch {
	case errors.Is(err, repository.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run_in_progress", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.Header().Set("Location", "/runs/"+run.ID.String())
	writeJSON(w, http.StatusAccepted, run)
}

// HandleList handles GET /runs?limit=N.
func (h *RunsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("limit must be between 1 and 100"))
			return
		}
		limit = n
	}
	runs, err := h.deps.Store().List(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleLatest handles GET /runs/latest.
func (h *RunsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	run, err := h.deps.Store().Latest(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleGet handles GET /runs/{id}.
func (h *RunsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseRunID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.deps.Store().Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
