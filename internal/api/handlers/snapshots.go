package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/snapshot"
	"github.com/wonny/gamedash/pkg/logger"
)

// SnapshotStore persists dashboard snapshots
type SnapshotStore interface {
	Save(ctx context.Context, s *snapshot.Snapshot) error
	Get(ctx context.Context, id string) (*snapshot.Snapshot, error)
	List(ctx context.Context, limit int) ([]snapshot.Snapshot, error)
}

// SnapshotHandler saves and lists dashboard snapshots.
// With a nil store every endpoint answers 503.
type SnapshotHandler struct {
	store   SnapshotStore
	service *aggregate.Service
	logger  *logger.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(store SnapshotStore, service *aggregate.Service, log *logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		store:   store,
		service: service,
		logger:  log,
	}
}

func (h *SnapshotHandler) available(w http.ResponseWriter) bool {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Snapshot persistence is disabled (DATABASE_URL not set)")
		return false
	}
	return true
}

// Create computes the aggregate of the body selection and stores it
// POST /api/snapshots
func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	sel, err := decodeSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Aggregate(r.Context(), sel)
	if err != nil {
		respondAggregateError(w, err)
		return
	}

	s := snapshot.FromResult(result)
	if err := h.store.Save(r.Context(), s); err != nil {
		h.logger.WithError(err).Error("Failed to save snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to save snapshot")
		return
	}

	respondJSON(w, http.StatusCreated, s)
}

// List returns the newest snapshots
// GET /api/snapshots?limit=20
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit'")
			return
		}
		limit = n
	}

	snapshots, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshots")
		respondError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}

// Get returns one snapshot
// GET /api/snapshots/{id}
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	s, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, snapshot.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to get snapshot")
		return
	}

	respondJSON(w, http.StatusOK, s)
}
