package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/presets"
	"github.com/wonny/gamedash/pkg/logger"
)

// PresetHandler serves named filter presets
type PresetHandler struct {
	presets *presets.Set
	service *aggregate.Service
	logger  *logger.Logger
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(set *presets.Set, service *aggregate.Service, log *logger.Logger) *PresetHandler {
	return &PresetHandler{
		presets: set,
		service: service,
		logger:  log,
	}
}

// List returns every preset
// GET /api/presets
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hash":    h.presets.Hash,
		"presets": h.presets.Presets,
	})
}

// Get returns one preset together with its aggregate
// GET /api/presets/{name}
func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	preset, ok := h.presets.Get(name)
	if !ok {
		respondError(w, http.StatusNotFound, "Preset not found: "+name)
		return
	}

	result, err := h.service.Aggregate(r.Context(), preset.Selection)
	if err != nil {
		respondAggregateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"preset":    preset,
		"aggregate": result,
	})
}
