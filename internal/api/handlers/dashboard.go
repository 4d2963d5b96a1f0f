package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/dashboard"
	"github.com/wonny/gamedash/pkg/logger"
	"github.com/wonny/gamedash/pkg/redis"
)

// DashboardHandler serves the dataset, aggregates, dashboard views and charts
// ⭐ SSOT: dashboard API handlers live in this struct only
type DashboardHandler struct {
	service *aggregate.Service
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler. cache may be nil.
func NewDashboardHandler(service *aggregate.Service, cache *redis.Cache, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		cache:   cache,
		logger:  log,
	}
}

// GetDataset returns metadata and load statistics of the current dataset
// GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.service.Current()
	if ds == nil {
		respondError(w, http.StatusServiceUnavailable, aggregate.ErrNoDataset.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        ds.ID,
		"source":    ds.Source,
		"loaded_at": ds.LoadedAt,
		"records":   ds.Len(),
		"stats":     ds.Stats,
	})
}

// GetOptions returns the dropdown options and year marks
// GET /api/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	ds := h.service.Current()
	if ds == nil {
		respondError(w, http.StatusServiceUnavailable, aggregate.ErrNoDataset.Error())
		return
	}

	var opts dashboard.Options
	err := h.cache.GetOrSet(r.Context(), redis.OptionsKey(ds.ID), &opts, redis.TTLMedium, func() (interface{}, error) {
		return dashboard.BuildOptions(ds), nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to build options")
		respondError(w, http.StatusInternalServerError, "Failed to build options")
		return
	}

	respondJSON(w, http.StatusOK, opts)
}

// GetAggregate computes the aggregate for the query selection
// GET /api/aggregate?platform=PS4&platform=PC&genre=Action&from=2005&to=2015
func (h *DashboardHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeAggregate(w, r.Context(), sel)
}

// PostAggregate computes the aggregate for a JSON selection body
// POST /api/aggregate
func (h *DashboardHandler) PostAggregate(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeAggregate(w, r.Context(), sel)
}

func (h *DashboardHandler) writeAggregate(w http.ResponseWriter, ctx context.Context, sel contracts.FilterSelection) {
	result, err := h.service.Aggregate(ctx, sel)
	if err != nil {
		respondAggregateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetDashboard returns every widget of the dashboard for the query selection
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Aggregate(r.Context(), sel)
	if err != nil {
		respondAggregateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard.BuildView(result))
}

// GetChart renders one dashboard chart as SVG
// GET /api/charts/{chart}.svg
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chart, err := dashboard.ParseChart(mux.Vars(r)["chart"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	sel, err := parseSelection(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Aggregate(r.Context(), sel)
	if err != nil {
		respondAggregateError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := dashboard.Render(&buf, chart, dashboard.BuildView(result)); err != nil {
		if errors.Is(err, dashboard.ErrUnknownChart) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).WithField("chart", string(chart)).Error("Failed to render chart")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
