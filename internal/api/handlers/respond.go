package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/contracts"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondAggregateError maps aggregate service errors to HTTP statuses
func respondAggregateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, aggregate.ErrInvalidSelection):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, aggregate.ErrNoDataset):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Failed to compute aggregate")
	}
}

// parseSelection reads repeated platform/genre and from/to query parameters.
// Values are taken whole, so names containing commas stay selectable.
// Missing bounds default to the normalization window.
func parseSelection(r *http.Request) (contracts.FilterSelection, error) {
	q := r.URL.Query()
	sel := contracts.DefaultSelection()

	sel.Platforms = queryValues(q["platform"])
	sel.Genres = queryValues(q["genre"])

	var err error
	if sel.Years.Min, err = intParam(q.Get("from"), sel.Years.Min); err != nil {
		return sel, fmt.Errorf("invalid 'from': %w", err)
	}
	if sel.Years.Max, err = intParam(q.Get("to"), sel.Years.Max); err != nil {
		return sel, fmt.Errorf("invalid 'to': %w", err)
	}

	if err := sel.Validate(); err != nil {
		return sel, err
	}
	return sel, nil
}

// decodeSelection reads a JSON FilterSelection body; an empty body is the default selection
func decodeSelection(r *http.Request) (contracts.FilterSelection, error) {
	var sel contracts.FilterSelection

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sel); err != nil && !errors.Is(err, io.EOF) {
		return sel, fmt.Errorf("invalid selection body: %w", err)
	}

	sel = sel.WithDefaults()
	if err := sel.Validate(); err != nil {
		return sel, err
	}
	return sel, nil
}

func queryValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
