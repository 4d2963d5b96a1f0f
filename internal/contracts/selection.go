package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
)

// YearRange is an inclusive [Min, Max] year interval
type YearRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// NormalizationWindow bounds the years kept at load time and the year control
var NormalizationWindow = YearRange{Min: 2000, Max: 2022}

// Contains reports whether year lies within the range, bounds included
func (r YearRange) Contains(year int) bool {
	return r.Min <= year && year <= r.Max
}

// Validate rejects inverted ranges
func (r YearRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("invalid year range: min %d > max %d", r.Min, r.Max)
	}
	return nil
}

// IsZero reports whether the range was never set
func (r YearRange) IsZero() bool {
	return r == YearRange{}
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// FilterSelection is the complete set of user filters.
// Empty Platforms or Genres means no filter on that dimension.
type FilterSelection struct {
	Platforms []string  `json:"platforms" yaml:"platforms"`
	Genres    []string  `json:"genres" yaml:"genres"`
	Years     YearRange `json:"years" yaml:"years"`
}

// DefaultSelection is the initial dashboard state: open filters over the full window
func DefaultSelection() FilterSelection {
	return FilterSelection{Years: NormalizationWindow}
}

// WithDefaults fills an unset year range with the normalization window
func (s FilterSelection) WithDefaults() FilterSelection {
	if s.Years.IsZero() {
		s.Years = NormalizationWindow
	}
	return s
}

// Validate checks the year range
func (s FilterSelection) Validate() error {
	return s.Years.Validate()
}

// Key returns a canonical string for the selection.
// Value order and duplicates do not change the key. Values are JSON-quoted, so
// separators inside a platform or genre name cannot collide with another selection.
func (s FilterSelection) Key() string {
	return fmt.Sprintf("%s|p=%s|g=%s", s.Years, quoteList(s.Platforms), quoteList(s.Genres))
}

func quoteList(values []string) string {
	b, _ := json.Marshal(canonical(values))
	return string(b)
}

// PlatformSet returns the platform filter as a set, nil when open
func (s FilterSelection) PlatformSet() map[string]struct{} {
	return toSet(s.Platforms)
}

// GenreSet returns the genre filter as a set, nil when open
func (s FilterSelection) GenreSet() map[string]struct{} {
	return toSet(s.Genres)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func canonical(values []string) []string {
	set := toSet(values)
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
