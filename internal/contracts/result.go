package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NoData is how an undefined mean is displayed
const NoData = "N/A"

// Mean is an average that is undefined over an empty set.
// Invalid means marshal to JSON null.
type Mean struct {
	Value float64
	Valid bool
}

// Defined wraps a computed mean
func Defined(v float64) Mean {
	return Mean{Value: v, Valid: true}
}

func (m Mean) String() string {
	if !m.Valid {
		return NoData
	}
	s := strconv.FormatFloat(m.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MarshalJSON implements json.Marshaler
func (m Mean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Mean) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Mean{}
		return nil
	}
	if err := json.Unmarshal(data, &m.Value); err != nil {
		return err
	}
	m.Valid = true
	return nil
}

// YearPlatform groups records by release year and platform
type YearPlatform struct {
	Year     int
	Platform string
}

// MarshalText encodes the key as "year|platform"
func (k YearPlatform) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d|%s", k.Year, k.Platform)), nil
}

// UnmarshalText decodes a "year|platform" key
func (k *YearPlatform) UnmarshalText(text []byte) error {
	yearText, platform, ok := strings.Cut(string(text), "|")
	if !ok {
		return fmt.Errorf("invalid year/platform key %q", text)
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return fmt.Errorf("invalid year in key %q: %w", text, err)
	}
	k.Year = year
	k.Platform = platform
	return nil
}

// AggregateResult holds everything derived from one selection
type AggregateResult struct {
	DatasetID             string               `json:"dataset_id"`
	Selection             FilterSelection      `json:"selection"`
	TotalCount            int                  `json:"total_count"`
	MeanUserScore         Mean                 `json:"mean_user_score"`
	MeanCriticScore       Mean                 `json:"mean_critic_score"`
	PerYearPlatformCounts map[YearPlatform]int `json:"per_year_platform_counts"`
	PerGenreMeanUserScore map[string]float64   `json:"per_genre_mean_user_score"`
	FilteredRecords       []Record             `json:"filtered_records"`
}

// Empty reports whether no record survived the filters
func (r *AggregateResult) Empty() bool {
	return r.TotalCount == 0
}

// YearPlatformCount is one row of the per-year/platform breakdown
type YearPlatformCount struct {
	Year     int    `json:"year"`
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// YearPlatformSeries returns the per-year/platform counts sorted by year, then platform
func (r *AggregateResult) YearPlatformSeries() []YearPlatformCount {
	out := make([]YearPlatformCount, 0, len(r.PerYearPlatformCounts))
	for k, n := range r.PerYearPlatformCounts {
		out = append(out, YearPlatformCount{Year: k.Year, Platform: k.Platform, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// GenreMean is the mean user score of one genre
type GenreMean struct {
	Genre         string  `json:"genre"`
	MeanUserScore float64 `json:"mean_user_score"`
}

// GenreSeries returns per-genre means sorted by genre
func (r *AggregateResult) GenreSeries() []GenreMean {
	out := make([]GenreMean, 0, len(r.PerGenreMeanUserScore))
	for g, m := range r.PerGenreMeanUserScore {
		out = append(out, GenreMean{Genre: g, MeanUserScore: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out
}
