package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Record is one normalized game row
// ⭐ SSOT: JSON field names match the dataset column headers
type Record struct {
	Name          string  `json:"Name,omitempty"` // optional column, carried for scatter tooltips
	Platform      string  `json:"Platform"`
	Genre         string  `json:"Genre"`
	YearOfRelease int     `json:"Year_of_Release"`
	UserScore     float64 `json:"User_Score"`
	CriticScore   float64 `json:"Critic_Score"`
}

// Required dataset columns
const (
	ColumnName        = "Name"
	ColumnPlatform    = "Platform"
	ColumnGenre       = "Genre"
	ColumnYear        = "Year_of_Release"
	ColumnUserScore   = "User_Score"
	ColumnCriticScore = "Critic_Score"
)

// RequiredColumns lists the columns every source must provide
var RequiredColumns = []string{ColumnPlatform, ColumnGenre, ColumnYear, ColumnUserScore, ColumnCriticScore}

// LoadStats counts what happened to each input row during normalization
type LoadStats struct {
	RowsRead          int `json:"rows_read"`
	DroppedMissing    int `json:"dropped_missing"`
	DroppedYear       int `json:"dropped_year"`
	DroppedNonNumeric int `json:"dropped_non_numeric"`
	Kept              int `json:"kept"`
}

// DatasetMeta describes where a dataset came from
type DatasetMeta struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Stats    LoadStats
}

// Dataset is the normalized, read-only record sequence.
// It is never mutated after NewDataset returns, so any number of
// goroutines may read it without locking.
type Dataset struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Stats    LoadStats `json:"stats"`

	records   []Record
	platforms []string
	genres    []string
}

// NewDataset copies records into a new Dataset. An empty meta.ID gets a fresh uuid.
func NewDataset(records []Record, meta DatasetMeta) *Dataset {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.LoadedAt.IsZero() {
		meta.LoadedAt = time.Now()
	}

	ds := &Dataset{
		ID:       meta.ID,
		Source:   meta.Source,
		LoadedAt: meta.LoadedAt,
		Stats:    meta.Stats,
		records:  make([]Record, len(records)),
	}
	copy(ds.records, records)

	seenPlatform := make(map[string]struct{})
	seenGenre := make(map[string]struct{})
	for _, r := range ds.records {
		if _, ok := seenPlatform[r.Platform]; !ok {
			seenPlatform[r.Platform] = struct{}{}
			ds.platforms = append(ds.platforms, r.Platform)
		}
		if _, ok := seenGenre[r.Genre]; !ok {
			seenGenre[r.Genre] = struct{}{}
			ds.genres = append(ds.genres, r.Genre)
		}
	}

	return ds
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record by value
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of all records in load order
func (d *Dataset) Records() []Record {
	out := make([]Record, d.Len())
	if d != nil {
		copy(out, d.records)
	}
	return out
}

// Platforms returns distinct platforms in first-seen order
func (d *Dataset) Platforms() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.platforms...)
}

// Genres returns distinct genres in first-seen order
func (d *Dataset) Genres() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.genres...)
}
