package dashboard

import "github.com/wonny/gamedash/internal/contracts"

// Option is one dropdown entry
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Options are the filter controls offered for a dataset
type Options struct {
	DatasetID string                    `json:"dataset_id"`
	Platforms []Option                  `json:"platforms"`
	Genres    []Option                  `json:"genres"`
	Years     contracts.YearRange       `json:"years"`
	Marks     []int                     `json:"marks"`
	Default   contracts.FilterSelection `json:"default"`
}

// BuildOptions lists distinct platforms and genres in dataset order plus the year marks
func BuildOptions(ds *contracts.Dataset) Options {
	opts := Options{
		Platforms: toOptions(ds.Platforms()),
		Genres:    toOptions(ds.Genres()),
		Years:     contracts.NormalizationWindow,
		Default:   contracts.DefaultSelection(),
	}
	if ds != nil {
		opts.DatasetID = ds.ID
	}

	for y := opts.Years.Min; y <= opts.Years.Max; y++ {
		opts.Marks = append(opts.Marks, y)
	}
	return opts
}

func toOptions(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Label: v, Value: v})
	}
	return out
}
