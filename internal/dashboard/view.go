package dashboard

import (
	"fmt"
	"sort"

	"github.com/wonny/gamedash/internal/contracts"
)

// Widget titles
const (
	TitleTotals      = "Total games"
	TitleUserScore   = "Average user score"
	TitleCriticScore = "Average critic score"
	TitleArea        = "Games released per year and platform"
	TitleScatter     = "User vs critic score by genre"
	TitleGenre       = "Average user score by genre"
)

// KPI is a single figure with its caption
type KPI struct {
	Title   string  `json:"title"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Point is one plotted value. Label carries the game name on scatter points.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// Series is a named line or point group
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Bar is one category value
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// View is everything the dashboard page shows for one selection
type View struct {
	DatasetID   string                    `json:"dataset_id"`
	Selection   contracts.FilterSelection `json:"selection"`
	Empty       bool                      `json:"empty"`
	Totals      KPI                       `json:"totals"`
	UserScore   KPI                       `json:"user_score"`
	CriticScore KPI                       `json:"critic_score"`
	Years       []int                     `json:"years"`
	Area        []Series                  `json:"area"`
	Scatter     []Series                  `json:"scatter"`
	GenreBars   []Bar                     `json:"genre_bars"`
}

// BuildView turns an aggregate into the six dashboard widgets
func BuildView(result *contracts.AggregateResult) View {
	v := View{
		DatasetID: result.DatasetID,
		Selection: result.Selection,
		Empty:     result.Empty(),
		Totals: KPI{
			Title:   TitleTotals,
			Label:   fmt.Sprintf("Total games: %d", result.TotalCount),
			Value:   float64(result.TotalCount),
			Defined: true,
		},
		UserScore:   meanKPI(TitleUserScore, result.MeanUserScore),
		CriticScore: meanKPI(TitleCriticScore, result.MeanCriticScore),
	}

	v.Years, v.Area = areaSeries(result)
	v.Scatter = scatterSeries(result.FilteredRecords)

	for _, g := range result.GenreSeries() {
		v.GenreBars = append(v.GenreBars, Bar{Label: g.Genre, Value: g.MeanUserScore})
	}

	return v
}

func meanKPI(title string, m contracts.Mean) KPI {
	return KPI{
		Title:   title,
		Label:   fmt.Sprintf("%s: %s", title, m),
		Value:   m.Value,
		Defined: m.Valid,
	}
}

// areaSeries builds one series per platform over every year present, zero-filled
func areaSeries(result *contracts.AggregateResult) ([]int, []Series) {
	yearSet := make(map[int]struct{})
	platformSet := make(map[string]struct{})
	for k := range result.PerYearPlatformCounts {
		yearSet[k.Year] = struct{}{}
		platformSet[k.Platform] = struct{}{}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	platforms := make([]string, 0, len(platformSet))
	for p := range platformSet {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	series := make([]Series, 0, len(platforms))
	for _, p := range platforms {
		s := Series{Name: p, Points: make([]Point, len(years))}
		for i, y := range years {
			n := result.PerYearPlatformCounts[contracts.YearPlatform{Year: y, Platform: p}]
			s.Points[i] = Point{X: float64(y), Y: float64(n)}
		}
		series = append(series, s)
	}

	return years, series
}

// scatterSeries groups filtered records by genre, sorted by genre, in record order within a genre
func scatterSeries(records []contracts.Record) []Series {
	byGenre := make(map[string][]Point)
	for _, r := range records {
		byGenre[r.Genre] = append(byGenre[r.Genre], Point{X: r.UserScore, Y: r.CriticScore, Label: r.Name})
	}

	genres := make([]string, 0, len(byGenre))
	for g := range byGenre {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	series := make([]Series, 0, len(genres))
	for _, g := range genres {
		series = append(series, Series{Name: g, Points: byGenre[g]})
	}
	return series
}
