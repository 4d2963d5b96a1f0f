package aggregate

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/shopspring/decimal"

	"github.com/wonny/gamedash/internal/contracts"
)

// Aggregate filters ds by sel and derives every dashboard figure from the survivors.
// It never mutates ds and is safe to call concurrently. Matching is exact and case-sensitive.
func Aggregate(ds *contracts.Dataset, sel contracts.FilterSelection) *contracts.AggregateResult {
	result := &contracts.AggregateResult{
		Selection:             sel,
		PerYearPlatformCounts: make(map[contracts.YearPlatform]int),
		PerGenreMeanUserScore: make(map[string]float64),
		FilteredRecords:       []contracts.Record{},
	}
	if ds == nil {
		return result
	}
	result.DatasetID = ds.ID

	platforms := sel.PlatformSet()
	genres := sel.GenreSet()

	var userScores, criticScores []float64
	genreScores := make(map[string][]float64)

	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		if !keep(rec, sel.Years, platforms, genres) {
			continue
		}

		result.FilteredRecords = append(result.FilteredRecords, rec)
		userScores = append(userScores, rec.UserScore)
		criticScores = append(criticScores, rec.CriticScore)
		genreScores[rec.Genre] = append(genreScores[rec.Genre], rec.UserScore)
		result.PerYearPlatformCounts[contracts.YearPlatform{Year: rec.YearOfRelease, Platform: rec.Platform}]++
	}

	result.TotalCount = len(result.FilteredRecords)
	result.MeanUserScore = mean(userScores)
	result.MeanCriticScore = mean(criticScores)
	for genre, scores := range genreScores {
		result.PerGenreMeanUserScore[genre] = meanOf(scores)
	}

	return result
}

func keep(rec contracts.Record, years contracts.YearRange, platforms, genres map[string]struct{}) bool {
	if !years.Contains(rec.YearOfRelease) {
		return false
	}
	if platforms != nil {
		if _, ok := platforms[rec.Platform]; !ok {
			return false
		}
	}
	if genres != nil {
		if _, ok := genres[rec.Genre]; !ok {
			return false
		}
	}
	return true
}

// mean is undefined over an empty sample
func mean(xs []float64) contracts.Mean {
	if len(xs) == 0 {
		return contracts.Mean{}
	}
	return contracts.Defined(meanOf(xs))
}

// meanOf returns the rounded mean of a non-empty sample. Scores near the float
// limits overflow the float sum, so those samples are summed exactly instead.
func meanOf(xs []float64) float64 {
	if m := stats.Mean(xs); !math.IsInf(m, 0) && !math.IsNaN(m) {
		return Round2(m)
	}

	sum := decimal.Zero
	for _, x := range xs {
		sum = sum.Add(decimal.NewFromFloat(x))
	}
	f, _ := sum.Div(decimal.NewFromInt(int64(len(xs)))).Round(2).Float64()
	return f
}
