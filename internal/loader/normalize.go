package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/gamedash/internal/contracts"
)

var errNoHeader = fmt.Errorf("%w: no header row", contracts.ErrMissingColumns)

// missingTokens are the values read as missing, the same set pandas treats as NA by default
var missingTokens = map[string]struct{}{}

func init() {
	for _, tok := range []string{
		"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "null", "NULL", "None",
		"#N/A", "#N/A N/A", "#NA", "<NA>", "-1.#IND", "-1.#QNAN", "1.#IND", "1.#QNAN",
	} {
		missingTokens[tok] = struct{}{}
	}
}

func isMissing(v string) bool {
	_, ok := missingTokens[v]
	return ok
}

type columnIndex struct {
	name, platform, genre, year, user, critic int
}

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	lookup := func(col string) int {
		i, ok := pos[col]
		if !ok {
			missing = append(missing, col)
			return -1
		}
		return i
	}

	idx := columnIndex{
		platform: lookup(contracts.ColumnPlatform),
		genre:    lookup(contracts.ColumnGenre),
		year:     lookup(contracts.ColumnYear),
		user:     lookup(contracts.ColumnUserScore),
		critic:   lookup(contracts.ColumnCriticScore),
		name:     -1,
	}
	if i, ok := pos[contracts.ColumnName]; ok {
		idx.name = i
	}

	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", contracts.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

// normalize applies the row rules in order: missing values, year parse,
// year window, then score coercion. Input order is preserved.
func normalize(t *table) ([]contracts.Record, contracts.LoadStats, error) {
	var stats contracts.LoadStats

	idx, err := indexColumns(t.header)
	if err != nil {
		return nil, stats, err
	}

	required := []int{idx.platform, idx.genre, idx.year, idx.user, idx.critic}
	records := make([]contracts.Record, 0, len(t.rows))

	for _, row := range t.rows {
		stats.RowsRead++

		if row == nil || hasMissing(row, required) {
			stats.DroppedMissing++
			continue
		}

		year, ok := parseYear(field(row, idx.year))
		if !ok {
			stats.DroppedNonNumeric++
			continue
		}
		if !contracts.NormalizationWindow.Contains(year) {
			stats.DroppedYear++
			continue
		}

		user, okUser := parseScore(field(row, idx.user))
		critic, okCritic := parseScore(field(row, idx.critic))
		if !okUser || !okCritic {
			stats.DroppedNonNumeric++
			continue
		}

		rec := contracts.Record{
			Platform:      field(row, idx.platform),
			Genre:         field(row, idx.genre),
			YearOfRelease: year,
			UserScore:     user,
			CriticScore:   critic,
		}
		if idx.name >= 0 {
			if name := field(row, idx.name); !isMissing(name) {
				rec.Name = name
			}
		}
		records = append(records, rec)
	}

	stats.Kept = len(records)
	return records, stats, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func hasMissing(row []string, cols []int) bool {
	for _, i := range cols {
		if i >= len(row) || isMissing(field(row, i)) {
			return true
		}
	}
	return false
}

// parseYear accepts integers and whole-valued floats such as "2006.0"
func parseYear(s string) (int, bool) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseScore(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
