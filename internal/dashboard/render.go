package dashboard

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart names one renderable widget
type Chart string

const (
	ChartTotals      Chart = "totals"
	ChartUserScore   Chart = "user-score"
	ChartCriticScore Chart = "critic-score"
	ChartArea        Chart = "area"
	ChartScatter     Chart = "scatter"
	ChartGenre       Chart = "genre"
)

// Charts lists every chart in page order
var Charts = []Chart{ChartTotals, ChartUserScore, ChartCriticScore, ChartArea, ChartScatter, ChartGenre}

// ErrUnknownChart is returned for names outside Charts
var ErrUnknownChart = errors.New("unknown chart")

const (
	chartWidth  = 800
	chartHeight = 400
	kpiWidth    = 320
	noDataText  = "No data"
)

// ParseChart validates a chart name
func ParseChart(name string) (Chart, error) {
	for _, c := range Charts {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// Render writes chart c of view v as SVG
func Render(w io.Writer, c Chart, v View) error {
	switch c {
	case ChartTotals:
		if v.Empty {
			return renderNoData(w, TitleTotals, kpiWidth, chartHeight)
		}
		return renderKPI(w, v.Totals)
	case ChartUserScore:
		return renderKPI(w, v.UserScore)
	case ChartCriticScore:
		return renderKPI(w, v.CriticScore)
	case ChartArea:
		return renderArea(w, v)
	case ChartScatter:
		return renderScatter(w, v)
	case ChartGenre:
		return renderGenre(w, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, c)
	}
}

func renderKPI(w io.Writer, kpi KPI) error {
	if !kpi.Defined {
		return renderNoData(w, kpi.Title, kpiWidth, chartHeight)
	}

	graph := chart.BarChart{
		Title:    kpi.Label,
		Width:    kpiWidth,
		Height:   chartHeight,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: valueRange(0, kpi.Value),
		},
		Bars: []chart.Value{
			{Label: kpi.Title, Value: kpi.Value, Style: barStyle(0)},
		},
	}
	return graph.Render(chart.SVG, w)
}

func renderArea(w io.Writer, v View) error {
	if len(v.Area) == 0 {
		return renderNoData(w, TitleArea, chartWidth, chartHeight)
	}

	maxCount := 0.0
	series := make([]chart.Series, 0, len(v.Area))
	for i, s := range v.Area {
		xs, ys := xy(s.Points)
		for _, y := range ys {
			maxCount = math.Max(maxCount, y)
		}
		color := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				FillColor:   color.WithAlpha(64),
			},
		})
	}

	first, last := float64(v.Years[0]), float64(v.Years[len(v.Years)-1])
	if first == last {
		first, last = first-0.5, last+0.5
	}

	graph := chart.Chart{
		Title:  TitleArea,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Year",
			Range:          &chart.ContinuousRange{Min: first, Max: last},
			Ticks:          yearTicks(v.Years),
			ValueFormatter: intFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Games",
			Range:          valueRange(0, maxCount),
			ValueFormatter: intFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.SVG, w)
}

func renderScatter(w io.Writer, v View) error {
	if len(v.Scatter) == 0 {
		return renderNoData(w, TitleScatter, chartWidth, chartHeight)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	series := make([]chart.Series, 0, len(v.Scatter))
	for i, s := range v.Scatter {
		xs, ys := xy(s.Points)
		for j := range xs {
			minX, maxX = math.Min(minX, xs[j]), math.Max(maxX, xs[j])
			minY, maxY = math.Min(minY, ys[j]), math.Max(maxY, ys[j])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(chart.GetDefaultColor(i)),
		})
	}

	graph := chart.Chart{
		Title:  TitleScatter,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "User score",
			Range: paddedRange(minX, maxX),
		},
		YAxis: chart.YAxis{
			Name:  "Critic score",
			Range: paddedRange(minY, maxY),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.SVG, w)
}

func renderGenre(w io.Writer, v View) error {
	if len(v.GenreBars) == 0 {
		return renderNoData(w, TitleGenre, chartWidth, chartHeight)
	}

	maxValue := 0.0
	bars := make([]chart.Value, 0, len(v.GenreBars))
	for i, b := range v.GenreBars {
		maxValue = math.Max(maxValue, b.Value)
		bars = append(bars, chart.Value{Label: b.Label, Value: b.Value, Style: barStyle(i)})
	}

	width := chartWidth
	if n := 90 * len(bars); n > width {
		width = n
	}

	graph := chart.BarChart{
		Title:    TitleGenre,
		Width:    width,
		Height:   chartHeight,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: valueRange(0, maxValue),
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}

// renderNoData draws the explicit empty state: the widget title and a "No data" caption
func renderNoData(w io.Writer, title string, width, height int) error {
	r, err := chart.SVG(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}

	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(chart.ColorBlack)
	r.SetFontSize(14)
	tb := r.MeasureText(title)
	r.Text(title, (width-tb.Width())/2, 30)

	r.SetFontColor(chart.ColorAlternateGray)
	r.SetFontSize(18)
	nb := r.MeasureText(noDataText)
	r.Text(noDataText, (width-nb.Width())/2, height/2)

	return r.Save(w)
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func barStyle(i int) chart.Style {
	color := chart.GetDefaultColor(i)
	return chart.Style{
		FillColor:   color,
		StrokeColor: color,
		StrokeWidth: 1,
	}
}

// valueRange spans [min, max] with headroom; a zero-width range is widened to 1
func valueRange(min, max float64) *chart.ContinuousRange {
	if max <= min {
		max = min + 1
	}
	return &chart.ContinuousRange{Min: min, Max: max + (max-min)*0.1}
}

func paddedRange(min, max float64) *chart.ContinuousRange {
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}

func xy(points []Point) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func yearTicks(years []int) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(years))
	for _, y := range years {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return fmt.Sprint(v)
}
