package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/dashboard"
	"github.com/wonny/gamedash/pkg/logger"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard figures for a selection",
	Long: `Loads the dataset, aggregates one selection and prints the KPI labels,
per-genre mean user scores and per-year/platform release counts.

Example:
  go run ./cmd/gamedash summary
  go run ./cmd/gamedash summary --platform PS4 --platform XOne --genre Action --from 2013 --to 2016
  go run ./cmd/gamedash summary --preset current-gen`,
	RunE: runSummary,
}

var summaryFlags selectionFlags

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryFlags.bind(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	sel, err := summaryFlags.selection(cfg.PresetsPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	ds, _, _, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}

	result, err := aggregate.NewService(ds, nil, 0, log).Aggregate(ctx, sel)
	if err != nil {
		return err
	}
	view := dashboard.BuildView(result)

	PrintHeader("GameDash Summary", []KeyValue{
		{"Dataset", fmt.Sprintf("%s (%d games)", ds.Source, ds.Len())},
		{"Selection", sel.Key()},
	})

	fmt.Println(view.Totals.Label)
	fmt.Println(view.UserScore.Label)
	fmt.Println(view.CriticScore.Label)

	if view.Empty {
		PrintWarning("No games match this selection")
		return nil
	}

	fmt.Println()
	fmt.Println(dashboard.TitleGenre)
	widths := []int{20, 10}
	PrintTableHeader([]string{"Genre", "Mean"}, widths)
	for _, g := range result.GenreSeries() {
		PrintTableRow([]string{g.Genre, strconv.FormatFloat(g.MeanUserScore, 'f', 2, 64)}, widths)
	}

	fmt.Println()
	fmt.Println(dashboard.TitleArea)
	widths = []int{6, 12, 6}
	PrintTableHeader([]string{"Year", "Platform", "Games"}, widths)
	for _, c := range result.YearPlatformSeries() {
		PrintTableRow([]string{strconv.Itoa(c.Year), c.Platform, strconv.Itoa(c.Count)}, widths)
	}

	return nil
}
