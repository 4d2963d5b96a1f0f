package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/dashboard"
	"github.com/wonny/gamedash/pkg/logger"
)

// chartCmd represents the chart command
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render dashboard charts to SVG files",
	Long: `Aggregates one selection and writes the dashboard charts as SVG files.
Without --chart every chart is written.

Charts: totals, user-score, critic-score, area, scatter, genre

Example:
  go run ./cmd/gamedash chart --out ./charts
  go run ./cmd/gamedash chart --chart area --platform PS4 --platform PC --from 2010`,
	RunE: runChart,
}

var (
	chartFlags selectionFlags
	chartName  string
	chartOut   string
)

func init() {
	rootCmd.AddCommand(chartCmd)

	chartFlags.bind(chartCmd)
	chartCmd.Flags().StringVar(&chartName, "chart", "", "chart to render (default all)")
	chartCmd.Flags().StringVar(&chartOut, "out", ".", "output directory")
}

func runChart(cmd *cobra.Command, args []string) error {
	charts := dashboard.Charts
	if chartName != "" {
		c, err := dashboard.ParseChart(chartName)
		if err != nil {
			return err
		}
		charts = []dashboard.Chart{c}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	sel, err := chartFlags.selection(cfg.PresetsPath)
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

	if err := os.MkdirAll(chartOut, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, c := range charts {
		path := filepath.Join(chartOut, string(c)+".svg")
		if err := writeChart(path, c, view); err != nil {
			return err
		}
		PrintSuccess(path)
	}

	return nil
}

func writeChart(path string, c dashboard.Chart, v dashboard.View) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := dashboard.Render(f, c, v); err != nil {
		return fmt.Errorf("render %s: %w", c, err)
	}
	return f.Close()
}
