package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/dashboard"
	"github.com/wonny/gamedash/pkg/logger"
)

// optionsCmd represents the options command
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the platforms and genres in the dataset",
	Long: `Prints the dropdown options in dataset order: distinct platforms,
distinct genres and the selectable year range.

Example:
  go run ./cmd/gamedash options`,
	RunE: runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ds, _, _, err := loadDataset(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	opts := dashboard.BuildOptions(ds)

	PrintHeader("GameDash Options", []KeyValue{
		{"Dataset", ds.Source},
		{"Years", opts.Years.String()},
	})

	fmt.Printf("Platforms (%d)\n", len(opts.Platforms))
	PrintList(optionValues(opts.Platforms))

	fmt.Println()
	fmt.Printf("Genres (%d)\n", len(opts.Genres))
	PrintList(optionValues(opts.Genres))

	return nil
}

func optionValues(opts []dashboard.Option) []string {
	values := make([]string, 0, len(opts))
	for _, o := range opts {
		values = append(values, o.Value)
	}
	return values
}
