package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/presets"
	"github.com/wonny/gamedash/pkg/database"
	"github.com/wonny/gamedash/pkg/logger"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "Check the dataset, presets and database",
	Long: `Loads the dataset and reports how many rows normalization kept and why
the others were dropped. Also validates the presets file and pings the
database when DATABASE_URL is set.

Checks:
- rows read, dropped (missing value, year outside 2000-2022, non-numeric score), kept
- distinct platforms and genres
- presets file
- database health

Example:
  go run ./cmd/gamedash data-check
  go run ./cmd/gamedash data-check --dataset https://example.com/games.csv`,
	RunE: runDataCheck,
}

func init() {
	rootCmd.AddCommand(dataCheckCmd)
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== GameDash Data Check ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx := context.Background()

	// 2. Dataset
	ds, _, src, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}

	stats := ds.Stats
	PrintHeader("Dataset", []KeyValue{
		{"Source", src.Location},
		{"ID", ds.ID},
		{"Loaded", ds.LoadedAt.Format(time.RFC3339)},
	})
	PrintKeyValue("Rows read", strconv.Itoa(stats.RowsRead), 22)
	PrintKeyValue("Dropped (missing)", strconv.Itoa(stats.DroppedMissing), 22)
	PrintKeyValue("Dropped (year window)", strconv.Itoa(stats.DroppedYear), 22)
	PrintKeyValue("Dropped (non-numeric)", strconv.Itoa(stats.DroppedNonNumeric), 22)
	PrintKeyValue("Kept", strconv.Itoa(stats.Kept), 22)
	PrintKeyValue("Platforms", strconv.Itoa(len(ds.Platforms())), 22)
	PrintKeyValue("Genres", strconv.Itoa(len(ds.Genres())), 22)

	if stats.Kept == 0 {
		PrintWarning("No rows survived normalization; the dashboard will be empty")
	}

	// 3. Presets
	fmt.Println()
	set, err := presets.Load(cfg.PresetsPath)
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}
	if set.Len() == 0 {
		PrintInfo(fmt.Sprintf("No presets at %s", cfg.PresetsPath))
	} else {
		PrintSuccess(fmt.Sprintf("%d presets valid (hash %s)", set.Len(), set.Hash[:12]))
		PrintList(set.Names())
	}

	// 4. Database
	fmt.Println()
	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		PrintInfo("Database not configured; snapshots disabled")
		return nil
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Database healthy (%s, %d/%d connections)",
		status.ResponseTime, status.Stats.TotalConns, status.Stats.MaxConns))

	return nil
}
