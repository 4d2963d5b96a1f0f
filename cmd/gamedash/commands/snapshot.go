package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/snapshot"
	"github.com/wonny/gamedash/pkg/config"
	"github.com/wonny/gamedash/pkg/database"
	"github.com/wonny/gamedash/pkg/logger"
)

// snapshotCmd represents the snapshot command group
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and list dashboard snapshots (requires DATABASE_URL)",
	Long: `Snapshots store a selection with its headline figures in PostgreSQL.

Subcommands:
  list  - Show the newest snapshots
  save  - Aggregate a selection and store it

Example:
  go run ./cmd/gamedash snapshot list --limit 10
  go run ./cmd/gamedash snapshot save --platform PS4 --from 2013`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the newest snapshots",
	RunE:  runSnapshotList,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Aggregate a selection and store it as a snapshot",
	RunE:  runSnapshotSave,
}

var (
	snapshotLimit int
	snapshotFlags selectionFlags
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)

	snapshotListCmd.Flags().IntVar(&snapshotLimit, "limit", snapshot.DefaultListLimit, "maximum snapshots to show")
	snapshotFlags.bind(snapshotSaveCmd)
}

// openRepository connects to the database and prepares the snapshot table
func openRepository(ctx context.Context, cfg *config.Config) (*snapshot.Repository, func(), error) {
	db, err := database.New(ctx, cfg)
	if errors.Is(err, database.ErrDisabled) {
		return nil, nil, errors.New("snapshots need DATABASE_URL")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := snapshot.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure snapshot schema: %w", err)
	}

	return repo, db.Close, nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	repo, closeDB, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	snapshots, err := repo.List(ctx, snapshotLimit)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		PrintInfo("No snapshots yet")
		return nil
	}

	widths := []int{36, 20, 6, 6, 6, 40}
	PrintTableHeader([]string{"ID", "Created", "Games", "User", "Critic", "Selection"}, widths)
	for _, s := range snapshots {
		PrintTableRow([]string{
			s.ID,
			s.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(s.TotalCount),
			s.MeanUserScore.String(),
			s.MeanCriticScore.String(),
			s.Selection.Key(),
		}, widths)
	}

	return nil
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	sel, err := snapshotFlags.selection(cfg.PresetsPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	repo, closeDB, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	ds, _, _, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}

	result, err := aggregate.NewService(ds, nil, 0, log).Aggregate(ctx, sel)
	if err != nil {
		return err
	}

	s := snapshot.FromResult(result)
	if err := repo.Save(ctx, s); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Snapshot %s saved (%d games, user %s, critic %s)",
		s.ID, s.TotalCount, s.MeanUserScore, s.MeanCriticScore))
	return nil
}
