package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/api"
	"github.com/wonny/gamedash/internal/api/handlers"
	"github.com/wonny/gamedash/internal/presets"
	"github.com/wonny/gamedash/internal/scheduler"
	"github.com/wonny/gamedash/internal/scheduler/jobs"
	"github.com/wonny/gamedash/internal/snapshot"
	"github.com/wonny/gamedash/pkg/database"
	"github.com/wonny/gamedash/pkg/logger"
	"github.com/wonny/gamedash/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the dashboard API server",
	Long: `Starts the dashboard HTTP API server.

This command:
- loads and normalizes the dataset (fails fast if it cannot be read)
- loads filter presets
- connects Redis and PostgreSQL when configured
- schedules dataset reloads when DATASET_RELOAD_SCHEDULE is set

Endpoints:
  GET  /health                   - Health check
  GET  /ws                       - Live dashboard (WebSocket)
  GET  /api/dataset              - Dataset metadata and load stats
  GET  /api/options              - Dropdown options and year marks
  GET  /api/aggregate            - Aggregate for query selection
  POST /api/aggregate            - Aggregate for JSON selection
  GET  /api/dashboard            - Dashboard view model
  GET  /api/charts/{chart}.svg   - Rendered chart
  GET  /api/presets              - Filter presets
  GET  /api/presets/{name}       - Preset with its aggregate
  POST /api/snapshots            - Save a snapshot
  GET  /api/snapshots            - List snapshots
  GET  /api/snapshots/{id}       - Get a snapshot

Query selection: platform and genre repeat for several values
(?platform=PS4&platform=PC) and are taken whole, commas included;
from and to bound the release years.

Example:
  go run ./cmd/gamedash api
  go run ./cmd/gamedash api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== GameDash API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"dataset": cfg.Dataset.Path,
	}).Info("Initializing API server")

	ctx := context.Background()

	// 3. Load dataset
	ds, l, src, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}

	// 4. Load presets
	set, err := presets.Load(cfg.PresetsPath)
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"path":  cfg.PresetsPath,
		"count": set.Len(),
		"hash":  set.Hash,
	}).Info("Presets loaded")

	// 5. Connect Redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "gamedash")

	// 6. Create aggregate service
	service := aggregate.NewService(ds, cache, cfg.Redis.CacheTTL, log)

	// 7. Connect database for snapshots (optional)
	var store handlers.SnapshotStore
	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Info("Snapshot persistence disabled")
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		defer db.Close()

		repo := snapshot.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure snapshot schema: %w", err)
		}
		store = repo
		log.Info("Connected to database")
	}

	// 8. Schedule dataset reloads
	if cfg.Dataset.ReloadSchedule != "" {
		sched := scheduler.New(log)
		job := jobs.NewDatasetReloadJob(l, src, service, cfg.Dataset.ReloadSchedule, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule dataset reload: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 9. Create router
	router := api.NewRouter(api.Handlers{
		Dashboard: handlers.NewDashboardHandler(service, cache, log),
		Presets:   handlers.NewPresetHandler(set, service, log),
		Snapshots: handlers.NewSnapshotHandler(store, service, log),
		Live:      handlers.NewLiveHandler(service, log),
	}, api.NewLimiter(cfg), log)

	// 10. Create server
	server := api.New(cfg, log, router)

	// 11. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Printf("   Dataset: %s (%d games)\n", src.Location, ds.Len())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
