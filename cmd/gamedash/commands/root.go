package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/loader"
	"github.com/wonny/gamedash/pkg/config"
	"github.com/wonny/gamedash/pkg/httputil"
	"github.com/wonny/gamedash/pkg/logger"
)

var (
	// Global flags
	configFile  string
	env         string
	datasetPath string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gamedash",
	Short: "GameDash - video game sales dashboard",
	Long: `GameDash Unified CLI

Loads a video game sales table (CSV or HTML), keeps releases from 2000 to 2022
and answers platform/genre/year selections with counts, mean scores and charts.

Usage:
  go run ./cmd/gamedash [command]

Examples:
  go run ./cmd/gamedash api
  go run ./cmd/gamedash summary --platform PS4 --from 2010 --to 2015
  go run ./cmd/gamedash data-check --dataset games.csv`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "dataset path or URL (overrides DATASET_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the environment and applies the global flags on top
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// datasetSource builds the loader source from config
func datasetSource(cfg *config.Config) (loader.Source, error) {
	format, err := loader.ParseFormat(cfg.Dataset.Format)
	if err != nil {
		return loader.Source{}, err
	}
	return loader.Source{Location: cfg.Dataset.Path, Format: format}, nil
}

// loadDataset loads the configured dataset once
func loadDataset(ctx context.Context, cfg *config.Config, log *logger.Logger) (*contracts.Dataset, *loader.Loader, loader.Source, error) {
	src, err := datasetSource(cfg)
	if err != nil {
		return nil, nil, src, err
	}

	l := loader.New(httputil.New(log), log)

	ds, err := l.Load(ctx, src)
	if err != nil {
		return nil, nil, src, fmt.Errorf("load dataset: %w", err)
	}

	return ds, l, src, nil
}
