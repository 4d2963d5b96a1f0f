package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/loader"
	"github.com/wonny/gamedash/pkg/logger"
)

// DatasetLoader loads a dataset from a source
type DatasetLoader interface {
	Load(ctx context.Context, src loader.Source) (*contracts.Dataset, error)
}

// DatasetStore holds the dataset served to readers
type DatasetStore interface {
	Current() *contracts.Dataset
	Replace(ds *contracts.Dataset) *contracts.Dataset
}

// DatasetReloadJob re-reads the configured source and swaps it in.
// A failed load leaves the current dataset in place.
type DatasetReloadJob struct {
	loader   DatasetLoader
	source   loader.Source
	store    DatasetStore
	schedule string
	logger   *logger.Logger
}

// NewDatasetReloadJob creates a new dataset reload job
func NewDatasetReloadJob(l DatasetLoader, src loader.Source, store DatasetStore, schedule string, log *logger.Logger) *DatasetReloadJob {
	return &DatasetReloadJob{
		loader:   l,
		source:   src,
		store:    store,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *DatasetReloadJob) Name() string {
	return "dataset_reload"
}

// Schedule returns the configured cron schedule
func (j *DatasetReloadJob) Schedule() string {
	return j.schedule
}

// Run loads the source and replaces the served dataset
func (j *DatasetReloadJob) Run(ctx context.Context) error {
	j.logger.WithField("source", j.source.Location).Debug("Starting scheduled dataset reload")

	ds, err := j.loader.Load(ctx, j.source)
	if err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}

	prev := j.store.Replace(ds)

	fields := map[string]interface{}{
		"dataset_id": ds.ID,
		"records":    ds.Len(),
	}
	if prev != nil {
		fields["previous_records"] = prev.Len()
	}
	j.logger.WithFields(fields).Info("Dataset reload completed")

	return nil
}
