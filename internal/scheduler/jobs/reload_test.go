package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/loader"
	"github.com/wonny/gamedash/pkg/logger"
)

type stubLoader struct {
	ds  *contracts.Dataset
	err error
	src loader.Source
}

func (l *stubLoader) Load(ctx context.Context, src loader.Source) (*contracts.Dataset, error) {
	l.src = src
	return l.ds, l.err
}

func dataset(id string, n int) *contracts.Dataset {
	records := make([]contracts.Record, n)
	for i := range records {
		records[i] = contracts.Record{Platform: "PC", Genre: "Action", YearOfRelease: 2010, UserScore: 7, CriticScore: 70}
	}
	return contracts.NewDataset(records, contracts.DatasetMeta{ID: id})
}

func TestDatasetReloadJob(t *testing.T) {
	svc := aggregate.NewService(dataset("old", 1), nil, 0, logger.Nop())
	l := &stubLoader{ds: dataset("new", 3)}
	src := loader.Source{Location: "games.csv", Format: loader.FormatCSV}

	job := NewDatasetReloadJob(l, src, svc, "@every 10m", logger.Nop())
	assert.Equal(t, "dataset_reload", job.Name())
	assert.Equal(t, "@every 10m", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, src, l.src)
	assert.Equal(t, "new", svc.Current().ID)
	assert.Equal(t, 3, svc.Current().Len())
}

func TestDatasetReloadJob_FailureKeepsDataset(t *testing.T) {
	svc := aggregate.NewService(dataset("old", 1), nil, 0, logger.Nop())
	loadErr := &contracts.LoadError{Source: "games.csv", Op: "read", Err: contracts.ErrSourceUnreadable}
	l := &stubLoader{err: loadErr}

	job := NewDatasetReloadJob(l, loader.Source{Location: "games.csv"}, svc, "@hourly", logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrSourceUnreadable))
	assert.Equal(t, "old", svc.Current().ID)
}
