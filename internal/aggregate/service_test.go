package aggregate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/pkg/config"
	"github.com/wonny/gamedash/pkg/logger"
	"github.com/wonny/gamedash/pkg/redis"
)

func disabledCache(t *testing.T) *redis.Cache {
	t.Helper()

	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	return redis.NewCache(client, "gamedash")
}

func liveCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mr.Port(),
	}})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return redis.NewCache(client, "gamedash"), mr
}

func TestService_Aggregate(t *testing.T) {
	svc := NewService(scenarioDataset(), disabledCache(t), time.Minute, logger.Nop())

	result, err := svc.Aggregate(context.Background(), contracts.DefaultSelection())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, "scenario", result.DatasetID)
}

func TestService_InvalidSelection(t *testing.T) {
	svc := NewService(scenarioDataset(), nil, time.Minute, logger.Nop())

	_, err := svc.Aggregate(context.Background(), contracts.FilterSelection{Years: contracts.YearRange{Min: 2015, Max: 2010}})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestService_NoDataset(t *testing.T) {
	svc := NewService(nil, nil, time.Minute, logger.Nop())

	assert.Nil(t, svc.Current())
	_, err := svc.Aggregate(context.Background(), contracts.DefaultSelection())
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestService_Replace(t *testing.T) {
	first := scenarioDataset()
	svc := NewService(first, nil, time.Minute, logger.Nop())

	prev := svc.Replace(mixedDataset())
	assert.Same(t, first, prev)
	assert.Equal(t, "mixed", svc.Current().ID)

	result, err := svc.Aggregate(context.Background(), contracts.DefaultSelection())
	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalCount)
	assert.Equal(t, "mixed", result.DatasetID)
}

func TestService_AggregateCached(t *testing.T) {
	cache, mr := liveCache(t)
	ds := scenarioDataset()
	svc := NewService(ds, cache, time.Minute, logger.Nop())
	ctx := context.Background()

	sel := contracts.FilterSelection{Platforms: []string{"PS4"}}.WithDefaults()
	want := Aggregate(ds, sel)
	key := "gamedash:cache:" + redis.AggregateKey(ds.ID, sel.Key())

	// Miss computes and stores
	miss, err := svc.Aggregate(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, want, miss)
	assert.Equal(t, []string{key}, mr.Keys())
	assert.True(t, mr.TTL(key) > 0)

	// Hit round-trips through JSON unchanged
	hit, err := svc.Aggregate(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, want, hit)

	// Hits are read from Redis, not recomputed
	raw, err := mr.Get(key)
	require.NoError(t, err)
	require.NoError(t, mr.Set(key, strings.Replace(raw, `"total_count":1`, `"total_count":99`, 1)))

	stale, err := svc.Aggregate(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, 99, stale.TotalCount)
}

func TestService_AggregateCachedReportsCallerSelection(t *testing.T) {
	cache, mr := liveCache(t)
	svc := NewService(scenarioDataset(), cache, time.Minute, logger.Nop())
	ctx := context.Background()

	first := contracts.FilterSelection{Platforms: []string{"PS4", "PC"}}.WithDefaults()
	second := contracts.FilterSelection{Platforms: []string{"PC", "PC", "PS4"}}.WithDefaults()
	require.Equal(t, first.Key(), second.Key())

	_, err := svc.Aggregate(ctx, first)
	require.NoError(t, err)

	result, err := svc.Aggregate(ctx, second)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)
	assert.Equal(t, second, result.Selection)
	assert.Equal(t, 2, result.TotalCount)
}

func TestService_AggregateCachedSeparatorsInValues(t *testing.T) {
	cache, mr := liveCache(t)
	ds := scenarioDataset()
	svc := NewService(ds, cache, time.Minute, logger.Nop())
	ctx := context.Background()

	joined := contracts.FilterSelection{Platforms: []string{"PC,PS4"}}.WithDefaults()
	split := contracts.FilterSelection{Platforms: []string{"PC", "PS4"}}.WithDefaults()

	a, err := svc.Aggregate(ctx, joined)
	require.NoError(t, err)
	b, err := svc.Aggregate(ctx, split)
	require.NoError(t, err)

	assert.Len(t, mr.Keys(), 2)
	assert.Equal(t, Aggregate(ds, joined), a)
	assert.Equal(t, Aggregate(ds, split), b)
	assert.Equal(t, 0, a.TotalCount)
	assert.Equal(t, 2, b.TotalCount)
}
