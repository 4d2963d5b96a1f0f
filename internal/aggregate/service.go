package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/pkg/logger"
	"github.com/wonny/gamedash/pkg/redis"
)

var (
	// ErrNoDataset is returned before any dataset has been loaded
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrInvalidSelection wraps selection validation failures
	ErrInvalidSelection = errors.New("invalid selection")
)

// Service serves aggregates over the current dataset.
// The dataset pointer is swapped atomically on reload; readers never lock.
type Service struct {
	current atomic.Pointer[contracts.Dataset]
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
}

// NewService creates a Service. cache may be nil or disabled.
func NewService(ds *contracts.Dataset, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Service {
	s := &Service{
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
	if ds != nil {
		s.current.Store(ds)
	}
	return s
}

// Current returns the dataset in use, nil before the first load
func (s *Service) Current() *contracts.Dataset {
	return s.current.Load()
}

// Replace swaps in ds, which must not be nil, and returns the previous dataset
func (s *Service) Replace(ds *contracts.Dataset) *contracts.Dataset {
	prev := s.current.Swap(ds)

	fields := map[string]interface{}{
		"dataset_id": ds.ID,
		"records":    ds.Len(),
	}
	if prev != nil {
		fields["previous_id"] = prev.ID
	}
	s.logger.WithFields(fields).Info("Dataset replaced")

	return prev
}

// Aggregate validates sel and computes its result over the current dataset.
// Results are cached per dataset and selection when a cache is configured.
func (s *Service) Aggregate(ctx context.Context, sel contracts.FilterSelection) (*contracts.AggregateResult, error) {
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	ds := s.Current()
	if ds == nil {
		return nil, ErrNoDataset
	}

	if !s.cache.Enabled() {
		return Aggregate(ds, sel), nil
	}

	var result contracts.AggregateResult
	key := redis.AggregateKey(ds.ID, sel.Key())
	err := s.cache.GetOrSet(ctx, key, &result, s.ttl, func() (interface{}, error) {
		s.logger.WithField("key", key).Debug("Aggregate cache miss")
		return Aggregate(ds, sel), nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Aggregate cache failed, computing directly")
		return Aggregate(ds, sel), nil
	}

	// Cached entries keep the selection they were computed for; report the caller's
	result.Selection = sel
	return &result, nil
}
