package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"bi-dashboard/internal/models"
	"bi-dashboard/internal/observability"
	"bi-dashboard/internal/source"
)

// ErrNotLoaded is returned when no dataset could be obtained: the
// remote fetch failed or produced no rows, and nothing valid is
// cached.
var ErrNotLoaded = errors.New("dataset not loaded")

// Fetcher retrieves every raw record from the remote store.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]source.Record, error)
}

// Processor turns raw records into the enriched dataset.
type Processor interface {
	Process(ctx context.Context, records []source.Record) (models.Dataset, error)
}

// DatasetCache holds the enriched dataset with a time-based expiry.
// Refreshes are single-flighted: concurrent callers that miss share
// one upstream fetch. A refresh replaces the cached dataset only on
// non-empty success, and then fires the registered invalidation hooks
// so epoch-keyed caches downstream are cleared.
type DatasetCache struct {
	fetcher  Fetcher
	pipeline Processor
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics

	clock func() time.Time
	group singleflight.Group

	mu        sync.Mutex
	data      models.Dataset
	loadedAt  time.Time
	onReplace []func()
}

func NewDatasetCache(fetcher Fetcher, pipeline Processor, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *DatasetCache {
	return &DatasetCache{
		fetcher:  fetcher,
		pipeline: pipeline,
		ttl:      ttl,
		logger:   logger,
		metrics:  metrics,
		clock:    time.Now,
	}
}

// OnReplace registers a hook fired after a successful refresh installs
// a new dataset epoch.
func (c *DatasetCache) OnReplace(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReplace = append(c.onReplace, fn)
}

// Get returns the cached dataset when it is fresh, otherwise refreshes
// from the remote store. On refresh failure it returns ErrNotLoaded
// and an empty dataset; an existing cached dataset is left untouched
// for later calls.
func (c *DatasetCache) Get(ctx context.Context, forceRefresh bool) (models.Dataset, error) {
	if !forceRefresh {
		c.mu.Lock()
		if !c.data.Empty() && c.clock().Sub(c.loadedAt) < c.ttl {
			ds := c.data
			c.mu.Unlock()
			if c.metrics != nil {
				c.metrics.CacheHit(observability.CacheDataset)
			}
			return ds, nil
		}
		c.mu.Unlock()
	}

	if c.metrics != nil {
		c.metrics.CacheMiss(observability.CacheDataset)
	}

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return models.Dataset{}, err
	}
	return v.(models.Dataset), nil
}

func (c *DatasetCache) refresh(ctx context.Context) (models.Dataset, error) {
	start := c.clock()

	records, err := c.fetcher.FetchAll(ctx)
	if err != nil {
		c.refreshFailed("fetch failed", err)
		return models.Dataset{}, ErrNotLoaded
	}

	ds, err := c.pipeline.Process(ctx, records)
	if err != nil {
		c.refreshFailed("processing failed", err)
		return models.Dataset{}, ErrNotLoaded
	}

	if ds.Empty() {
		c.refreshFailed("no rows after processing", nil)
		return models.Dataset{}, ErrNotLoaded
	}

	c.mu.Lock()
	c.data = ds
	c.loadedAt = c.clock()
	hooks := make([]func(), len(c.onReplace))
	copy(hooks, c.onReplace)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	if c.metrics != nil {
		c.metrics.DatasetRefreshes.WithLabelValues("success").Inc()
	}
	c.logger.Info("dataset refreshed",
		"rows", len(ds.Rows),
		"duration", c.clock().Sub(start),
	)
	return ds, nil
}

func (c *DatasetCache) refreshFailed(reason string, err error) {
	if c.metrics != nil {
		c.metrics.DatasetRefreshes.WithLabelValues("failure").Inc()
	}
	c.logger.Error("dataset refresh failed", "reason", reason, "error", err)
}

// Stats reports the cache's current state for the admin endpoint.
func (c *DatasetCache) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := map[string]any{
		"records": len(c.data.Rows),
	}
	if !c.loadedAt.IsZero() {
		stats["loaded_at"] = c.loadedAt
		stats["age"] = c.clock().Sub(c.loadedAt).String()
	}
	return stats
}
