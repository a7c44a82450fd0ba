package services

import (
	"context"
	"log/slog"

	"bi-dashboard/internal/lookup"
	"bi-dashboard/internal/models"
	"bi-dashboard/internal/observability"
)

const tablePreviewRows = 100

// Engine composes the dataset cache, filter engine and aggregation
// library into full-dashboard computations, memoized per filter
// fingerprint independently of the per-subset cache.
type Engine struct {
	datasets *DatasetCache
	filters  *FilterEngine
	tables   *lookup.Tables
	results  *memoCache[*models.DashboardData]
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func NewEngine(datasets *DatasetCache, filters *FilterEngine, tables *lookup.Tables, resultCapacity int, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	e := &Engine{
		datasets: datasets,
		filters:  filters,
		tables:   tables,
		results:  newMemoCache[*models.DashboardData](resultCapacity),
		logger:   logger,
		metrics:  metrics,
	}

	// Subset and dashboard results are keyed against a dataset epoch;
	// a new epoch invalidates both.
	datasets.OnReplace(filters.Clear)
	datasets.OnReplace(e.results.clear)

	return e
}

// Data exposes the dataset cache for load and option endpoints.
func (e *Engine) Data(ctx context.Context, forceRefresh bool) (models.Dataset, error) {
	return e.datasets.Get(ctx, forceRefresh)
}

// Filter obtains the current dataset and applies the spec.
func (e *Engine) Filter(ctx context.Context, spec models.FilterSpec) (models.Subset, error) {
	ds, err := e.datasets.Get(ctx, false)
	if err != nil {
		return models.Subset{}, err
	}
	return e.filters.Apply(ds, spec), nil
}

// Dashboard computes (or returns the memoized) full dashboard result
// for a filter spec.
func (e *Engine) Dashboard(ctx context.Context, spec models.FilterSpec) (*models.DashboardData, error) {
	key := Fingerprint(spec)

	if cached, ok := e.results.get(key); ok {
		if e.metrics != nil {
			e.metrics.CacheHit(observability.CacheDashboard)
		}
		e.logger.Debug("dashboard served from cache", "fingerprint", key[:8])
		return cached, nil
	}
	if e.metrics != nil {
		e.metrics.CacheMiss(observability.CacheDashboard)
	}

	sub, err := e.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}

	result := &models.DashboardData{
		KPIs:     CalculateKPIs(sub),
		Insights: GenerateInsights(sub),
		Charts: models.DashboardCharts{
			Monthly:    MonthlyTrend(sub),
			Hierarchy:  HierarchyData(sub),
			Geographic: GeographicData(sub),
			Product:    ProductChart(sub),
			RBM:        RBMPerformance(sub),
			Map:        MapChart(sub, e.tables),
		},
		Table: models.TablePreview{
			Data:         ExportRecords(sub.Head(tablePreviewRows)),
			TotalRecords: len(sub.Rows),
		},
	}

	e.results.put(key, result)
	return result, nil
}

// Map runs the map aggregation with the engine's coordinate table.
func (e *Engine) Map(sub models.Subset) models.MapData {
	return MapChart(sub, e.tables)
}

// Stats reports cache statistics for the admin endpoint.
func (e *Engine) Stats() map[string]any {
	stats := e.datasets.Stats()
	stats["filter_cache_entries"] = e.filters.CachedSubsets()
	stats["result_cache_entries"] = e.results.len()
	return stats
}
