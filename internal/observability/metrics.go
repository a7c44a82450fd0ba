package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the engine's operational counters: per-cache
// hit/miss totals, upstream fetch outcomes, and request latency.
type Metrics struct {
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	DatasetRefreshes *prometheus.CounterVec
	SourcePages      prometheus.Counter
	SourceRecords    prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// Cache label values used with CacheHits/CacheMisses.
const (
	CacheDataset   = "dataset"
	CacheFilter    = "filter"
	CacheDashboard = "dashboard"
)

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "Cache hits by cache name.",
		}, []string{"cache"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_cache_misses_total",
			Help: "Cache misses by cache name.",
		}, []string{"cache"}),
		DatasetRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_dataset_refresh_total",
			Help: "Dataset refresh attempts by outcome.",
		}, []string{"status"}),
		SourcePages: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_source_pages_total",
			Help: "Pages fetched from the remote record store.",
		}),
		SourceRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_source_records_total",
			Help: "Raw records fetched from the remote record store.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) CacheHit(cache string)  { m.CacheHits.WithLabelValues(cache).Inc() }
func (m *Metrics) CacheMiss(cache string) { m.CacheMisses.WithLabelValues(cache).Inc() }

func (m *Metrics) ObserveRequest(method, path, status string, duration time.Duration) {
	m.RequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
