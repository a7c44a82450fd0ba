package services

import (
	"bi-dashboard/internal/models"
	"bi-dashboard/internal/observability"
)

// FilterEngine applies filter specifications to a dataset, memoizing
// subsets by fingerprint. The memo cache is cleared whenever the
// dataset cache installs a new epoch.
type FilterEngine struct {
	cache   *memoCache[models.Subset]
	metrics *observability.Metrics
}

func NewFilterEngine(capacity int, metrics *observability.Metrics) *FilterEngine {
	return &FilterEngine{
		cache:   newMemoCache[models.Subset](capacity),
		metrics: metrics,
	}
}

// Apply returns the subset of rows matching the spec, preserving
// dataset row order.
func (e *FilterEngine) Apply(ds models.Dataset, spec models.FilterSpec) models.Subset {
	key := Fingerprint(spec)

	if sub, ok := e.cache.get(key); ok {
		if e.metrics != nil {
			e.metrics.CacheHit(observability.CacheFilter)
		}
		return sub
	}
	if e.metrics != nil {
		e.metrics.CacheMiss(observability.CacheFilter)
	}

	sub := applySpec(ds, spec)
	e.cache.put(key, sub)
	return sub
}

// Clear drops every memoized subset.
func (e *FilterEngine) Clear() { e.cache.clear() }

// CachedSubsets reports how many subsets are currently memoized.
func (e *FilterEngine) CachedSubsets() int { return e.cache.len() }

// predicate is a compiled filter spec: set clauses become hash sets
// so matching is O(1) per row.
type predicate struct {
	spec      models.FilterSpec
	states    map[string]struct{}
	districts map[string]struct{}
	rbms      map[string]struct{}
	bdms      map[string]struct{}
	branches  map[string]struct{}
	brands    map[string]struct{}
	products  map[string]struct{}
}

func compileSpec(spec models.FilterSpec) predicate {
	return predicate{
		spec:      spec,
		states:    toSet(spec.States),
		districts: toSet(spec.Districts),
		rbms:      toSet(spec.RBMs),
		bdms:      toSet(spec.BDMs),
		branches:  toSet(spec.Branches),
		brands:    toSet(spec.Brands),
		products:  toSet(spec.Products),
	}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func applySpec(ds models.Dataset, spec models.FilterSpec) models.Subset {
	p := compileSpec(spec)

	matched := make([]models.Row, 0)
	for _, row := range ds.Rows {
		if p.matches(row) {
			matched = append(matched, row)
		}
	}
	return models.Subset{Rows: matched, Columns: ds.Columns}
}

func (p predicate) matches(row models.Row) bool {
	// At most one period mode is active.
	switch {
	case p.spec.PeriodType == models.PeriodYear && p.spec.Year != 0:
		if row.Year != p.spec.Year {
			return false
		}
	case p.spec.PeriodType == models.PeriodFY && p.spec.FY != "":
		if row.FinancialYear != p.spec.FY {
			return false
		}
	case p.spec.PeriodType == models.PeriodQuarter && p.spec.Year != 0 && p.spec.Quarter != "":
		if row.Year != p.spec.Year || row.Quarter != p.spec.Quarter {
			return false
		}
	}

	if !inSet(p.states, row.State) ||
		!inSet(p.districts, row.District) ||
		!inSet(p.rbms, row.RBM) ||
		!inSet(p.bdms, row.BDM) ||
		!inSet(p.branches, row.Branch) ||
		!inSet(p.brands, row.Brand) ||
		!inSet(p.products, row.Product) {
		return false
	}

	if p.spec.HasPriceRange() {
		if row.SoldPrice < *p.spec.PriceMin || row.SoldPrice > *p.spec.PriceMax {
			return false
		}
	}

	return true
}

// inSet is vacuously true for an absent clause.
func inSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
