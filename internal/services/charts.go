package services

import (
	"slices"
	"time"

	"bi-dashboard/internal/lookup"
	"bi-dashboard/internal/models"
)

const (
	districtChartLimit = 15
	productChartLimit  = 20
)

// totals accumulates the per-group sums most charts need.
type totals struct {
	key      string
	revenue  float64
	profit   float64
	quantity float64
	branches map[string]struct{}
}

// groupBy aggregates rows by key in first-appearance order, which
// keeps every chart deterministic for cache identity.
func groupBy(rows []models.Row, key func(models.Row) string) []*totals {
	index := make(map[string]*totals)
	var ordered []*totals

	for _, row := range rows {
		k := key(row)
		g, ok := index[k]
		if !ok {
			g = &totals{key: k, branches: make(map[string]struct{})}
			index[k] = g
			ordered = append(ordered, g)
		}
		g.revenue += row.SoldPrice
		g.profit += row.Profit
		g.quantity += row.Quantity
		if row.Branch != "" {
			g.branches[row.Branch] = struct{}{}
		}
	}
	return ordered
}

func sortByRevenueDesc(groups []*totals) {
	slices.SortStableFunc(groups, func(a, b *totals) int {
		switch {
		case a.revenue > b.revenue:
			return -1
		case a.revenue < b.revenue:
			return 1
		default:
			return 0
		}
	})
}

// MonthlyTrend builds the chronological month-by-month series.
// Returns nil when the subset lacks the date or revenue column, or
// spans fewer than two distinct months.
func MonthlyTrend(sub models.Subset) *models.MonthlyTrend {
	if !sub.Columns.Has(models.ColDate, models.ColSoldPrice) {
		return nil
	}

	groups := groupBy(sub.Rows, func(r models.Row) string { return r.MonthYear })
	if len(groups) < 2 {
		return nil
	}

	// Sort on the parsed label, not the label text: "Apr 2024" must
	// come after "Mar 2024".
	slices.SortStableFunc(groups, func(a, b *totals) int {
		ta, _ := time.Parse("Jan 2006", a.key)
		tb, _ := time.Parse("Jan 2006", b.key)
		return ta.Compare(tb)
	})

	trend := &models.MonthlyTrend{
		Labels:   make([]string, 0, len(groups)),
		Revenue:  make([]float64, 0, len(groups)),
		Profit:   make([]float64, 0, len(groups)),
		Quantity: make([]float64, 0, len(groups)),
	}
	for _, g := range groups {
		trend.Labels = append(trend.Labels, g.key)
		trend.Revenue = append(trend.Revenue, round2(g.revenue/crore))
		trend.Profit = append(trend.Profit, round2(g.profit/crore))
		trend.Quantity = append(trend.Quantity, g.quantity)
	}
	return trend
}

// HierarchyData builds the RBM chart series plus the flattened
// (rbm, bdm, branch) groups for the sunburst.
func HierarchyData(sub models.Subset) *models.HierarchyData {
	if !sub.Columns.Has(models.ColRBM, models.ColBDM) {
		return nil
	}

	rbmGroups := groupBy(sub.Rows, func(r models.Row) string { return r.RBM })
	sortByRevenueDesc(rbmGroups)

	series := models.RBMSeries{
		Labels:  make([]string, 0, len(rbmGroups)),
		Revenue: make([]float64, 0, len(rbmGroups)),
		Profit:  make([]float64, 0, len(rbmGroups)),
		Margin:  make([]float64, 0, len(rbmGroups)),
	}
	for _, g := range rbmGroups {
		series.Labels = append(series.Labels, g.key)
		series.Revenue = append(series.Revenue, round2(g.revenue/crore))
		series.Profit = append(series.Profit, round2(g.profit/crore))
		series.Margin = append(series.Margin, safeRatio(g.profit, g.revenue))
	}

	type levelKey struct{ rbm, bdm, branch string }
	index := make(map[levelKey]*models.HierarchyEntry)
	var flattened []*models.HierarchyEntry

	for _, row := range sub.Rows {
		k := levelKey{row.RBM, row.BDM, row.Branch}
		e, ok := index[k]
		if !ok {
			e = &models.HierarchyEntry{RBM: row.RBM, BDM: row.BDM, Branch: row.Branch}
			index[k] = e
			flattened = append(flattened, e)
		}
		e.Revenue += row.SoldPrice
		e.Profit += row.Profit
	}

	entries := make([]models.HierarchyEntry, 0, len(flattened))
	for _, e := range flattened {
		entries = append(entries, *e)
	}

	return &models.HierarchyData{RBM: series, Hierarchy: entries}
}

// GeographicData builds the state series and the top-15 district
// groups nested under their states.
func GeographicData(sub models.Subset) *models.GeographicData {
	if !sub.Columns.Has(models.ColState, models.ColDistrict) {
		return nil
	}

	stateGroups := groupBy(sub.Rows, func(r models.Row) string { return r.State })
	sortByRevenueDesc(stateGroups)

	states := models.StateSeries{
		Labels:       make([]string, 0, len(stateGroups)),
		Revenue:      make([]float64, 0, len(stateGroups)),
		ProfitMargin: make([]float64, 0, len(stateGroups)),
		Branches:     make([]int, 0, len(stateGroups)),
	}
	for _, g := range stateGroups {
		states.Labels = append(states.Labels, g.key)
		states.Revenue = append(states.Revenue, round2(g.revenue/crore))
		states.ProfitMargin = append(states.ProfitMargin, safeRatio(g.profit, g.revenue))
		states.Branches = append(states.Branches, len(g.branches))
	}

	type geoKey struct{ state, district string }
	index := make(map[geoKey]*totals)
	stateOf := make(map[*totals]string)
	var districtGroups []*totals

	for _, row := range sub.Rows {
		k := geoKey{row.State, row.District}
		g, ok := index[k]
		if !ok {
			g = &totals{key: row.District, branches: make(map[string]struct{})}
			index[k] = g
			stateOf[g] = row.State
			districtGroups = append(districtGroups, g)
		}
		g.revenue += row.SoldPrice
		g.profit += row.Profit
		if row.Branch != "" {
			g.branches[row.Branch] = struct{}{}
		}
	}

	sortByRevenueDesc(districtGroups)
	if len(districtGroups) > districtChartLimit {
		districtGroups = districtGroups[:districtChartLimit]
	}

	districts := make([]models.DistrictEntry, 0, len(districtGroups))
	for _, g := range districtGroups {
		districts = append(districts, models.DistrictEntry{
			State:    stateOf[g],
			District: g.key,
			Revenue:  g.revenue,
			Profit:   g.profit,
			Branches: len(g.branches),
		})
	}

	return &models.GeographicData{States: states, Districts: districts}
}

// MapChart joins district aggregates with the coordinate table.
// Districts without coordinates are dropped from the output.
func MapChart(sub models.Subset, tables *lookup.Tables) models.MapData {
	out := models.MapData{Districts: []models.MapDistrict{}}
	if sub.Empty() || !sub.Columns.Has(models.ColDistrict) {
		return out
	}

	groups := groupBy(sub.Rows, func(r models.Row) string { return r.District })
	slices.SortStableFunc(groups, func(a, b *totals) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		default:
			return 0
		}
	})

	for _, g := range groups {
		coord, ok := tables.CoordFor(g.key)
		if !ok {
			continue
		}
		out.Districts = append(out.Districts, models.MapDistrict{
			Name:           g.key,
			Lat:            coord.Lat,
			Lng:            coord.Lng,
			Revenue:        g.revenue,
			RevenueDisplay: FormatCurrency(g.revenue),
			Profit:         g.profit,
			Margin:         safeRatio(g.profit, g.revenue),
			Branches:       len(g.branches),
		})
	}
	return out
}

// ProductChart keeps the 20 most profitable products, then re-orders
// that top slice ascending by profit so horizontal bars render with
// the largest on top. Rows without a product value are excluded.
func ProductChart(sub models.Subset) models.ProductChart {
	empty := models.ProductChart{
		Labels:       []string{},
		Revenue:      []float64{},
		Profit:       []float64{},
		ProfitMargin: []float64{},
		Quantity:     []float64{},
	}
	if sub.Empty() || !sub.Columns.Has(models.ColProduct, models.ColSoldPrice) {
		return empty
	}

	valid := make([]models.Row, 0, len(sub.Rows))
	for _, row := range sub.Rows {
		if row.Product != "" {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return empty
	}

	groups := groupBy(valid, func(r models.Row) string { return r.Product })

	slices.SortStableFunc(groups, func(a, b *totals) int {
		switch {
		case a.profit > b.profit:
			return -1
		case a.profit < b.profit:
			return 1
		default:
			return 0
		}
	})
	if len(groups) > productChartLimit {
		groups = groups[:productChartLimit]
	}
	slices.Reverse(groups)

	chart := models.ProductChart{
		Labels:       make([]string, 0, len(groups)),
		Revenue:      make([]float64, 0, len(groups)),
		Profit:       make([]float64, 0, len(groups)),
		ProfitMargin: make([]float64, 0, len(groups)),
		Quantity:     make([]float64, 0, len(groups)),
	}
	for _, g := range groups {
		chart.Labels = append(chart.Labels, truncateLabel(g.key))
		chart.Revenue = append(chart.Revenue, round2(g.revenue/crore))
		chart.Profit = append(chart.Profit, round2(g.profit/lakh))
		chart.ProfitMargin = append(chart.ProfitMargin, safeRatio(g.profit, g.revenue))
		chart.Quantity = append(chart.Quantity, g.quantity)
	}
	return chart
}

// RBMPerformance builds the per-RBM chart series sorted by revenue
// descending.
func RBMPerformance(sub models.Subset) *models.RBMPerformance {
	if !sub.Columns.Has(models.ColRBM, models.ColSoldPrice) {
		return nil
	}

	groups := groupBy(sub.Rows, func(r models.Row) string { return r.RBM })
	sortByRevenueDesc(groups)

	perf := &models.RBMPerformance{
		Labels:       make([]string, 0, len(groups)),
		Revenue:      make([]float64, 0, len(groups)),
		Profit:       make([]float64, 0, len(groups)),
		ProfitMargin: make([]float64, 0, len(groups)),
		Quantity:     make([]float64, 0, len(groups)),
	}
	for _, g := range groups {
		perf.Labels = append(perf.Labels, g.key)
		perf.Revenue = append(perf.Revenue, round2(g.revenue/crore))
		perf.Profit = append(perf.Profit, round2(g.profit/crore))
		perf.ProfitMargin = append(perf.ProfitMargin, safeRatio(g.profit, g.revenue))
		perf.Quantity = append(perf.Quantity, g.quantity)
	}
	return perf
}
