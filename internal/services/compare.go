package services

import (
	"slices"

	"bi-dashboard/internal/models"
)

const comparisonRowLimit = 200

// Comparison dimensions accepted besides "Overall".
var comparisonDimensions = map[string]func(models.Row) string{
	"RBM":      func(r models.Row) string { return r.RBM },
	"BDM":      func(r models.Row) string { return r.BDM },
	"State":    func(r models.Row) string { return r.State },
	"District": func(r models.Row) string { return r.District },
	"Brand":    func(r models.Row) string { return r.Brand },
	"Branch":   func(r models.Row) string { return r.Branch },
}

// ValidComparisonDimension reports whether the dimension is supported.
func ValidComparisonDimension(dimension string) bool {
	if dimension == "Overall" {
		return true
	}
	_, ok := comparisonDimensions[dimension]
	return ok
}

// Comparison produces the comparison table for two period subsets.
// "Overall" yields one row each for revenue, profit and quantity; a
// categorical dimension yields per-value revenue rows over the union
// of values in either period, ranked by combined revenue, capped at
// 200.
func Comparison(period1, period2 models.Subset, dimension string) []models.ComparisonRow {
	var rows []models.ComparisonRow

	if dimension == "Overall" {
		rows = overallComparison(period1, period2)
	} else if value, ok := comparisonDimensions[dimension]; ok {
		rows = dimensionComparison(period1, period2, dimension, value)
	}

	for i := range rows {
		rows[i].Period1Display = FormatCurrency(rows[i].Period1Value)
		rows[i].Period2Display = FormatCurrency(rows[i].Period2Value)
		rows[i].Indicator = GrowthIndicator(rows[i].Growth)
	}
	return rows
}

func overallComparison(period1, period2 models.Subset) []models.ComparisonRow {
	sum := func(sub models.Subset, col models.Column, value func(models.Row) float64) float64 {
		if !sub.Columns.Has(col) {
			return 0
		}
		var total float64
		for _, r := range sub.Rows {
			total += value(r)
		}
		return total
	}

	p1Revenue := sum(period1, models.ColSoldPrice, func(r models.Row) float64 { return r.SoldPrice })
	p2Revenue := sum(period2, models.ColSoldPrice, func(r models.Row) float64 { return r.SoldPrice })
	p1Profit := sum(period1, models.ColProfit, func(r models.Row) float64 { return r.Profit })
	p2Profit := sum(period2, models.ColProfit, func(r models.Row) float64 { return r.Profit })
	p1Qty := sum(period1, models.ColQuantity, func(r models.Row) float64 { return r.Quantity })
	p2Qty := sum(period2, models.ColQuantity, func(r models.Row) float64 { return r.Quantity })

	return []models.ComparisonRow{
		{Dimension: "Revenue", Period1Value: p1Revenue, Period2Value: p2Revenue, Growth: Growth(p2Revenue, p1Revenue)},
		{Dimension: "Profit", Period1Value: p1Profit, Period2Value: p2Profit, Growth: Growth(p2Profit, p1Profit)},
		{Dimension: "Quantity", Period1Value: p1Qty, Period2Value: p2Qty, Growth: Growth(p2Qty, p1Qty)},
	}
}

func dimensionComparison(period1, period2 models.Subset, dimension string, value func(models.Row) string) []models.ComparisonRow {
	p1 := revenueByValue(period1, value)
	p2 := revenueByValue(period2, value)

	type ranked struct {
		value    string
		combined float64
	}
	union := make(map[string]struct{})
	for v := range p1 {
		union[v] = struct{}{}
	}
	for v := range p2 {
		union[v] = struct{}{}
	}

	all := make([]ranked, 0, len(union))
	for v := range union {
		all = append(all, ranked{value: v, combined: p1[v] + p2[v]})
	}
	// Ranked by combined revenue, ties broken by value for
	// deterministic output.
	slices.SortFunc(all, func(a, b ranked) int {
		switch {
		case a.combined > b.combined:
			return -1
		case a.combined < b.combined:
			return 1
		case a.value < b.value:
			return -1
		case a.value > b.value:
			return 1
		default:
			return 0
		}
	})
	if len(all) > comparisonRowLimit {
		all = all[:comparisonRowLimit]
	}

	rows := make([]models.ComparisonRow, 0, len(all))
	for _, entry := range all {
		p1Val := p1[entry.value]
		p2Val := p2[entry.value]

		// Branch names stay unabridged in comparison tables.
		label := entry.value
		if dimension != "Branch" {
			label = truncateLabel(label)
		}

		rows = append(rows, models.ComparisonRow{
			Dimension:    label,
			Period1Value: p1Val,
			Period2Value: p2Val,
			Growth:       round1(Growth(p2Val, p1Val)),
		})
	}
	return rows
}

func revenueByValue(sub models.Subset, value func(models.Row) string) map[string]float64 {
	out := make(map[string]float64)
	if !sub.Columns.Has(models.ColSoldPrice) {
		return out
	}
	for _, r := range sub.Rows {
		out[value(r)] += r.SoldPrice
	}
	return out
}

// BuildComparison assembles the full comparison response: both
// periods' KPI blocks, headline growth figures, absolute differences,
// the comparison rows, and the chart arrays (values in crores).
func BuildComparison(period1, period2 models.Subset, dimension, period1Label, period2Label string) models.ComparisonResult {
	p1KPIs := CalculateKPIs(period1)
	p2KPIs := CalculateKPIs(period2)
	comparisons := Comparison(period1, period2, dimension)

	chart := models.ComparisonChart{
		Labels:  make([]string, 0, len(comparisons)),
		Period1: make([]float64, 0, len(comparisons)),
		Period2: make([]float64, 0, len(comparisons)),
	}
	for _, c := range comparisons {
		chart.Labels = append(chart.Labels, c.Dimension)
		chart.Period1 = append(chart.Period1, c.Period1Value/crore)
		chart.Period2 = append(chart.Period2, c.Period2Value/crore)
	}

	return models.ComparisonResult{
		Period1Label:  period1Label,
		Period2Label:  period2Label,
		Period1KPIs:   p1KPIs,
		Period2KPIs:   p2KPIs,
		RevenueGrowth: round1(Growth(p2KPIs.Revenue, p1KPIs.Revenue)),
		ProfitGrowth:  round1(Growth(p2KPIs.Profit, p1KPIs.Profit)),
		QtyGrowth:     round1(Growth(p2KPIs.Quantity, p1KPIs.Quantity)),
		MarginChange:  round1(p2KPIs.Margin - p1KPIs.Margin),
		RevenueDiff:   p2KPIs.Revenue - p1KPIs.Revenue,
		ProfitDiff:    p2KPIs.Profit - p1KPIs.Profit,
		QtyDiff:       p2KPIs.Quantity - p1KPIs.Quantity,
		Comparisons:   comparisons,
		Chart:         chart,
	}
}
