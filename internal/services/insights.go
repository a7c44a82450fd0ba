package services

import (
	"fmt"
	"math"
	"slices"
	"time"

	"bi-dashboard/internal/models"
)

const lowMarginThreshold = 5.0

// GenerateInsights produces the four narrative dashboard sentences.
// It is deterministic for a given subset and never fails: any internal
// panic degrades to the in-progress placeholder set.
func GenerateInsights(sub models.Subset) (insights models.Insights) {
	if sub.Empty() {
		return models.Insights{
			TopPerformer: "No data available",
			GrowthTrend:  "Load data to see trends",
			Highlight:    "Apply filters to view insights",
			Alert:        "No alerts",
		}
	}

	defer func() {
		if r := recover(); r != nil {
			insights = models.Insights{
				TopPerformer: "Analysis in progress...",
				GrowthTrend:  "Calculating trends...",
				Highlight:    "Processing data...",
				Alert:        "Checking metrics...",
			}
		}
	}()

	if sub.Columns.Has(models.ColBranch, models.ColSoldPrice) {
		if branch, revenue, ok := topGroup(sub.Rows, func(r models.Row) string { return r.Branch }); ok {
			insights.TopPerformer = fmt.Sprintf("%s leads with %s in revenue", branch, FormatCurrency(revenue))
		}
	}

	if sub.Columns.Has(models.ColDate, models.ColSoldPrice) {
		monthly := groupBy(sub.Rows, func(r models.Row) string { return r.MonthYear })
		if len(monthly) >= 2 {
			slices.SortStableFunc(monthly, func(a, b *totals) int {
				ta, _ := time.Parse("Jan 2006", a.key)
				tb, _ := time.Parse("Jan 2006", b.key)
				return ta.Compare(tb)
			})
			last := monthly[len(monthly)-1].revenue
			prev := monthly[len(monthly)-2].revenue
			growth := Growth(last, prev)
			direction := "down"
			if growth > 0 {
				direction = "up"
			}
			insights.GrowthTrend = fmt.Sprintf("Revenue is %s %.1f%% compared to previous month", direction, math.Abs(growth))
		}
	}

	if sub.Columns.Has(models.ColRBM, models.ColProfit, models.ColSoldPrice) {
		groups := groupBy(sub.Rows, func(r models.Row) string { return r.RBM })
		bestMargin := math.Inf(-1)
		bestRBM := ""
		for _, g := range groups {
			if g.revenue <= 0 {
				continue
			}
			if margin := safeRatio(g.profit, g.revenue); margin > bestMargin {
				bestMargin = margin
				bestRBM = g.key
			}
		}
		if bestRBM != "" {
			insights.Highlight = fmt.Sprintf("RBM %s has the best margin at %.1f%%", bestRBM, bestMargin)
		}
	}

	if sub.Columns.Has(models.ColBranch, models.ColProfit, models.ColSoldPrice) {
		groups := groupBy(sub.Rows, func(r models.Row) string { return r.Branch })
		low := 0
		for _, g := range groups {
			if safeRatio(g.profit, g.revenue) < lowMarginThreshold {
				low++
			}
		}
		if low > 0 {
			insights.Alert = fmt.Sprintf("%d branches have profit margin below 5%%", low)
		} else {
			insights.Alert = "All branches performing above minimum margin threshold"
		}
	}

	return insights
}

func topGroup(rows []models.Row, key func(models.Row) string) (string, float64, bool) {
	groups := groupBy(rows, key)
	if len(groups) == 0 {
		return "", 0, false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.revenue > best.revenue {
			best = g
		}
	}
	return best.key, best.revenue, true
}
