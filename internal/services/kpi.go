package services

import (
	"math"

	"bi-dashboard/internal/models"
)

// CalculateKPIs computes the headline metrics for a subset. Metrics
// whose backing column is absent from the schema stay at zero.
func CalculateKPIs(sub models.Subset) models.KPIs {
	var revenue, profit, quantity, discount float64

	hasRevenue := sub.Columns.Has(models.ColSoldPrice)
	hasProfit := sub.Columns.Has(models.ColProfit)
	hasQuantity := sub.Columns.Has(models.ColQuantity)
	hasDiscount := sub.Columns.Has(models.ColDiscount)

	for _, row := range sub.Rows {
		if hasRevenue {
			revenue += row.SoldPrice
		}
		if hasProfit {
			profit += row.Profit
		}
		if hasQuantity {
			quantity += row.Quantity
		}
		if hasDiscount {
			discount += row.Discount
		}
	}

	avgPrice := 0.0
	if quantity > 0 {
		avgPrice = math.Round(revenue / quantity)
	}

	return models.KPIs{
		Revenue:         revenue,
		RevenueDisplay:  FormatCurrency(revenue),
		Profit:          profit,
		ProfitDisplay:   FormatCurrency(profit),
		Quantity:        quantity,
		QuantityDisplay: FormatNumber(quantity),
		Discount:        discount,
		DiscountDisplay: FormatCurrency(discount),
		Margin:          safeRatio(profit, revenue),
		DiscountPct:     safeRatio(discount, revenue),
		AvgPrice:        avgPrice,
		Branches:        distinctCount(sub, models.ColBranch, func(r models.Row) string { return r.Branch }),
		Brands:          distinctCount(sub, models.ColBrand, func(r models.Row) string { return r.Brand }),
		Products:        distinctCount(sub, models.ColProduct, func(r models.Row) string { return r.Product }),
		States:          distinctCount(sub, models.ColState, func(r models.Row) string { return r.State }),
		Districts:       distinctCount(sub, models.ColDistrict, func(r models.Row) string { return r.District }),
		Records:         len(sub.Rows),
	}
}

func distinctCount(sub models.Subset, col models.Column, value func(models.Row) string) int {
	if !sub.Columns.Has(col) {
		return 0
	}
	seen := make(map[string]struct{})
	for _, row := range sub.Rows {
		if v := value(row); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
