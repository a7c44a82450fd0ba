package services

import (
	"slices"

	"bi-dashboard/internal/models"
)

// FilterOptions lists every selectable value per dimension. Years and
// financial years come newest first. The NOT ASSIGNED sentinel is
// excluded from the derived dimensions but branches are listed
// verbatim, so an unmapped branch stays selectable.
func FilterOptions(ds models.Dataset) models.FilterOptions {
	opts := models.FilterOptions{
		Years:          []int{},
		FinancialYears: []string{},
		Quarters:       []string{},
		States:         []string{},
		Districts:      []string{},
		RBMs:           []string{},
		BDMs:           []string{},
		Branches:       []string{},
		Brands:         []string{},
		Products:       []string{},
	}

	if ds.Columns.Has(models.ColDate) {
		years := make(map[int]struct{})
		for _, r := range ds.Rows {
			years[r.Year] = struct{}{}
		}
		for y := range years {
			opts.Years = append(opts.Years, y)
		}
		slices.SortFunc(opts.Years, func(a, b int) int { return b - a })

		opts.FinancialYears = distinctSorted(ds.Rows, func(r models.Row) string { return r.FinancialYear }, false)
		slices.Reverse(opts.FinancialYears)

		opts.Quarters = distinctSorted(ds.Rows, func(r models.Row) string { return r.Quarter }, false)
	}

	if ds.Columns.Has(models.ColState) {
		opts.States = distinctSorted(ds.Rows, func(r models.Row) string { return r.State }, true)
	}
	if ds.Columns.Has(models.ColDistrict) {
		opts.Districts = distinctSorted(ds.Rows, func(r models.Row) string { return r.District }, true)
	}
	if ds.Columns.Has(models.ColRBM) {
		opts.RBMs = distinctSorted(ds.Rows, func(r models.Row) string { return r.RBM }, true)
	}
	if ds.Columns.Has(models.ColBDM) {
		opts.BDMs = distinctSorted(ds.Rows, func(r models.Row) string { return r.BDM }, true)
	}
	if ds.Columns.Has(models.ColBranch) {
		opts.Branches = distinctSorted(ds.Rows, func(r models.Row) string { return r.Branch }, false)
	}
	if ds.Columns.Has(models.ColBrand) {
		opts.Brands = distinctSorted(ds.Rows, func(r models.Row) string { return r.Brand }, false)
	}
	if ds.Columns.Has(models.ColProduct) {
		opts.Products = distinctSorted(ds.Rows, func(r models.Row) string { return r.Product }, false)
	}

	return opts
}

func distinctSorted(rows []models.Row, value func(models.Row) string, dropSentinel bool) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		v := value(r)
		if v == "" {
			continue
		}
		if dropSentinel && v == models.NotAssigned {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Summary describes the loaded dataset for the load response.
func Summary(ds models.Dataset) models.DatasetSummary {
	summary := models.DatasetSummary{TotalRecords: len(ds.Rows)}

	if ds.Columns.Has(models.ColBranch) {
		all := make(map[string]struct{})
		assigned := make(map[string]struct{})
		for _, r := range ds.Rows {
			if r.Branch == "" {
				continue
			}
			all[r.Branch] = struct{}{}
			if r.RBM != models.NotAssigned && r.RBM != "" {
				assigned[r.Branch] = struct{}{}
			}
		}
		summary.TotalBranches = len(all)
		summary.AssignedBranches = len(assigned)
	}

	if ds.Columns.Has(models.ColDate) && len(ds.Rows) > 0 {
		minDate, maxDate := ds.Rows[0].Date, ds.Rows[0].Date
		for _, r := range ds.Rows[1:] {
			if r.Date.Before(minDate) {
				minDate = r.Date
			}
			if r.Date.After(maxDate) {
				maxDate = r.Date
			}
		}
		summary.DateRange = models.DateRange{
			Min: minDate.Format("2006-01-02"),
			Max: maxDate.Format("2006-01-02"),
		}
	}

	return summary
}
