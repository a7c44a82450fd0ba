package services

import (
	"slices"
	"testing"

	"bi-dashboard/internal/models"
)

func TestFilterOptions(t *testing.T) {
	ds := testDataset()
	opts := FilterOptions(ds)

	if !slices.Equal(opts.Years, []int{2024, 2023}) {
		t.Errorf("Years = %v, want newest first", opts.Years)
	}
	if len(opts.FinancialYears) != 2 || opts.FinancialYears[0] != "FY 2024-25" {
		t.Errorf("FinancialYears = %v, want newest first", opts.FinancialYears)
	}
	if !slices.Equal(opts.Quarters, []string{"Q1", "Q2", "Q3", "Q4"}) {
		t.Errorf("Quarters = %v", opts.Quarters)
	}
	if !slices.Equal(opts.Branches, []string{"Kochi MG Road", "Trivandrum Central"}) {
		t.Errorf("Branches = %v", opts.Branches)
	}
	if !slices.Equal(opts.Brands, []string{"Acme", "Beta"}) {
		t.Errorf("Brands = %v", opts.Brands)
	}
}

func TestFilterOptions_SentinelExcludedExceptBranches(t *testing.T) {
	unmapped := saleRow("2024-05-01", "Ghost Branch", "B", "P", 100)
	unmapped.RBM = models.NotAssigned
	unmapped.BDM = models.NotAssigned
	unmapped.District = models.NotAssigned
	unmapped.State = models.NotAssigned

	mapped := saleRow("2024-05-01", "Kochi MG Road", "B", "P", 100)

	ds := models.Dataset{Columns: allColumns(), Rows: []models.Row{unmapped, mapped}}
	opts := FilterOptions(ds)

	if slices.Contains(opts.RBMs, models.NotAssigned) {
		t.Error("RBMs should exclude the sentinel")
	}
	if slices.Contains(opts.Districts, models.NotAssigned) {
		t.Error("Districts should exclude the sentinel")
	}
	if !slices.Contains(opts.Branches, "Ghost Branch") {
		t.Error("an unmapped branch must stay selectable")
	}
}

func TestFilterOptions_MissingColumns(t *testing.T) {
	ds := models.Dataset{
		Columns: models.NewColumnSet(models.ColSoldPrice),
		Rows:    []models.Row{saleRow("2024-05-01", "A", "B", "P", 100)},
	}

	opts := FilterOptions(ds)
	if len(opts.Years) != 0 || len(opts.Branches) != 0 {
		t.Error("options for absent columns should stay empty")
	}
	if opts.Years == nil || opts.Branches == nil {
		t.Error("option lists should be empty slices, not nil")
	}
}

func TestSummary(t *testing.T) {
	ds := testDataset()
	unmapped := saleRow("2024-06-01", "Ghost Branch", "B", "P", 100)
	unmapped.RBM = models.NotAssigned
	ds.Rows = append(ds.Rows, unmapped)

	summary := Summary(ds)
	if summary.TotalRecords != 5 {
		t.Errorf("TotalRecords = %d, want 5", summary.TotalRecords)
	}
	if summary.TotalBranches != 3 {
		t.Errorf("TotalBranches = %d, want 3", summary.TotalBranches)
	}
	if summary.AssignedBranches != 2 {
		t.Errorf("AssignedBranches = %d, want 2", summary.AssignedBranches)
	}
	if summary.DateRange.Min != "2023-11-05" || summary.DateRange.Max != "2024-07-20" {
		t.Errorf("DateRange = %+v", summary.DateRange)
	}
}
