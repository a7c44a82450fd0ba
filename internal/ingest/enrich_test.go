package ingest

import (
	"context"
	"testing"
	"time"

	"bi-dashboard/internal/lookup"
	"bi-dashboard/internal/models"
	"bi-dashboard/internal/source"
)

func testTables() *lookup.Tables {
	return &lookup.Tables{
		BranchManagers: map[string]lookup.Managers{
			"Branch A": {RBM: "John", BDM: "Jane"},
		},
		BranchDistrict: map[string]string{"Branch A": "Ernakulam"},
		DistrictState:  map[string]string{"Ernakulam": "Kerala"},
		DistrictCoords: map[string]lookup.Coord{"Ernakulam": {Lat: 9.93, Lng: 76.27}},
	}
}

func TestDeriveCalendar(t *testing.T) {
	tests := []struct {
		date    string
		fy      string
		quarter string
		fq      string
	}{
		{"2024-04-15", "FY 2024-25", "Q2", "FQ1"},
		{"2024-03-15", "FY 2023-24", "Q1", "FQ4"},
		{"2024-01-10", "FY 2023-24", "Q1", "FQ4"},
		{"2024-12-31", "FY 2024-25", "Q4", "FQ3"},
		{"2024-07-01", "FY 2024-25", "Q3", "FQ2"},
		{"1999-06-01", "FY 1999-00", "Q2", "FQ1"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, _ := time.Parse("2006-01-02", tt.date)
			row := models.Row{Date: d}
			deriveCalendar(&row)

			if row.FinancialYear != tt.fy {
				t.Errorf("FinancialYear = %q, want %q", row.FinancialYear, tt.fy)
			}
			if row.Quarter != tt.quarter {
				t.Errorf("Quarter = %q, want %q", row.Quarter, tt.quarter)
			}
			if row.FinancialQuarter != tt.fq {
				t.Errorf("FinancialQuarter = %q, want %q", row.FinancialQuarter, tt.fq)
			}
		})
	}
}

func TestDeriveCalendar_Labels(t *testing.T) {
	d, _ := time.Parse("2006-01-02", "2024-05-01")
	row := models.Row{Date: d}
	deriveCalendar(&row)

	if row.Year != 2024 || row.MonthNum != 5 {
		t.Errorf("Year/MonthNum = %d/%d", row.Year, row.MonthNum)
	}
	if row.MonthShort != "May" || row.MonthYear != "May 2024" {
		t.Errorf("month labels = %q / %q", row.MonthShort, row.MonthYear)
	}
}

func TestEnrich_LookupJoins(t *testing.T) {
	e := NewEnricher(testTables())

	ds := models.Dataset{
		Columns: models.NewColumnSet(models.ColDate, models.ColSoldPrice, models.ColBranch),
		Rows: []models.Row{
			{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Branch: "Branch A"},
			{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Branch: "Branch B"},
		},
	}

	out := e.Enrich(ds)

	mapped := out.Rows[0]
	if mapped.RBM != "John" || mapped.BDM != "Jane" {
		t.Errorf("mapped branch managers = %q/%q", mapped.RBM, mapped.BDM)
	}
	if mapped.District != "Ernakulam" || mapped.State != "Kerala" {
		t.Errorf("mapped branch geography = %q/%q", mapped.District, mapped.State)
	}

	unmapped := out.Rows[1]
	if unmapped.RBM != models.NotAssigned || unmapped.BDM != models.NotAssigned {
		t.Errorf("unmapped branch managers = %q/%q, want sentinel", unmapped.RBM, unmapped.BDM)
	}
	if unmapped.District != models.NotAssigned || unmapped.State != models.NotAssigned {
		t.Errorf("unmapped branch geography = %q/%q, want sentinel", unmapped.District, unmapped.State)
	}

	if !out.Columns.Has(models.ColRBM, models.ColBDM, models.ColDistrict, models.ColState) {
		t.Error("enrichment should add the derived organizational columns")
	}
}

func TestEnrich_NoBranchColumn(t *testing.T) {
	e := NewEnricher(testTables())

	ds := models.Dataset{
		Columns: models.NewColumnSet(models.ColDate, models.ColSoldPrice),
		Rows: []models.Row{
			{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	out := e.Enrich(ds)
	if out.Columns.Has(models.ColRBM) {
		t.Error("derived columns should not appear without a branch column")
	}
	if out.Rows[0].Quarter != "Q2" {
		t.Error("calendar fields should still be derived")
	}
}

func TestPipeline_Process(t *testing.T) {
	p := NewPipeline(testTables())

	records := []source.Record{
		{"Date": "2024-05-01", "Sold Price": "100", "Branch": "Branch A"},
	}

	ds, err := p.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process(): %v", err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(ds.Rows))
	}

	row := ds.Rows[0]
	if row.FinancialYear != "FY 2024-25" {
		t.Errorf("FinancialYear = %q", row.FinancialYear)
	}
	if row.RBM != "John" {
		t.Errorf("RBM = %q, want joined manager", row.RBM)
	}
}
