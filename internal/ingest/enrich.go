package ingest

import (
	"context"
	"fmt"

	"bi-dashboard/internal/lookup"
	"bi-dashboard/internal/models"
	"bi-dashboard/internal/source"
)

// Enricher derives calendar fields and joins the organizational and
// geographic lookup tables onto normalized rows.
type Enricher struct {
	tables *lookup.Tables
}

func NewEnricher(tables *lookup.Tables) *Enricher {
	return &Enricher{tables: tables}
}

// Enrich augments every row in place and extends the column set with
// the derived organizational columns when a branch column exists.
func (e *Enricher) Enrich(ds models.Dataset) models.Dataset {
	hasBranch := ds.Columns.Has(models.ColBranch)

	for i := range ds.Rows {
		row := &ds.Rows[i]
		deriveCalendar(row)
		if hasBranch {
			e.joinOrganization(row)
			e.joinGeography(row)
		}
	}

	if hasBranch {
		ds.Columns.Add(models.ColRBM)
		ds.Columns.Add(models.ColBDM)
		ds.Columns.Add(models.ColDistrict)
		ds.Columns.Add(models.ColState)
	}

	return ds
}

// The financial year starts in April: month >= 4 belongs to
// "FY year-(year+1)", anything earlier to "FY (year-1)-year".
func deriveCalendar(row *models.Row) {
	year := row.Date.Year()
	month := int(row.Date.Month())

	row.Year = year
	row.MonthNum = month
	row.MonthShort = row.Date.Format("Jan")
	row.MonthYear = row.Date.Format("Jan 2006")

	fyStart := year
	if month < 4 {
		fyStart = year - 1
	}
	row.FinancialYear = fmt.Sprintf("FY %d-%02d", fyStart, (fyStart+1)%100)

	row.Quarter = fmt.Sprintf("Q%d", (month-1)/3+1)

	adjusted := month - 3
	if month < 4 {
		adjusted = month + 9
	}
	row.FinancialQuarter = fmt.Sprintf("FQ%d", (adjusted-1)/3+1)
}

func (e *Enricher) joinOrganization(row *models.Row) {
	if m, ok := e.tables.ManagersFor(row.Branch); ok {
		row.RBM = m.RBM
		row.BDM = m.BDM
	} else {
		row.RBM = models.NotAssigned
		row.BDM = models.NotAssigned
	}
}

// A branch without a district mapping cannot resolve a state either;
// both fall back to the sentinel.
func (e *Enricher) joinGeography(row *models.Row) {
	district, ok := e.tables.DistrictFor(row.Branch)
	if !ok {
		row.District = models.NotAssigned
		row.State = models.NotAssigned
		return
	}
	row.District = district

	if state, ok := e.tables.StateFor(district); ok {
		row.State = state
	} else {
		row.State = models.NotAssigned
	}
}

// Pipeline runs normalization and enrichment as one step for the
// dataset cache.
type Pipeline struct {
	enricher *Enricher
}

func NewPipeline(tables *lookup.Tables) *Pipeline {
	return &Pipeline{enricher: NewEnricher(tables)}
}

func (p *Pipeline) Process(ctx context.Context, records []source.Record) (models.Dataset, error) {
	ds, err := Normalize(ctx, records)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("normalize: %w", err)
	}
	return p.enricher.Enrich(ds), nil
}
