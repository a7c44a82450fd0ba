// Package ingest turns loosely-typed records from the remote store
// into the canonical enriched dataset the query engine operates on.
package ingest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bi-dashboard/internal/models"
	"bi-dashboard/internal/source"
)

const (
	normalizeBatchSize = 10000
	maxWorkers         = 10
)

// aliasRule maps source field names onto a canonical column by
// case-insensitive substring matching. Rules are evaluated in order;
// the first match wins, mirroring how the upstream schema names drift
// (QTY, Sold Price, Direct Discount, Product Code, ...).
type aliasRule struct {
	col      models.Column
	contains []string
	excludes []string
}

var aliasRules = []aliasRule{
	{col: models.ColQuantity, contains: []string{"qty"}},
	{col: models.ColSoldPrice, contains: []string{"sold"}},
	{col: models.ColSoldPrice, contains: []string{"price"}},
	{col: models.ColProfit, contains: []string{"profit"}},
	{col: models.ColDiscount, contains: []string{"discount"}},
	{col: models.ColBranch, contains: []string{"branch"}},
	{col: models.ColBrand, contains: []string{"brand"}},
	{col: models.ColProductCode, contains: []string{"product", "code"}},
	{col: models.ColProduct, contains: []string{"product"}, excludes: []string{"code"}},
}

// requiredColumns must resolve for a load to proceed at all; a schema
// without them cannot produce a meaningful dataset.
var requiredColumns = []models.Column{models.ColDate, models.ColSoldPrice}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02-01-2006",
}

// schema is the resolved mapping from source field names to canonical
// columns for one load.
type schema struct {
	fields  map[string]models.Column
	dateKey string
	columns models.ColumnSet
}

// resolveSchema inspects the field names of one record and builds the
// declarative rename table. It fails with an error naming the missing
// required columns rather than guessing silently.
func resolveSchema(keys []string) (*schema, error) {
	s := &schema{
		fields:  make(map[string]models.Column),
		columns: models.NewColumnSet(),
	}

	for _, key := range keys {
		trimmed := strings.TrimSpace(key)
		lower := strings.ToLower(trimmed)

		// The date column is matched by exact name, not substring:
		// the store exposes it as Month, date, or Date.
		if s.dateKey == "" && (lower == "month" || lower == "date") {
			s.dateKey = key
			s.columns.Add(models.ColDate)
			continue
		}

		if col, ok := matchAlias(lower); ok {
			if _, taken := s.columns[col]; taken {
				continue
			}
			s.fields[key] = col
			s.columns.Add(col)
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if !s.columns.Has(col) {
			missing = append(missing, string(col))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("source schema is missing required columns: %s", strings.Join(missing, ", "))
	}

	// Synthesized when absent, so downstream always sees it.
	s.columns.Add(models.ColProductCode)

	return s, nil
}

func matchAlias(lower string) (models.Column, bool) {
	for _, rule := range aliasRules {
		matched := true
		for _, sub := range rule.contains {
			if !strings.Contains(lower, sub) {
				matched = false
				break
			}
		}
		for _, sub := range rule.excludes {
			if strings.Contains(lower, sub) {
				matched = false
				break
			}
		}
		if matched {
			return rule.col, true
		}
	}
	return "", false
}

// Normalize converts raw records into canonical rows. Records whose
// date cannot be parsed are dropped; all other per-record problems
// degrade to zero values. Row order follows the input.
func Normalize(ctx context.Context, records []source.Record) (models.Dataset, error) {
	if len(records) == 0 {
		return models.Dataset{Columns: models.NewColumnSet()}, nil
	}

	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	// Map iteration order is randomized; a stable scan order keeps the
	// alias binding deterministic when two fields match the same rule.
	slices.Sort(keys)
	s, err := resolveSchema(keys)
	if err != nil {
		return models.Dataset{}, err
	}

	slots := make([]*models.Row, len(records))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for start := 0; start < len(records); start += normalizeBatchSize {
		end := min(start+normalizeBatchSize, len(records))
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for i := start; i < end; i++ {
				if row, ok := normalizeRecord(s, records[i]); ok {
					slots[i] = row
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.Dataset{}, err
	}

	rows := make([]models.Row, 0, len(records))
	for _, r := range slots {
		if r != nil {
			rows = append(rows, *r)
		}
	}

	return models.Dataset{Rows: rows, Columns: s.columns}, nil
}

func normalizeRecord(s *schema, rec source.Record) (*models.Row, bool) {
	date, ok := parseDate(rec[s.dateKey])
	if !ok {
		return nil, false
	}

	row := models.Row{Date: date, ProductCode: "N/A"}

	for key, col := range s.fields {
		v, present := rec[key]
		if !present {
			continue
		}
		switch col {
		case models.ColQuantity:
			row.Quantity = toFloat(v)
		case models.ColSoldPrice:
			row.SoldPrice = toFloat(v)
		case models.ColProfit:
			row.Profit = toFloat(v)
		case models.ColDiscount:
			row.Discount = toFloat(v)
		case models.ColBranch:
			row.Branch = toString(v)
		case models.ColBrand:
			row.Brand = toString(v)
		case models.ColProduct:
			row.Product = toString(v)
		case models.ColProductCode:
			if code := toString(v); code != "" {
				row.ProductCode = code
			}
		}
	}

	return &row, true
}

func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		trimmed := strings.TrimSpace(d)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// toFloat coerces a numeric-looking value, treating thousands
// separators as noise and anything unparseable as zero.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
