package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"bi-dashboard/internal/models"
)

// exportColumns is the fixed export/table column order. Columns the
// subset's schema lacks are omitted, never emitted empty.
var exportColumns = []models.Column{
	models.ColDate,
	models.ColRBM,
	models.ColBDM,
	models.ColBranch,
	models.ColState,
	models.ColDistrict,
	models.ColBrand,
	models.ColProduct,
	models.ColQuantity,
	models.ColSoldPrice,
	models.ColProfit,
}

// ExportColumns lists the export columns available in the subset, in
// the fixed order.
func ExportColumns(sub models.Subset) []models.Column {
	cols := make([]models.Column, 0, len(exportColumns))
	for _, c := range exportColumns {
		if sub.Columns.Has(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// ExportRecords projects the subset into flat records for the table
// preview and JSON export.
func ExportRecords(sub models.Subset) []models.ExportRecord {
	cols := ExportColumns(sub)
	records := make([]models.ExportRecord, 0, len(sub.Rows))
	for _, row := range sub.Rows {
		rec := make(models.ExportRecord, len(cols))
		for _, c := range cols {
			rec[string(c)] = exportValue(row, c)
		}
		records = append(records, rec)
	}
	return records
}

// WriteCSV streams the subset as delimited text with a header row.
func WriteCSV(w io.Writer, sub models.Subset) error {
	cols := ExportColumns(sub)

	writer := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range sub.Rows {
		for i, c := range cols {
			record[i] = exportString(row, c)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func exportValue(row models.Row, col models.Column) any {
	switch col {
	case models.ColDate:
		return row.Date.Format("2006-01-02")
	case models.ColRBM:
		return row.RBM
	case models.ColBDM:
		return row.BDM
	case models.ColBranch:
		return row.Branch
	case models.ColState:
		return row.State
	case models.ColDistrict:
		return row.District
	case models.ColBrand:
		return row.Brand
	case models.ColProduct:
		return row.Product
	case models.ColQuantity:
		return row.Quantity
	case models.ColSoldPrice:
		return row.SoldPrice
	case models.ColProfit:
		return row.Profit
	default:
		return nil
	}
}

func exportString(row models.Row, col models.Column) string {
	switch v := exportValue(row, col).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
