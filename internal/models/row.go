package models

import "time"

// NotAssigned is the sentinel for a branch or district that has no
// entry in the organizational/geographic lookup tables.
const NotAssigned = "NOT ASSIGNED"

// Column identifies a canonical dataset column. Derived columns (year,
// quarter, rbm, ...) are present whenever the column they derive from
// was found in the upstream schema.
type Column string

const (
	ColDate        Column = "date"
	ColQuantity    Column = "quantity"
	ColSoldPrice   Column = "sold_price"
	ColProfit      Column = "profit"
	ColDiscount    Column = "discount"
	ColBranch      Column = "branch"
	ColBrand       Column = "brand"
	ColProduct     Column = "product"
	ColProductCode Column = "product_code"
	ColRBM         Column = "rbm"
	ColBDM         Column = "bdm"
	ColDistrict    Column = "district"
	ColState       Column = "state"
)

// ColumnSet records which canonical columns the upstream schema
// actually carried. Aggregations check it before computing so a
// missing column degrades to an empty result instead of an error.
type ColumnSet map[Column]struct{}

func NewColumnSet(cols ...Column) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

func (s ColumnSet) Add(c Column) { s[c] = struct{}{} }

// Has reports whether every given column is present.
func (s ColumnSet) Has(cols ...Column) bool {
	for _, c := range cols {
		if _, ok := s[c]; !ok {
			return false
		}
	}
	return true
}

func (s ColumnSet) Clone() ColumnSet {
	out := make(ColumnSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Row is one enriched sales transaction.
type Row struct {
	Date             time.Time `json:"date"`
	Year             int       `json:"year"`
	MonthNum         int       `json:"month_number"`
	MonthShort       string    `json:"month_short"`
	MonthYear        string    `json:"month_year"`
	FinancialYear    string    `json:"financial_year"`
	Quarter          string    `json:"quarter"`
	FinancialQuarter string    `json:"financial_quarter"`

	Branch      string `json:"branch"`
	Brand       string `json:"brand"`
	Product     string `json:"product"`
	ProductCode string `json:"product_code"`

	Quantity  float64 `json:"quantity"`
	SoldPrice float64 `json:"sold_price"`
	Profit    float64 `json:"profit"`
	Discount  float64 `json:"discount"`

	RBM      string `json:"rbm"`
	BDM      string `json:"bdm"`
	District string `json:"district"`
	State    string `json:"state"`
}

// Dataset is the enriched row collection for one cache epoch, together
// with the columns the upstream schema provided.
type Dataset struct {
	Rows    []Row
	Columns ColumnSet
}

// Subset is the result of applying a FilterSpec to a Dataset. It shares
// the parent's column set and preserves row order.
type Subset = Dataset

func (d Dataset) Empty() bool { return len(d.Rows) == 0 }

// Head returns a subset limited to the first n rows.
func (d Dataset) Head(n int) Subset {
	if len(d.Rows) <= n {
		return d
	}
	return Subset{Rows: d.Rows[:n], Columns: d.Columns}
}
