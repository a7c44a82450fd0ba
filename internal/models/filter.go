package models

// Period selector modes for FilterSpec.PeriodType.
const (
	PeriodYear    = "year"
	PeriodFY      = "fy"
	PeriodQuarter = "quarter"
)

// FilterSpec is the wire shape of a dashboard filter request. All
// clauses are optional; absent clauses match every row. Two specs are
// considered identical iff their canonicalized serializations are
// equal (see services.Fingerprint).
type FilterSpec struct {
	PeriodType string `json:"period_type,omitempty"`
	Year       int    `json:"year,omitempty"`
	FY         string `json:"fy,omitempty"`
	Quarter    string `json:"quarter,omitempty"`

	States    []string `json:"states,omitempty"`
	Districts []string `json:"districts,omitempty"`
	RBMs      []string `json:"rbms,omitempty"`
	BDMs      []string `json:"bdms,omitempty"`
	Branches  []string `json:"branches,omitempty"`
	Brands    []string `json:"brands,omitempty"`
	Products  []string `json:"products,omitempty"`

	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
}

// HasPriceRange reports whether both bounds are set; the price clause
// is evaluated only when they are.
func (f FilterSpec) HasPriceRange() bool {
	return f.PriceMin != nil && f.PriceMax != nil
}
