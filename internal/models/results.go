package models

// KPIs are the headline metrics for a filtered subset. Display fields
// carry the Indian-format rendering of their numeric counterparts.
type KPIs struct {
	Revenue          float64 `json:"revenue"`
	RevenueDisplay   string  `json:"revenue_formatted"`
	Profit           float64 `json:"profit"`
	ProfitDisplay    string  `json:"profit_formatted"`
	Quantity         float64 `json:"quantity"`
	QuantityDisplay  string  `json:"quantity_formatted"`
	Discount         float64 `json:"discount"`
	DiscountDisplay  string  `json:"discount_formatted"`
	Margin           float64 `json:"margin"`
	DiscountPct      float64 `json:"discount_pct"`
	AvgPrice         float64 `json:"avg_price"`
	Branches         int     `json:"stores"`
	Brands           int     `json:"brands"`
	Products         int     `json:"products"`
	States           int     `json:"states"`
	Districts        int     `json:"districts"`
	Records          int     `json:"records"`
}

// MonthlyTrend is a chronologically ordered month-by-month series.
// Revenue and profit are in crores. A nil *MonthlyTrend means fewer
// than two distinct months were available.
type MonthlyTrend struct {
	Labels   []string  `json:"labels"`
	Revenue  []float64 `json:"revenue"`
	Profit   []float64 `json:"profit"`
	Quantity []float64 `json:"quantity"`
}

// RBMSeries is the per-RBM chart series, sorted by revenue descending.
type RBMSeries struct {
	Labels  []string  `json:"labels"`
	Revenue []float64 `json:"revenue"`
	Profit  []float64 `json:"profit"`
	Margin  []float64 `json:"margin"`
}

// HierarchyEntry is one flattened (rbm, bdm, branch) group.
type HierarchyEntry struct {
	RBM     string  `json:"rbm"`
	BDM     string  `json:"bdm"`
	Branch  string  `json:"branch"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type HierarchyData struct {
	RBM       RBMSeries        `json:"rbm"`
	Hierarchy []HierarchyEntry `json:"hierarchy"`
}

// StateSeries is the per-state chart series, sorted by revenue
// descending; revenue in crores.
type StateSeries struct {
	Labels       []string  `json:"labels"`
	Revenue      []float64 `json:"revenue"`
	ProfitMargin []float64 `json:"profit_margin"`
	Branches     []int     `json:"branches"`
}

// DistrictEntry is one (state, district) group; the geographic chart
// keeps the top 15 by revenue.
type DistrictEntry struct {
	State    string  `json:"state"`
	District string  `json:"district"`
	Revenue  float64 `json:"revenue"`
	Profit   float64 `json:"profit"`
	Branches int     `json:"branches"`
}

type GeographicData struct {
	States    StateSeries     `json:"states"`
	Districts []DistrictEntry `json:"districts"`
}

// MapDistrict is a district aggregate joined with its coordinates.
// Districts without a coordinate entry are dropped from map output.
type MapDistrict struct {
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Revenue        float64 `json:"revenue"`
	RevenueDisplay string  `json:"revenue_formatted"`
	Profit         float64 `json:"profit"`
	Margin         float64 `json:"margin"`
	Branches       int     `json:"branches"`
}

type MapData struct {
	Districts []MapDistrict `json:"districts"`
}

// ProductChart is the top-20-by-profit product series, ordered
// ascending by profit for horizontal bar rendering. Revenue is in
// crores, profit in lakhs.
type ProductChart struct {
	Labels       []string  `json:"labels"`
	Revenue      []float64 `json:"revenue"`
	Profit       []float64 `json:"profit"`
	ProfitMargin []float64 `json:"profit_margin"`
	Quantity     []float64 `json:"quantity"`
}

// RBMPerformance is the RBM chart series, sorted by revenue descending.
type RBMPerformance struct {
	Labels       []string  `json:"labels"`
	Revenue      []float64 `json:"revenue"`
	Profit       []float64 `json:"profit"`
	ProfitMargin []float64 `json:"profit_margin"`
	Quantity     []float64 `json:"quantity"`
}

// ComparisonRow is one line of a two-period comparison table.
type ComparisonRow struct {
	Dimension      string  `json:"dimension"`
	Period1Value   float64 `json:"period1_value"`
	Period2Value   float64 `json:"period2_value"`
	Growth         float64 `json:"growth"`
	Period1Display string  `json:"period1_formatted"`
	Period2Display string  `json:"period2_formatted"`
	Indicator      string  `json:"growth_indicator"`
}

// ComparisonChart carries the comparison rows as chart arrays, values
// in crores.
type ComparisonChart struct {
	Labels  []string  `json:"labels"`
	Period1 []float64 `json:"period1"`
	Period2 []float64 `json:"period2"`
}

// ComparisonResult is the full two-period comparison response.
type ComparisonResult struct {
	Period1Label  string          `json:"period1_label"`
	Period2Label  string          `json:"period2_label"`
	Period1KPIs   KPIs            `json:"period1_kpis"`
	Period2KPIs   KPIs            `json:"period2_kpis"`
	RevenueGrowth float64         `json:"revenue_growth"`
	ProfitGrowth  float64         `json:"profit_growth"`
	QtyGrowth     float64         `json:"qty_growth"`
	MarginChange  float64         `json:"margin_change"`
	RevenueDiff   float64         `json:"revenue_diff"`
	ProfitDiff    float64         `json:"profit_diff"`
	QtyDiff       float64         `json:"qty_diff"`
	Comparisons   []ComparisonRow `json:"comparisons"`
	Chart         ComparisonChart `json:"chart"`
}

// Insights are the four narrative sentences shown on the dashboard.
type Insights struct {
	TopPerformer string `json:"top_performer"`
	GrowthTrend  string `json:"growth_trend"`
	Highlight    string `json:"highlight"`
	Alert        string `json:"alert"`
}

// ExportRecord is one flat export row keyed by canonical column name.
type ExportRecord map[string]any

// TablePreview is the capped in-dashboard table.
type TablePreview struct {
	Data         []ExportRecord `json:"data"`
	TotalRecords int            `json:"total_records"`
}

// DashboardCharts groups every chart in the composite dashboard result.
type DashboardCharts struct {
	Monthly    *MonthlyTrend   `json:"monthly"`
	Hierarchy  *HierarchyData  `json:"hierarchy"`
	Geographic *GeographicData `json:"geographic"`
	Product    ProductChart    `json:"product"`
	RBM        *RBMPerformance `json:"rbm"`
	Map        MapData         `json:"map"`
}

// DashboardData is the full-dashboard computation for one filter spec.
type DashboardData struct {
	KPIs     KPIs            `json:"kpis"`
	Insights Insights        `json:"insights"`
	Charts   DashboardCharts `json:"charts"`
	Table    TablePreview    `json:"table"`
}

// FilterOptions lists the selectable values per dimension. The
// NOT ASSIGNED sentinel is excluded from every list except Branches.
type FilterOptions struct {
	Years          []int    `json:"years"`
	FinancialYears []string `json:"financial_years"`
	Quarters       []string `json:"quarters"`
	States         []string `json:"states"`
	Districts      []string `json:"districts"`
	RBMs           []string `json:"rbms"`
	BDMs           []string `json:"bdms"`
	Branches       []string `json:"branches"`
	Brands         []string `json:"brands"`
	Products       []string `json:"products"`
}

// DateRange bounds the dataset's transaction dates.
type DateRange struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// DatasetSummary describes the currently loaded dataset.
type DatasetSummary struct {
	TotalRecords     int       `json:"total_records"`
	AssignedBranches int       `json:"assigned_branches"`
	TotalBranches    int       `json:"total_branches"`
	DateRange        DateRange `json:"date_range"`
}
