package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bi-dashboard/internal/ingest"
	"bi-dashboard/internal/lookup"
	"bi-dashboard/internal/services"
	"bi-dashboard/internal/source"
)

type stubFetcher struct {
	records []source.Record
	err     error
}

func (f *stubFetcher) FetchAll(ctx context.Context) ([]source.Record, error) {
	return f.records, f.err
}

func testTables() *lookup.Tables {
	return &lookup.Tables{
		BranchManagers: map[string]lookup.Managers{
			"Kochi MG Road":      {RBM: "Rajesh Pillai", BDM: "Deepa Thomas"},
			"Trivandrum Central": {RBM: "Anil Kumar", BDM: "Suresh Nair"},
		},
		BranchDistrict: map[string]string{
			"Kochi MG Road":      "Ernakulam",
			"Trivandrum Central": "Thiruvananthapuram",
		},
		DistrictState: map[string]string{
			"Ernakulam":          "Kerala",
			"Thiruvananthapuram": "Kerala",
		},
		DistrictCoords: map[string]lookup.Coord{
			"Ernakulam":          {Lat: 9.9312, Lng: 76.2673},
			"Thiruvananthapuram": {Lat: 8.5241, Lng: 76.9366},
		},
	}
}

func testRecords() []source.Record {
	return []source.Record{
		{"Date": "2024-05-01", "QTY": 2.0, "Sold Price": 1000.0, "Profit": 100.0, "Branch": "Kochi MG Road", "Brand": "Acme", "Product Name": "Widget"},
		{"Date": "2024-06-01", "QTY": 1.0, "Sold Price": 2000.0, "Profit": 400.0, "Branch": "Trivandrum Central", "Brand": "Beta", "Product Name": "Gadget"},
		{"Date": "2023-05-01", "QTY": 3.0, "Sold Price": 1500.0, "Profit": 150.0, "Branch": "Kochi MG Road", "Brand": "Acme", "Product Name": "Widget"},
	}
}

func newTestHandlers(t *testing.T, fetcher *stubFetcher) *APIHandlers {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tables := testTables()
	datasets := services.NewDatasetCache(fetcher, ingest.NewPipeline(tables), 30*time.Minute, logger, nil)
	filters := services.NewFilterEngine(50, nil)
	engine := services.NewEngine(datasets, filters, tables, 100, logger, nil)
	return NewAPIHandlers(engine, logger)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

func postJSON(path, body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("health response should be successful")
	}
}

func TestHandleLoad(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleLoad(rec, postJSON("/api/load", `{"force_refresh": true}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)

	var payload struct {
		Message string `json:"message"`
		Options struct {
			Years    []int    `json:"years"`
			Branches []string `json:"branches"`
		} `json:"options"`
		Summary struct {
			TotalRecords int `json:"total_records"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}

	if payload.Summary.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", payload.Summary.TotalRecords)
	}
	if len(payload.Options.Years) != 2 {
		t.Errorf("Years = %v, want two", payload.Options.Years)
	}
	if len(payload.Options.Branches) != 2 {
		t.Errorf("Branches = %v", payload.Options.Branches)
	}
}

func TestHandleLoad_SourceDown(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{err: errors.New("upstream down")})
	rec := httptest.NewRecorder()

	h.HandleLoad(rec, postJSON("/api/load", `{}`))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleKPIs(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleKPIs(rec, postJSON("/api/kpis", `{"brands": ["Acme"]}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)

	var payload struct {
		KPIs struct {
			Revenue float64 `json:"revenue"`
			Records int     `json:"records"`
		} `json:"kpis"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.KPIs.Records != 2 {
		t.Errorf("filtered Records = %d, want 2", payload.KPIs.Records)
	}
	if payload.KPIs.Revenue != 2500 {
		t.Errorf("filtered Revenue = %v, want 2500", payload.KPIs.Revenue)
	}
}

func TestHandleKPIs_BadPayload(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleKPIs(rec, postJSON("/api/kpis", `{"brands": "not an array"`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDashboard(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleDashboard(rec, postJSON("/api/dashboard", `{}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)

	var payload struct {
		KPIs   json.RawMessage `json:"kpis"`
		Charts json.RawMessage `json:"charts"`
		Table  struct {
			TotalRecords int `json:"total_records"`
		} `json:"table"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Table.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", payload.Table.TotalRecords)
	}
	if len(payload.Charts) == 0 {
		t.Error("dashboard should include chart data")
	}
}

func TestHandleChart(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})

	for _, chartType := range []string{"monthly", "hierarchy", "geographic", "product", "rbm", "map"} {
		rec := httptest.NewRecorder()
		req := postJSON("/api/charts/"+chartType, `{}`)
		req.SetPathValue("type", chartType)

		h.HandleChart(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("chart %q status = %d", chartType, rec.Code)
		}
	}
}

func TestHandleChart_UnknownType(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()
	req := postJSON("/api/charts/sparkline", `{}`)
	req.SetPathValue("type", "sparkline")

	h.HandleChart(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleComparison(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleComparison(rec, postJSON("/api/comparison", `{
		"comparison_type": "year",
		"dimension": "Overall",
		"period1_year": 2023,
		"period2_year": 2024
	}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)

	var payload struct {
		Period1Label  string  `json:"period1_label"`
		RevenueGrowth float64 `json:"revenue_growth"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Period1Label != "Year 2023" {
		t.Errorf("Period1Label = %q", payload.Period1Label)
	}
	// 1500 -> 3000 across the two years.
	if payload.RevenueGrowth != 100 {
		t.Errorf("RevenueGrowth = %v, want 100", payload.RevenueGrowth)
	}
}

func TestHandleComparison_InvalidType(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleComparison(rec, postJSON("/api/comparison", `{"comparison_type": "decade"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleComparison_InvalidDimension(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleComparison(rec, postJSON("/api/comparison", `{
		"comparison_type": "year",
		"dimension": "Product",
		"period1_year": 2023,
		"period2_year": 2024
	}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleExport(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleExport(rec, postJSON("/api/export", `{}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;filename=business_data_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("csv has %d lines, want header + 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "date,rbm,bdm,branch") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestHandleTable(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleTable(rec, postJSON("/api/table", `{}`))

	env := decodeEnvelope(t, rec)
	var payload struct {
		Data         []map[string]any `json:"data"`
		TotalRecords int              `json:"total_records"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.TotalRecords != 3 || len(payload.Data) != 3 {
		t.Errorf("table = %d/%d, want 3/3", len(payload.Data), payload.TotalRecords)
	}
}

func TestHandleFilterOptions_Cascading(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleFilterOptions(rec, postJSON("/api/filter-options", `{"rbms": ["Rajesh Pillai"]}`))

	env := decodeEnvelope(t, rec)
	var payload struct {
		Options struct {
			Branches []string `json:"branches"`
			Brands   []string `json:"brands"`
		} `json:"options"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}

	if len(payload.Options.Branches) != 1 || payload.Options.Branches[0] != "Kochi MG Road" {
		t.Errorf("cascaded Branches = %v", payload.Options.Branches)
	}
	if len(payload.Options.Brands) != 1 || payload.Options.Brands[0] != "Acme" {
		t.Errorf("cascaded Brands = %v", payload.Options.Brands)
	}
}

func TestHandleStats(t *testing.T) {
	h := newTestHandlers(t, &stubFetcher{records: testRecords()})
	rec := httptest.NewRecorder()

	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var stats map[string]any
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if _, ok := stats["records"]; !ok {
		t.Error("stats should report the dataset record count")
	}
}
