package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"bi-dashboard/internal/errors"
	"bi-dashboard/internal/models"
	"bi-dashboard/internal/observability"
	"bi-dashboard/internal/services"
)

type APIHandlers struct {
	engine *services.Engine
	logger *slog.Logger
}

func NewAPIHandlers(engine *services.Engine, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		engine: engine,
		logger: logger,
	}
}

// decodeFilterSpec reads an optional JSON filter body. An empty body is
// the unfiltered spec.
func decodeFilterSpec(r *http.Request) (models.FilterSpec, error) {
	var spec models.FilterSpec
	if r.Body == nil {
		return spec, nil
	}
	err := json.NewDecoder(r.Body).Decode(&spec)
	if err != nil && err != io.EOF {
		return spec, errors.BadRequestWrap(err, "invalid filter payload")
	}
	return spec, nil
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if err == services.ErrNotLoaded {
		err = errors.ServiceUnavailable("dataset not loaded")
	}
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

type loadRequest struct {
	ForceRefresh bool `json:"force_refresh"`
}

// HandleLoad loads (optionally force-refreshing) the dataset and
// returns filter options plus a dataset summary.
func (h *APIHandlers) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	ds, err := h.engine.Data(r.Context(), req.ForceRefresh)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"message": fmt.Sprintf("Loaded %d records", len(ds.Rows)),
		"options": services.FilterOptions(ds),
		"summary": services.Summary(ds),
	})
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	spec, err := decodeFilterSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := h.engine.Dashboard(r.Context(), spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, map[string]any{"kpis": services.CalculateKPIs(sub)})
}

func (h *APIHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, map[string]any{"insights": services.GenerateInsights(sub)})
}

func (h *APIHandlers) HandleMap(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}
	errors.WriteSuccess(w, h.engine.Map(sub))
}

// HandleChart serves one named chart; the type is the trailing path
// segment (monthly, hierarchy, geographic, product, rbm, map).
func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	chartType := r.PathValue("type")

	sub, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	var data any
	switch chartType {
	case "monthly":
		data = services.MonthlyTrend(sub)
	case "hierarchy":
		data = services.HierarchyData(sub)
	case "geographic":
		data = services.GeographicData(sub)
	case "product":
		data = services.ProductChart(sub)
	case "rbm":
		data = services.RBMPerformance(sub)
	case "map":
		data = h.engine.Map(sub)
	default:
		h.writeError(w, r, errors.NotFound(fmt.Sprintf("unknown chart type %q", chartType)))
		return
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	errors.WriteSuccess(w, models.TablePreview{
		Data:         services.ExportRecords(sub.Head(100)),
		TotalRecords: len(sub.Rows),
	})
}

type comparisonRequest struct {
	ComparisonType string            `json:"comparison_type"`
	Dimension      string            `json:"dimension"`
	Filters        models.FilterSpec `json:"filters"`

	Period1Year    int    `json:"period1_year"`
	Period2Year    int    `json:"period2_year"`
	Period1FY      string `json:"period1_fy"`
	Period2FY      string `json:"period2_fy"`
	Period1Quarter string `json:"period1_quarter"`
	Period2Quarter string `json:"period2_quarter"`
}

// periodSpecs maps the request onto two period filter specs layered
// over the base filters, plus display labels.
func (req comparisonRequest) periodSpecs() (p1, p2 models.FilterSpec, label1, label2 string, err error) {
	p1, p2 = req.Filters, req.Filters

	switch req.ComparisonType {
	case models.PeriodYear:
		if req.Period1Year == 0 || req.Period2Year == 0 {
			err = errors.Validation("period years are required for a year comparison")
			return
		}
		p1.PeriodType, p1.Year = models.PeriodYear, req.Period1Year
		p2.PeriodType, p2.Year = models.PeriodYear, req.Period2Year
		label1 = fmt.Sprintf("Year %d", req.Period1Year)
		label2 = fmt.Sprintf("Year %d", req.Period2Year)
	case models.PeriodFY:
		if req.Period1FY == "" || req.Period2FY == "" {
			err = errors.Validation("financial year labels are required for an fy comparison")
			return
		}
		p1.PeriodType, p1.FY = models.PeriodFY, req.Period1FY
		p2.PeriodType, p2.FY = models.PeriodFY, req.Period2FY
		label1, label2 = req.Period1FY, req.Period2FY
	case models.PeriodQuarter:
		if req.Period1Year == 0 || req.Period2Year == 0 || req.Period1Quarter == "" || req.Period2Quarter == "" {
			err = errors.Validation("period years and quarters are required for a quarter comparison")
			return
		}
		p1.PeriodType, p1.Year, p1.Quarter = models.PeriodQuarter, req.Period1Year, req.Period1Quarter
		p2.PeriodType, p2.Year, p2.Quarter = models.PeriodQuarter, req.Period2Year, req.Period2Quarter
		label1 = fmt.Sprintf("%s %d", req.Period1Quarter, req.Period1Year)
		label2 = fmt.Sprintf("%s %d", req.Period2Quarter, req.Period2Year)
	default:
		err = errors.Validation(fmt.Sprintf("invalid comparison type %q", req.ComparisonType))
	}
	return
}

func (h *APIHandlers) HandleComparison(w http.ResponseWriter, r *http.Request) {
	var req comparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid comparison payload"))
		return
	}
	if req.Dimension == "" {
		req.Dimension = "Overall"
	}
	if !services.ValidComparisonDimension(req.Dimension) {
		h.writeError(w, r, errors.Validation(fmt.Sprintf("invalid comparison dimension %q", req.Dimension)))
		return
	}

	p1Spec, p2Spec, label1, label2, err := req.periodSpecs()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	period1, err := h.engine.Filter(r.Context(), p1Spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	period2, err := h.engine.Filter(r.Context(), p2Spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result := services.BuildComparison(period1, period2, req.Dimension, label1, label2)
	errors.WriteSuccess(w, result)
}

// HandleExport streams the full filtered subset as a CSV attachment.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.filteredSubset(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("business_data_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename="+filename)

	if err := services.WriteCSV(w, sub); err != nil {
		h.logger.Error("csv export failed", "error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}
}

type filterOptionsRequest struct {
	States []string `json:"states"`
	RBMs   []string `json:"rbms"`
}

// HandleFilterOptions returns option lists, cascaded by any state/rbm
// selections already made.
func (h *APIHandlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	var req filterOptionsRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	sub, err := h.engine.Filter(r.Context(), models.FilterSpec{
		States: req.States,
		RBMs:   req.RBMs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{"options": services.FilterOptions(sub)})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.engine.Stats())
}

// filteredSubset decodes the request filters and resolves the subset,
// writing the error response itself on failure.
func (h *APIHandlers) filteredSubset(w http.ResponseWriter, r *http.Request) (models.Subset, bool) {
	spec, err := decodeFilterSpec(r)
	if err != nil {
		h.writeError(w, r, err)
		return models.Subset{}, false
	}

	sub, err := h.engine.Filter(r.Context(), spec)
	if err != nil {
		h.writeError(w, r, err)
		return models.Subset{}, false
	}
	return sub, true
}
