package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bi-dashboard/internal/models"
	"bi-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

// SSEHandlers pushes computed dashboard results to the browser as
// datastar signal patches.
type SSEHandlers struct {
	engine *services.Engine
	logger *slog.Logger
}

func NewSSEHandlers(engine *services.Engine, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		engine: engine,
		logger: logger,
	}
}

// dashboardSignals is the subset of page signals the dashboard stream
// reads back from the client.
type dashboardSignals struct {
	Filters models.FilterSpec `json:"filters"`
}

// HandleDashboard reads the current filter selection from the page
// signals, computes the full dashboard and patches it back as one
// signal update.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read dashboard signals", "error", err)
	}

	data, err := h.engine.Dashboard(r.Context(), signals.Filters)
	if err != nil {
		h.logger.Error("compute dashboard for stream", "error", err)
		sse.PatchElements(`<div id="dashboard-status">⚠️ Dashboard data unavailable</div>`)
		return
	}

	jsonData, err := json.Marshal(map[string]any{
		"dashboardData": data,
	})
	if err != nil {
		h.logger.Error("marshal dashboard data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="dashboard-status">✅ Dashboard data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
