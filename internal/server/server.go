package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bi-dashboard/internal/handlers"
	"bi-dashboard/internal/services"
)

type Server struct {
	engine      *services.Engine
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(engine *services.Engine, logger *slog.Logger, registry *prometheus.Registry) *Server {
	s := &Server{
		engine:      engine,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(engine, logger),
		sseHandlers: handlers.NewSSEHandlers(engine, logger),
	}
	s.setupRoutes(registry)
	return s
}

func (s *Server) setupRoutes(registry *prometheus.Registry) {
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// REST API endpoints
	s.mux.HandleFunc("POST /api/load", s.apiHandlers.HandleLoad)
	s.mux.HandleFunc("POST /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("POST /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("POST /api/insights", s.apiHandlers.HandleInsights)
	s.mux.HandleFunc("POST /api/map", s.apiHandlers.HandleMap)
	s.mux.HandleFunc("POST /api/charts/{type}", s.apiHandlers.HandleChart)
	s.mux.HandleFunc("POST /api/comparison", s.apiHandlers.HandleComparison)
	s.mux.HandleFunc("POST /api/table", s.apiHandlers.HandleTable)
	s.mux.HandleFunc("POST /api/export", s.apiHandlers.HandleExport)
	s.mux.HandleFunc("POST /api/filter-options", s.apiHandlers.HandleFilterOptions)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
