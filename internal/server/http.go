package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/observability/log"
	"github.com/zeusync/showroom/internal/core/observability/metrics"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /catalog", s.handleCatalog)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return mux
}

type catalogResponse struct {
	Products []catalog.Product `json:"products"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, catalogResponse{Products: s.catalog.Products()})
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int64  `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: s.Sessions()})
}

type metricsResponse struct {
	Metrics []metrics.Sample `json:"metrics"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, metricsResponse{Metrics: s.metrics.Export()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", log.Error(err))
	}
}
