package api

import (
	"net/http"

	"github.com/seantiz/algolab/internal/cache"
	"github.com/seantiz/algolab/internal/engine"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	engine.MetricsView
	CacheEnabled bool        `json:"cache_enabled"`
	Cache        cache.Stats `json:"cache"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		MetricsView:  s.engine.GetMetrics(),
		CacheEnabled: s.engine.CacheEnabled(),
		Cache:        s.engine.CacheStats(),
	})
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetMetrics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}
