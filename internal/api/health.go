package api

import (
	"net/http"
)

type healthResponse struct {
	Status     string `json:"status"`
	Algorithms int    `json:"algorithms"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Algorithms: len(s.engine.Registry().List()),
	})
}
