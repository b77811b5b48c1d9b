package api

import (
	"net/http"

	"github.com/seantiz/algolab/internal/registry"
)

type algorithmsResponse struct {
	Categories []string                 `json:"categories"`
	Algorithms []registry.AlgorithmInfo `json:"algorithms"`
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	s.writeJSON(w, http.StatusOK, algorithmsResponse{
		Categories: reg.Categories(),
		Algorithms: reg.List(),
	})
}
