package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/algolab/internal/model"
	"github.com/seantiz/algolab/internal/store"
)

type putSettingRequest struct {
	Value *string `json:"value"`
}

type listSettingsResponse struct {
	Settings []model.Setting `json:"settings"`
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.ListSettings(r.Context())
	if err != nil {
		s.logger.Error("list settings", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	s.writeJSON(w, http.StatusOK, listSettingsResponse{Settings: settings})
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	st, err := s.store.GetSetting(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "setting not found")
		return
	}
	if err != nil {
		s.logger.Error("get setting", "key", key, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get setting")
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req putSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Value == nil {
		s.writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	if err := s.store.PutSetting(r.Context(), key, *req.Value); err != nil {
		s.logger.Error("put setting", "key", key, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}

	st, err := s.store.GetSetting(r.Context(), key)
	if err != nil {
		s.logger.Error("get saved setting", "key", key, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to retrieve setting")
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := s.store.DeleteSetting(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		s.logger.Error("delete setting", "key", key, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
