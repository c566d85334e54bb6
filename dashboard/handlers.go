package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"architect/models"
	"architect/service"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

type saveLayoutResponse struct {
	GuildID string `json:"guild_id"`
	Version int    `json:"version"`
}

type layoutResponse struct {
	GuildID   string        `json:"guild_id"`
	Version   int           `json:"version"`
	Payload   models.Layout `json:"payload"`
	CreatedAt string        `json:"created_at"`
}

type versionListResponse struct {
	GuildID  string        `json:"guild_id"`
	Versions []versionInfo `json:"versions"`
}

type versionInfo struct {
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "version conflict, retry the save"})
	default:
		log.Errorf("Dashboard request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func layoutToResponse(l *models.BuilderLayout) layoutResponse {
	return layoutResponse{
		GuildID:   l.GuildID,
		Version:   l.Version,
		Payload:   l.Payload,
		CreatedAt: l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	var payload models.Layout
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid layout JSON"})
		return
	}

	version, err := s.layoutService.SaveLayout(r.Context(), guildID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saveLayoutResponse{GuildID: guildID, Version: version})
}

func (s *Server) handleLatestLayout(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	layout, err := s.layoutService.LatestLayout(r.Context(), guildID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutToResponse(layout))
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	layouts, err := s.layoutService.ListVersions(r.Context(), guildID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := versionListResponse{GuildID: guildID, Versions: []versionInfo{}}
	for _, l := range layouts {
		resp.Versions = append(resp.Versions, versionInfo{
			Version:   l.Version,
			CreatedAt: l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "version must be a positive integer"})
		return
	}

	layout, err := s.layoutService.GetLayout(r.Context(), guildID, version)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutToResponse(layout))
}

// handleLiveLayout exports the current guild structure without storing it.
// The dashboard uses it to prefill the editor from the real server.
func (s *Server) handleLiveLayout(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	layout, err := s.guildClient.ExportLayout(r.Context(), guildID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layout)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	settings, err := s.settingsService.GetSettings(r.Context(), guildID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	var update models.GuildSettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid settings JSON"})
		return
	}

	settings, err := s.settingsService.UpdateSettings(r.Context(), guildID, update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
