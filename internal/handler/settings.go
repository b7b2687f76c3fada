package handler

import (
	"net/http"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// GetSettings handles GET /settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	settings, err := s.tracker.GetSettings(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings handles PUT /settings. The body replaces the stored settings
// whole; invalid residency periods are rejected with 422 and nothing is saved.
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body domain.Settings
	if !decodeJSON(w, r, &body) {
		return
	}

	saved, err := s.tracker.SaveSettings(r.Context(), uid, body)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
