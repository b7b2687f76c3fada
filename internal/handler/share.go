package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// ShareResponse is a published share. UserID is never exposed.
type ShareResponse struct {
	Id        uuid.UUID          `json:"id"`
	Url       string             `json:"url"`
	Stats     domain.PublicStats `json:"stats"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// PostShare handles POST /share: the caller's public stats are recomputed
// and published under a stable link.
func (s *Server) PostShare(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	share, err := s.shares.Publish(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, s.shareToResponse(share))
}

// GetShare handles GET /shares/{id}. It needs no authentication.
func (s *Server) GetShare(w http.ResponseWriter, r *http.Request) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid share id"))
		return
	}

	share, err := s.shares.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "share not found")
		return
	}
	writeJSON(w, http.StatusOK, s.shareToResponse(share))
}

func (s *Server) shareToResponse(sh domain.Share) ShareResponse {
	return ShareResponse{
		Id:        sh.ID,
		Url:       strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/share/" + sh.ID.String(),
		Stats:     sh.Stats,
		UpdatedAt: sh.UpdatedAt,
	}
}
