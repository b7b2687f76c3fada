package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
)

// TripRequest is the body of POST /trips and PUT /trips/{id}.
type TripRequest struct {
	DepartureDate openapi_types.Date `json:"departureDate"`
	ReturnDate    openapi_types.Date `json:"returnDate"`
	Destination   string             `json:"destination"`
	Reason        string             `json:"reason"`
	OtherReason   *string            `json:"otherReason,omitempty"`
}

// Trip is the API representation of a trip. Dates are echoed as stored so
// imported values survive unchanged.
type Trip struct {
	Id            int64   `json:"id"`
	DepartureDate string  `json:"departureDate"`
	ReturnDate    string  `json:"returnDate"`
	Destination   string  `json:"destination"`
	Reason        string  `json:"reason"`
	OtherReason   *string `json:"otherReason,omitempty"`
	DurationDays  int     `json:"durationDays"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.tracker.ListTrips(r.Context(), uid, params)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.tracker.CreateTrip(r.Context(), uid, requestToTrip(0, body))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.tracker.GetTrip(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.tracker.UpdateTrip(r.Context(), uid, requestToTrip(id, body))
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	if err := s.tracker.DeleteTrip(r.Context(), uid, id); err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// tripID binds the {id} path parameter, writing a 400 when it is not an integer.
func tripID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid trip id"))
		return 0, false
	}
	return id, true
}

// requestToTrip converts a request body into a domain.Trip with the given ID.
// A date the client left out binds to the zero date and fails validation.
func requestToTrip(id int64, body TripRequest) domain.Trip {
	t := domain.Trip{
		ID:            id,
		DepartureDate: formatRequestDate(body.DepartureDate),
		ReturnDate:    formatRequestDate(body.ReturnDate),
		Destination:   strings.TrimSpace(body.Destination),
		Reason:        domain.Reason(body.Reason),
	}
	if body.OtherReason != nil {
		t.OtherReason = strings.TrimSpace(*body.OtherReason)
	}
	return t
}

func formatRequestDate(d openapi_types.Date) string {
	if d.Time.IsZero() {
		return ""
	}
	return domain.FormatDate(d.Time)
}

// tripToResponse converts a domain.Trip into its API representation.
func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		Id:            t.ID,
		DepartureDate: t.DepartureDate,
		ReturnDate:    t.ReturnDate,
		Destination:   t.Destination,
		Reason:        string(t.Reason),
		DurationDays:  eligibility.TripDuration(t.DepartureDate, t.ReturnDate),
	}
	if t.OtherReason != "" {
		resp.OtherReason = &t.OtherReason
	}
	return resp
}
