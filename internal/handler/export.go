// Package handler: export.go implements the backup and sync endpoints.
// GET /export supports content negotiation via ?format=csv (trips as CSV)
// or the default JSON backup file.
package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
)

// csvHeaders defines the column names written as the first row of a CSV export.
var csvHeaders = []string{
	"id", "departure_date", "return_date", "destination", "reason", "duration_days",
}

// ImportResponse is the body of POST /import and POST /sync/merge.
type ImportResponse struct {
	Trips       int             `json:"trips"`
	Settings    domain.Settings `json:"settings"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// GetExport handles GET /export.
// Use ?format=csv to receive the trips as CSV; default is the JSON backup file.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	wantCSV := format != nil && *format == "csv"
	if format != nil && !wantCSV && *format != "json" {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "format must be json or csv"))
		return
	}

	file, err := s.export.Export(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	stamp := domain.FormatDate(s.opts.Now().UTC())
	if wantCSV {
		var trips []domain.Trip
		if file.Trips != nil {
			trips = *file.Trips
		}
		body := buildCSV(trips)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="citizenship-tracker-%s.csv"`, stamp))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="citizenship-tracker-%s.json"`, stamp))
	writeJSON(w, http.StatusOK, file)
}

// PostImport handles POST /import. The body is a backup file produced by
// GET /export; both its trips and settings sections are required.
func (s *Server) PostImport(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var file domain.ExportFile
	if !decodeJSON(w, r, &file) {
		return
	}

	doc, err := s.export.Import(r.Context(), uid, file)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, importResponse(doc))
}

// PostMerge handles POST /sync/merge. The body is a device's local snapshot
// in the backup file shape.
func (s *Server) PostMerge(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var local domain.ExportFile
	if !decodeJSON(w, r, &local) {
		return
	}

	doc, err := s.export.Merge(r.Context(), uid, local)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, importResponse(doc))
}

// DeleteData handles DELETE /data: every trip and setting of the caller is removed.
func (s *Server) DeleteData(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.Clear(r.Context(), uid); err != nil {
		writeError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func importResponse(doc domain.Document) ImportResponse {
	return ImportResponse{
		Trips:       len(doc.Trips),
		Settings:    doc.Settings,
		LastUpdated: doc.LastUpdated.UTC(),
	}
}

// buildCSV encodes trips as CSV in stored order.
func buildCSV(trips []domain.Trip) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, t := range trips {
		//nolint:errcheck
		w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.DepartureDate,
			t.ReturnDate,
			t.Destination,
			t.ReasonText(),
			strconv.Itoa(eligibility.TripDuration(t.DepartureDate, t.ReturnDate)),
		})
	}
	w.Flush()
	return &buf
}
