package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/handler"
)

func exportFixture() domain.ExportFile {
	trips := []domain.Trip{
		tripFixture(),
		{ID: 2, DepartureDate: "2024-06-01", ReturnDate: "2024-06-05", Destination: "Paris, France",
			Reason: domain.ReasonOther, OtherReason: "wedding"},
	}
	settings := domain.PatchOf(domain.Settings{PRDate: "2021-06-01", ResidencyStatus: "permanent"})
	return domain.ExportFile{Trips: &trips, Settings: &settings, ExportDate: "2025-01-01T12:00:00Z"}
}

// ---- GET /export -----------------------------------------------------------

func TestGetExport_JSONDefault(t *testing.T) {
	svc := &mockExport{
		export: func(_ context.Context, userID string) (domain.ExportFile, error) {
			require.Equal(t, testUser, userID)
			return exportFixture(), nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="citizenship-tracker-2025-01-01.json"`, rec.Header().Get("Content-Disposition"))

	var file domain.ExportFile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&file))
	require.NotNil(t, file.Trips)
	assert.Len(t, *file.Trips, 2)
	require.NotNil(t, file.Settings)
	require.NotNil(t, file.Settings.PRDate)
	assert.Equal(t, "2021-06-01", *file.Settings.PRDate)
	require.NotNil(t, file.Settings.TargetDate, "empty fields are still written")
	assert.Empty(t, *file.Settings.TargetDate)
	assert.Equal(t, "2025-01-01T12:00:00Z", file.ExportDate)
}

func TestGetExport_CSV(t *testing.T) {
	svc := &mockExport{
		export: func(context.Context, string) (domain.ExportFile, error) { return exportFixture(), nil },
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="citizenship-tracker-2025-01-01.csv"`, rec.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "departure_date", "return_date", "destination", "reason", "duration_days"}, rows[0])
	assert.Equal(t, []string{"1735732800000", "2024-11-01", "2024-11-11", "Lisbon", "vacation", "9"}, rows[1])
	// The comma in the destination is quoted, and "other" shows its free text.
	assert.Equal(t, []string{"2", "2024-06-01", "2024-06-05", "Paris, France", "wedding", "3"}, rows[2])
}

func TestGetExport_400_UnknownFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: &mockExport{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export?format=xml", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "format must be json or csv", decodeError(t, rec.Body).Error.Message)
}

// ---- POST /import ----------------------------------------------------------

func TestPostImport_200(t *testing.T) {
	lastUpdated := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var got domain.ExportFile
	svc := &mockExport{
		imp: func(_ context.Context, _ string, file domain.ExportFile) (domain.Document, error) {
			got = file
			return domain.Document{
				Trips:       *file.Trips,
				Settings:    domain.DefaultSettings().Apply(*file.Settings),
				LastUpdated: lastUpdated,
			}, nil
		},
	}

	fixture := exportFixture()
	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", jsonBody(t, fixture)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Trips)
	assert.Equal(t, *fixture.Trips, *got.Trips)

	var resp handler.ImportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Trips)
	assert.Equal(t, "2021-06-01", resp.Settings.PRDate)
	assert.True(t, lastUpdated.Equal(resp.LastUpdated))
}

func TestPostImport_MissingSectionIsNil(t *testing.T) {
	var got domain.ExportFile
	svc := &mockExport{
		imp: func(_ context.Context, _ string, file domain.ExportFile) (domain.Document, error) {
			got = file
			return domain.Document{}, fmt.Errorf("%w: invalid backup file format: trips and settings are required", domain.ErrValidation)
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(`{"trips":[]}`)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotNil(t, got.Trips)
	assert.Nil(t, got.Settings)
	assert.Contains(t, decodeError(t, rec.Body).Error.Message, "invalid backup file format")
}

func TestPostImport_400_NotJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: &mockExport{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("id,departure_date")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- POST /sync/merge ------------------------------------------------------

func TestPostMerge_200(t *testing.T) {
	var got domain.ExportFile
	svc := &mockExport{
		merge: func(_ context.Context, _ string, local domain.ExportFile) (domain.Document, error) {
			got = local
			merged := domain.NewDocument(testUser).WithTrips(append(*local.Trips, tripFixture()))
			return merged, nil
		},
	}

	body := `{"trips":[{"id":9,"departureDate":"2023-01-01","returnDate":"2023-01-03","destination":"Rome","reason":"family","otherReason":""}],` +
		`"settings":{"targetDate":"2026-01-01","prDate":null}}`
	rec := httptest.NewRecorder()
	newHTTPHandler(services{export: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/merge", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Trips)
	assert.Equal(t, []domain.Trip{{ID: 9, DepartureDate: "2023-01-01", ReturnDate: "2023-01-03", Destination: "Rome", Reason: domain.ReasonFamily}}, *got.Trips)
	require.NotNil(t, got.Settings)
	require.NotNil(t, got.Settings.TargetDate)
	assert.Equal(t, "2026-01-01", *got.Settings.TargetDate)
	require.NotNil(t, got.Settings.PRDate, "a null key is still present")
	assert.Empty(t, *got.Settings.PRDate)
	assert.Nil(t, got.Settings.ResidencyPeriods, "absent keys stay absent")

	var resp handler.ImportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Trips)
}

// ---- DELETE /data ----------------------------------------------------------

func TestDeleteData_204(t *testing.T) {
	var cleared string
	svc := &mockTracker{
		clear: func(_ context.Context, userID string) error {
			cleared = userID
			return nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(services{tracker: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/data", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testUser, cleared)
}
