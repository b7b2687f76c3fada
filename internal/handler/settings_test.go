package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

func TestGetSettings_200(t *testing.T) {
	svc := &mockTracker{
		getSettings: func(_ context.Context, userID string) (domain.Settings, error) {
			require.Equal(t, testUser, userID)
			return domain.Settings{PRDate: "2021-06-01", ResidencyStatus: "permanent"}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(services{tracker: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prDate":"2021-06-01","targetDate":"","residencyStatus":"permanent","residencyPeriods":[]}`, rec.Body.String())
}

func TestPutSettings_200_RoundTripsPeriods(t *testing.T) {
	var got domain.Settings
	svc := &mockTracker{
		saveSettings: func(_ context.Context, _ string, s domain.Settings) (domain.Settings, error) {
			got = s
			return s, nil
		},
	}

	body := `{
		"targetDate": "2026-01-01",
		"residencyStatus": "permanent",
		"residencyPeriods": [{"startDate":"2020-01-01","endDate":"2020-12-31","status":"temporary"}]
	}`
	rec := httptest.NewRecorder()
	newHTTPHandler(services{tracker: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got.ResidencyPeriods, 1)
	assert.Equal(t, domain.StatusTemporary, got.ResidencyPeriods[0].Status)
	assert.Equal(t, "2026-01-01", got.TargetDate)

	var resp domain.Settings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, got, resp)
}

func TestPutSettings_422_InvalidPeriod(t *testing.T) {
	svc := &mockTracker{
		saveSettings: func(context.Context, string, domain.Settings) (domain.Settings, error) {
			return domain.Settings{}, fmt.Errorf("%w: residency period 1: end date is before start date", domain.ErrValidation)
		},
	}

	body := `{"residencyPeriods":[{"startDate":"2021-01-01","endDate":"2020-01-01","status":"pr"}]}`
	rec := httptest.NewRecorder()
	newHTTPHandler(services{tracker: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "residency period 1: end date is before start date", decodeError(t, rec.Body).Error.Message)
}

func TestPutSettings_400_MalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(services{tracker: &mockTracker{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader("[")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
