package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
	"github.com/pkordes/citizenship-tracker/backend/internal/handler"
	"github.com/pkordes/citizenship-tracker/backend/internal/middleware"
)

// mockTracker is a test double for handler.TrackerServicer.
// Set only the method fields your test needs.
type mockTracker struct {
	listTrips    func(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Trip, int, error)
	getTrip      func(ctx context.Context, userID string, id int64) (domain.Trip, error)
	createTrip   func(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error)
	updateTrip   func(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error)
	deleteTrip   func(ctx context.Context, userID string, id int64) error
	getSettings  func(ctx context.Context, userID string) (domain.Settings, error)
	saveSettings func(ctx context.Context, userID string, s domain.Settings) (domain.Settings, error)
	stats        func(ctx context.Context, userID string) (domain.Stats, eligibility.Result, error)
	eligibility  func(ctx context.Context, userID string) (eligibility.Report, error)
	clear        func(ctx context.Context, userID string) error
}

func (m *mockTracker) ListTrips(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Trip, int, error) {
	return m.listTrips(ctx, userID, p)
}
func (m *mockTracker) GetTrip(ctx context.Context, userID string, id int64) (domain.Trip, error) {
	return m.getTrip(ctx, userID, id)
}
func (m *mockTracker) CreateTrip(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error) {
	return m.createTrip(ctx, userID, trip)
}
func (m *mockTracker) UpdateTrip(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error) {
	return m.updateTrip(ctx, userID, trip)
}
func (m *mockTracker) DeleteTrip(ctx context.Context, userID string, id int64) error {
	return m.deleteTrip(ctx, userID, id)
}
func (m *mockTracker) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	return m.getSettings(ctx, userID)
}
func (m *mockTracker) SaveSettings(ctx context.Context, userID string, s domain.Settings) (domain.Settings, error) {
	return m.saveSettings(ctx, userID, s)
}
func (m *mockTracker) Stats(ctx context.Context, userID string) (domain.Stats, eligibility.Result, error) {
	return m.stats(ctx, userID)
}
func (m *mockTracker) Eligibility(ctx context.Context, userID string) (eligibility.Report, error) {
	return m.eligibility(ctx, userID)
}
func (m *mockTracker) Clear(ctx context.Context, userID string) error {
	return m.clear(ctx, userID)
}

// compile-time check: mockTracker must satisfy handler.TrackerServicer.
var _ handler.TrackerServicer = (*mockTracker)(nil)

type mockExport struct {
	export func(ctx context.Context, userID string) (domain.ExportFile, error)
	imp    func(ctx context.Context, userID string, file domain.ExportFile) (domain.Document, error)
	merge  func(ctx context.Context, userID string, local domain.ExportFile) (domain.Document, error)
}

func (m *mockExport) Export(ctx context.Context, userID string) (domain.ExportFile, error) {
	return m.export(ctx, userID)
}
func (m *mockExport) Import(ctx context.Context, userID string, file domain.ExportFile) (domain.Document, error) {
	return m.imp(ctx, userID, file)
}
func (m *mockExport) Merge(ctx context.Context, userID string, local domain.ExportFile) (domain.Document, error) {
	return m.merge(ctx, userID, local)
}

var _ handler.ExportServicer = (*mockExport)(nil)

type mockShares struct {
	publish func(ctx context.Context, userID string) (domain.Share, error)
	get     func(ctx context.Context, id uuid.UUID) (domain.Share, error)
}

func (m *mockShares) Publish(ctx context.Context, userID string) (domain.Share, error) {
	return m.publish(ctx, userID)
}
func (m *mockShares) Get(ctx context.Context, id uuid.UUID) (domain.Share, error) {
	return m.get(ctx, id)
}

var _ handler.ShareServicer = (*mockShares)(nil)

type mockSubscriptions struct {
	status     func(ctx context.Context, userID string) (domain.Plan, error)
	applyEvent func(ctx context.Context, ev domain.SubscriptionEvent) (bool, error)
}

func (m *mockSubscriptions) Status(ctx context.Context, userID string) (domain.Plan, error) {
	return m.status(ctx, userID)
}
func (m *mockSubscriptions) ApplyEvent(ctx context.Context, ev domain.SubscriptionEvent) (bool, error) {
	return m.applyEvent(ctx, ev)
}

var _ handler.SubscriptionServicer = (*mockSubscriptions)(nil)

// ---- helpers ---------------------------------------------------------------

const testUser = "user-1"

var (
	webhookSecret = []byte("whsec_test")
	fixedNow      = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
)

// services groups the mocks a test wires in; nil fields stay nil.
type services struct {
	tracker *mockTracker
	export  *mockExport
	shares  *mockShares
	subs    *mockSubscriptions
}

// fakeAuth authenticates every request as testUser.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUser)))
	})
}

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production, minus real token checks.
func newHTTPHandler(svcs services) http.Handler {
	var (
		tracker handler.TrackerServicer
		export  handler.ExportServicer
		shares  handler.ShareServicer
		subs    handler.SubscriptionServicer
	)
	if svcs.tracker != nil {
		tracker = svcs.tracker
	}
	if svcs.export != nil {
		export = svcs.export
	}
	if svcs.shares != nil {
		shares = svcs.shares
	}
	if svcs.subs != nil {
		subs = svcs.subs
	}
	srv := handler.NewServer(tracker, export, shares, subs, handler.Options{
		WebhookSecret: webhookSecret,
		PublicBaseURL: "https://tracker.example.com/",
		Now:           func() time.Time { return fixedNow },
	})
	return srv.Routes(fakeAuth)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
