// Package handler implements the HTTP handlers for the Citizenship Tracker API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, etc.) but all share the same Server struct so they
// can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
)

// TrackerServicer defines the trip, settings and calculator operations the
// handlers depend on. Defining the interface here (in the consumer package)
// lets handler tests inject a mock without touching the service layer.
type TrackerServicer interface {
	ListTrips(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Trip, int, error)
	GetTrip(ctx context.Context, userID string, id int64) (domain.Trip, error)
	CreateTrip(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error)
	UpdateTrip(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error)
	DeleteTrip(ctx context.Context, userID string, id int64) error
	GetSettings(ctx context.Context, userID string) (domain.Settings, error)
	SaveSettings(ctx context.Context, userID string, s domain.Settings) (domain.Settings, error)
	Stats(ctx context.Context, userID string) (domain.Stats, eligibility.Result, error)
	Eligibility(ctx context.Context, userID string) (eligibility.Report, error)
	Clear(ctx context.Context, userID string) error
}

// ExportServicer defines backup and sync operations.
type ExportServicer interface {
	Export(ctx context.Context, userID string) (domain.ExportFile, error)
	Import(ctx context.Context, userID string, file domain.ExportFile) (domain.Document, error)
	Merge(ctx context.Context, userID string, local domain.ExportFile) (domain.Document, error)
}

// ShareServicer defines public share operations.
type ShareServicer interface {
	Publish(ctx context.Context, userID string) (domain.Share, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Share, error)
}

// SubscriptionServicer defines plan lookup and billing event operations.
type SubscriptionServicer interface {
	Status(ctx context.Context, userID string) (domain.Plan, error)
	ApplyEvent(ctx context.Context, ev domain.SubscriptionEvent) (bool, error)
}

// Options carries the non-service settings handlers need.
type Options struct {
	// WebhookSecret is the HMAC key payment webhooks are signed with.
	WebhookSecret []byte
	// PublicBaseURL prefixes share links. Empty means links are relative.
	PublicBaseURL string
	// Now is the clock used for download filenames. Nil means time.Now.
	Now func() time.Time
}

// Server holds the dependencies of every endpoint.
type Server struct {
	tracker       TrackerServicer
	export        ExportServicer
	shares        ShareServicer
	subscriptions SubscriptionServicer
	opts          Options
}

// NewServer constructs the Server with all its dependencies.
func NewServer(tracker TrackerServicer, export ExportServicer, shares ShareServicer, subs SubscriptionServicer, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{tracker: tracker, export: export, shares: shares, subscriptions: subs, opts: opts}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, Options{})
}

// Routes returns the API router. Public endpoints are mounted directly;
// everything else sits behind authn, which must put the caller's user id in
// the request context.
func (s *Server) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/shares/{id}", s.GetShare)
	r.Post("/webhooks/subscription", s.PostSubscriptionWebhook)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Get("/{id}", s.GetTrip)
			r.Put("/{id}", s.UpdateTrip)
			r.Delete("/{id}", s.DeleteTrip)
		})
		r.Get("/settings", s.GetSettings)
		r.Put("/settings", s.PutSettings)
		r.Get("/stats", s.GetStats)
		r.Get("/eligibility", s.GetEligibility)
		r.Get("/export", s.GetExport)
		r.Post("/import", s.PostImport)
		r.Post("/sync/merge", s.PostMerge)
		r.Delete("/data", s.DeleteData)
		r.Post("/share", s.PostShare)
		r.Get("/subscription", s.GetSubscription)
	})
	return r
}
