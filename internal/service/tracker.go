// Package service contains the business logic for the Citizenship Tracker API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
//
// Every mutation loads the user's Document, derives a new snapshot from it and
// writes it back whole. Concurrent writers are last-writer-wins.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
	"github.com/pkordes/citizenship-tracker/backend/internal/repo"
)

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// TrackerService implements trips, settings and the calculator read models.
type TrackerService struct {
	docs repo.DocumentRepo
	now  Clock
}

// NewTrackerService constructs a TrackerService. A nil clock means time.Now.
func NewTrackerService(docs repo.DocumentRepo, now Clock) *TrackerService {
	return &TrackerService{docs: docs, now: orNow(now)}
}

// loadDocument returns the stored document, or an empty one when the user has
// never saved anything.
func loadDocument(ctx context.Context, docs repo.DocumentRepo, userID string) (domain.Document, error) {
	doc, err := docs.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewDocument(userID), nil
	}
	if err != nil {
		return domain.Document{}, err
	}
	doc.UserID = userID
	return doc, nil
}

// Snapshot returns the user's current document.
func (s *TrackerService) Snapshot(ctx context.Context, userID string) (domain.Document, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.TrackerService.Snapshot: %w", err)
	}
	return doc, nil
}

// ListTrips returns one page of trips, most recent departure first, and the
// total number of trips.
func (s *TrackerService) ListTrips(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Trip, int, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TrackerService.ListTrips: %w", err)
	}
	trips := sortedTrips(doc.Trips)
	return domain.Paginate(trips, p), len(trips), nil
}

// GetTrip returns a single trip by ID.
// Returns domain.ErrNotFound if the user has no such trip.
func (s *TrackerService) GetTrip(ctx context.Context, userID string, id int64) (domain.Trip, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.GetTrip: %w", err)
	}
	i := indexOfTrip(doc.Trips, id)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.GetTrip: %w", domain.ErrNotFound)
	}
	return doc.Trips[i], nil
}

// CreateTrip validates the trip, assigns it a fresh ID and stores it.
// Returns domain.ErrValidation if input violates business rules.
func (s *TrackerService) CreateTrip(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error) {
	if err := eligibility.ValidateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.CreateTrip: %w", err)
	}

	trip.ID = nextTripID(s.now(), doc.Trips)
	if trip.Reason != domain.ReasonOther {
		trip.OtherReason = ""
	}
	next := doc.WithTrips(append(slices.Clone(doc.Trips), trip))

	if _, err := s.docs.Put(ctx, next); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.CreateTrip: %w", err)
	}
	slog.DebugContext(ctx, "trip created", "user_id", userID, "trip_id", trip.ID)
	return trip, nil
}

// UpdateTrip validates and replaces an existing trip, matched by ID.
// Returns domain.ErrValidation for invalid input and domain.ErrNotFound if the
// trip does not exist.
func (s *TrackerService) UpdateTrip(ctx context.Context, userID string, trip domain.Trip) (domain.Trip, error) {
	if err := eligibility.ValidateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.UpdateTrip: %w", err)
	}
	i := indexOfTrip(doc.Trips, trip.ID)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.UpdateTrip: %w", domain.ErrNotFound)
	}

	if trip.Reason != domain.ReasonOther {
		trip.OtherReason = ""
	}
	trips := slices.Clone(doc.Trips)
	trips[i] = trip

	if _, err := s.docs.Put(ctx, doc.WithTrips(trips)); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TrackerService.UpdateTrip: %w", err)
	}
	slog.DebugContext(ctx, "trip updated", "user_id", userID, "trip_id", trip.ID)
	return trip, nil
}

// DeleteTrip removes a trip by ID.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TrackerService) DeleteTrip(ctx context.Context, userID string, id int64) error {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return fmt.Errorf("service.TrackerService.DeleteTrip: %w", err)
	}
	i := indexOfTrip(doc.Trips, id)
	if i < 0 {
		return fmt.Errorf("service.TrackerService.DeleteTrip: %w", domain.ErrNotFound)
	}

	trips := slices.Delete(slices.Clone(doc.Trips), i, i+1)
	if _, err := s.docs.Put(ctx, doc.WithTrips(trips)); err != nil {
		return fmt.Errorf("service.TrackerService.DeleteTrip: %w", err)
	}
	slog.DebugContext(ctx, "trip deleted", "user_id", userID, "trip_id", id)
	return nil
}

// GetSettings returns the user's settings, defaults when none are stored.
func (s *TrackerService) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.TrackerService.GetSettings: %w", err)
	}
	return doc.Settings, nil
}

// SaveSettings validates and replaces the user's settings.
// A rejected save leaves the stored document untouched.
func (s *TrackerService) SaveSettings(ctx context.Context, userID string, settings domain.Settings) (domain.Settings, error) {
	if settings.ResidencyStatus == "" {
		settings.ResidencyStatus = domain.DefaultResidencyStatus
	}
	if err := eligibility.ValidateSettings(settings, s.now()); err != nil {
		return domain.Settings{}, err
	}
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.TrackerService.SaveSettings: %w", err)
	}

	saved, err := s.docs.Put(ctx, doc.WithSettings(settings))
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service.TrackerService.SaveSettings: %w", err)
	}
	slog.DebugContext(ctx, "settings saved", "user_id", userID, "periods", len(settings.ResidencyPeriods))
	return saved.Settings, nil
}

// Stats computes the dashboard summary and the calculation behind it.
func (s *TrackerService) Stats(ctx context.Context, userID string) (domain.Stats, eligibility.Result, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Stats{}, eligibility.Result{}, fmt.Errorf("service.TrackerService.Stats: %w", err)
	}
	stats, res := eligibility.CalculateStats(doc, s.now())
	return stats, res, nil
}

// Eligibility computes the stats plus the projected eligibility date and a
// countdown to it.
func (s *TrackerService) Eligibility(ctx context.Context, userID string) (eligibility.Report, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return eligibility.Report{}, fmt.Errorf("service.TrackerService.Eligibility: %w", err)
	}
	return eligibility.BuildReport(doc, s.now()), nil
}

// Clear deletes every trip and setting of the user. Clearing a user with no
// stored data succeeds.
func (s *TrackerService) Clear(ctx context.Context, userID string) error {
	if err := s.docs.Delete(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("service.TrackerService.Clear: %w", err)
	}
	slog.InfoContext(ctx, "user data cleared", "user_id", userID)
	return nil
}

// nextTripID returns a creation-time token that is unique within trips:
// the current Unix millisecond, bumped past the largest existing ID.
func nextTripID(now time.Time, trips []domain.Trip) int64 {
	id := now.UnixMilli()
	for _, t := range trips {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func indexOfTrip(trips []domain.Trip, id int64) int {
	return slices.IndexFunc(trips, func(t domain.Trip) bool { return t.ID == id })
}

// sortedTrips returns a copy of trips, most recent departure first.
// ISO dates sort lexically; ties fall back to the newest ID.
func sortedTrips(trips []domain.Trip) []domain.Trip {
	out := slices.Clone(trips)
	slices.SortStableFunc(out, func(a, b domain.Trip) int {
		if c := cmp.Compare(b.DepartureDate, a.DepartureDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}
