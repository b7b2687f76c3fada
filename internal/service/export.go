package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/repo"
)

// ExportService moves whole documents in and out: backup files and the
// merge of a device's local snapshot into the stored one.
type ExportService struct {
	docs repo.DocumentRepo
	now  Clock
}

// NewExportService constructs an ExportService. A nil clock means time.Now.
func NewExportService(docs repo.DocumentRepo, now Clock) *ExportService {
	return &ExportService{docs: docs, now: orNow(now)}
}

// Export returns the user's trips and settings as a backup file.
func (s *ExportService) Export(ctx context.Context, userID string) (domain.ExportFile, error) {
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.ExportFile{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	trips := slices.Clone(doc.Trips)
	settings := domain.PatchOf(doc.Settings)
	return domain.ExportFile{
		Trips:      &trips,
		Settings:   &settings,
		ExportDate: s.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// Import replaces the user's trips with the file's and applies the file's
// settings onto the current ones: a key present in the file wins even when
// its value is empty. Both sections must be present.
// Imported dates are stored as written so a backup restores exactly.
func (s *ExportService) Import(ctx context.Context, userID string, file domain.ExportFile) (domain.Document, error) {
	if file.Trips == nil || file.Settings == nil {
		return domain.Document{}, fmt.Errorf("%w: invalid backup file format: trips and settings are required", domain.ErrValidation)
	}
	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.ExportService.Import: %w", err)
	}

	next := doc.WithTrips(*file.Trips).WithSettings(doc.Settings.Apply(*file.Settings))
	saved, err := s.docs.Put(ctx, next)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.ExportService.Import: %w", err)
	}
	slog.InfoContext(ctx, "backup imported", "user_id", userID, "trips", len(saved.Trips))
	return saved, nil
}

// Merge combines a device's local snapshot with the stored one. Stored trips
// come first; a local trip is appended unless a stored trip has the same
// departure date and destination. Local settings keys win over stored ones.
func (s *ExportService) Merge(ctx context.Context, userID string, local domain.ExportFile) (domain.Document, error) {
	cloud, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.ExportService.Merge: %w", err)
	}

	saved, err := s.docs.Put(ctx, MergeDocuments(cloud, local))
	if err != nil {
		return domain.Document{}, fmt.Errorf("service.ExportService.Merge: %w", err)
	}
	slog.InfoContext(ctx, "documents merged", "user_id", userID,
		"cloud_trips", len(cloud.Trips), "merged_trips", len(saved.Trips))
	return saved, nil
}

// MergeDocuments is the pure merge rule used by Merge. The result belongs to
// cloud's user. A missing local section leaves the stored one untouched.
func MergeDocuments(cloud domain.Document, local domain.ExportFile) domain.Document {
	var localTrips []domain.Trip
	if local.Trips != nil {
		localTrips = *local.Trips
	}
	settings := cloud.Settings
	if local.Settings != nil {
		settings = settings.Apply(*local.Settings)
	}

	trips := slices.Clone(cloud.Trips)
	for _, lt := range localTrips {
		dup := slices.ContainsFunc(cloud.Trips, func(ct domain.Trip) bool {
			return ct.DepartureDate == lt.DepartureDate && ct.Destination == lt.Destination
		})
		if !dup {
			trips = append(trips, lt)
		}
	}
	return cloud.WithTrips(trips).WithSettings(settings)
}
