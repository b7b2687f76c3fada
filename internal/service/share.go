package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
	"github.com/pkordes/citizenship-tracker/backend/internal/repo"
)

// ShareService publishes and serves the anonymized public progress page.
type ShareService struct {
	docs           repo.DocumentRepo
	shares         repo.ShareRepo
	subs           repo.SubscriptionRepo
	requirePremium bool
	now            Clock
}

// NewShareService constructs a ShareService. When requirePremium is true only
// users whose plan includes sharing may publish.
func NewShareService(docs repo.DocumentRepo, shares repo.ShareRepo, subs repo.SubscriptionRepo, requirePremium bool, now Clock) *ShareService {
	return &ShareService{docs: docs, shares: shares, subs: subs, requirePremium: requirePremium, now: orNow(now)}
}

// Publish recomputes the user's public stats and stores them. The user's
// share keeps its ID across republishes.
// Returns domain.ErrForbidden when sharing requires a plan the user lacks.
func (s *ShareService) Publish(ctx context.Context, userID string) (domain.Share, error) {
	now := s.now()
	if s.requirePremium {
		sub, err := s.subs.Get(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.Share{}, fmt.Errorf("service.ShareService.Publish: %w", err)
		}
		if !domain.PlanOf(sub, now).Features.Sharing {
			return domain.Share{}, fmt.Errorf("service.ShareService.Publish: sharing requires premium: %w", domain.ErrForbidden)
		}
	}

	doc, err := loadDocument(ctx, s.docs, userID)
	if err != nil {
		return domain.Share{}, fmt.Errorf("service.ShareService.Publish: %w", err)
	}
	stats, _ := eligibility.CalculateStats(doc, now)

	share, err := s.shares.Upsert(ctx, domain.Share{
		ID:     uuid.New(),
		UserID: userID,
		Stats:  eligibility.PublicStatsFrom(stats),
	})
	if err != nil {
		return domain.Share{}, fmt.Errorf("service.ShareService.Publish: %w", err)
	}
	slog.DebugContext(ctx, "share published", "user_id", userID, "share_id", share.ID)
	return share, nil
}

// Get returns a published share by its public ID.
// Returns domain.ErrNotFound if no such share exists.
func (s *ShareService) Get(ctx context.Context, id uuid.UUID) (domain.Share, error) {
	share, err := s.shares.GetByID(ctx, id)
	if err != nil {
		return domain.Share{}, fmt.Errorf("service.ShareService.Get: %w", err)
	}
	return share, nil
}
