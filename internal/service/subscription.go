package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/repo"
)

// SubscriptionService reports plans and applies payment-provider events.
type SubscriptionService struct {
	subs repo.SubscriptionRepo
	now  Clock
}

// NewSubscriptionService constructs a SubscriptionService. A nil clock means time.Now.
func NewSubscriptionService(subs repo.SubscriptionRepo, now Clock) *SubscriptionService {
	return &SubscriptionService{subs: subs, now: orNow(now)}
}

// Status returns the user's effective plan. Users the provider never reported
// are on the free plan.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (domain.Plan, error) {
	sub, err := s.subs.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		sub = domain.Subscription{UserID: userID, Status: domain.SubscriptionFree}
	} else if err != nil {
		return domain.Plan{}, fmt.Errorf("service.SubscriptionService.Status: %w", err)
	}
	return domain.PlanOf(sub, s.now()), nil
}

// ApplyEvent records a verified billing event. It reports false for event
// types it does not handle, which are acknowledged and ignored. A failed
// payment only marks an existing subscription.
// Returns domain.ErrValidation when the event names no user.
func (s *SubscriptionService) ApplyEvent(ctx context.Context, ev domain.SubscriptionEvent) (bool, error) {
	if ev.UserID == "" {
		return false, fmt.Errorf("%w: subscription event has no user", domain.ErrValidation)
	}
	if ev.Type == domain.EventSubscriptionPaymentFailed {
		return s.markPaymentFailed(ctx, ev.UserID)
	}

	sub := domain.Subscription{UserID: ev.UserID, ExternalID: ev.SubscriptionID}
	switch ev.Type {
	case domain.EventSubscriptionActivated, domain.EventSubscriptionRenewed:
		sub.Status = domain.SubscriptionPremium
		if !ev.CurrentPeriodEnd.IsZero() {
			end := ev.CurrentPeriodEnd.UTC()
			sub.ExpiresAt = &end
		}
	case domain.EventSubscriptionCancelled:
		sub.Status = domain.SubscriptionCancelled
	case domain.EventSubscriptionExpired:
		sub.Status = domain.SubscriptionExpired
	default:
		slog.InfoContext(ctx, "unhandled subscription event", "type", ev.Type)
		return false, nil
	}

	if _, err := s.subs.Upsert(ctx, sub); err != nil {
		return false, fmt.Errorf("service.SubscriptionService.ApplyEvent: %w", err)
	}
	slog.InfoContext(ctx, "subscription updated", "user_id", ev.UserID, "status", sub.Status)
	return true, nil
}

func (s *SubscriptionService) markPaymentFailed(ctx context.Context, userID string) (bool, error) {
	sub, err := s.subs.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		slog.InfoContext(ctx, "payment failed for unknown subscription", "user_id", userID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service.SubscriptionService.ApplyEvent: %w", err)
	}

	sub.Status = domain.SubscriptionPaymentFailed
	if _, err := s.subs.Upsert(ctx, sub); err != nil {
		return false, fmt.Errorf("service.SubscriptionService.ApplyEvent: %w", err)
	}
	slog.WarnContext(ctx, "subscription payment failed", "user_id", userID)
	return true, nil
}
