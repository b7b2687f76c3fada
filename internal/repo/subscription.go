package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// SubscriptionRepo stores the billing state reported by the payment provider.
type SubscriptionRepo interface {
	// Get returns the user's subscription.
	// Returns domain.ErrNotFound if the provider never reported one.
	Get(ctx context.Context, userID string) (domain.Subscription, error)

	// Upsert replaces the user's subscription and returns the stored record.
	Upsert(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
}

// pgSubscriptionRepo is the Postgres implementation of SubscriptionRepo.
type pgSubscriptionRepo struct {
	db db
}

// NewSubscriptionRepo constructs a SubscriptionRepo backed by the provided db connection.
func NewSubscriptionRepo(db db) SubscriptionRepo {
	return &pgSubscriptionRepo{db: db}
}

func (r *pgSubscriptionRepo) Get(ctx context.Context, userID string) (domain.Subscription, error) {
	const q = `
		SELECT user_id, status, expires_at, external_id, updated_at
		FROM subscriptions
		WHERE user_id = @user_id`

	result, err := scanSubscription(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("repo.SubscriptionRepo.Get: %w", err)
	}
	return result, nil
}

func (r *pgSubscriptionRepo) Upsert(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	const q = `
		INSERT INTO subscriptions (user_id, status, expires_at, external_id, updated_at)
		VALUES (@user_id, @status, @expires_at, @external_id, now())
		ON CONFLICT (user_id) DO UPDATE
		SET status      = EXCLUDED.status,
		    expires_at  = EXCLUDED.expires_at,
		    external_id = EXCLUDED.external_id,
		    updated_at  = now()
		RETURNING user_id, status, expires_at, external_id, updated_at`

	args := pgx.NamedArgs{
		"user_id":     sub.UserID,
		"status":      string(sub.Status),
		"expires_at":  sub.ExpiresAt, // nil becomes NULL
		"external_id": sub.ExternalID,
	}

	result, err := scanSubscription(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("repo.SubscriptionRepo.Upsert: %w", err)
	}
	return result, nil
}

// scanSubscription maps a single database row into a domain.Subscription.
func scanSubscription(s scanner) (domain.Subscription, error) {
	var (
		sub       domain.Subscription
		status    string
		expiresAt pgtype.Timestamptz
	)

	if err := s.Scan(&sub.UserID, &status, &expiresAt, &sub.ExternalID, &sub.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}

	sub.Status = domain.SubscriptionStatus(status)
	if expiresAt.Valid {
		t := expiresAt.Time
		sub.ExpiresAt = &t
	}
	return sub, nil
}
