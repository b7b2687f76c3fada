package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// ShareRepo stores the public share document of each user.
type ShareRepo interface {
	// Upsert stores the share, keyed by user. When the user already has a
	// share its ID is kept and only the stats and timestamp change.
	Upsert(ctx context.Context, share domain.Share) (domain.Share, error)

	// GetByID returns a share by its public ID.
	// Returns domain.ErrNotFound if no such share exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Share, error)

	// GetByUserID returns the share owned by userID.
	// Returns domain.ErrNotFound if the user has not published one.
	GetByUserID(ctx context.Context, userID string) (domain.Share, error)
}

// pgShareRepo is the Postgres implementation of ShareRepo.
type pgShareRepo struct {
	db db
}

// NewShareRepo constructs a ShareRepo backed by the provided db connection.
func NewShareRepo(db db) ShareRepo {
	return &pgShareRepo{db: db}
}

func (r *pgShareRepo) Upsert(ctx context.Context, share domain.Share) (domain.Share, error) {
	const q = `
		INSERT INTO shares (id, user_id, stats, updated_at)
		VALUES (@id, @user_id, @stats, now())
		ON CONFLICT (user_id) DO UPDATE
		SET stats      = EXCLUDED.stats,
		    updated_at = now()
		RETURNING id, user_id, stats, updated_at`

	stats, err := json.Marshal(share.Stats)
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.Upsert: encode stats: %w", err)
	}

	args := pgx.NamedArgs{
		"id":      share.ID,
		"user_id": share.UserID,
		"stats":   stats,
	}

	result, err := scanShare(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgShareRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Share, error) {
	const q = `
		SELECT id, user_id, stats, updated_at
		FROM shares
		WHERE id = @id`

	result, err := scanShare(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgShareRepo) GetByUserID(ctx context.Context, userID string) (domain.Share, error) {
	const q = `
		SELECT id, user_id, stats, updated_at
		FROM shares
		WHERE user_id = @user_id`

	result, err := scanShare(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.GetByUserID: %w", err)
	}
	return result, nil
}

// scanShare maps a single database row into a domain.Share.
func scanShare(s scanner) (domain.Share, error) {
	var (
		sh    domain.Share
		id    pgtype.UUID
		stats []byte
	)

	if err := s.Scan(&id, &sh.UserID, &stats, &sh.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Share{}, domain.ErrNotFound
		}
		return domain.Share{}, err
	}

	sh.ID = uuid.UUID(id.Bytes)
	if err := json.Unmarshal(stats, &sh.Stats); err != nil {
		return domain.Share{}, fmt.Errorf("decode stats: %w", err)
	}
	return sh, nil
}
