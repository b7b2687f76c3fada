package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// DocumentRepo stores one Document per user, keyed by user id.
// Documents are always read and written whole.
type DocumentRepo interface {
	// Get returns the user's document.
	// Returns domain.ErrNotFound if the user has never saved anything.
	Get(ctx context.Context, userID string) (domain.Document, error)

	// Put replaces the user's document (creating it if needed) and returns
	// the stored record with LastUpdated set by the database.
	Put(ctx context.Context, doc domain.Document) (domain.Document, error)

	// Delete removes the user's document.
	// Returns domain.ErrNotFound if there is nothing to delete.
	Delete(ctx context.Context, userID string) error
}

// pgDocumentRepo is the Postgres implementation of DocumentRepo.
type pgDocumentRepo struct {
	db db
}

// NewDocumentRepo constructs a DocumentRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDocumentRepo(db db) DocumentRepo {
	return &pgDocumentRepo{db: db}
}

func (r *pgDocumentRepo) Get(ctx context.Context, userID string) (domain.Document, error) {
	const q = `
		SELECT user_id, trips, settings, last_updated
		FROM documents
		WHERE user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID})
	doc, err := scanDocument(row)
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Get: %w", err)
	}
	return doc, nil
}

func (r *pgDocumentRepo) Put(ctx context.Context, doc domain.Document) (domain.Document, error) {
	const q = `
		INSERT INTO documents (user_id, trips, settings, last_updated)
		VALUES (@user_id, @trips, @settings, now())
		ON CONFLICT (user_id) DO UPDATE
		SET trips        = EXCLUDED.trips,
		    settings     = EXCLUDED.settings,
		    last_updated = now()
		RETURNING user_id, trips, settings, last_updated`

	trips, settings, err := encodeDocument(doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Put: %w", err)
	}

	args := pgx.NamedArgs{
		"user_id":  doc.UserID,
		"trips":    trips,
		"settings": settings,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDocument(row)
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Put: %w", err)
	}
	return result, nil
}

func (r *pgDocumentRepo) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM documents WHERE user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.DocumentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DocumentRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanDocument maps a single database row into a domain.Document.
// The trips and settings columns hold JSON.
func scanDocument(s scanner) (domain.Document, error) {
	var (
		doc      domain.Document
		trips    []byte
		settings []byte
	)

	err := s.Scan(&doc.UserID, &trips, &settings, &doc.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, domain.ErrNotFound
		}
		return domain.Document{}, err
	}

	return decodeDocument(doc, trips, settings)
}

// encodeDocument serializes the JSON columns of a document.
func encodeDocument(doc domain.Document) (trips, settings []byte, err error) {
	list := doc.Trips
	if list == nil {
		list = []domain.Trip{}
	}
	if trips, err = json.Marshal(list); err != nil {
		return nil, nil, fmt.Errorf("encode trips: %w", err)
	}
	if settings, err = json.Marshal(doc.Settings); err != nil {
		return nil, nil, fmt.Errorf("encode settings: %w", err)
	}
	return trips, settings, nil
}

// decodeDocument fills the JSON-backed fields of doc.
func decodeDocument(doc domain.Document, trips, settings []byte) (domain.Document, error) {
	if err := json.Unmarshal(trips, &doc.Trips); err != nil {
		return domain.Document{}, fmt.Errorf("decode trips: %w", err)
	}
	if doc.Trips == nil {
		doc.Trips = []domain.Trip{}
	}
	if err := json.Unmarshal(settings, &doc.Settings); err != nil {
		return domain.Document{}, fmt.Errorf("decode settings: %w", err)
	}
	return doc, nil
}
