package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// OpenSQLite opens (creating if needed) the SQLite database at path.
// SQLite allows a single writer, so the pool is limited to one connection.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping %s: %w", path, err)
	}
	return db, nil
}

// --- documents --------------------------------------------------------------

type documentRow struct {
	UserID      string    `db:"user_id"`
	Trips       string    `db:"trips"`
	Settings    string    `db:"settings"`
	LastUpdated time.Time `db:"last_updated"`
}

// sqliteDocumentRepo is the SQLite implementation of DocumentRepo.
type sqliteDocumentRepo struct {
	db *sqlx.DB
}

// NewSQLiteDocumentRepo constructs a DocumentRepo backed by SQLite.
func NewSQLiteDocumentRepo(db *sqlx.DB) DocumentRepo {
	return &sqliteDocumentRepo{db: db}
}

func (r *sqliteDocumentRepo) Get(ctx context.Context, userID string) (domain.Document, error) {
	var row documentRow
	err := r.db.GetContext(ctx, &row,
		"SELECT user_id, trips, settings, last_updated FROM documents WHERE user_id = ?", userID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Get: %w", mapSQLiteErr(err))
	}
	return row.toDomain()
}

func (r *sqliteDocumentRepo) Put(ctx context.Context, doc domain.Document) (domain.Document, error) {
	trips, settings, err := encodeDocument(doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Put: %w", err)
	}

	row := documentRow{
		UserID:      doc.UserID,
		Trips:       string(trips),
		Settings:    string(settings),
		LastUpdated: time.Now().UTC(),
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO documents (user_id, trips, settings, last_updated)
		VALUES (:user_id, :trips, :settings, :last_updated)
		ON CONFLICT (user_id) DO UPDATE
		SET trips = excluded.trips, settings = excluded.settings, last_updated = excluded.last_updated`,
		row)
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo.Put: %w", err)
	}
	return r.Get(ctx, doc.UserID)
}

func (r *sqliteDocumentRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("repo.DocumentRepo.Delete: %w", err)
	}
	return requireAffected(res, "repo.DocumentRepo.Delete")
}

func (row documentRow) toDomain() (domain.Document, error) {
	doc, err := decodeDocument(domain.Document{UserID: row.UserID, LastUpdated: row.LastUpdated},
		[]byte(row.Trips), []byte(row.Settings))
	if err != nil {
		return domain.Document{}, fmt.Errorf("repo.DocumentRepo: %w", err)
	}
	return doc, nil
}

// --- shares -----------------------------------------------------------------

type shareRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    string    `db:"user_id"`
	Stats     string    `db:"stats"`
	UpdatedAt time.Time `db:"updated_at"`
}

// sqliteShareRepo is the SQLite implementation of ShareRepo.
type sqliteShareRepo struct {
	db *sqlx.DB
}

// NewSQLiteShareRepo constructs a ShareRepo backed by SQLite.
func NewSQLiteShareRepo(db *sqlx.DB) ShareRepo {
	return &sqliteShareRepo{db: db}
}

func (r *sqliteShareRepo) Upsert(ctx context.Context, share domain.Share) (domain.Share, error) {
	stats, err := json.Marshal(share.Stats)
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.Upsert: encode stats: %w", err)
	}

	row := shareRow{ID: share.ID, UserID: share.UserID, Stats: string(stats), UpdatedAt: time.Now().UTC()}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO shares (id, user_id, stats, updated_at)
		VALUES (:id, :user_id, :stats, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET stats = excluded.stats, updated_at = excluded.updated_at`,
		row)
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.Upsert: %w", err)
	}
	return r.GetByUserID(ctx, share.UserID)
}

func (r *sqliteShareRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Share, error) {
	var row shareRow
	err := r.db.GetContext(ctx, &row, "SELECT id, user_id, stats, updated_at FROM shares WHERE id = ?", id)
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.GetByID: %w", mapSQLiteErr(err))
	}
	return row.toDomain()
}

func (r *sqliteShareRepo) GetByUserID(ctx context.Context, userID string) (domain.Share, error) {
	var row shareRow
	err := r.db.GetContext(ctx, &row, "SELECT id, user_id, stats, updated_at FROM shares WHERE user_id = ?", userID)
	if err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo.GetByUserID: %w", mapSQLiteErr(err))
	}
	return row.toDomain()
}

func (row shareRow) toDomain() (domain.Share, error) {
	sh := domain.Share{ID: row.ID, UserID: row.UserID, UpdatedAt: row.UpdatedAt}
	if err := json.Unmarshal([]byte(row.Stats), &sh.Stats); err != nil {
		return domain.Share{}, fmt.Errorf("repo.ShareRepo: decode stats: %w", err)
	}
	return sh, nil
}

// --- subscriptions ----------------------------------------------------------

type subscriptionRow struct {
	UserID     string     `db:"user_id"`
	Status     string     `db:"status"`
	ExpiresAt  *time.Time `db:"expires_at"`
	ExternalID string     `db:"external_id"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// sqliteSubscriptionRepo is the SQLite implementation of SubscriptionRepo.
type sqliteSubscriptionRepo struct {
	db *sqlx.DB
}

// NewSQLiteSubscriptionRepo constructs a SubscriptionRepo backed by SQLite.
func NewSQLiteSubscriptionRepo(db *sqlx.DB) SubscriptionRepo {
	return &sqliteSubscriptionRepo{db: db}
}

func (r *sqliteSubscriptionRepo) Get(ctx context.Context, userID string) (domain.Subscription, error) {
	var row subscriptionRow
	err := r.db.GetContext(ctx, &row,
		"SELECT user_id, status, expires_at, external_id, updated_at FROM subscriptions WHERE user_id = ?", userID)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("repo.SubscriptionRepo.Get: %w", mapSQLiteErr(err))
	}
	return domain.Subscription{
		UserID:     row.UserID,
		Status:     domain.SubscriptionStatus(row.Status),
		ExpiresAt:  row.ExpiresAt,
		ExternalID: row.ExternalID,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (r *sqliteSubscriptionRepo) Upsert(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	row := subscriptionRow{
		UserID:     sub.UserID,
		Status:     string(sub.Status),
		ExpiresAt:  sub.ExpiresAt,
		ExternalID: sub.ExternalID,
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO subscriptions (user_id, status, expires_at, external_id, updated_at)
		VALUES (:user_id, :status, :expires_at, :external_id, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET status = excluded.status, expires_at = excluded.expires_at,
		    external_id = excluded.external_id, updated_at = excluded.updated_at`,
		row)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("repo.SubscriptionRepo.Upsert: %w", err)
	}
	return r.Get(ctx, sub.UserID)
}

// --- helpers ----------------------------------------------------------------

// mapSQLiteErr translates sql.ErrNoRows into domain.ErrNotFound.
func mapSQLiteErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// requireAffected returns domain.ErrNotFound when res touched no rows.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
