package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/citizenship-tracker/backend/internal/config"
	"github.com/pkordes/citizenship-tracker/backend/internal/repo"
	"github.com/pkordes/citizenship-tracker/backend/migrations"
)

// store bundles the repositories of one driver and how to release them.
type store struct {
	documents     repo.DocumentRepo
	shares        repo.ShareRepo
	subscriptions repo.SubscriptionRepo
	close         func()
}

// openStore connects to the configured driver and applies pending migrations.
func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return openSQLite(ctx, cfg.SQLitePath)
	default:
		return openPostgres(ctx, cfg.DatabaseURL)
	}
}

func openPostgres(ctx context.Context, dsn string) (store, error) {
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return store{}, fmt.Errorf("create database pool: %w", err)
	}

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return store{}, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	// goose needs database/sql; borrow a handle backed by the same pool.
	// It keeps no idle connections of its own.
	n, err := migrations.Up(ctx, stdlib.OpenDBFromPool(pool), goose.DialectPostgres)
	if err != nil {
		pool.Close()
		return store{}, err
	}
	slog.Info("migrations applied", "count", n)

	return store{
		documents:     repo.NewDocumentRepo(pool),
		shares:        repo.NewShareRepo(pool),
		subscriptions: repo.NewSubscriptionRepo(pool),
		close:         pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, path string) (store, error) {
	db, err := repo.OpenSQLite(ctx, path)
	if err != nil {
		return store{}, err
	}

	n, err := migrations.Up(ctx, db.DB, goose.DialectSQLite3)
	if err != nil {
		db.Close()
		return store{}, err
	}
	slog.Info("sqlite store ready", "path", path, "migrations", n)

	return store{
		documents:     repo.NewSQLiteDocumentRepo(db),
		shares:        repo.NewSQLiteShareRepo(db),
		subscriptions: repo.NewSQLiteSubscriptionRepo(db),
		close:         func() { db.Close() },
	}, nil
}
