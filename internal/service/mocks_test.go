package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/repo"
)

// mockDocumentRepo is a hand-written test double for repo.DocumentRepo.
// Each method is a function field; set only the ones your test needs.
type mockDocumentRepo struct {
	get    func(ctx context.Context, userID string) (domain.Document, error)
	put    func(ctx context.Context, doc domain.Document) (domain.Document, error)
	delete func(ctx context.Context, userID string) error
}

func (m *mockDocumentRepo) Get(ctx context.Context, userID string) (domain.Document, error) {
	return m.get(ctx, userID)
}
func (m *mockDocumentRepo) Put(ctx context.Context, doc domain.Document) (domain.Document, error) {
	return m.put(ctx, doc)
}
func (m *mockDocumentRepo) Delete(ctx context.Context, userID string) error {
	return m.delete(ctx, userID)
}

// compile-time check: mockDocumentRepo must satisfy repo.DocumentRepo.
var _ repo.DocumentRepo = (*mockDocumentRepo)(nil)

type mockShareRepo struct {
	upsert      func(ctx context.Context, share domain.Share) (domain.Share, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Share, error)
	getByUserID func(ctx context.Context, userID string) (domain.Share, error)
}

func (m *mockShareRepo) Upsert(ctx context.Context, share domain.Share) (domain.Share, error) {
	return m.upsert(ctx, share)
}
func (m *mockShareRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Share, error) {
	return m.getByID(ctx, id)
}
func (m *mockShareRepo) GetByUserID(ctx context.Context, userID string) (domain.Share, error) {
	return m.getByUserID(ctx, userID)
}

var _ repo.ShareRepo = (*mockShareRepo)(nil)

type mockSubscriptionRepo struct {
	get    func(ctx context.Context, userID string) (domain.Subscription, error)
	upsert func(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
}

func (m *mockSubscriptionRepo) Get(ctx context.Context, userID string) (domain.Subscription, error) {
	return m.get(ctx, userID)
}
func (m *mockSubscriptionRepo) Upsert(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	return m.upsert(ctx, sub)
}

var _ repo.SubscriptionRepo = (*mockSubscriptionRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// fixedNow is 2025-01-01 12:00 UTC, so the rolling window is
// 2020-01-01 .. 2025-01-01.
var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// storedRepo is a DocumentRepo that keeps one document in memory. A nil
// initial document behaves like a user who never saved anything.
func storedRepo(initial *domain.Document) (*mockDocumentRepo, func() *domain.Document) {
	stored := initial
	m := &mockDocumentRepo{
		get: func(_ context.Context, userID string) (domain.Document, error) {
			if stored == nil {
				return domain.Document{}, domain.ErrNotFound
			}
			return stored.Clone(), nil
		},
		put: func(_ context.Context, doc domain.Document) (domain.Document, error) {
			doc.LastUpdated = fixedNow
			stored = &doc
			return doc.Clone(), nil
		},
		delete: func(_ context.Context, _ string) error {
			if stored == nil {
				return domain.ErrNotFound
			}
			stored = nil
			return nil
		},
	}
	return m, func() *domain.Document { return stored }
}

// noWrites fails the test if the service tries to persist anything.
func noWrites(t *testing.T, m *mockDocumentRepo) *mockDocumentRepo {
	t.Helper()
	m.put = func(context.Context, domain.Document) (domain.Document, error) {
		t.Fatal("Put must not be called")
		return domain.Document{}, nil
	}
	return m
}

func tripOn(id int64, dep, ret string) domain.Trip {
	return domain.Trip{ID: id, DepartureDate: dep, ReturnDate: ret, Destination: "Lisbon", Reason: domain.ReasonVacation}
}

func docWith(trips ...domain.Trip) *domain.Document {
	doc := domain.NewDocument("u1")
	doc.Trips = trips
	return &doc
}
