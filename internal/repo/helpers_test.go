package repo_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/testutil"
)

// newTestTx opens a transaction against the test database. The transaction
// is rolled back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; the test is skipped otherwise.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test.
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// documentFixture returns a document with one trip and a residency period.
// Callers can override individual fields after calling this function.
func documentFixture(userID string) domain.Document {
	doc := domain.NewDocument(userID)
	doc.Trips = []domain.Trip{{
		ID:            1735689600000,
		DepartureDate: "2024-11-01",
		ReturnDate:    "2024-11-11",
		Destination:   "Lisbon",
		Reason:        domain.ReasonOther,
		OtherReason:   "conference",
	}}
	doc.Settings.PRDate = "2021-06-01"
	doc.Settings.ResidencyPeriods = []domain.ResidencyPeriod{
		{StartDate: "2021-06-01", EndDate: "2024-12-31", Status: domain.StatusPR},
	}
	return doc
}
