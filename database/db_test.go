package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS plans").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_plans_created_at").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlan(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO plans").
		WithArgs("p1", "Paris", 5, "Mid", "USD", `{"sections":[]}`, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.SavePlan(context.Background(), &PlanRecord{
		ID: "p1", Destination: "Paris", NumDays: 5, Budget: "Mid", Currency: "USD", PlanJSON: `{"sections":[]}`,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlan(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM plans WHERE id = \\$1").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "destination", "num_days", "budget", "currency", "plan_json", "pdf_data", "traveler_name", "created_at"}).
			AddRow("p1", "Paris", 5, "Mid", "USD", "{}", nil, nil, created))

	rec, err := store.GetPlan(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Paris", rec.Destination)
	assert.Equal(t, 5, rec.NumDays)
	assert.Empty(t, rec.PDFData)
	assert.Equal(t, "", rec.TravelerName)
	assert.True(t, created.Equal(rec.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlanMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM plans WHERE id = \\$1").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetPlan(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePlanPDF(t *testing.T) {
	store, mock := newMockStore(t)
	pdf := []byte("%PDF-1.3")

	mock.ExpectExec("UPDATE plans SET pdf_data").
		WithArgs(pdf, "Ada", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE plans SET pdf_data").
		WithArgs(pdf, "Ada", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.UpdatePlanPDF(context.Background(), "p1", pdf, "Ada"))
	assert.ErrorIs(t, store.UpdatePlanPDF(context.Background(), "gone", pdf, "Ada"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentPlans(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM plans ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "destination", "num_days", "budget", "currency", "plan_json", "created_at"}).
			AddRow("b", "Rome", 3, "Low", "EUR", "{}", now).
			AddRow("a", "Paris", 5, "Mid", "USD", "{}", now.Add(-time.Hour)))

	recs, err := store.ListRecentPlans(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].ID)
	assert.Equal(t, "a", recs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
