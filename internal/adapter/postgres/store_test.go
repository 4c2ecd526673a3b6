package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapsafe/sdwis-ingest/internal/domain"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewStore(mock), mock
}

var itemColumns = []string{"id", "v"}

// anyArgs matches n bind parameters of any value.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func wideRows() [][]any {
	rows := make([][]any, maxParams+1)
	for i := range rows {
		rows[i] = []any{i}
	}
	return rows
}

func TestStore_Insert(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`^INSERT INTO items \(id,v\) VALUES \(\$1,\$2\),\(\$3,\$4\)$`).
		WithArgs(1, "a", 2, "b").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	err := store.Insert(context.Background(), "items", itemColumns, [][]any{{1, "a"}, {2, "b"}})
	require.NoError(t, err)
}

func TestStore_InsertUniqueViolationMatchesConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO items`).
		WithArgs(1, "a").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.Insert(context.Background(), "items", itemColumns, [][]any{{1, "a"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, IsUniqueViolation(err))
	assert.Contains(t, err.Error(), "insert into items")
}

func TestStore_InsertOtherErrorIsNotConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO items`).
		WithArgs(1, "a").
		WillReturnError(&pgconn.PgError{Code: "22001", Message: "value too long"})

	err := store.Insert(context.Background(), "items", itemColumns, [][]any{{1, "a"}})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.False(t, IsUniqueViolation(err))
}

func TestStore_Upsert(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`^INSERT INTO violations .* ON CONFLICT \(pwsid, violation_id\) DO UPDATE SET status = EXCLUDED\.status$`).
		WithArgs("PWS1", "V1", "open").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Upsert(context.Background(), "violations",
		[]string{"pwsid", "violation_id", "status"}, []string{"pwsid", "violation_id"},
		[][]any{{"PWS1", "V1", "open"}})
	require.NoError(t, err)
}

func TestStore_InsertIgnoreReturnsInserted(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`^INSERT INTO lcr_samples .* ON CONFLICT DO NOTHING$`).
		WithArgs(1, "a", 2, "b").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := store.InsertIgnore(context.Background(), "lcr_samples", itemColumns, [][]any{{1, "a"}, {2, "b"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_OversizedWriteSplitsInTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO wide`).
		WithArgs(anyArgs(maxParams)...).
		WillReturnResult(pgxmock.NewResult("INSERT", maxParams))
	mock.ExpectExec(`INSERT INTO wide`).
		WithArgs(maxParams).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.Insert(context.Background(), "wide", []string{"id"}, wideRows())
	require.NoError(t, err)
}

func TestStore_OversizedWriteRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO wide`).
		WithArgs(anyArgs(maxParams)...).
		WillReturnResult(pgxmock.NewResult("INSERT", maxParams))
	mock.ExpectExec(`INSERT INTO wide`).
		WithArgs(maxParams).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := store.Insert(context.Background(), "wide", []string{"id"}, wideRows())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_EmptyWriteIsNoop(t *testing.T) {
	store, _ := newMockStore(t)
	require.NoError(t, store.Insert(context.Background(), "items", itemColumns, nil))
}

func TestStore_Count(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`^SELECT count\(\*\) FROM water_systems$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	n, err := store.Count(context.Background(), "water_systems")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestStore_DeleteAllLoopsUntilShortChunk(t *testing.T) {
	store, mock := newMockStore(t)
	const del = `^DELETE FROM violations WHERE ctid = ANY\(ARRAY\(SELECT ctid FROM violations LIMIT 10000\)\)$`
	mock.ExpectExec(del).WillReturnResult(pgxmock.NewResult("DELETE", deleteChunk))
	mock.ExpectExec(del).WillReturnResult(pgxmock.NewResult("DELETE", deleteChunk))
	mock.ExpectExec(del).WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := store.DeleteAll(context.Background(), "violations")
	require.NoError(t, err)
	assert.Equal(t, int64(2*deleteChunk+3), n)
}

func TestStore_DeleteAllReportsProgressOnError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM violations`).WillReturnResult(pgxmock.NewResult("DELETE", deleteChunk))
	mock.ExpectExec(`DELETE FROM violations`).WillReturnError(errors.New("canceling statement due to statement timeout"))

	n, err := store.DeleteAll(context.Background(), "violations")
	require.Error(t, err)
	assert.Equal(t, int64(deleteChunk), n)
}

func TestStore_Exec(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE water_systems`).WillReturnResult(pgxmock.NewResult("UPDATE", 12))

	n, err := store.Exec(context.Background(), "UPDATE water_systems SET violation_count = 0")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestUpsertSuffix(t *testing.T) {
	assert.Equal(t, "ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug",
		upsertSuffix([]string{"code", "name", "slug"}, []string{"code"}))
	assert.Equal(t, "ON CONFLICT (value_type, value_code) DO NOTHING",
		upsertSuffix([]string{"value_type", "value_code"}, []string{"value_type", "value_code"}))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "op"))

	err := mapError(context.Canceled, "insert into items")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrConflict)

	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})
	err = mapError(wrapped, "upsert into items")
	assert.ErrorIs(t, err, domain.ErrConflict)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
}
