package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// maxParams is the Postgres limit on bind parameters in one statement.
const maxParams = 65535

// deleteChunk bounds how many rows one clean-slate DELETE removes.
const deleteChunk = 10000

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Querier is implemented by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store writes rows with multi-row INSERT statements. A write too large for
// one statement is split and run inside a single transaction, so every call
// is all-or-nothing.
type Store struct {
	q Querier
}

// NewStore creates a Store on q.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// Insert inserts rows and fails on any conflict.
func (s *Store) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	_, err := s.write(ctx, table, columns, rows, "")
	return mapError(err, "insert into "+table)
}

// Upsert inserts rows and overwrites every non-key column of rows whose
// conflict columns already exist. rows must not repeat a conflict key.
func (s *Store) Upsert(ctx context.Context, table string, columns, conflict []string, rows [][]any) error {
	_, err := s.write(ctx, table, columns, rows, upsertSuffix(columns, conflict))
	return mapError(err, "upsert into "+table)
}

// InsertIgnore inserts rows, skipping those that violate any unique
// constraint, and returns how many were inserted.
func (s *Store) InsertIgnore(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := s.write(ctx, table, columns, rows, "ON CONFLICT DO NOTHING")
	return n, mapError(err, "insert ignoring conflicts into "+table)
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	query, args, err := psql.Select("count(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := s.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err, "count "+table)
	}
	return n, nil
}

// DeleteAll empties table in chunks so no single statement holds locks on
// the whole table. It returns how many rows were deleted, including when it
// stops early on an error.
func (s *Store) DeleteAll(ctx context.Context, table string) (int64, error) {
	sub := psql.Select("ctid").From(table).Limit(deleteChunk)
	query, args, err := psql.Delete(table).
		Where(squirrel.Expr("ctid = ANY(ARRAY(?))", sub)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	var total int64
	for {
		tag, err := s.q.Exec(ctx, query, args...)
		if err != nil {
			return total, mapError(err, "delete from "+table)
		}
		total += tag.RowsAffected()
		if tag.RowsAffected() < deleteChunk {
			return total, nil
		}
	}
}

// Exec runs one maintenance statement and returns the affected row count.
func (s *Store) Exec(ctx context.Context, statement string) (int64, error) {
	tag, err := s.q.Exec(ctx, statement)
	if err != nil {
		return 0, mapError(err, "exec")
	}
	return tag.RowsAffected(), nil
}

func (s *Store) write(ctx context.Context, table string, columns []string, rows [][]any, suffix string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	per := maxParams / len(columns)
	if len(rows) <= per {
		return insertRows(ctx, s.q, table, columns, rows, suffix)
	}

	tx, err := s.q.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var total int64
	for start := 0; start < len(rows); start += per {
		n, err := insertRows(ctx, tx, table, columns, rows[start:min(start+per, len(rows))], suffix)
		if err != nil {
			return 0, err
		}
		total += n
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func insertRows(ctx context.Context, q execer, table string, columns []string, rows [][]any, suffix string) (int64, error) {
	b := psql.Insert(table).Columns(columns...)
	for _, r := range rows {
		b = b.Values(r...)
	}
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// upsertSuffix builds the ON CONFLICT clause. With no columns left to update
// it degrades to DO NOTHING.
func upsertSuffix(columns, conflict []string) string {
	keys := make(map[string]bool, len(conflict))
	for _, c := range conflict {
		keys[c] = true
	}
	var set []string
	for _, c := range columns {
		if !keys[c] {
			set = append(set, c+" = EXCLUDED."+c)
		}
	}
	target := "ON CONFLICT (" + strings.Join(conflict, ", ") + ")"
	if len(set) == 0 {
		return target + " DO NOTHING"
	}
	return target + " DO UPDATE SET " + strings.Join(set, ", ")
}
