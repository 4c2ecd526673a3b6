package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tapsafe/sdwis-ingest/internal/domain"
)

// row is a test record whose values are used as-is.
type row []any

func (r row) Values() []any { return r }

func rowsOf(ids ...int) []domain.Record {
	out := make([]domain.Record, len(ids))
	for i, id := range ids {
		out[i] = row{id, fmt.Sprintf("v%d", i)}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore records every call. insertErr decides whether an Insert of the
// given rows fails; ignoreInserted decides how many rows InsertIgnore keeps.
type fakeStore struct {
	mu sync.Mutex

	insertErr      func(rows [][]any) error
	upsertErr      func(rows [][]any) error
	ignoreInserted func(rows [][]any) int64
	deleteErr      error

	inserts  []int
	upserts  [][][]any
	ignores  []int
	written  map[string][][]any
	deleted  []string
	existing int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{written: make(map[string][][]any)}
}

func (s *fakeStore) Insert(_ context.Context, table string, _ []string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts = append(s.inserts, len(rows))
	if s.insertErr != nil {
		if err := s.insertErr(rows); err != nil {
			return err
		}
	}
	s.written[table] = append(s.written[table], rows...)
	return nil
}

func (s *fakeStore) Upsert(_ context.Context, table string, _, _ []string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts = append(s.upserts, rows)
	if s.upsertErr != nil {
		if err := s.upsertErr(rows); err != nil {
			return err
		}
	}
	s.written[table] = append(s.written[table], rows...)
	return nil
}

func (s *fakeStore) InsertIgnore(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ignores = append(s.ignores, len(rows))
	n := int64(len(rows))
	if s.ignoreInserted != nil {
		n = s.ignoreInserted(rows)
	}
	s.written[table] = append(s.written[table], rows[:n]...)
	return n, nil
}

func (s *fakeStore) DeleteAll(_ context.Context, table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, table)
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.existing, nil
}

func (s *fakeStore) rows(table string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written[table]
}

// failIfContains fails any insert that includes a row whose first value is id.
func failIfContains(id int, err error) func([][]any) error {
	return func(rows [][]any) error {
		for _, r := range rows {
			if r[0] == id {
				return err
			}
		}
		return nil
	}
}

func conflictErr() error {
	return fmt.Errorf("duplicate key value: %w", domain.ErrConflict)
}
