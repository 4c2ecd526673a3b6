package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tapsafe/sdwis-ingest/internal/domain"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// mapError wraps err with op. Unique violations also match domain.ErrConflict.
// Context errors pass through unchanged apart from the prefix.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
