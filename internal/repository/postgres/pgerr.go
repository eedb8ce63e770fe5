package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a specific named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isExclusionViolation reports whether err is an exclusion-constraint
// violation (overlapping ranges).
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation
}

// nextSequence atomically claims the next value of the keyed daily
// counter. The upsert holds a row lock until the surrounding transaction
// commits, which is what makes concurrently generated numbers unique.
func nextSequence(ctx context.Context, tx *sqlx.Tx, prefix string, date time.Time) (int64, error) {
	var seq int64
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO number_sequences (prefix, seq_date, next_value)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (prefix, seq_date)
		 DO UPDATE SET next_value = number_sequences.next_value + 1
		 RETURNING next_value`,
		prefix, date.UTC().Truncate(24*time.Hour)).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("nextSequence %s: %w", prefix, err)
	}
	return seq, nil
}
