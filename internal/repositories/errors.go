package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrForeignKey is returned when a row is still referenced or references a missing row.
	ErrForeignKey = errors.New("foreign key constraint violation")
)

// PostgreSQL error codes the repositories translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
// This allows for generic scanning helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

// wrapDBError maps driver errors onto the repository sentinels.
func wrapDBError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s (constraint %s)", ErrDuplicateKey, action, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s (constraint %s)", ErrForeignKey, action, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// expectAffected turns a zero-row UPDATE/DELETE into ErrNotFound.
func expectAffected(result sql.Result, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// orDB falls back to the pool for reads made outside a transaction.
func orDB(exec SQLExecutor, db *sql.DB) SQLExecutor {
	if exec == nil {
		return db
	}
	return exec
}
