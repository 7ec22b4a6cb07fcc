package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager runs a unit of work inside one database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by db at READ COMMITTED isolation.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (m *sqlTxManager) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: failed to start database transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrDatabaseError, err)
	}
	return nil
}
