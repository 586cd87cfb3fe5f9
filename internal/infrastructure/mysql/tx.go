package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TxManager runs functions inside a single database transaction. The status
// engine relies on it so that reading, re-validating and writing an order's
// status happen as one atomic unit.
type TxManager struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxManager(db *sql.DB, timeout time.Duration) *TxManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TxManager{db: db, timeout: timeout}
}

// RunAtomic executes fn within a REPEATABLE READ transaction. The transaction
// commits when fn returns nil and rolls back otherwise; a panic inside fn
// also rolls back before propagating.
func (m *TxManager) RunAtomic(ctx context.Context, fn func(tx *sql.Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tx, err := m.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Ensure rollback on any exit path. MySQL ignores rollback if already committed.
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
