package repository

import (
	"context"
	"database/sql"
	"fmt"

	"catering/internal/domain"
)

type MySQLStatusHistoryRepository struct {
	db *sql.DB
}

func NewMySQLStatusHistoryRepository(db *sql.DB) *MySQLStatusHistoryRepository {
	return &MySQLStatusHistoryRepository{db: db}
}

// Insert appends one audit row. All inserts happen inside the transaction
// that owns the status change; history rows are never updated or deleted.
func (r *MySQLStatusHistoryRepository) Insert(ctx context.Context, tx *sql.Tx, entry domain.StatusHistoryEntry) (uint, error) {
	query := `
		INSERT INTO OrderStatusHistory (orderId, oldStatus, newStatus, notes, changedAt)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		entry.OrderID, entry.OldStatus, entry.NewStatus, entry.Notes, entry.ChangedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting status history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted history id: %w", err)
	}

	return uint(id), nil
}

// ListByOrderID returns the order's audit trail ascending by change time,
// the canonical replay order.
func (r *MySQLStatusHistoryRepository) ListByOrderID(ctx context.Context, orderID uint) ([]domain.StatusHistoryEntry, error) {
	query := `
		SELECT id, orderId, oldStatus, newStatus, notes, changedAt
		FROM OrderStatusHistory
		WHERE orderId = ?
		ORDER BY changedAt ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		err := rows.Scan(
			&entry.ID, &entry.OrderID, &entry.OldStatus, &entry.NewStatus,
			&entry.Notes, &entry.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning status history row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history rows: %w", err)
	}

	return entries, nil
}
