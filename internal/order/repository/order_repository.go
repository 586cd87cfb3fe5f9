package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"catering/internal/domain"
	"catering/internal/dto"
	apperrors "catering/internal/errors"
)

const orderColumns = `id, orderNumber, ownerId, status, deliveryDate, deliveryHour,
	       deliveryAddress, personCount, menuPrice, totalPrice,
	       specialInstructions, cancellationReason,
	       confirmedAt, deliveredAt, cancelledAt, createdAt, updatedAt`

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, order *domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (orderNumber, ownerId, status, deliveryDate, deliveryHour,
		                    deliveryAddress, personCount, menuPrice, totalPrice, specialInstructions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.OrderNumber, order.OwnerID, order.Status, order.DeliveryDate,
		order.DeliveryHour, order.DeliveryAddress, order.PersonCount,
		order.MenuPrice, order.TotalPrice, order.SpecialInstructions,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("order number %s already exists", order.OrderNumber))
		}
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted order id: %w", err)
	}

	return uint(id), nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ?`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

// FindByIDForUpdate loads the order with a row lock. Must be called inside a
// transaction so concurrent status changes serialize on the locked row.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ? FOR UPDATE`, orderColumns)

	order, err := scanOrder(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order for update: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) List(ctx context.Context, filter dto.ListOrdersFilter, page dto.PageRequest) ([]domain.Order, error) {
	where, args := buildOrderFilter(filter)

	query := fmt.Sprintf(`
		SELECT %s
		FROM Orders
		%s
		ORDER BY createdAt DESC, id DESC
		LIMIT ? OFFSET ?`,
		orderColumns, where,
	)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (r *MySQLOrderRepository) Count(ctx context.Context, filter dto.ListOrdersFilter) (int, error) {
	where, args := buildOrderFilter(filter)

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM Orders %s`, where)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}

	return count, nil
}

// UpdateDetails persists the content fields of an already-loaded order.
// Status and per-status timestamps are never written by this path. When tx
// is non-nil the write joins that transaction, so callers can gate it on a
// row loaded with FindByIDForUpdate.
func (r *MySQLOrderRepository) UpdateDetails(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `
		UPDATE Orders
		SET deliveryDate = ?, deliveryHour = ?, deliveryAddress = ?,
		    personCount = ?, menuPrice = ?, totalPrice = ?, specialInstructions = ?
		WHERE id = ?
	`

	var ex execer = r.db
	if tx != nil {
		ex = tx
	}

	result, err := ex.ExecContext(ctx, query,
		order.DeliveryDate, order.DeliveryHour, order.DeliveryAddress,
		order.PersonCount, order.MenuPrice, order.TotalPrice,
		order.SpecialInstructions, order.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order details: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", order.ID))
	}

	return nil
}

// UpdateStatus writes the new status plus the per-status timestamp column for
// statuses that define one. Cancellation also records the reason.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.Status, changedAt time.Time, reason *string) error {
	query := `UPDATE Orders SET status = ?`
	args := []interface{}{status}

	switch status {
	case domain.StatusConfirmed:
		query += `, confirmedAt = ?`
		args = append(args, changedAt)
	case domain.StatusDelivered:
		query += `, deliveredAt = ?`
		args = append(args, changedAt)
	case domain.StatusCancelled:
		query += `, cancelledAt = ?, cancellationReason = ?`
		args = append(args, changedAt, reason)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func buildOrderFilter(filter dto.ListOrdersFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.OwnerID != nil {
		clauses = append(clauses, "ownerId = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.OwnerID, &order.Status,
		&order.DeliveryDate, &order.DeliveryHour, &order.DeliveryAddress,
		&order.PersonCount, &order.MenuPrice, &order.TotalPrice,
		&order.SpecialInstructions, &order.CancellationReason,
		&order.ConfirmedAt, &order.DeliveredAt, &order.CancelledAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
