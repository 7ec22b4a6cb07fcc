package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// TableRepository defines database operations on dining tables.
type TableRepository interface {
	CreateTable(ctx context.Context, exec SQLExecutor, table *models.Table) error
	GetTableByID(ctx context.Context, exec SQLExecutor, tableID int64) (*models.Table, error) // exec may be nil
	ListTables(ctx context.Context) ([]models.Table, error)
	UpdateTable(ctx context.Context, exec SQLExecutor, table *models.Table) error
	UpdateTableStatus(ctx context.Context, exec SQLExecutor, tableID int64, status models.TableStatus) error
	DeleteTable(ctx context.Context, exec SQLExecutor, tableID int64) error
	CountActiveOrders(ctx context.Context, exec SQLExecutor, tableID int64) (int, error)
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) CreateTable(ctx context.Context, exec SQLExecutor, table *models.Table) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO tables (number, capacity, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	now := time.Now()
	table.CreatedAt, table.UpdatedAt = now, now
	err := exec.QueryRowContext(ctx, query, table.Number, table.Capacity, table.Status, now, now).Scan(&table.ID)
	return wrapDBError(err, "creating table")
}

func (r *tableRepository) GetTableByID(ctx context.Context, exec SQLExecutor, tableID int64) (*models.Table, error) {
	t := &models.Table{}
	query := `SELECT t.id, t.number, t.capacity, t.status, t.created_at, t.updated_at,
	                 (SELECT COUNT(*) FROM orders o WHERE o.table_id = t.id)
	          FROM tables t
	          WHERE t.id = $1`
	err := orDB(exec, r.db).QueryRowContext(ctx, query, tableID).Scan(
		&t.ID, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.OrdersCount)
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting table by ID %d", tableID))
	}
	return t, nil
}

func (r *tableRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	query := `SELECT t.id, t.number, t.capacity, t.status, t.created_at, t.updated_at, COUNT(o.id)
	          FROM tables t
	          LEFT JOIN orders o ON o.table_id = t.id
	          GROUP BY t.id
	          ORDER BY t.number ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError(err, "querying tables")
	}
	defer rows.Close()

	tables := []models.Table{}
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.OrdersCount); err != nil {
			return nil, wrapDBError(err, "scanning table")
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating table rows")
	}
	return tables, nil
}

func (r *tableRepository) UpdateTable(ctx context.Context, exec SQLExecutor, table *models.Table) error {
	exec = orDB(exec, r.db)
	table.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx,
		`UPDATE tables SET number = $1, capacity = $2, status = $3, updated_at = $4 WHERE id = $5`,
		table.Number, table.Capacity, table.Status, table.UpdatedAt, table.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating table ID %d", table.ID))
	}
	return expectAffected(result, fmt.Sprintf("table update ID %d", table.ID))
}

func (r *tableRepository) UpdateTableStatus(ctx context.Context, exec SQLExecutor, tableID int64, status models.TableStatus) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `UPDATE tables SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), tableID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating status of table ID %d", tableID))
	}
	return expectAffected(result, fmt.Sprintf("table status update ID %d", tableID))
}

func (r *tableRepository) DeleteTable(ctx context.Context, exec SQLExecutor, tableID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM tables WHERE id = $1`, tableID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting table ID %d", tableID))
	}
	return expectAffected(result, fmt.Sprintf("table delete ID %d", tableID))
}

// CountActiveOrders counts orders on the table that are not yet paid or cancelled.
func (r *tableRepository) CountActiveOrders(ctx context.Context, exec SQLExecutor, tableID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE table_id = $1 AND status IN ($2, $3, $4)`
	err := orDB(exec, r.db).QueryRowContext(ctx, query, tableID,
		models.OrderStatusPending, models.OrderStatusPreparing, models.OrderStatusServed).Scan(&count)
	if err != nil {
		return 0, wrapDBError(err, fmt.Sprintf("counting active orders of table ID %d", tableID))
	}
	return count, nil
}
