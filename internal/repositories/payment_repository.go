package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentRepository covers the payment ledger and the cash registers.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, exec SQLExecutor, payment *models.Payment) error
	SumPayments(ctx context.Context, exec SQLExecutor, orderID int64) (decimal.Decimal, error)
	SumPaymentsByMethod(ctx context.Context, exec SQLExecutor, orderID int64) ([]models.MethodTotal, error)
	ListPayments(ctx context.Context, filters models.PaymentFilters) ([]models.Payment, int, error)
	PaymentStats(ctx context.Context, from, to *time.Time) ([]models.MethodTotal, error)

	IncrementCashRegister(ctx context.Context, exec SQLExecutor, registerType string, amount decimal.Decimal) error
	ListCashRegisters(ctx context.Context) ([]models.CashRegister, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreatePayment(ctx context.Context, exec SQLExecutor, payment *models.Payment) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO payments (order_id, method, amount, cashier_id, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	err := exec.QueryRowContext(ctx, query,
		payment.OrderID, payment.Method, payment.Amount, payment.CashierID, payment.CreatedAt,
	).Scan(&payment.ID)
	return wrapDBError(err, fmt.Sprintf("creating payment for order %d", payment.OrderID))
}

// SumPayments recomputes the amount paid from the ledger.
func (r *paymentRepository) SumPayments(ctx context.Context, exec SQLExecutor, orderID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := orDB(exec, r.db).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`, orderID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapDBError(err, fmt.Sprintf("summing payments of order %d", orderID))
	}
	return total, nil
}

func (r *paymentRepository) SumPaymentsByMethod(ctx context.Context, exec SQLExecutor, orderID int64) ([]models.MethodTotal, error) {
	rows, err := orDB(exec, r.db).QueryContext(ctx, `
        SELECT method, SUM(amount), COUNT(*)
        FROM payments
        WHERE order_id = $1
        GROUP BY method
        ORDER BY method`, orderID)
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("grouping payments of order %d", orderID))
	}
	defer rows.Close()
	return scanMethodTotals(rows)
}

func scanMethodTotals(rows *sql.Rows) ([]models.MethodTotal, error) {
	totals := []models.MethodTotal{}
	for rows.Next() {
		var t models.MethodTotal
		if err := rows.Scan(&t.Method, &t.Total, &t.Count); err != nil {
			return nil, wrapDBError(err, "scanning payment totals")
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating payment totals")
	}
	return totals, nil
}

func (r *paymentRepository) ListPayments(ctx context.Context, filters models.PaymentFilters) ([]models.Payment, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT p.id, p.order_id, p.method, p.amount, p.cashier_id, p.created_at,
               o.table_id, o.grand_total,
               COUNT(*) OVER() AS total_count
        FROM payments p
        JOIN orders o ON o.id = p.order_id`)

	var args []interface{}
	argCounter := 1
	if filters.OrderID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE p.order_id = $%d", argCounter))
		args = append(args, *filters.OrderID)
		argCounter++
	}
	queryBuilder.WriteString(" ORDER BY p.created_at DESC, p.id DESC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "querying payments")
	}
	defer rows.Close()

	payments := []models.Payment{}
	totalCount := 0
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.CashierID, &p.CreatedAt,
			&p.OrderTableID, &p.OrderGrandTotal, &totalCount); err != nil {
			return nil, 0, wrapDBError(err, "scanning payment")
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating payment rows")
	}
	return payments, totalCount, nil
}

// PaymentStats aggregates payments by method, optionally bounded by [from, to).
func (r *paymentRepository) PaymentStats(ctx context.Context, from, to *time.Time) ([]models.MethodTotal, error) {
	query := `SELECT method, SUM(amount), COUNT(*) FROM payments`
	var conditions []string
	var args []interface{}
	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY method ORDER BY method"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err, "querying payment stats")
	}
	defer rows.Close()
	return scanMethodTotals(rows)
}

// IncrementCashRegister adds amount to the register of registerType, creating it on first use.
// The upsert is a single statement so concurrent settlements cannot lose an increment.
func (r *paymentRepository) IncrementCashRegister(ctx context.Context, exec SQLExecutor, registerType string, amount decimal.Decimal) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO cash_registers (type, balance, created_at, updated_at)
	          VALUES ($1, $2, NOW(), NOW())
	          ON CONFLICT (type) DO UPDATE
	          SET balance = cash_registers.balance + EXCLUDED.balance, updated_at = NOW()`
	if _, err := exec.ExecContext(ctx, query, registerType, amount); err != nil {
		return wrapDBError(err, fmt.Sprintf("incrementing %s register", registerType))
	}
	return nil
}

func (r *paymentRepository) ListCashRegisters(ctx context.Context) ([]models.CashRegister, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, balance, created_at, updated_at FROM cash_registers ORDER BY type`)
	if err != nil {
		return nil, wrapDBError(err, "querying cash registers")
	}
	defer rows.Close()

	registers := []models.CashRegister{}
	for rows.Next() {
		var c models.CashRegister
		if err := rows.Scan(&c.ID, &c.Type, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrapDBError(err, "scanning cash register")
		}
		registers = append(registers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating cash register rows")
	}
	return registers, nil
}
