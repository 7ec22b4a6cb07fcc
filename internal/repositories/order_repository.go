package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/lib/pq"
)

// OrderRepository defines the interface for order-related database operations.
// Read methods that take an executor fall back to the pool when it is nil.
type OrderRepository interface {
	// Order methods
	CreateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error
	GetOrderByID(ctx context.Context, exec SQLExecutor, orderID int64) (*models.Order, error)
	LockOrder(ctx context.Context, exec SQLExecutor, orderID int64) (*models.Order, error) // SELECT ... FOR UPDATE
	ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) // orders, total count, error
	UpdateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, exec SQLExecutor, orderID int64, status string) error
	DeleteOrder(ctx context.Context, exec SQLExecutor, orderID int64) error

	// OrderItem methods
	CreateOrderItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error
	GetOrderItemByID(ctx context.Context, exec SQLExecutor, itemID int64) (*models.OrderItem, error)
	GetOrderItems(ctx context.Context, exec SQLExecutor, orderIDs ...int64) ([]models.OrderItem, error)
	UpdateOrderItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error
	DeleteOrderItem(ctx context.Context, exec SQLExecutor, itemID int64) error
	AddItemSupplement(ctx context.Context, exec SQLExecutor, supplement *models.OrderItemSupplement) error
	ReplaceItemAccompaniments(ctx context.Context, exec SQLExecutor, itemID int64, accompaniments []models.OrderItemAccompaniment) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

const orderColumns = `o.id, o.table_id, o.server_id, o.cashier_id, o.status, o.status_payment,
                      o.total_food, o.total_drink, o.grand_total, o.preparing_time, o.created_at, o.updated_at`

func scanOrder(s scanner, o *models.Order, extra ...interface{}) error {
	dest := []interface{}{
		&o.ID, &o.TableID, &o.ServerID, &o.CashierID, &o.Status, &o.StatusPayment,
		&o.TotalFood, &o.TotalDrink, &o.GrandTotal, &o.PreparingTime, &o.CreatedAt, &o.UpdatedAt,
	}
	return s.Scan(append(dest, extra...)...)
}

func (r *orderRepository) CreateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO orders
	            (table_id, server_id, cashier_id, status, status_payment,
	             total_food, total_drink, grand_total, preparing_time, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt

	err := exec.QueryRowContext(ctx, query,
		order.TableID, order.ServerID, order.CashierID, order.Status, order.StatusPayment,
		order.TotalFood, order.TotalDrink, order.GrandTotal, order.PreparingTime, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	return wrapDBError(err, "creating order")
}

func (r *orderRepository) GetOrderByID(ctx context.Context, exec SQLExecutor, orderID int64) (*models.Order, error) {
	return r.getOrder(ctx, orDB(exec, r.db), orderID, false)
}

func (r *orderRepository) LockOrder(ctx context.Context, exec SQLExecutor, orderID int64) (*models.Order, error) {
	return r.getOrder(ctx, exec, orderID, true)
}

func (r *orderRepository) getOrder(ctx context.Context, exec SQLExecutor, orderID int64, forUpdate bool) (*models.Order, error) {
	exec = orDB(exec, r.db)
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	if err := scanOrder(exec.QueryRowContext(ctx, query, orderID), order); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting order by ID %d", orderID))
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT ` + orderColumns + `,
            t.number AS table_number,
            COUNT(*) OVER() AS total_count
        FROM orders o
        LEFT JOIN tables t ON o.table_id = t.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if len(filters.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("o.status = ANY($%d)", argCounter))
		args = append(args, pq.Array(filters.Statuses))
		argCounter++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argCounter))
		args = append(args, *filters.From)
		argCounter++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at < $%d", argCounter))
		args = append(args, *filters.To)
		argCounter++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.ServerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.server_id = $%d", argCounter))
		args = append(args, *filters.ServerID)
		argCounter++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(CAST(o.id AS TEXT) LIKE $%d OR CAST(t.number AS TEXT) LIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+filters.Search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	if filters.OldestFirst {
		queryBuilder.WriteString(" ORDER BY o.created_at ASC, o.id ASC")
	} else {
		queryBuilder.WriteString(" ORDER BY o.created_at DESC, o.id DESC")
	}

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "querying orders")
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var tableNumber sql.NullInt64
		if err := scanOrder(rows, &o, &tableNumber, &totalCount); err != nil {
			return nil, 0, wrapDBError(err, "scanning order")
		}
		if tableNumber.Valid {
			n := int(tableNumber.Int64)
			o.TableNumber = &n
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating order rows")
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, exec SQLExecutor, order *models.Order) error {
	exec = orDB(exec, r.db)
	query := `UPDATE orders
	          SET table_id = $1, server_id = $2, cashier_id = $3, status = $4, status_payment = $5,
	              total_food = $6, total_drink = $7, grand_total = $8, preparing_time = $9, updated_at = $10
	          WHERE id = $11`
	order.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx, query,
		order.TableID, order.ServerID, order.CashierID, order.Status, order.StatusPayment,
		order.TotalFood, order.TotalDrink, order.GrandTotal, order.PreparingTime, order.UpdatedAt, order.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating order ID %d", order.ID))
	}
	return expectAffected(result, fmt.Sprintf("order update ID %d", order.ID))
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, exec SQLExecutor, orderID int64, status string) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), orderID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating order status for ID %d", orderID))
	}
	return expectAffected(result, fmt.Sprintf("order status update ID %d", orderID))
}

func (r *orderRepository) DeleteOrder(ctx context.Context, exec SQLExecutor, orderID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting order ID %d", orderID))
	}
	return expectAffected(result, fmt.Sprintf("order delete ID %d", orderID))
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO order_items
	            (order_id, product_id, type, quantity, base_price, preparing_time, status, total, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now

	err := exec.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.Type, item.Quantity, item.BasePrice, item.PreparingTime, item.Status,
		item.Total, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	return wrapDBError(err, "creating order item")
}

const orderItemQuery = `
        SELECT oi.id, oi.order_id, oi.product_id, oi.type, oi.quantity, oi.base_price, oi.preparing_time,
               oi.status, oi.total, oi.created_at, oi.updated_at,
               p.name, p.price, p.type, p.category_id, p.preparing_time, p.is_active, p.image_url,
               COALESCE(c.name, '')
        FROM order_items oi
        JOIN products p ON p.id = oi.product_id
        LEFT JOIN categories c ON c.id = p.category_id`

func scanOrderItem(s scanner, item *models.OrderItem) error {
	p := &models.Product{}
	err := s.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Type, &item.Quantity, &item.BasePrice, &item.PreparingTime,
		&item.Status, &item.Total, &item.CreatedAt, &item.UpdatedAt,
		&p.Name, &p.Price, &p.Type, &p.CategoryID, &p.PreparingTime, &p.IsActive, &p.ImageURL, &p.CategoryName,
	)
	if err != nil {
		return err
	}
	p.ID = item.ProductID
	item.Product = p
	item.Supplements = []models.OrderItemSupplement{}
	item.Accompaniments = []models.OrderItemAccompaniment{}
	return nil
}

func (r *orderRepository) GetOrderItemByID(ctx context.Context, exec SQLExecutor, itemID int64) (*models.OrderItem, error) {
	exec = orDB(exec, r.db)
	item := &models.OrderItem{}
	if err := scanOrderItem(exec.QueryRowContext(ctx, orderItemQuery+` WHERE oi.id = $1`, itemID), item); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting order item by ID %d", itemID))
	}
	items := []models.OrderItem{*item}
	if err := r.loadModifiers(ctx, exec, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// GetOrderItems returns the items of the given orders, ordered by order then id,
// with product, supplements and accompaniments loaded.
func (r *orderRepository) GetOrderItems(ctx context.Context, exec SQLExecutor, orderIDs ...int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	if len(orderIDs) == 0 {
		return items, nil
	}
	exec = orDB(exec, r.db)

	rows, err := exec.QueryContext(ctx, orderItemQuery+` WHERE oi.order_id = ANY($1) ORDER BY oi.order_id, oi.id`, pq.Array(orderIDs))
	if err != nil {
		return nil, wrapDBError(err, "querying order items")
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := scanOrderItem(rows, &item); err != nil {
			return nil, wrapDBError(err, "scanning order item")
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating order item rows")
	}
	rows.Close()

	if err := r.loadModifiers(ctx, exec, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadModifiers fills Supplements and Accompaniments of items in place.
func (r *orderRepository) loadModifiers(ctx context.Context, exec SQLExecutor, items []models.OrderItem) error {
	exec = orDB(exec, r.db)
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
		index[item.ID] = i
	}

	supRows, err := exec.QueryContext(ctx, `
        SELECT ois.id, ois.order_item_id, ois.supplement_id, s.name, ois.quantity, ois.extra_price
        FROM order_item_supplement ois
        JOIN supplements s ON s.id = ois.supplement_id
        WHERE ois.order_item_id = ANY($1)
        ORDER BY ois.id`, pq.Array(ids))
	if err != nil {
		return wrapDBError(err, "querying order item supplements")
	}
	for supRows.Next() {
		var s models.OrderItemSupplement
		if err := supRows.Scan(&s.ID, &s.OrderItemID, &s.SupplementID, &s.Name, &s.Quantity, &s.ExtraPrice); err != nil {
			supRows.Close()
			return wrapDBError(err, "scanning order item supplement")
		}
		i := index[s.OrderItemID]
		items[i].Supplements = append(items[i].Supplements, s)
	}
	if err := supRows.Err(); err != nil {
		supRows.Close()
		return wrapDBError(err, "iterating order item supplement rows")
	}
	supRows.Close()

	accRows, err := exec.QueryContext(ctx, `
        SELECT oia.order_item_id, oia.accompaniment_id, a.name, oia.quantity, oia.extra_price, oia.free_quantity
        FROM order_item_accompaniment oia
        JOIN accompaniments a ON a.id = oia.accompaniment_id
        WHERE oia.order_item_id = ANY($1)
        ORDER BY a.name`, pq.Array(ids))
	if err != nil {
		return wrapDBError(err, "querying order item accompaniments")
	}
	defer accRows.Close()
	for accRows.Next() {
		var a models.OrderItemAccompaniment
		if err := accRows.Scan(&a.OrderItemID, &a.AccompanimentID, &a.Name, &a.Quantity, &a.ExtraPrice, &a.FreeQuantity); err != nil {
			return wrapDBError(err, "scanning order item accompaniment")
		}
		i := index[a.OrderItemID]
		items[i].Accompaniments = append(items[i].Accompaniments, a)
	}
	if err := accRows.Err(); err != nil {
		return wrapDBError(err, "iterating order item accompaniment rows")
	}
	return nil
}

func (r *orderRepository) UpdateOrderItem(ctx context.Context, exec SQLExecutor, item *models.OrderItem) error {
	exec = orDB(exec, r.db)
	item.UpdatedAt = time.Now()
	result, err := exec.ExecContext(ctx,
		`UPDATE order_items SET quantity = $1, status = $2, total = $3, updated_at = $4 WHERE id = $5`,
		item.Quantity, item.Status, item.Total, item.UpdatedAt, item.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating order item ID %d", item.ID))
	}
	return expectAffected(result, fmt.Sprintf("order item update ID %d", item.ID))
}

func (r *orderRepository) DeleteOrderItem(ctx context.Context, exec SQLExecutor, itemID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting order item ID %d", itemID))
	}
	return expectAffected(result, fmt.Sprintf("order item delete ID %d", itemID))
}

func (r *orderRepository) AddItemSupplement(ctx context.Context, exec SQLExecutor, supplement *models.OrderItemSupplement) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO order_item_supplement (order_item_id, supplement_id, quantity, extra_price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := exec.QueryRowContext(ctx, query,
		supplement.OrderItemID, supplement.SupplementID, supplement.Quantity, supplement.ExtraPrice,
	).Scan(&supplement.ID)
	return wrapDBError(err, fmt.Sprintf("attaching supplement %d to order item %d", supplement.SupplementID, supplement.OrderItemID))
}

// ReplaceItemAccompaniments syncs the accompaniment set of an item.
func (r *orderRepository) ReplaceItemAccompaniments(ctx context.Context, exec SQLExecutor, itemID int64, accompaniments []models.OrderItemAccompaniment) error {
	exec = orDB(exec, r.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM order_item_accompaniment WHERE order_item_id = $1`, itemID); err != nil {
		return wrapDBError(err, fmt.Sprintf("clearing accompaniments of order item %d", itemID))
	}
	query := `INSERT INTO order_item_accompaniment (order_item_id, accompaniment_id, quantity, extra_price, free_quantity)
	          VALUES ($1, $2, $3, $4, $5)`
	for _, a := range accompaniments {
		if _, err := exec.ExecContext(ctx, query, itemID, a.AccompanimentID, a.Quantity, a.ExtraPrice, a.FreeQuantity); err != nil {
			return wrapDBError(err, fmt.Sprintf("attaching accompaniment %d to order item %d", a.AccompanimentID, itemID))
		}
	}
	return nil
}
