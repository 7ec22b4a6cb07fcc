package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/broadcast"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// --- Data Transfer Objects (DTOs) ---

// OrderLineSupplementRequest attaches a supplement to a new order line.
type OrderLineSupplementRequest struct {
	ID         int64            `json:"id" binding:"required"`
	Quantity   *int             `json:"quantity" binding:"omitempty,min=1"`
	ExtraPrice *decimal.Decimal `json:"extra_price"`
}

// CreateOrderItemRequest is one line of a new order. Price and Type default
// to the product's own values when omitted.
type CreateOrderItemRequest struct {
	ProductID   int64                        `json:"product_id" binding:"required"`
	Quantity    int                          `json:"quantity" binding:"required,min=1"`
	Type        string                       `json:"type" binding:"omitempty,oneof=food drink dessert other"`
	Price       *decimal.Decimal             `json:"price"`
	Supplements []OrderLineSupplementRequest `json:"supplements" binding:"omitempty,dive"`
}

// CreateOrderRequest is used for creating a new order.
type CreateOrderRequest struct {
	TableID *int64                   `json:"table_id"`
	Items   []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest changes the status and/or table of an order.
type UpdateOrderRequest struct {
	Status  *string `json:"status"`
	TableID *int64  `json:"table_id"`
}

// OrderListQuery carries the listing filters as received from the client.
type OrderListQuery struct {
	Status  string // "all" or empty means no filter
	Date    string // today, yesterday or YYYY-MM-DD
	Search  string
	Page    int
	PerPage int
}

// OrderPage is a page of rendered orders.
type OrderPage struct {
	Orders  []OrderResource `json:"data"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

const defaultOrderPageSize = 20

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(ctx context.Context, principal Principal, req CreateOrderRequest) (*OrderResource, error)
	ListOrders(ctx context.Context, query OrderListQuery) (*OrderPage, error)
	GetOrder(ctx context.Context, orderID int64) (*OrderResource, error)
	UpdateOrder(ctx context.Context, principal Principal, orderID int64, req UpdateOrderRequest) (*OrderResource, error)
	DeleteOrder(ctx context.Context, principal Principal, orderID int64) error
	KitchenQueue(ctx context.Context) ([]OrderResource, error)
}

// OrderRepositories groups what the order aggregate services need.
type OrderRepositories struct {
	Tx            repositories.TxManager
	Orders        repositories.OrderRepository
	Catalog       repositories.CatalogRepository
	Modifiers     repositories.ModifierRepository
	Tables        repositories.TableRepository
	Outbox        repositories.OutboxRepository
	Notifications repositories.NotificationRepository
}

// orderAggregate holds the loading and recomputation shared by the order services.
type orderAggregate struct {
	repos OrderRepositories
	now   func() time.Time
}

// load returns the order with its items.
func (a *orderAggregate) load(ctx context.Context, exec repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	order, err := a.repos.Orders.GetOrderByID(ctx, exec, orderID)
	if err != nil {
		return nil, notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("loading order %d", orderID))
	}
	items, err := a.repos.Orders.GetOrderItems(ctx, exec, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading items of order %d: %w", orderID, err)
	}
	order.Items = items
	return order, nil
}

// recompute reloads the items of order and rewrites its totals.
func (a *orderAggregate) recompute(ctx context.Context, exec repositories.SQLExecutor, order *models.Order) error {
	items, err := a.repos.Orders.GetOrderItems(ctx, exec, order.ID)
	if err != nil {
		return fmt.Errorf("loading items of order %d: %w", order.ID, err)
	}
	order.Items = items
	ComputeOrderTotals(items).ApplyTo(order)
	if err := a.repos.Orders.UpdateOrder(ctx, exec, order); err != nil {
		return fmt.Errorf("saving totals of order %d: %w", order.ID, err)
	}
	return nil
}

// freeTableIfIdle frees tableID when no active order remains on it.
func (a *orderAggregate) freeTableIfIdle(ctx context.Context, exec repositories.SQLExecutor, tableID *int64) error {
	if tableID == nil {
		return nil
	}
	active, err := a.repos.Tables.CountActiveOrders(ctx, exec, *tableID)
	if err != nil {
		return err
	}
	if active > 0 {
		return nil
	}
	err = a.repos.Tables.UpdateTableStatus(ctx, exec, *tableID, models.TableStatusFree)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return err
}

// --- orderService Implementation ---
type orderService struct {
	orderAggregate
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(repos OrderRepositories) OrderService {
	return &orderService{orderAggregate{repos: repos, now: time.Now}}
}

func validateCreateOrderRequest(req CreateOrderRequest) error {
	verr := &ValidationError{}
	if len(req.Items) == 0 {
		verr.Add("items", "at least one item is required")
	}
	for i, line := range req.Items {
		prefix := fmt.Sprintf("items.%d.", i)
		if line.ProductID <= 0 {
			verr.Add(prefix+"product_id", "is required")
		}
		if line.Quantity < 1 {
			verr.Add(prefix+"quantity", "must be at least 1")
		}
		if line.Type != "" && !models.IsValidCategoryType(line.Type) {
			verr.Add(prefix+"type", "must be one of [food drink dessert other]")
		}
		if line.Price != nil {
			verr.AddMoney(prefix+"price", *line.Price, false)
		}
		validateSupplementRequests(verr, prefix, line.Supplements)
	}
	return verr.OrNil()
}

func validateSupplementRequests(verr *ValidationError, prefix string, reqs []OrderLineSupplementRequest) {
	for j, sup := range reqs {
		supPrefix := fmt.Sprintf("%ssupplements.%d.", prefix, j)
		if sup.ID <= 0 {
			verr.Add(supPrefix+"id", "is required")
		}
		if sup.Quantity != nil && *sup.Quantity < 1 {
			verr.Add(supPrefix+"quantity", "must be at least 1")
		}
		if sup.ExtraPrice != nil {
			verr.AddMoney(supPrefix+"extra_price", *sup.ExtraPrice, false)
		}
	}
}

// buildLine resolves the product and supplements of one request line into an
// unsaved OrderItem with its final total.
func (s *orderService) buildLine(ctx context.Context, exec repositories.SQLExecutor, index int, line CreateOrderItemRequest) (*models.OrderItem, error) {
	return buildOrderLine(ctx, exec, s.repos, fmt.Sprintf("items.%d.", index), line)
}

func buildOrderLine(ctx context.Context, exec repositories.SQLExecutor, repos OrderRepositories, fieldPrefix string, line CreateOrderItemRequest) (*models.OrderItem, error) {
	product, err := repos.Catalog.GetProductByID(ctx, exec, line.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewValidationError(fieldPrefix+"product_id", "selected product does not exist")
		}
		return nil, fmt.Errorf("resolving product %d: %w", line.ProductID, err)
	}

	lineType := line.Type
	if lineType == "" {
		lineType = product.Type
	}
	unitPrice := product.Price
	if line.Price != nil {
		unitPrice = *line.Price
	}
	preparingTime := 0
	if lineType == models.ItemTypeFood {
		preparingTime = product.PreparingTime
	}

	item := &models.OrderItem{
		ProductID:      product.ID,
		Type:           BillingType(lineType),
		Quantity:       line.Quantity,
		BasePrice:      unitPrice,
		PreparingTime:  preparingTime,
		Status:         models.ItemStatusPending,
		Product:        product,
		Accompaniments: []models.OrderItemAccompaniment{},
	}

	supplements, err := resolveSupplements(ctx, exec, repos, fieldPrefix, line.Supplements)
	if err != nil {
		return nil, err
	}
	item.Supplements = supplements

	item.Total = LineTotal(*item)
	return item, nil
}

// resolveSupplements turns supplement requests into unsaved pivots, applying
// the quantity 1 and extra price 0 defaults.
func resolveSupplements(ctx context.Context, exec repositories.SQLExecutor, repos OrderRepositories, fieldPrefix string, reqs []OrderLineSupplementRequest) ([]models.OrderItemSupplement, error) {
	out := make([]models.OrderItemSupplement, 0, len(reqs))
	for j, req := range reqs {
		supplement, err := repos.Modifiers.GetSupplementByID(ctx, exec, req.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, NewValidationError(fmt.Sprintf("%ssupplements.%d.id", fieldPrefix, j), "selected supplement does not exist")
			}
			return nil, fmt.Errorf("resolving supplement %d: %w", req.ID, err)
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		extraPrice := decimal.Zero
		if req.ExtraPrice != nil {
			extraPrice = *req.ExtraPrice
		}
		out = append(out, models.OrderItemSupplement{
			SupplementID: supplement.ID,
			Name:         supplement.Name,
			Quantity:     quantity,
			ExtraPrice:   extraPrice,
		})
	}
	return out, nil
}

// persistLine inserts item and its supplement pivots under orderID.
func persistLine(ctx context.Context, exec repositories.SQLExecutor, orders repositories.OrderRepository, orderID int64, item *models.OrderItem) error {
	item.OrderID = orderID
	if err := orders.CreateOrderItem(ctx, exec, item); err != nil {
		return fmt.Errorf("creating order item: %w", err)
	}
	for k := range item.Supplements {
		item.Supplements[k].OrderItemID = item.ID
		if err := orders.AddItemSupplement(ctx, exec, &item.Supplements[k]); err != nil {
			return fmt.Errorf("attaching supplement: %w", err)
		}
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, principal Principal, req CreateOrderRequest) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var table *models.Table
		if req.TableID != nil {
			t, err := s.repos.Tables.GetTableByID(ctx, exec, *req.TableID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return NewValidationError("table_id", "selected table does not exist")
				}
				return fmt.Errorf("resolving table %d: %w", *req.TableID, err)
			}
			table = t
		}

		serverID := principal.UserID
		order := &models.Order{
			TableID:       req.TableID,
			ServerID:      &serverID,
			Status:        models.OrderStatusPending,
			StatusPayment: models.PaymentStatusUnpaid,
			CreatedAt:     s.now(),
		}
		if err := s.repos.Orders.CreateOrder(ctx, exec, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		var totals OrderTotals
		order.Items = make([]models.OrderItem, 0, len(req.Items))
		for i, line := range req.Items {
			item, err := s.buildLine(ctx, exec, i, line)
			if err != nil {
				return err
			}
			if err := persistLine(ctx, exec, s.repos.Orders, order.ID, item); err != nil {
				return err
			}
			totals.Add(*item)
			order.Items = append(order.Items, *item)
		}

		totals.ApplyTo(order)
		if err := s.repos.Orders.UpdateOrder(ctx, exec, order); err != nil {
			return fmt.Errorf("saving order totals: %w", err)
		}

		if table != nil {
			if err := s.repos.Tables.UpdateTableStatus(ctx, exec, table.ID, models.TableStatusOccupied); err != nil {
				return fmt.Errorf("occupying table %d: %w", table.ID, err)
			}
			number := table.Number
			order.TableNumber = &number
		}

		resource = NewOrderResource(*order, s.now())
		return enqueueBroadcast(ctx, exec, s.repos.Outbox, broadcast.KitchenChannel(serverID), broadcast.EventOrderCreated, resource)
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order created", map[string]interface{}{
		"order_id":    resource.ID,
		"server_id":   principal.UserID,
		"grand_total": resource.Subtotal.String(),
		"items":       len(resource.Items),
	})
	return &resource, nil
}

// dateRange turns the listing date filter into [from, to).
func dateRange(filter string, now time.Time) (*time.Time, *time.Time, error) {
	var day time.Time
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "":
		return nil, nil, nil
	case "today":
		day = now
	case "yesterday":
		day = now.AddDate(0, 0, -1)
	default:
		parsed, err := time.ParseInLocation("2006-01-02", filter, now.Location())
		if err != nil {
			return nil, nil, NewValidationError("date", "must be today, yesterday or YYYY-MM-DD")
		}
		day = parsed
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)
	return &from, &to, nil
}

func (s *orderService) ListOrders(ctx context.Context, query OrderListQuery) (*OrderPage, error) {
	filters := models.OrderFilters{
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PerPage,
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultOrderPageSize
	}

	if status := strings.ToLower(strings.TrimSpace(query.Status)); status != "" && status != "all" {
		status = normalizeOrderStatus(status)
		if !models.IsValidOrderStatus(status) {
			return nil, NewValidationError("status", "unknown order status")
		}
		filters.Statuses = []string{status}
	}

	from, to, err := dateRange(query.Date, s.now())
	if err != nil {
		return nil, err
	}
	filters.From, filters.To = from, to

	orders, total, err := s.repos.Orders.ListOrders(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	resources, err := s.render(ctx, orders)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: resources, Total: total, Page: filters.Page, PerPage: filters.PageSize}, nil
}

// render loads the items of orders in one query and builds their resources.
func (s *orderService) render(ctx context.Context, orders []models.Order) ([]OrderResource, error) {
	resources := make([]OrderResource, 0, len(orders))
	if len(orders) == 0 {
		return resources, nil
	}
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.repos.Orders.GetOrderItems(ctx, nil, ids...)
	if err != nil {
		return nil, fmt.Errorf("loading order items: %w", err)
	}
	byOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	now := s.now()
	for _, o := range orders {
		o.Items = byOrder[o.ID]
		resources = append(resources, NewOrderResource(o, now))
	}
	return resources, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*OrderResource, error) {
	order, err := s.load(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	res := NewOrderResource(*order, s.now())
	return &res, nil
}

// normalizeOrderStatus accepts the American spelling of cancelled.
func normalizeOrderStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "canceled" {
		return models.OrderStatusCancelled
	}
	return status
}

func (s *orderService) UpdateOrder(ctx context.Context, principal Principal, orderID int64, req UpdateOrderRequest) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if req.Status == nil && req.TableID == nil {
		return nil, NewValidationError("status", "status or table_id is required")
	}
	var newStatus string
	if req.Status != nil {
		newStatus = normalizeOrderStatus(*req.Status)
		if !models.IsValidOrderStatus(newStatus) {
			return nil, NewValidationError("status", "must be one of [pending preparing served paid cancelled]")
		}
	}

	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.repos.Orders.LockOrder(ctx, exec, orderID)
		if err != nil {
			return notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("locking order %d", orderID))
		}

		previousTable := order.TableID
		if newStatus != "" && newStatus != order.Status {
			if models.IsTerminalOrderStatus(order.Status) {
				return conflictf("order %d is %s and can no longer move to %s", order.ID, order.Status, newStatus)
			}
			order.Status = newStatus
		}

		tableChanged := false
		if req.TableID != nil && (order.TableID == nil || *order.TableID != *req.TableID) {
			if _, err := s.repos.Tables.GetTableByID(ctx, exec, *req.TableID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return NewValidationError("table_id", "selected table does not exist")
				}
				return fmt.Errorf("resolving table %d: %w", *req.TableID, err)
			}
			tableID := *req.TableID
			order.TableID = &tableID
			tableChanged = true
		}

		if err := s.repos.Orders.UpdateOrder(ctx, exec, order); err != nil {
			return fmt.Errorf("updating order %d: %w", order.ID, err)
		}

		if tableChanged && !models.IsTerminalOrderStatus(order.Status) {
			if err := s.repos.Tables.UpdateTableStatus(ctx, exec, *order.TableID, models.TableStatusOccupied); err != nil {
				return fmt.Errorf("occupying table %d: %w", *order.TableID, err)
			}
		}
		if tableChanged {
			if err := s.freeTableIfIdle(ctx, exec, previousTable); err != nil {
				return fmt.Errorf("releasing previous table: %w", err)
			}
		}
		if order.Status == models.OrderStatusCancelled {
			if err := s.freeTableIfIdle(ctx, exec, order.TableID); err != nil {
				return fmt.Errorf("releasing table: %w", err)
			}
		}

		if err := enqueueBroadcast(ctx, exec, s.repos.Outbox, broadcast.GlobalChannel, broadcast.EventOrderUpdated,
			OrderUpdatedPayload{OrderID: order.ID, Status: order.Status}); err != nil {
			return err
		}

		full, err := s.load(ctx, exec, order.ID)
		if err != nil {
			return err
		}
		resource = NewOrderResource(*full, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, principal Principal, orderID int64) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	return s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.repos.Orders.LockOrder(ctx, exec, orderID)
		if err != nil {
			return notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("locking order %d", orderID))
		}
		if order.Status == models.OrderStatusPaid || order.StatusPayment == models.PaymentStatusPaid {
			return conflictf("order %d is already paid and cannot be deleted", order.ID)
		}
		if err := s.repos.Orders.DeleteOrder(ctx, exec, order.ID); err != nil {
			return notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("deleting order %d", orderID))
		}
		if err := s.freeTableIfIdle(ctx, exec, order.TableID); err != nil {
			return fmt.Errorf("releasing table: %w", err)
		}
		utils.LogInfo("Order deleted", map[string]interface{}{"order_id": order.ID, "by": principal.UserID})
		return nil
	})
}

// KitchenQueue lists pending and preparing orders, oldest first.
func (s *orderService) KitchenQueue(ctx context.Context) ([]OrderResource, error) {
	orders, _, err := s.repos.Orders.ListOrders(ctx, models.OrderFilters{
		Statuses:    []string{models.OrderStatusPending, models.OrderStatusPreparing},
		OldestFirst: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing kitchen orders: %w", err)
	}
	return s.render(ctx, orders)
}
