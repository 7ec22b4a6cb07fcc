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
)

// AccompanimentLineRequest sets how many units of an accompaniment go with an item.
type AccompanimentLineRequest struct {
	ID       int64 `json:"id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// OrderItemService edits the lines of an existing order and drives their kitchen status.
// Every content change recomputes the item total and the order totals.
type OrderItemService interface {
	AddItem(ctx context.Context, principal Principal, orderID int64, req CreateOrderItemRequest) (*OrderResource, error)
	AddSupplements(ctx context.Context, principal Principal, itemID int64, reqs []OrderLineSupplementRequest) (*OrderResource, error)
	SyncAccompaniments(ctx context.Context, principal Principal, itemID int64, reqs []AccompanimentLineRequest) (*OrderResource, error)
	UpdateQuantity(ctx context.Context, principal Principal, itemID int64, quantity int) (*OrderResource, error)
	UpdateStatus(ctx context.Context, principal Principal, itemID int64, status string) (*OrderResource, error)
	MarkReady(ctx context.Context, principal Principal, itemID int64) (*OrderResource, error)
	DeleteItem(ctx context.Context, principal Principal, itemID int64) (*OrderResource, error)
}

type orderItemService struct {
	orderAggregate
}

// NewOrderItemService creates a new instance of OrderItemService.
func NewOrderItemService(repos OrderRepositories) OrderItemService {
	return &orderItemService{orderAggregate{repos: repos, now: time.Now}}
}

// itemContext locks the order owning itemID and returns both.
func (s *orderItemService) itemContext(ctx context.Context, exec repositories.SQLExecutor, itemID int64) (*models.OrderItem, *models.Order, error) {
	item, err := s.repos.Orders.GetOrderItemByID(ctx, exec, itemID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrOrderItemNotFound, fmt.Sprintf("loading order item %d", itemID))
	}
	order, err := s.repos.Orders.LockOrder(ctx, exec, item.OrderID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("locking order %d", item.OrderID))
	}
	return item, order, nil
}

func requireEditable(order *models.Order) error {
	if models.IsTerminalOrderStatus(order.Status) || order.StatusPayment == models.PaymentStatusPaid {
		return conflictf("order %d is %s and can no longer be edited", order.ID, order.Status)
	}
	return nil
}

// mutateItem runs change on a locked, editable item, then saves the item
// total and the order totals and returns the refreshed order.
func (s *orderItemService) mutateItem(ctx context.Context, principal Principal, itemID int64, change func(exec repositories.SQLExecutor, item *models.OrderItem) error) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		item, order, err := s.itemContext(ctx, exec, itemID)
		if err != nil {
			return err
		}
		if err := requireEditable(order); err != nil {
			return err
		}
		if err := change(exec, item); err != nil {
			return err
		}
		item.Total = LineTotal(*item)
		if err := s.repos.Orders.UpdateOrderItem(ctx, exec, item); err != nil {
			return notFoundOr(err, ErrOrderItemNotFound, fmt.Sprintf("saving order item %d", item.ID))
		}
		return s.finish(ctx, exec, order, &resource)
	})
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// finish recomputes order totals and renders it into out.
func (s *orderItemService) finish(ctx context.Context, exec repositories.SQLExecutor, order *models.Order, out *OrderResource) error {
	if err := s.recompute(ctx, exec, order); err != nil {
		return err
	}
	full, err := s.load(ctx, exec, order.ID)
	if err != nil {
		return err
	}
	*out = NewOrderResource(*full, s.now())
	return nil
}

func (s *orderItemService) AddItem(ctx context.Context, principal Principal, orderID int64, req CreateOrderItemRequest) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if err := validateCreateOrderRequest(CreateOrderRequest{Items: []CreateOrderItemRequest{req}}); err != nil {
		// Single-line payloads report fields without the items.0. prefix.
		var verr *ValidationError
		if errors.As(err, &verr) {
			fields := make(map[string]string, len(verr.Fields))
			for k, v := range verr.Fields {
				fields[strings.TrimPrefix(k, "items.0.")] = v
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, err
	}

	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order, err := s.repos.Orders.LockOrder(ctx, exec, orderID)
		if err != nil {
			return notFoundOr(err, ErrOrderNotFound, fmt.Sprintf("locking order %d", orderID))
		}
		if err := requireEditable(order); err != nil {
			return err
		}
		item, err := buildOrderLine(ctx, exec, s.repos, "", req)
		if err != nil {
			return err
		}
		if err := persistLine(ctx, exec, s.repos.Orders, order.ID, item); err != nil {
			return err
		}
		return s.finish(ctx, exec, order, &resource)
	})
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *orderItemService) AddSupplements(ctx context.Context, principal Principal, itemID int64, reqs []OrderLineSupplementRequest) (*OrderResource, error) {
	if len(reqs) == 0 {
		return nil, NewValidationError("supplements", "at least one supplement is required")
	}
	verr := &ValidationError{}
	validateSupplementRequests(verr, "", reqs)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return s.mutateItem(ctx, principal, itemID, func(exec repositories.SQLExecutor, item *models.OrderItem) error {
		supplements, err := resolveSupplements(ctx, exec, s.repos, "", reqs)
		if err != nil {
			return err
		}
		for _, sup := range supplements {
			sup.OrderItemID = item.ID
			if err := s.repos.Orders.AddItemSupplement(ctx, exec, &sup); err != nil {
				return fmt.Errorf("attaching supplement: %w", err)
			}
			item.Supplements = append(item.Supplements, sup)
		}
		return nil
	})
}

func (s *orderItemService) SyncAccompaniments(ctx context.Context, principal Principal, itemID int64, reqs []AccompanimentLineRequest) (*OrderResource, error) {
	verr := &ValidationError{}
	seen := make(map[int64]bool, len(reqs))
	for i, r := range reqs {
		if r.ID <= 0 {
			verr.Add(fmt.Sprintf("accompaniments.%d.id", i), "is required")
		}
		if r.Quantity < 1 {
			verr.Add(fmt.Sprintf("accompaniments.%d.quantity", i), "must be at least 1")
		}
		if seen[r.ID] {
			verr.Add(fmt.Sprintf("accompaniments.%d.id", i), "is listed more than once")
		}
		seen[r.ID] = true
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.mutateItem(ctx, principal, itemID, func(exec repositories.SQLExecutor, item *models.OrderItem) error {
		lines := make([]models.OrderItemAccompaniment, 0, len(reqs))
		for i, r := range reqs {
			acc, err := s.repos.Modifiers.GetAccompanimentByID(ctx, exec, r.ID)
			if err != nil {
				return notFoundOr(err, NewValidationError(fmt.Sprintf("accompaniments.%d.id", i), "selected accompaniment does not exist"),
					fmt.Sprintf("resolving accompaniment %d", r.ID))
			}
			if !acc.IsActive {
				return NewValidationError(fmt.Sprintf("accompaniments.%d.id", i), "accompaniment is not available")
			}
			lines = append(lines, models.OrderItemAccompaniment{
				OrderItemID:     item.ID,
				AccompanimentID: acc.ID,
				Name:            acc.Name,
				Quantity:        r.Quantity,
				ExtraPrice:      acc.Price,
				FreeQuantity:    acc.MaxFree,
			})
		}
		if err := s.repos.Orders.ReplaceItemAccompaniments(ctx, exec, item.ID, lines); err != nil {
			return fmt.Errorf("replacing accompaniments: %w", err)
		}
		item.Accompaniments = lines
		return nil
	})
}

func (s *orderItemService) UpdateQuantity(ctx context.Context, principal Principal, itemID int64, quantity int) (*OrderResource, error) {
	if quantity < 1 {
		return nil, NewValidationError("quantity", "must be at least 1")
	}
	return s.mutateItem(ctx, principal, itemID, func(_ repositories.SQLExecutor, item *models.OrderItem) error {
		item.Quantity = quantity
		return nil
	})
}

func (s *orderItemService) DeleteItem(ctx context.Context, principal Principal, itemID int64) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		item, order, err := s.itemContext(ctx, exec, itemID)
		if err != nil {
			return err
		}
		if err := requireEditable(order); err != nil {
			return err
		}
		if err := s.repos.Orders.DeleteOrderItem(ctx, exec, item.ID); err != nil {
			return notFoundOr(err, ErrOrderItemNotFound, fmt.Sprintf("deleting order item %d", item.ID))
		}
		return s.finish(ctx, exec, order, &resource)
	})
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// notifyServer persists a notification for the order's server and enqueues it
// on the recipient channel. Orders without a server are skipped.
func (s *orderItemService) notifyServer(ctx context.Context, exec repositories.SQLExecutor, order *models.Order, recipientType, title, message string) (*models.Notification, error) {
	if order.ServerID == nil {
		return nil, nil
	}
	orderID := order.ID
	n := &models.Notification{
		RecipientType: recipientType,
		RecipientID:   *order.ServerID,
		OrderID:       &orderID,
		Title:         title,
		Message:       message,
		Status:        models.NotificationStatusSent,
		SentAt:        s.now(),
	}
	if err := s.repos.Notifications.CreateNotification(ctx, exec, n); err != nil {
		return nil, fmt.Errorf("storing notification: %w", err)
	}
	channel := broadcast.RecipientChannel(recipientType, n.RecipientID)
	if err := enqueueBroadcast(ctx, exec, s.repos.Outbox, channel, broadcast.EventNotificationReceived, n); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateStatus sets the item status and moves the order to preparing.
func (s *orderItemService) UpdateStatus(ctx context.Context, principal Principal, itemID int64, status string) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidItemStatus(status) {
		return nil, NewValidationError("status", "must be one of [pending preparing ready completed cancelled]")
	}

	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		item, order, err := s.itemContext(ctx, exec, itemID)
		if err != nil {
			return err
		}
		if models.IsTerminalOrderStatus(order.Status) {
			return conflictf("order %d is %s and can no longer move to %s", order.ID, order.Status, models.OrderStatusPreparing)
		}

		item.Status = status
		if err := s.repos.Orders.UpdateOrderItem(ctx, exec, item); err != nil {
			return notFoundOr(err, ErrOrderItemNotFound, fmt.Sprintf("saving order item %d", item.ID))
		}
		if err := s.repos.Orders.UpdateOrderStatus(ctx, exec, order.ID, models.OrderStatusPreparing); err != nil {
			return fmt.Errorf("updating order %d status: %w", order.ID, err)
		}
		order.Status = models.OrderStatusPreparing

		n, err := s.notifyServer(ctx, exec, order, models.RecipientAdmin,
			"Order in preparation",
			fmt.Sprintf("Item %d of order %d is now %s", item.ID, order.ID, status))
		if err != nil {
			return err
		}
		payload := OrderUpdatedPayload{OrderID: order.ID, Status: order.Status}
		if n != nil {
			recipientID := n.RecipientID
			payload.RecipientType = n.RecipientType
			payload.RecipientID = &recipientID
		}
		if err := enqueueBroadcast(ctx, exec, s.repos.Outbox, broadcast.GlobalChannel, broadcast.EventOrderUpdated, payload); err != nil {
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

// MarkReady sets the item ready; the order becomes served once every line
// is ready or completed.
func (s *orderItemService) MarkReady(ctx context.Context, principal Principal, itemID int64) (*OrderResource, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	var resource OrderResource
	err := s.repos.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		item, order, err := s.itemContext(ctx, exec, itemID)
		if err != nil {
			return err
		}
		item.Status = models.ItemStatusReady
		if err := s.repos.Orders.UpdateOrderItem(ctx, exec, item); err != nil {
			return notFoundOr(err, ErrOrderItemNotFound, fmt.Sprintf("saving order item %d", item.ID))
		}

		full, err := s.load(ctx, exec, order.ID)
		if err != nil {
			return err
		}
		allDone := len(full.Items) > 0
		for _, sibling := range full.Items {
			if sibling.Status != models.ItemStatusReady && sibling.Status != models.ItemStatusCompleted {
				allDone = false
				break
			}
		}
		if allDone && !models.IsTerminalOrderStatus(full.Status) && full.Status != models.OrderStatusServed {
			if err := s.repos.Orders.UpdateOrderStatus(ctx, exec, full.ID, models.OrderStatusServed); err != nil {
				return fmt.Errorf("updating order %d status: %w", full.ID, err)
			}
			full.Status = models.OrderStatusServed
			if err := enqueueBroadcast(ctx, exec, s.repos.Outbox, broadcast.GlobalChannel, broadcast.EventOrderUpdated,
				OrderUpdatedPayload{OrderID: full.ID, Status: full.Status}); err != nil {
				return err
			}
		}

		name := fmt.Sprintf("item %d", item.ID)
		if item.Product != nil {
			name = item.Product.Name
		}
		if _, err := s.notifyServer(ctx, exec, full, models.RecipientServer,
			"Item ready",
			fmt.Sprintf("%s for order %d is ready", name, full.ID)); err != nil {
			return err
		}

		resource = NewOrderResource(*full, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.LogDebug("Order item marked ready", map[string]interface{}{"item_id": itemID, "order_status": resource.Status})
	return &resource, nil
}
