package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus values. Paid and cancelled are terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusServed    = "served"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Payment status values tracked on the order.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// OrderItem status values.
const (
	ItemStatusPending   = "pending"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusCompleted = "completed"
	ItemStatusCancelled = "cancelled"
)

// IsValidOrderStatus checks the order lifecycle states.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusServed, OrderStatusPaid, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminalOrderStatus reports states an order can no longer leave.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusPaid || status == OrderStatusCancelled
}

// IsValidItemStatus checks the order line states.
func IsValidItemStatus(status string) bool {
	switch status {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady, ItemStatusCompleted, ItemStatusCancelled:
		return true
	default:
		return false
	}
}

// Order is a table (or counter) order with its computed totals.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	TableID       *int64          `json:"table_id" db:"table_id"`
	ServerID      *int64          `json:"server_id" db:"server_id"`
	CashierID     *int64          `json:"cashier_id" db:"cashier_id"`
	Status        string          `json:"status" db:"status"`
	StatusPayment string          `json:"status_payment" db:"status_payment"`
	TotalFood     decimal.Decimal `json:"total_food" db:"total_food"`
	TotalDrink    decimal.Decimal `json:"total_drink" db:"total_drink"`
	GrandTotal    decimal.Decimal `json:"grand_total" db:"grand_total"`
	PreparingTime int             `json:"preparing_time" db:"preparing_time"` // minutes
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	TableNumber *int        `json:"table_number,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem is a line of an order. BasePrice and PreparingTime are snapshots
// taken when the line was created.
type OrderItem struct {
	ID            int64           `json:"id" db:"id"`
	OrderID       int64           `json:"order_id" db:"order_id"`
	ProductID     int64           `json:"product_id" db:"product_id"`
	Type          string          `json:"type" db:"type"`
	Quantity      int             `json:"quantity" db:"quantity"`
	BasePrice     decimal.Decimal `json:"base_price" db:"base_price"`
	PreparingTime int             `json:"preparing_time" db:"preparing_time"` // minutes per unit
	Status        string          `json:"status" db:"status"`
	Total         decimal.Decimal `json:"total" db:"total"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Product        *Product                 `json:"product,omitempty"`
	Supplements    []OrderItemSupplement    `json:"supplements"`
	Accompaniments []OrderItemAccompaniment `json:"accompaniments"`
}

// OrderItemSupplement is the order_item_supplement pivot.
type OrderItemSupplement struct {
	ID           int64           `json:"id" db:"id"`
	OrderItemID  int64           `json:"order_item_id" db:"order_item_id"`
	SupplementID int64           `json:"supplement_id" db:"supplement_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity" db:"quantity"`
	ExtraPrice   decimal.Decimal `json:"extra_price" db:"extra_price"`
}

// OrderItemAccompaniment is the order_item_accompaniment pivot.
// ExtraPrice is the unit price charged above FreeQuantity.
type OrderItemAccompaniment struct {
	OrderItemID     int64           `json:"order_item_id" db:"order_item_id"`
	AccompanimentID int64           `json:"accompaniment_id" db:"accompaniment_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity" db:"quantity"`
	ExtraPrice      decimal.Decimal `json:"extra_price" db:"extra_price"`
	FreeQuantity    int             `json:"free_quantity" db:"free_quantity"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	Statuses    []string
	From        *time.Time
	To          *time.Time
	Search      string // matches the order id or the table number
	TableID     *int64
	ServerID    *int64
	OldestFirst bool
	Page        int
	PageSize    int
}
