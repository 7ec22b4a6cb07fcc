package services

import (
	"time"

	"resto_pos_backend/internal/models"

	"github.com/shopspring/decimal"
)

const resourceTimeLayout = "2006-01-02 15:04:05"

// ProductResource is the product summary embedded in order lines.
type ProductResource struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Type          string          `json:"type"`
	CategoryID    int64           `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	PreparingTime int             `json:"preparing_time"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
}

// OrderItemResource is the line shape the POS terminals consume.
type OrderItemResource struct {
	ID             int64                           `json:"id"`
	Type           string                          `json:"type"`
	ProductID      int64                           `json:"productId"`
	Quantity       int                             `json:"quantity"`
	Status         string                          `json:"status"`
	Price          decimal.Decimal                 `json:"price"`
	Total          decimal.Decimal                 `json:"total"`
	Product        *ProductResource                `json:"product,omitempty"`
	Supplements    []models.OrderItemSupplement    `json:"supplements"`
	Accompaniments []models.OrderItemAccompaniment `json:"accompaniments"`
}

// OrderResource is the order shape broadcast on order.created and returned by the API.
type OrderResource struct {
	ID            int64               `json:"id"`
	OrderNumber   int64               `json:"orderNumber"`
	Time          string              `json:"time"`
	RemainingTime int                 `json:"remainingTime"`
	PreparingTime int                 `json:"preparing_time"`
	Items         []OrderItemResource `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	DrinkTotal    decimal.Decimal     `json:"drinktotal"`
	FoodTotal     decimal.Decimal     `json:"foodtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	Rounding      decimal.Decimal     `json:"rounding"`
	Status        string              `json:"status"`
	StatusPayment string              `json:"statusPayment"`
	TableID       *int64              `json:"table_id"`
	TableNumber   *int                `json:"table_number,omitempty"`
	ServerID      *int64              `json:"server_id"`
	CashierID     *int64              `json:"cashier_id,omitempty"`
}

// RemainingPreparingTime is the preparation budget minus whole minutes elapsed, floored at zero.
func RemainingPreparingTime(createdAt time.Time, preparingTime int, now time.Time) int {
	elapsed := 0
	if !createdAt.IsZero() && now.After(createdAt) {
		elapsed = int(now.Sub(createdAt) / time.Minute)
	}
	remaining := preparingTime - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NewOrderResource renders order (with Items loaded) as seen at now.
func NewOrderResource(order models.Order, now time.Time) OrderResource {
	res := OrderResource{
		ID:            order.ID,
		OrderNumber:   order.ID,
		RemainingTime: RemainingPreparingTime(order.CreatedAt, order.PreparingTime, now),
		PreparingTime: order.PreparingTime,
		Items:         make([]OrderItemResource, 0, len(order.Items)),
		Subtotal:      order.GrandTotal,
		DrinkTotal:    order.TotalDrink,
		FoodTotal:     order.TotalFood,
		Tax:           decimal.Zero,
		Rounding:      decimal.Zero,
		Status:        order.Status,
		StatusPayment: order.StatusPayment,
		TableID:       order.TableID,
		TableNumber:   order.TableNumber,
		ServerID:      order.ServerID,
		CashierID:     order.CashierID,
	}
	if !order.CreatedAt.IsZero() {
		res.Time = order.CreatedAt.Format(resourceTimeLayout)
	}
	for _, item := range order.Items {
		res.Items = append(res.Items, newOrderItemResource(item))
	}
	return res
}

func newOrderItemResource(item models.OrderItem) OrderItemResource {
	res := OrderItemResource{
		ID:             item.ID,
		Type:           item.Type,
		ProductID:      item.ProductID,
		Quantity:       item.Quantity,
		Status:         item.Status,
		Price:          item.BasePrice,
		Total:          item.Total,
		Supplements:    item.Supplements,
		Accompaniments: item.Accompaniments,
	}
	if res.Supplements == nil {
		res.Supplements = []models.OrderItemSupplement{}
	}
	if res.Accompaniments == nil {
		res.Accompaniments = []models.OrderItemAccompaniment{}
	}
	if p := item.Product; p != nil {
		res.Product = &ProductResource{
			ID:            item.ProductID,
			Name:          p.Name,
			Price:         p.Price,
			Type:          p.Type,
			CategoryID:    p.CategoryID,
			CategoryName:  p.CategoryName,
			PreparingTime: p.PreparingTime,
			ImageURL:      p.ImageURL,
			IsActive:      p.IsActive,
		}
	}
	return res
}
