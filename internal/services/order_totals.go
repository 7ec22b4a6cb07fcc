package services

import (
	"resto_pos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// BillingType buckets a line type for the food/drink split. Only "drink" is
// billed as drink; desserts and everything else land in food.
func BillingType(lineType string) string {
	if lineType == models.ItemTypeDrink {
		return models.ItemTypeDrink
	}
	return models.ItemTypeFood
}

// SupplementCharge is extra_price × quantity.
func SupplementCharge(s models.OrderItemSupplement) decimal.Decimal {
	return s.ExtraPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// AccompanimentCharge bills only the units above the free allowance.
func AccompanimentCharge(a models.OrderItemAccompaniment) decimal.Decimal {
	chargeable := a.Quantity - a.FreeQuantity
	if chargeable <= 0 {
		return decimal.Zero
	}
	return a.ExtraPrice.Mul(decimal.NewFromInt(int64(chargeable)))
}

// LineTotal is unit price × quantity plus every attached modifier charge.
func LineTotal(item models.OrderItem) decimal.Decimal {
	total := item.BasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	for _, s := range item.Supplements {
		total = total.Add(SupplementCharge(s))
	}
	for _, a := range item.Accompaniments {
		total = total.Add(AccompanimentCharge(a))
	}
	return total
}

// OrderTotals accumulates the money and timer figures stored on an order.
type OrderTotals struct {
	GrandTotal    decimal.Decimal
	TotalFood     decimal.Decimal
	TotalDrink    decimal.Decimal
	PreparingTime int
}

// Add folds one persisted line into the totals.
func (t *OrderTotals) Add(item models.OrderItem) {
	t.GrandTotal = t.GrandTotal.Add(item.Total)
	if BillingType(item.Type) == models.ItemTypeDrink {
		t.TotalDrink = t.TotalDrink.Add(item.Total)
	} else {
		t.TotalFood = t.TotalFood.Add(item.Total)
	}
	t.PreparingTime += item.PreparingTime * item.Quantity
}

// ApplyTo writes the totals onto order.
func (t OrderTotals) ApplyTo(order *models.Order) {
	order.GrandTotal = t.GrandTotal
	order.TotalFood = t.TotalFood
	order.TotalDrink = t.TotalDrink
	order.PreparingTime = t.PreparingTime
}

// ComputeOrderTotals sums the already-computed item totals.
func ComputeOrderTotals(items []models.OrderItem) OrderTotals {
	var totals OrderTotals
	for _, item := range items {
		totals.Add(item)
	}
	return totals
}
