package services

import (
	"testing"

	"resto_pos_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBillingType(t *testing.T) {
	assert.Equal(t, models.ItemTypeDrink, BillingType("drink"))
	assert.Equal(t, models.ItemTypeFood, BillingType("food"))
	assert.Equal(t, models.ItemTypeFood, BillingType("dessert"))
	assert.Equal(t, models.ItemTypeFood, BillingType(""))
	assert.Equal(t, models.ItemTypeFood, BillingType("Drink"), "only the exact lower-case value counts as drink")
}

func TestLineTotalWithSupplement(t *testing.T) {
	item := models.OrderItem{
		Quantity:  2,
		BasePrice: d("10.00"),
		Supplements: []models.OrderItemSupplement{
			{Quantity: 1, ExtraPrice: d("1.50")},
		},
	}
	assert.True(t, d("21.50").Equal(LineTotal(item)))
}

func TestAccompanimentChargeOnlyAboveFreeAllowance(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		free     int
		want     string
	}{
		{"within allowance", 2, 2, "0"},
		{"one above", 3, 2, "0.75"},
		{"no allowance", 2, 0, "1.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccompanimentCharge(models.OrderItemAccompaniment{Quantity: tt.quantity, FreeQuantity: tt.free, ExtraPrice: d("0.75")})
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestComputeOrderTotalsSplitsFoodAndDrink(t *testing.T) {
	items := []models.OrderItem{
		{Type: "food", Quantity: 2, PreparingTime: 15, Total: d("21.50")},
		{Type: "drink", Quantity: 1, Total: d("3.00")},
		{Type: "dessert", Quantity: 1, PreparingTime: 5, Total: d("4.00")},
	}
	totals := ComputeOrderTotals(items)

	assert.True(t, d("28.50").Equal(totals.GrandTotal))
	assert.True(t, d("25.50").Equal(totals.TotalFood))
	assert.True(t, d("3.00").Equal(totals.TotalDrink))
	assert.True(t, totals.GrandTotal.Equal(totals.TotalFood.Add(totals.TotalDrink)))
	assert.Equal(t, 35, totals.PreparingTime)

	var order models.Order
	totals.ApplyTo(&order)
	assert.True(t, d("28.50").Equal(order.GrandTotal))
	assert.Equal(t, 35, order.PreparingTime)
}
