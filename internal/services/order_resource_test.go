package services

import (
	"encoding/json"
	"testing"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingPreparingTime(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, RemainingPreparingTime(created, 30, created))
	assert.Equal(t, 20, RemainingPreparingTime(created, 30, created.Add(10*time.Minute+30*time.Second)))
	assert.Equal(t, 0, RemainingPreparingTime(created, 30, created.Add(2*time.Hour)))
	assert.Equal(t, 30, RemainingPreparingTime(time.Time{}, 30, created))
}

func TestOrderResourceJSONShape(t *testing.T) {
	tableID := int64(4)
	number := 12
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order := models.Order{
		ID:            9,
		TableID:       &tableID,
		TableNumber:   &number,
		Status:        models.OrderStatusPending,
		StatusPayment: models.PaymentStatusUnpaid,
		GrandTotal:    d("24.50"),
		TotalFood:     d("21.50"),
		TotalDrink:    d("3.00"),
		PreparingTime: 30,
		CreatedAt:     created,
		Items: []models.OrderItem{{
			ID: 1, ProductID: 7, Type: "food", Quantity: 2, BasePrice: d("10.00"), Total: d("21.50"),
			Product: &models.Product{Name: "Burger", Price: d("10.00"), Type: "food"},
		}},
	}

	raw, err := json.Marshal(NewOrderResource(order, created.Add(5*time.Minute)))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.EqualValues(t, 9, got["orderNumber"])
	assert.Equal(t, "2024-05-01 12:00:00", got["time"])
	assert.EqualValues(t, 25, got["remainingTime"])
	assert.EqualValues(t, 24.5, got["subtotal"])
	assert.EqualValues(t, 3, got["drinktotal"])
	assert.EqualValues(t, 21.5, got["foodtotal"])
	assert.EqualValues(t, 0, got["tax"])
	assert.Equal(t, "unpaid", got["statusPayment"])
	assert.EqualValues(t, 4, got["table_id"])

	items := got["items"].([]interface{})
	require.Len(t, items, 1)
	line := items[0].(map[string]interface{})
	assert.EqualValues(t, 7, line["productId"])
	assert.EqualValues(t, 10, line["price"])
	assert.Equal(t, []interface{}{}, line["supplements"])
	assert.Equal(t, "Burger", line["product"].(map[string]interface{})["name"])
}
