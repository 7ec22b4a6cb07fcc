package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"resto_pos_backend/internal/broadcast"
	"resto_pos_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var server = Principal{UserID: 7, Name: "Awa", Role: models.RoleServer}

func fixedClock() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func newTestOrderService(store *memStore) *orderService {
	svc := NewOrderService(store.repos()).(*orderService)
	svc.now = fixedClock
	return svc
}

func decPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func intPtr(v int) *int { return &v }

func TestCreateOrderComputesTotalsAndOccupiesTable(t *testing.T) {
	store := newMemStore()
	burger := store.seedProduct("Burger", "food", "10.00", 15)
	cola := store.seedProduct("Cola", "drink", "3.00", 2)
	cheese := store.seedSupplement("Cheese", "1.50")
	table := store.seedTable(12)
	svc := newTestOrderService(store)

	res, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		TableID: &table.ID,
		Items: []CreateOrderItemRequest{
			{ProductID: burger.ID, Quantity: 2, Type: "food", Supplements: []OrderLineSupplementRequest{
				{ID: cheese.ID, Quantity: intPtr(1), ExtraPrice: decPtr("1.50")},
			}},
			{ProductID: cola.ID, Quantity: 1, Type: "drink"},
		},
	})
	require.NoError(t, err)

	assert.True(t, d("24.50").Equal(res.Subtotal), "grand total %s", res.Subtotal)
	assert.True(t, d("21.50").Equal(res.FoodTotal))
	assert.True(t, d("3.00").Equal(res.DrinkTotal))
	assert.Equal(t, 30, res.PreparingTime, "only food lines feed the timer")
	assert.Equal(t, models.OrderStatusPending, res.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, res.StatusPayment)
	require.NotNil(t, res.ServerID)
	assert.Equal(t, server.UserID, *res.ServerID)
	require.NotNil(t, res.TableNumber)
	assert.Equal(t, 12, *res.TableNumber)
	require.Len(t, res.Items, 2)
	assert.True(t, d("21.50").Equal(res.Items[0].Total))
	require.Len(t, res.Items[0].Supplements, 1)
	assert.Equal(t, "Cheese", res.Items[0].Supplements[0].Name)

	stored := store.orders[res.ID]
	assert.True(t, d("24.50").Equal(stored.GrandTotal))
	assert.Equal(t, models.TableStatusOccupied, store.tables[table.ID].Status)

	events := store.eventsOn(broadcast.KitchenChannel(server.UserID))
	require.Len(t, events, 1)
	assert.Equal(t, broadcast.EventOrderCreated, events[0].Event)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.EqualValues(t, res.ID, payload["id"])
}

func TestCreateOrderDefaultsFromProduct(t *testing.T) {
	store := newMemStore()
	cake := store.seedProduct("Cake", "dessert", "4.00", 10)
	svc := newTestOrderService(store)

	res, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{ProductID: cake.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.True(t, d("12.00").Equal(res.Subtotal))
	assert.True(t, d("12.00").Equal(res.FoodTotal))
	assert.Equal(t, "food", res.Items[0].Type)
	assert.Equal(t, 0, res.PreparingTime, "a dessert line does not start the timer")
	assert.Nil(t, res.TableID)
}

func TestCreateOrderInvalidProductRollsBack(t *testing.T) {
	store := newMemStore()
	burger := store.seedProduct("Burger", "food", "10.00", 15)
	table := store.seedTable(3)
	svc := newTestOrderService(store)

	_, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		TableID: &table.ID,
		Items: []CreateOrderItemRequest{
			{ProductID: burger.ID, Quantity: 1},
			{ProductID: 9999, Quantity: 1},
		},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items.1.product_id")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)
	assert.Empty(t, store.events)
	assert.Equal(t, models.TableStatusFree, store.tables[table.ID].Status)
}

func TestCreateOrderBroadcastFailureRollsBack(t *testing.T) {
	store := newMemStore()
	burger := store.seedProduct("Burger", "food", "10.00", 15)
	store.failEnqueue = errors.New("outbox unavailable")
	svc := newTestOrderService(store)

	_, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{ProductID: burger.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Empty(t, store.orders)
}

func TestCreateOrderValidation(t *testing.T) {
	store := newMemStore()
	svc := newTestOrderService(store)

	_, err := svc.CreateOrder(context.Background(), Principal{}, CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{ProductID: 1, Quantity: 0, Price: decPtr("-1"), Supplements: []OrderLineSupplementRequest{{ID: 0}}}},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items.0.quantity")
	assert.Contains(t, verr.Fields, "items.0.price")
	assert.Contains(t, verr.Fields, "items.0.supplements.0.id")

	_, err = svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		TableID: func() *int64 { v := int64(404); return &v }(),
		Items:   []CreateOrderItemRequest{{ProductID: store.seedProduct("Tea", "drink", "2", 0).ID, Quantity: 1}},
	})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "table_id")
}

func createSimpleOrder(t *testing.T, store *memStore, svc OrderService, tableID *int64) *OrderResource {
	t.Helper()
	p := store.seedProduct("Plat", "food", "8.00", 10)
	res, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		TableID: tableID,
		Items:   []CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	return res
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	store := newMemStore()
	table := store.seedTable(1)
	svc := newTestOrderService(store)
	order := createSimpleOrder(t, store, svc, &table.ID)

	status := "preparing"
	res, err := svc.UpdateOrder(context.Background(), server, order.ID, UpdateOrderRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, res.Status)

	updates := store.eventsOn(broadcast.GlobalChannel)
	require.Len(t, updates, 1)
	assert.Equal(t, broadcast.EventOrderUpdated, updates[0].Event)
	assert.JSONEq(t, `{"order_id":`+jsonInt(order.ID)+`,"status":"preparing"}`, string(updates[0].Payload))

	cancel := "canceled"
	res, err = svc.UpdateOrder(context.Background(), server, order.ID, UpdateOrderRequest{Status: &cancel})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, res.Status)
	assert.Equal(t, models.TableStatusFree, store.tables[table.ID].Status)

	back := "pending"
	_, err = svc.UpdateOrder(context.Background(), server, order.ID, UpdateOrderRequest{Status: &back})
	assert.ErrorIs(t, err, ErrConflict)

	bogus := "eaten"
	_, err = svc.UpdateOrder(context.Background(), server, order.ID, UpdateOrderRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateOrder(context.Background(), server, 424242, UpdateOrderRequest{Status: &status})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderMovesTable(t *testing.T) {
	store := newMemStore()
	first := store.seedTable(1)
	second := store.seedTable(2)
	svc := newTestOrderService(store)
	order := createSimpleOrder(t, store, svc, &first.ID)

	res, err := svc.UpdateOrder(context.Background(), server, order.ID, UpdateOrderRequest{TableID: &second.ID})
	require.NoError(t, err)
	require.NotNil(t, res.TableID)
	assert.Equal(t, second.ID, *res.TableID)
	assert.Equal(t, models.TableStatusOccupied, store.tables[second.ID].Status)
	assert.Equal(t, models.TableStatusFree, store.tables[first.ID].Status)
}

func TestDeleteOrder(t *testing.T) {
	store := newMemStore()
	table := store.seedTable(5)
	svc := newTestOrderService(store)

	paid := createSimpleOrder(t, store, svc, nil)
	o := store.orders[paid.ID]
	o.StatusPayment = models.PaymentStatusPaid
	store.orders[paid.ID] = o
	err := svc.DeleteOrder(context.Background(), server, paid.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, store.orders, paid.ID)

	open := createSimpleOrder(t, store, svc, &table.ID)
	require.NoError(t, svc.DeleteOrder(context.Background(), server, open.ID))
	assert.NotContains(t, store.orders, open.ID)
	assert.Equal(t, models.TableStatusFree, store.tables[table.ID].Status)

	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), server, open.ID), ErrOrderNotFound)
}

func TestListOrdersAndKitchenQueue(t *testing.T) {
	store := newMemStore()
	svc := newTestOrderService(store)
	first := createSimpleOrder(t, store, svc, nil)
	second := createSimpleOrder(t, store, svc, nil)
	third := createSimpleOrder(t, store, svc, nil)
	require.NoError(t, store.UpdateOrderStatus(context.Background(), nil, third.ID, models.OrderStatusServed))

	page, err := svc.ListOrders(context.Background(), OrderListQuery{Status: "all", Date: "today"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, defaultOrderPageSize, page.PerPage)
	require.Len(t, page.Orders, 3)
	assert.Equal(t, third.ID, page.Orders[0].ID, "newest first")
	assert.Len(t, page.Orders[0].Items, 1)

	page, err = svc.ListOrders(context.Background(), OrderListQuery{Status: "served"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = svc.ListOrders(context.Background(), OrderListQuery{Date: "yesterday"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	_, err = svc.ListOrders(context.Background(), OrderListQuery{Date: "01/05/2024"})
	assert.ErrorIs(t, err, ErrValidation)

	queue, err := svc.KitchenQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID, "oldest first")
	assert.Equal(t, second.ID, queue[1].ID)
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func TestCreateOrderRejectsSubCentAmounts(t *testing.T) {
	store := newMemStore()
	svc := newTestOrderService(store)
	fries := store.seedProduct("Fries", "food", "3.00", 5)
	soda := store.seedProduct("Soda", "drink", "2.00", 0)
	cheese := store.seedSupplement("Cheese", "1.00")

	// Two half-cent lines would round to 0.01 each once stored, while the order total rounds to 0.01.
	_, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{ProductID: fries.ID, Quantity: 1, Type: "food", Price: decPtr("0.005")},
			{ProductID: soda.ID, Quantity: 1, Type: "drink", Price: decPtr("0.005"),
				Supplements: []OrderLineSupplementRequest{{ID: cheese.ID, ExtraPrice: decPtr("0.015")}}},
		},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items.0.price")
	assert.Contains(t, verr.Fields, "items.1.price")
	assert.Contains(t, verr.Fields, "items.1.supplements.0.extra_price")
	assert.Empty(t, store.orders)
	assert.Empty(t, store.items)

	res, err := svc.CreateOrder(context.Background(), server, CreateOrderRequest{
		Items: []CreateOrderItemRequest{{ProductID: fries.ID, Quantity: 2, Type: "food", Price: decPtr("1.250")}},
	})
	require.NoError(t, err)
	assert.True(t, d("2.50").Equal(res.Subtotal), "got %s", res.Subtotal)
}
