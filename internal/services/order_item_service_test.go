package services

import (
	"context"
	"encoding/json"
	"testing"

	"resto_pos_backend/internal/broadcast"
	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kitchen = Principal{UserID: 3, Name: "Chef", Role: models.RoleKitchen}

type itemFixture struct {
	store  *memStore
	orders *orderService
	items  *orderItemService
	order  *OrderResource
}

// newItemFixture creates an order with a 2 × 10.00 food line and a 1 × 3.00 drink line.
func newItemFixture(t *testing.T) itemFixture {
	t.Helper()
	store := newMemStore()
	burger := store.seedProduct("Burger", "food", "10.00", 15)
	cola := store.seedProduct("Cola", "drink", "3.00", 0)
	orders := newTestOrderService(store)
	items := NewOrderItemService(store.repos()).(*orderItemService)
	items.now = fixedClock

	order, err := orders.CreateOrder(context.Background(), server, CreateOrderRequest{
		Items: []CreateOrderItemRequest{
			{ProductID: burger.ID, Quantity: 2, Type: "food"},
			{ProductID: cola.ID, Quantity: 1, Type: "drink"},
		},
	})
	require.NoError(t, err)
	return itemFixture{store: store, orders: orders, items: items, order: order}
}

func TestMarkReadyServesOrderOnlyWhenAllItemsReady(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	first, second := f.order.Items[0].ID, f.order.Items[1].ID

	res, err := f.items.MarkReady(ctx, kitchen, first)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, res.Status, "one item still pending")
	assert.Equal(t, models.ItemStatusReady, f.store.items[first].Status)

	res, err = f.items.MarkReady(ctx, kitchen, second)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusServed, res.Status)
	assert.Equal(t, models.OrderStatusServed, f.store.orders[f.order.ID].Status)

	inbox, err := f.store.ListNotificationsForRecipient(ctx, server.UserID, models.RecipientServer)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)
	assert.Len(t, f.store.eventsOn(broadcast.RecipientChannel(models.RecipientServer, server.UserID)), 2)

	_, err = f.items.MarkReady(ctx, kitchen, 31337)
	assert.ErrorIs(t, err, ErrOrderItemNotFound)
}

func TestMarkReadyCountsCompletedItems(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	completed := f.store.items[f.order.Items[1].ID]
	completed.Status = models.ItemStatusCompleted
	f.store.items[completed.ID] = completed

	res, err := f.items.MarkReady(ctx, kitchen, f.order.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusServed, res.Status)
}

func TestUpdateItemStatusForcesPreparingAndNotifies(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	itemID := f.order.Items[0].ID

	res, err := f.items.UpdateStatus(ctx, kitchen, itemID, "Ready")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, res.Status, "order is forced to preparing regardless of the item status")
	assert.Equal(t, models.ItemStatusReady, f.store.items[itemID].Status)

	inbox, err := f.store.ListNotificationsForRecipient(ctx, server.UserID, models.RecipientAdmin)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.NotNil(t, inbox[0].OrderID)
	assert.Equal(t, f.order.ID, *inbox[0].OrderID)

	received := f.store.eventsOn(broadcast.RecipientChannel(models.RecipientAdmin, server.UserID))
	require.Len(t, received, 1)
	assert.Equal(t, broadcast.EventNotificationReceived, received[0].Event)

	updates := f.store.eventsOn(broadcast.GlobalChannel)
	require.Len(t, updates, 1)
	var payload OrderUpdatedPayload
	require.NoError(t, json.Unmarshal(updates[0].Payload, &payload))
	assert.Equal(t, f.order.ID, payload.OrderID)
	assert.Equal(t, models.OrderStatusPreparing, payload.Status)
	assert.Equal(t, models.RecipientAdmin, payload.RecipientType)
	require.NotNil(t, payload.RecipientID)
	assert.Equal(t, server.UserID, *payload.RecipientID)

	_, err = f.items.UpdateStatus(ctx, kitchen, itemID, "burnt")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateQuantityRecomputesTotals(t *testing.T) {
	f := newItemFixture(t)
	res, err := f.items.UpdateQuantity(context.Background(), server, f.order.Items[0].ID, 3)
	require.NoError(t, err)

	assert.True(t, d("33.00").Equal(res.Subtotal), "got %s", res.Subtotal)
	assert.True(t, d("30.00").Equal(res.FoodTotal))
	assert.Equal(t, 45, res.PreparingTime)

	_, err = f.items.UpdateQuantity(context.Background(), server, f.order.Items[0].ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddSupplementsAndAccompaniments(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	itemID := f.order.Items[0].ID
	bacon := f.store.seedSupplement("Bacon", "2.00")
	fries := f.store.seedAccompaniment("Fries", 1, "1.25")

	res, err := f.items.AddSupplements(ctx, server, itemID, []OrderLineSupplementRequest{{ID: bacon.ID, ExtraPrice: decPtr("2.00")}})
	require.NoError(t, err)
	assert.True(t, d("25.00").Equal(res.Subtotal), "got %s", res.Subtotal)

	res, err = f.items.SyncAccompaniments(ctx, server, itemID, []AccompanimentLineRequest{{ID: fries.ID, Quantity: 3}})
	require.NoError(t, err)
	// 20.00 + 2.00 bacon + 2 chargeable fries × 1.25, plus the 3.00 drink.
	assert.True(t, d("27.50").Equal(res.Subtotal), "got %s", res.Subtotal)
	require.Len(t, res.Items[0].Accompaniments, 1)
	assert.Equal(t, 1, res.Items[0].Accompaniments[0].FreeQuantity)

	res, err = f.items.SyncAccompaniments(ctx, server, itemID, []AccompanimentLineRequest{})
	require.NoError(t, err)
	assert.True(t, d("25.00").Equal(res.Subtotal), "an empty list clears accompaniments")

	_, err = f.items.AddSupplements(ctx, server, itemID, []OrderLineSupplementRequest{{ID: 999}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.items.AddSupplements(ctx, server, itemID, []OrderLineSupplementRequest{{ID: bacon.ID, ExtraPrice: decPtr("0.001")}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "supplements.0.extra_price")
	res, err = f.orders.GetOrder(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Len(t, res.Items[0].Supplements, 1)
}

func TestAddAndDeleteItem(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	water := f.store.seedProduct("Water", "drink", "1.50", 0)

	res, err := f.items.AddItem(ctx, server, f.order.ID, CreateOrderItemRequest{ProductID: water.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.True(t, d("26.00").Equal(res.Subtotal))
	assert.True(t, d("6.00").Equal(res.DrinkTotal))

	res, err = f.items.DeleteItem(ctx, server, res.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.True(t, d("6.00").Equal(res.Subtotal))
	assert.True(t, d("0").Equal(res.FoodTotal))
	assert.Equal(t, 0, res.PreparingTime)

	_, err = f.items.AddItem(ctx, server, f.order.ID, CreateOrderItemRequest{ProductID: 0, Quantity: 1})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "product_id")
}

func TestItemEditsRejectedOnClosedOrders(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	o := f.store.orders[f.order.ID]
	o.Status = models.OrderStatusPaid
	o.StatusPayment = models.PaymentStatusPaid
	f.store.orders[o.ID] = o

	_, err := f.items.UpdateQuantity(ctx, server, f.order.Items[0].ID, 5)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.items.DeleteItem(ctx, server, f.order.Items[0].ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.items.UpdateStatus(ctx, kitchen, f.order.Items[0].ID, "ready")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 2, f.store.items[f.order.Items[0].ID].Quantity)
}
