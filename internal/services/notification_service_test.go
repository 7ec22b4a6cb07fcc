package services

import (
	"context"
	"encoding/json"
	"testing"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNotificationEnqueuesEvent(t *testing.T) {
	store := newMemStore()
	svc := NewNotificationService(store, store, store)
	ctx := context.Background()

	err := svc.Send(ctx, server, SendNotificationRequest{Channel: "pos-channel", Event: "table.called", Data: json.RawMessage(`{"table":4}`)})
	require.NoError(t, err)
	require.Len(t, store.events, 1)
	assert.Equal(t, "table.called", store.events[0].Event)
	assert.JSONEq(t, `{"table":4}`, string(store.events[0].Payload))

	require.NoError(t, svc.Send(ctx, server, SendNotificationRequest{Channel: "pos-channel", Event: "ping"}))
	assert.JSONEq(t, `{}`, string(store.events[1].Payload))

	err = svc.Send(ctx, server, SendNotificationRequest{Channel: " ", Event: "x", Data: json.RawMessage(`{bad`)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "channel")
	assert.Contains(t, verr.Fields, "data")
}

func TestNotificationInbox(t *testing.T) {
	store := newMemStore()
	svc := NewNotificationService(store, store, store)
	ctx := context.Background()

	mine := models.Notification{RecipientType: models.RecipientServer, RecipientID: server.UserID, Title: "Ready", Status: models.NotificationStatusSent}
	theirs := models.Notification{RecipientType: models.RecipientServer, RecipientID: 99, Title: "Other", Status: models.NotificationStatusSent}
	require.NoError(t, store.CreateNotification(ctx, nil, &mine))
	require.NoError(t, store.CreateNotification(ctx, nil, &theirs))

	list, err := svc.ListMine(ctx, server)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	read, err := svc.MarkRead(ctx, server, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusRead, read.Status)
	assert.Equal(t, models.NotificationStatusRead, store.notifications[mine.ID].Status)

	_, err = svc.MarkRead(ctx, server, theirs.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound, "other people's notifications are invisible")

	admin := Principal{UserID: 1, Role: models.RoleAdmin}
	require.NoError(t, svc.Delete(ctx, admin, theirs.ID))
	assert.NotContains(t, store.notifications, theirs.ID)
}
