// Package broadcast publishes POS domain events to real-time subscribers.
//
// Services never talk to the broker directly. They enqueue an OutboxEvent in
// the same transaction as the change being announced, and the Dispatcher
// forwards committed events to a Publisher. Delivery is best effort: there is
// no ordering, replay, or acknowledgement contract with subscribers.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/pkg/utils"
)

// GlobalChannel receives order lifecycle updates for every terminal.
const GlobalChannel = "pos-channel"

// Event names carried in the envelope.
const (
	EventOrderCreated         = "order.created"
	EventOrderUpdated         = "order.updated"
	EventNotificationReceived = "app_notifications.received"
)

// KitchenChannel is the kitchen display channel for a station or server.
func KitchenChannel(id int64) string {
	return "kds." + utils.Int64ToStr(id)
}

// RecipientChannel addresses one staff member in one role.
func RecipientChannel(role string, id int64) string {
	return "app_notifications." + role + "." + utils.Int64ToStr(id)
}

// Envelope is the message body subscribers receive.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher hands an envelope to the transport.
type Publisher interface {
	Publish(ctx context.Context, channel string, env Envelope) error
	Close() error
}

// NewOutboxEvent serializes payload into an event ready to be enqueued.
func NewOutboxEvent(channel, event string, payload interface{}) (*models.OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return &models.OutboxEvent{Channel: channel, Event: event, Payload: raw}, nil
}
