package services

import (
	"context"
	"fmt"

	"resto_pos_backend/internal/broadcast"
	"resto_pos_backend/internal/repositories"
)

// enqueueBroadcast stores an event in the outbox inside the caller's transaction.
func enqueueBroadcast(ctx context.Context, exec repositories.SQLExecutor, outbox repositories.OutboxRepository, channel, event string, payload interface{}) error {
	e, err := broadcast.NewOutboxEvent(channel, event, payload)
	if err != nil {
		return err
	}
	if err := outbox.EnqueueEvent(ctx, exec, e); err != nil {
		return fmt.Errorf("enqueueing %s: %w", event, err)
	}
	return nil
}

// OrderUpdatedPayload is broadcast on the global channel whenever an order changes state.
type OrderUpdatedPayload struct {
	OrderID       int64  `json:"order_id"`
	Status        string `json:"status"`
	StatusPayment string `json:"status_payment,omitempty"`
	RecipientType string `json:"recipient_type,omitempty"`
	RecipientID   *int64 `json:"recipient_id,omitempty"`
}
