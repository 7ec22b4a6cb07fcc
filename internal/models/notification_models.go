package models

import (
	"encoding/json"
	"time"
)

// Notification recipient roles.
const (
	RecipientServer  = "server"
	RecipientCashier = "cashier"
	RecipientAdmin   = "admin"
)

// Notification statuses.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusRead   = "read"
	NotificationStatusFailed = "failed"
)

// IsValidRecipientType checks the roles a notification can be addressed to.
func IsValidRecipientType(t string) bool {
	switch t {
	case RecipientServer, RecipientCashier, RecipientAdmin:
		return true
	default:
		return false
	}
}

// Notification is a persisted inbox message for a staff member.
type Notification struct {
	ID            int64     `json:"id" db:"id"`
	RecipientType string    `json:"recipient_type" db:"recipient_type"`
	RecipientID   int64     `json:"recipient_id" db:"recipient_id"`
	OrderID       *int64    `json:"order_id,omitempty" db:"order_id"`
	Title         string    `json:"title" db:"title"`
	Message       string    `json:"message" db:"message"`
	Status        string    `json:"status" db:"status"`
	SentAt        time.Time `json:"sent_at" db:"sent_at"`
}

// OutboxEvent is a broadcast queued in the same transaction as the change it announces.
type OutboxEvent struct {
	ID           int64           `json:"id" db:"id"`
	Channel      string          `json:"channel" db:"channel"`
	Event        string          `json:"event" db:"event"`
	Payload      json.RawMessage `json:"payload" db:"payload"`
	Attempts     int             `json:"attempts" db:"attempts"`
	LastError    *string         `json:"last_error,omitempty" db:"last_error"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty" db:"dispatched_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
