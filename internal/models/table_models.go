package models

import "time"

// TableStatus defines the seating state of a table
type TableStatus string

const (
	TableStatusFree     TableStatus = "free"
	TableStatusOccupied TableStatus = "occupied"
	TableStatusReserved TableStatus = "reserved"
)

// IsValidTableStatus checks if the provided status string is a valid TableStatus.
func IsValidTableStatus(status string) bool {
	switch TableStatus(status) {
	case TableStatusFree, TableStatusOccupied, TableStatusReserved:
		return true
	default:
		return false
	}
}

// Table represents a physical table in the dining room
type Table struct {
	ID          int64       `json:"id" db:"id"`
	Number      int         `json:"number" db:"number"`
	Capacity    int         `json:"capacity" db:"capacity"`
	Status      TableStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	OrdersCount int         `json:"orders_count"`
}
