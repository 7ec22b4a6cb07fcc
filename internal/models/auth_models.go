package models

import "time"

// Staff roles.
const (
	RoleAdmin   = "admin"
	RoleServer  = "server"
	RoleCashier = "cashier"
	RoleKitchen = "kitchen"
)

// IsValidRole checks if the provided string is a known staff role.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleServer, RoleCashier, RoleKitchen:
		return true
	default:
		return false
	}
}

// User represents a staff account
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credentials for login request
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegistrationPayload for creating a staff account
type RegistrationPayload struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin server cashier kitchen"`
}
