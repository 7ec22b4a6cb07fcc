package services

import "resto_pos_backend/internal/models"

// Principal is the authenticated staff member on whose behalf a service call runs.
type Principal struct {
	UserID int64
	Name   string
	Role   string
}

// Authenticated reports whether the principal carries a user.
func (p Principal) Authenticated() bool {
	return p.UserID > 0
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func requirePrincipal(p Principal) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}
