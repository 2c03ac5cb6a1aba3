package services

import "github.com/laporwarga/backend/internal/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }
