package services

import (
	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role models.Role
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

func requireStaff(actor Actor) error {
	if !actor.IsStaff() {
		return apperrors.NewForbidden("admin access required")
	}
	return nil
}
