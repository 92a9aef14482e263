package identity

import (
	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// Role is the platform role carried by an authenticated user
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleSchoolAdmin Role = "SCHOOL_ADMIN"
	RoleAccountant  Role = "ACCOUNTANT"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleAccountant:
		return true
	}
	return false
}

// IsPlatform reports whether the role operates above school level
func (r Role) IsPlatform() bool {
	return r == RoleSuperAdmin
}

// Actor is the authenticated principal of a request
type Actor struct {
	UserID   uuid.UUID
	Role     Role
	SchoolID uuid.UUID
}

// Authorize verifies the actor may act on resources of the target school.
// Platform roles pass for any school; everyone else only for their own.
func Authorize(actor Actor, targetSchoolID uuid.UUID) error {
	if !actor.Role.IsValid() {
		return shared.ErrUnauthorized
	}
	if actor.Role.IsPlatform() {
		return nil
	}
	if actor.SchoolID == uuid.Nil || actor.SchoolID != targetSchoolID {
		return shared.NewDomainError("FORBIDDEN", "Access to this school is forbidden")
	}
	return nil
}
