package user

import (
	"github.com/google/uuid"
)

// Role represents the caller's role as asserted by the identity service
type Role string

const (
	RoleStudent Role = "student"
	RoleSponsor Role = "sponsor"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller.
// It is passed explicitly into every service operation.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// NewPrincipal builds a principal from verified token claims
func NewPrincipal(id uuid.UUID, role string) Principal {
	return Principal{ID: id, Role: Role(role)}
}

// IsStudent returns true if the caller is a student
func (p Principal) IsStudent() bool {
	return p.Role == RoleStudent
}

// IsSponsor returns true if the caller is a sponsor
func (p Principal) IsSponsor() bool {
	return p.Role == RoleSponsor
}

// IsAdmin returns true if the caller is an admin
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsAnonymous returns true for the zero principal
func (p Principal) IsAnonymous() bool {
	return p.ID == uuid.Nil
}

// ValidRoles returns the roles the API accepts
func ValidRoles() []Role {
	return []Role{RoleStudent, RoleSponsor, RoleAdmin}
}

// IsValidRole checks if role is known
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}
