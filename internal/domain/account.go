package domain

import "github.com/google/uuid"

// Role identifies what an account is allowed to do in the marina office.
type Role string

const (
	RoleTenant      Role = "tenant"
	RoleDockManager Role = "dock_manager"
	RoleSuperadmin  Role = "superadmin"
)

// Account is an identity owned by the external auth subsystem. This core
// reads it for contact data and role scoping; it never writes accounts.
type Account struct {
	ID             uuid.UUID
	Role           Role
	Name           string
	Phone          string
	Email          string
	IsPublic       bool
	AllowMapSMS    bool
	ManagedDockIDs []uuid.UUID
}

// Actor is the authenticated principal attached to a request, resolved from
// the bearer token claims.
type Actor struct {
	AccountID      uuid.UUID
	Role           Role
	ManagedDockIDs []uuid.UUID
}

// ManagesDock reports whether the actor is assigned to the given dock.
// Superadmins manage every dock.
func (a Actor) ManagesDock(dockID uuid.UUID) bool {
	if a.Role == RoleSuperadmin {
		return true
	}
	for _, id := range a.ManagedDockIDs {
		if id == dockID {
			return true
		}
	}
	return false
}

// IsManager reports whether the actor may see interests and compose offers.
func (a Actor) IsManager() bool {
	return a.Role == RoleDockManager || a.Role == RoleSuperadmin
}
