package domain

import "github.com/google/uuid"

// Role identifies which kind of principal is performing an operation.
// Roles are resolved once by the identity layer and treated as an immutable
// fact of the request — services never re-derive them.
type Role string

const (
	// RolePassenger is the customer who books a ride.
	RolePassenger Role = "passenger"
	// RoleRider is the driver fulfilling a ride.
	RoleRider Role = "rider"
	// RoleAdmin is dispatch/operations staff mediating offers and exceptions.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePassenger, RoleRider, RoleAdmin:
		return true
	}
	return false
}

// Actor is a resolved principal: who is calling, and in what capacity.
// Every service operation takes an Actor and enforces its own role guards.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
