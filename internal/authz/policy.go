// Package authz holds the access rules shared by handlers and services.
package authz

import (
	"github.com/google/uuid"

	"palika/internal/domain"
)

// Actor is the authenticated caller as extracted from the token.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// Staff reports whether the actor may act across consumers.
func (a Actor) Staff() bool {
	return a.Role == domain.RoleOfficer || a.Role == domain.RoleAdmin
}

// CanReadConnection allows staff everywhere and citizens on their own
// connections only.
func CanReadConnection(actor Actor, conn *domain.Connection) bool {
	if actor.Staff() {
		return true
	}
	return conn.OwnerID == actor.ID
}

// CanSubmitReading follows the same ownership rule as reads: citizens
// submit readings for their own connections, staff for any.
func CanSubmitReading(actor Actor, conn *domain.Connection) bool {
	return CanReadConnection(actor, conn)
}

// CanPay allows anyone to settle a bill they can see. Payments against
// another consumer's bill are a staff operation (counter collections).
func CanPay(actor Actor, conn *domain.Connection) bool {
	return CanReadConnection(actor, conn)
}

// CanManageTariffs restricts tariff plan creation to admins.
func CanManageTariffs(actor Actor) bool {
	return actor.Role == domain.RoleAdmin
}

// CanManageCapacity restricts capacity declarations to admins.
func CanManageCapacity(actor Actor) bool {
	return actor.Role == domain.RoleAdmin
}

// CanTransitionConnection restricts approval/activation/disconnection to
// staff; citizens only ever apply.
func CanTransitionConnection(actor Actor) bool {
	return actor.Staff()
}
