package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/domain"
)

// CapacitySnapshot is a point-in-time view of one ward's capacity pools
// and those of its zone.
type CapacitySnapshot struct {
	ZoneCode     string
	WardCode     string
	ZoneDeclared decimal.Decimal
	ZoneReserved decimal.Decimal
	WardDeclared decimal.Decimal
	WardReserved decimal.Decimal
}

// CapacityRepository defines persistence for zone/ward capacity pools and
// load reservations. The pools are shared mutable state: every decision
// against them happens inside a transaction, never against a local cache.
type CapacityRepository interface {
	// Snapshot reads both capacity scopes for a ward. Returns
	// domain.ErrNoWardCapacity / domain.ErrNoZoneCapacity when a scope
	// has no declared capacity row.
	Snapshot(ctx context.Context, wardCode string) (*CapacitySnapshot, error)
	// Reserve re-checks availability and inserts the reservation in one
	// transaction, with both capacity rows locked for the duration of the
	// decision. Returns *domain.LoadUnavailableError when either scope
	// cannot fit the requested load.
	Reserve(ctx context.Context, res *domain.LoadReservation) error
	Release(ctx context.Context, connectionID uuid.UUID) error
	GetByConnection(ctx context.Context, connectionID uuid.UUID) (*domain.LoadReservation, error)
	// UpdateDemand persists utilization and peak-demand changes.
	UpdateDemand(ctx context.Context, res *domain.LoadReservation) error
	ListActive(ctx context.Context) ([]domain.LoadReservation, error)
	// ListWardSnapshots reads the capacity snapshot of every declared ward.
	ListWardSnapshots(ctx context.Context) ([]CapacitySnapshot, error)
	UpsertZone(ctx context.Context, zone *domain.ZoneCapacity) error
	UpsertWard(ctx context.Context, ward *domain.WardCapacity) error
}
