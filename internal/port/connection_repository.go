package port

import (
	"context"

	"github.com/google/uuid"

	"palika/internal/domain"
)

// ConnectionRepository defines persistence for utility connections.
type ConnectionRepository interface {
	// Create persists a new connection, assigning its connection number
	// from the atomic keyed sequence. Returns domain.ErrDuplicateConnection
	// when the premises already has a connection of the same service type.
	Create(ctx context.Context, conn *domain.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Connection, int, error)
	List(ctx context.Context, offset, limit int) ([]domain.Connection, int, error)
	// Update persists status and derived-date changes.
	Update(ctx context.Context, conn *domain.Connection) error
}
