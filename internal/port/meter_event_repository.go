package port

import (
	"context"

	"github.com/google/uuid"

	"palika/internal/domain"
)

// MeterEventRepository defines the append-only meter history log.
type MeterEventRepository interface {
	Append(ctx context.Context, event *domain.MeterEvent) error
	ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.MeterEvent, int, error)
}
