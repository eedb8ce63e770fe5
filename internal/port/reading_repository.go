package port

import (
	"context"

	"github.com/google/uuid"

	"palika/internal/domain"
)

// ReadingBuilder validates a candidate reading against the connection's
// true latest reading and trailing window, both fetched under lock. It
// returns the record to persist or a validation error, which aborts the
// transaction.
type ReadingBuilder func(prev *domain.MeterReading, window []domain.MeterReading) (*domain.MeterReading, error)

// ReadingRepository defines persistence for meter readings.
type ReadingRepository interface {
	// CreateSerialized inserts a reading inside a transaction that locks
	// the connection row, so two concurrent submissions cannot both
	// validate against the same "latest" reading.
	CreateSerialized(ctx context.Context, connectionID uuid.UUID, build ReadingBuilder) (*domain.MeterReading, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error)
	// Latest returns the most recent validated-or-billed reading, or
	// domain.ErrReadingNotFound when the connection has none.
	Latest(ctx context.Context, connectionID uuid.UUID) (*domain.MeterReading, error)
	ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error)
}
