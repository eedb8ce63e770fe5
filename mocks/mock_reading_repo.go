package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"palika/internal/domain"
	"palika/internal/port"
)

// MockReadingRepo is a mock implementation of port.ReadingRepository.
// CreateSerialized runs the builder against the configured Prev and
// Window so validation paths can be exercised without a database.
type MockReadingRepo struct {
	mock.Mock

	Prev   *domain.MeterReading
	Window []domain.MeterReading
}

func (m *MockReadingRepo) CreateSerialized(ctx context.Context, connectionID uuid.UUID, build port.ReadingBuilder) (*domain.MeterReading, error) {
	args := m.Called(ctx, connectionID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return build(m.Prev, m.Window)
}

func (m *MockReadingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockReadingRepo) Latest(ctx context.Context, connectionID uuid.UUID) (*domain.MeterReading, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockReadingRepo) ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error) {
	args := m.Called(ctx, connectionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MeterReading), args.Int(1), args.Error(2)
}
