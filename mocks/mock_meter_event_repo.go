package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"palika/internal/domain"
)

// MockMeterEventRepo is a mock implementation of port.MeterEventRepository.
type MockMeterEventRepo struct {
	mock.Mock
}

func (m *MockMeterEventRepo) Append(ctx context.Context, event *domain.MeterEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockMeterEventRepo) ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.MeterEvent, int, error) {
	args := m.Called(ctx, connectionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MeterEvent), args.Int(1), args.Error(2)
}
