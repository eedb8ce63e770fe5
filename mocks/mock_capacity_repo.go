package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"palika/internal/domain"
	"palika/internal/port"
)

// MockCapacityRepo is a mock implementation of port.CapacityRepository.
type MockCapacityRepo struct {
	mock.Mock
}

func (m *MockCapacityRepo) Snapshot(ctx context.Context, wardCode string) (*port.CapacitySnapshot, error) {
	args := m.Called(ctx, wardCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CapacitySnapshot), args.Error(1)
}

func (m *MockCapacityRepo) Reserve(ctx context.Context, res *domain.LoadReservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockCapacityRepo) Release(ctx context.Context, connectionID uuid.UUID) error {
	args := m.Called(ctx, connectionID)
	return args.Error(0)
}

func (m *MockCapacityRepo) GetByConnection(ctx context.Context, connectionID uuid.UUID) (*domain.LoadReservation, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoadReservation), args.Error(1)
}

func (m *MockCapacityRepo) UpdateDemand(ctx context.Context, res *domain.LoadReservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockCapacityRepo) ListActive(ctx context.Context) ([]domain.LoadReservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoadReservation), args.Error(1)
}

func (m *MockCapacityRepo) ListWardSnapshots(ctx context.Context) ([]port.CapacitySnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.CapacitySnapshot), args.Error(1)
}

func (m *MockCapacityRepo) UpsertZone(ctx context.Context, zone *domain.ZoneCapacity) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

func (m *MockCapacityRepo) UpsertWard(ctx context.Context, ward *domain.WardCapacity) error {
	args := m.Called(ctx, ward)
	return args.Error(0)
}
