package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"palika/internal/domain"
	"palika/internal/port"
)

// MockTariffRepo is a mock implementation of port.TariffRepository.
type MockTariffRepo struct {
	mock.Mock
}

func (m *MockTariffRepo) Create(ctx context.Context, plan *domain.TariffPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockTariffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TariffPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffPlan), args.Error(1)
}

func (m *MockTariffRepo) FindApplicable(ctx context.Context, key port.TariffKey, at time.Time) ([]domain.TariffPlan, error) {
	args := m.Called(ctx, key, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TariffPlan), args.Error(1)
}

func (m *MockTariffRepo) List(ctx context.Context, serviceType domain.ServiceType, offset, limit int) ([]domain.TariffPlan, int, error) {
	args := m.Called(ctx, serviceType, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.TariffPlan), args.Int(1), args.Error(2)
}

// MockTariffCache is a mock implementation of port.TariffCache.
type MockTariffCache struct {
	mock.Mock
}

func (m *MockTariffCache) Get(ctx context.Context, key string) (*domain.TariffPlan, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TariffPlan), args.Error(1)
}

func (m *MockTariffCache) Set(ctx context.Context, key string, plan *domain.TariffPlan) error {
	args := m.Called(ctx, key, plan)
	return args.Error(0)
}
