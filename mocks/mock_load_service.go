package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"palika/internal/authz"
	"palika/internal/domain"
	"palika/internal/service"
)

// MockLoadService is a mock implementation of service.LoadService.
type MockLoadService struct {
	mock.Mock
}

func (m *MockLoadService) CheckAvailability(ctx context.Context, wardCode string, requested decimal.Decimal) (*service.AvailabilityReport, error) {
	args := m.Called(ctx, wardCode, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AvailabilityReport), args.Error(1)
}

func (m *MockLoadService) RecordDemand(ctx context.Context, conn *domain.Connection, observed decimal.Decimal) error {
	args := m.Called(ctx, conn, observed)
	return args.Error(0)
}

func (m *MockLoadService) GetReservation(ctx context.Context, actor authz.Actor, conn *domain.Connection) (*domain.LoadReservation, error) {
	args := m.Called(ctx, actor, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoadReservation), args.Error(1)
}

func (m *MockLoadService) SheddingOrder(ctx context.Context, actor authz.Actor) ([]domain.LoadReservation, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoadReservation), args.Error(1)
}

func (m *MockLoadService) DeclareZone(ctx context.Context, input *service.DeclareCapacityInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockLoadService) DeclareWard(ctx context.Context, input *service.DeclareCapacityInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockLoadService) MonitorStability(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
