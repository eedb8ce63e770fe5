package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"palika/internal/domain"
	"palika/internal/port"
)

// MockBillRepo is a mock implementation of port.BillRepository.
// ApplyPayment runs the applier against the configured LockedBill so
// payment rules can be exercised without a database.
type MockBillRepo struct {
	mock.Mock

	LockedBill *domain.Bill
	Payments   []domain.Payment
}

func (m *MockBillRepo) Create(ctx context.Context, bill *domain.Bill, conn *domain.Connection) error {
	args := m.Called(ctx, bill, conn)
	return args.Error(0)
}

func (m *MockBillRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepo) ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.Bill, int, error) {
	args := m.Called(ctx, connectionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Bill), args.Int(1), args.Error(2)
}

func (m *MockBillRepo) PreviousOutstanding(ctx context.Context, connectionID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, connectionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBillRepo) ApplyPayment(ctx context.Context, billID uuid.UUID, apply port.PaymentApplier) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	payment, err := apply(m.LockedBill)
	if err != nil {
		return nil, err
	}
	m.Payments = append(m.Payments, *payment)
	return m.LockedBill, nil
}

func (m *MockBillRepo) ListPayments(ctx context.Context, billID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockBillRepo) Update(ctx context.Context, bill *domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepo) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]domain.Bill, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillRepo) ListForRegister(ctx context.Context, from, to time.Time) ([]domain.Bill, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}
