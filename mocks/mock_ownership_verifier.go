package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOwnershipVerifier is a mock implementation of port.OwnershipVerifier.
type MockOwnershipVerifier struct {
	mock.Mock
}

func (m *MockOwnershipVerifier) VerifyOwner(ctx context.Context, ownerID uuid.UUID, premisesNumber string) (bool, error) {
	args := m.Called(ctx, ownerID, premisesNumber)
	return args.Bool(0), args.Error(1)
}
