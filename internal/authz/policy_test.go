package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"palika/internal/domain"
)

func TestOwnershipRules(t *testing.T) {
	owner := Actor{ID: uuid.New(), Role: domain.RoleCitizen}
	stranger := Actor{ID: uuid.New(), Role: domain.RoleCitizen}
	officer := Actor{ID: uuid.New(), Role: domain.RoleOfficer}
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	conn := &domain.Connection{ID: uuid.New(), OwnerID: owner.ID}

	assert.True(t, CanReadConnection(owner, conn))
	assert.False(t, CanReadConnection(stranger, conn))
	assert.True(t, CanReadConnection(officer, conn))
	assert.True(t, CanReadConnection(admin, conn))

	assert.True(t, CanSubmitReading(owner, conn))
	assert.False(t, CanSubmitReading(stranger, conn))

	assert.True(t, CanPay(owner, conn))
	assert.False(t, CanPay(stranger, conn))
	assert.True(t, CanPay(officer, conn))
}

func TestStaffOnlyRules(t *testing.T) {
	citizen := Actor{ID: uuid.New(), Role: domain.RoleCitizen}
	officer := Actor{ID: uuid.New(), Role: domain.RoleOfficer}
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	assert.False(t, CanManageTariffs(citizen))
	assert.False(t, CanManageTariffs(officer))
	assert.True(t, CanManageTariffs(admin))

	assert.False(t, CanManageCapacity(officer))
	assert.True(t, CanManageCapacity(admin))

	assert.False(t, CanTransitionConnection(citizen))
	assert.True(t, CanTransitionConnection(officer))
	assert.True(t, CanTransitionConnection(admin))
}
