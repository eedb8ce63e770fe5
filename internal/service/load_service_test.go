package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"palika/internal/authz"
	"palika/internal/config"
	"palika/internal/domain"
	"palika/internal/port"
	"palika/internal/service"
	"palika/mocks"
)

var loadCfg = config.LoadConfig{
	ViolationTolerance: dec("1.10"),
	AlertThresholdPct:  dec("20"),
}

func setupLoadService() (service.LoadService, *mocks.MockCapacityRepo, *mocks.MockNotifier) {
	capacityRepo := new(mocks.MockCapacityRepo)
	notifier := new(mocks.MockNotifier)
	notifier.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := service.NewLoadService(capacityRepo, notifier, loadCfg, zap.NewNop())
	return svc, capacityRepo, notifier
}

func admin() authz.Actor {
	return authz.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
}

func TestLoadService_CheckAvailability_Fits(t *testing.T) {
	svc, capacityRepo, _ := setupLoadService()

	capacityRepo.On("Snapshot", mock.Anything, "W07").Return(&port.CapacitySnapshot{
		ZoneCode:     "Z1",
		WardCode:     "W07",
		ZoneDeclared: dec("10000"),
		ZoneReserved: dec("2000"),
		WardDeclared: dec("3000"),
		WardReserved: dec("500"),
	}, nil)

	report, err := svc.CheckAvailability(context.Background(), "W07", dec("700"))

	require.NoError(t, err)
	assert.True(t, report.Available)
	assert.Nil(t, report.AvailableCapacity)
}

func TestLoadService_CheckAvailability_ZoneExhausted(t *testing.T) {
	svc, capacityRepo, _ := setupLoadService()

	// Ward fits but the zone has only 500 spare.
	capacityRepo.On("Snapshot", mock.Anything, "W07").Return(&port.CapacitySnapshot{
		ZoneCode:     "Z1",
		WardCode:     "W07",
		ZoneDeclared: dec("10000"),
		ZoneReserved: dec("9500"),
		WardDeclared: dec("3000"),
		WardReserved: dec("500"),
	}, nil)

	report, err := svc.CheckAvailability(context.Background(), "W07", dec("700"))

	require.NoError(t, err)
	assert.False(t, report.Available)
	assert.Equal(t, "zone", report.Scope)
	require.NotNil(t, report.AvailableCapacity)
	assert.True(t, report.AvailableCapacity.Equal(dec("500")))
}

func TestLoadService_CheckAvailability_NoWardDeclared(t *testing.T) {
	svc, capacityRepo, _ := setupLoadService()

	capacityRepo.On("Snapshot", mock.Anything, "W99").Return(nil, domain.ErrNoWardCapacity)

	_, err := svc.CheckAvailability(context.Background(), "W99", dec("5"))

	assert.ErrorIs(t, err, domain.ErrNoWardCapacity)
}

func TestLoadService_RecordDemand_WithinTolerance(t *testing.T) {
	svc, capacityRepo, notifier := setupLoadService()

	conn := activeConnection(domain.ServiceElectricity)
	res := &domain.LoadReservation{
		ID:             uuid.New(),
		ConnectionID:   conn.ID,
		SanctionedLoad: dec("10"),
		PeakDemand:     dec("8"),
	}
	capacityRepo.On("GetByConnection", mock.Anything, conn.ID).Return(res, nil)
	capacityRepo.On("UpdateDemand", mock.Anything, res).Return(nil)

	err := svc.RecordDemand(context.Background(), conn, dec("7.5"))

	require.NoError(t, err)
	assert.True(t, res.CurrentUtilization.Equal(dec("75")))
	// Below the prior peak: the peak stands.
	assert.True(t, res.PeakDemand.Equal(dec("8")))
	notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestLoadService_RecordDemand_ViolationRaisesEvent(t *testing.T) {
	svc, capacityRepo, notifier := setupLoadService()

	conn := activeConnection(domain.ServiceElectricity)
	res := &domain.LoadReservation{
		ID:             uuid.New(),
		ConnectionID:   conn.ID,
		SanctionedLoad: dec("10"),
	}
	capacityRepo.On("GetByConnection", mock.Anything, conn.ID).Return(res, nil)
	capacityRepo.On("UpdateDemand", mock.Anything, res).Return(nil)

	// 11.5 on a 10 kW sanction: 15% over, violation but not critical.
	err := svc.RecordDemand(context.Background(), conn, dec("11.5"))

	require.NoError(t, err)
	assert.True(t, res.PeakDemand.Equal(dec("11.5")))
	notifier.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventLoadViolation
	}))
	notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventCriticalPowerAlert
	}))
}

func TestLoadService_RecordDemand_CriticalAlert(t *testing.T) {
	svc, capacityRepo, notifier := setupLoadService()

	conn := activeConnection(domain.ServiceElectricity)
	res := &domain.LoadReservation{
		ID:             uuid.New(),
		ConnectionID:   conn.ID,
		SanctionedLoad: dec("10"),
	}
	capacityRepo.On("GetByConnection", mock.Anything, conn.ID).Return(res, nil)
	capacityRepo.On("UpdateDemand", mock.Anything, res).Return(nil)

	// 25% over the sanction crosses the 20% alert threshold.
	err := svc.RecordDemand(context.Background(), conn, dec("12.5"))

	require.NoError(t, err)
	notifier.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventCriticalPowerAlert
	}))
}

func TestLoadService_SheddingOrder_StaffOnly(t *testing.T) {
	svc, capacityRepo, _ := setupLoadService()

	capacityRepo.On("ListActive", mock.Anything).Return([]domain.LoadReservation{
		{Category: domain.CategoryDomestic},
		{Category: domain.CategoryCommercial},
	}, nil)

	order, err := svc.SheddingOrder(context.Background(), officer())
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, domain.CategoryCommercial, order[0].Category)
	assert.Equal(t, domain.CategoryDomestic, order[1].Category)

	_, err = svc.SheddingOrder(context.Background(), citizen(uuid.New()))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLoadService_DeclareZone(t *testing.T) {
	svc, capacityRepo, _ := setupLoadService()

	capacityRepo.On("UpsertZone", mock.Anything, mock.AnythingOfType("*domain.ZoneCapacity")).Return(nil)

	err := svc.DeclareZone(context.Background(), &service.DeclareCapacityInput{
		Actor:            admin(),
		ZoneCode:         "Z1",
		Name:             "North Zone",
		DeclaredCapacity: dec("10000"),
	})
	require.NoError(t, err)

	err = svc.DeclareZone(context.Background(), &service.DeclareCapacityInput{
		Actor:            admin(),
		ZoneCode:         "Z1",
		DeclaredCapacity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.DeclareZone(context.Background(), &service.DeclareCapacityInput{
		Actor:            officer(),
		ZoneCode:         "Z1",
		DeclaredCapacity: dec("10000"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLoadService_MonitorStability(t *testing.T) {
	svc, capacityRepo, notifier := setupLoadService()

	// Z1 is oversubscribed and spans both wards; W02 is oversubscribed
	// on its own.
	capacityRepo.On("ListWardSnapshots", mock.Anything).Return([]port.CapacitySnapshot{
		{
			ZoneCode: "Z1", WardCode: "W01",
			ZoneDeclared: dec("5000"), ZoneReserved: dec("5200"),
			WardDeclared: dec("3000"), WardReserved: dec("2800"),
		},
		{
			ZoneCode: "Z1", WardCode: "W02",
			ZoneDeclared: dec("5000"), ZoneReserved: dec("5200"),
			WardDeclared: dec("2000"), WardReserved: dec("2400"),
		},
	}, nil)

	raised, err := svc.MonitorStability(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, raised)
	notifier.AssertNumberOfCalls(t, "Publish", 2)
	notifier.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventCriticalPowerAlert && e.Data["scope"] == "zone" && e.Data["code"] == "Z1"
	}))
	notifier.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventCriticalPowerAlert && e.Data["scope"] == "ward" && e.Data["code"] == "W02"
	}))
}

func TestLoadService_MonitorStability_Healthy(t *testing.T) {
	svc, capacityRepo, notifier := setupLoadService()

	capacityRepo.On("ListWardSnapshots", mock.Anything).Return([]port.CapacitySnapshot{
		{
			ZoneCode: "Z1", WardCode: "W01",
			ZoneDeclared: dec("5000"), ZoneReserved: dec("4000"),
			WardDeclared: dec("3000"), WardReserved: dec("2800"),
		},
	}, nil)

	raised, err := svc.MonitorStability(context.Background())

	require.NoError(t, err)
	assert.Zero(t, raised)
	notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
