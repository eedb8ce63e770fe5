package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"palika/internal/domain"
	"palika/internal/service"
	"palika/mocks"
)

func setupConnectionService() (
	service.ConnectionService,
	*mocks.MockConnectionRepo,
	*mocks.MockCapacityRepo,
	*mocks.MockMeterEventRepo,
	*mocks.MockOwnershipVerifier,
	*mocks.MockNotifier,
) {
	connRepo := new(mocks.MockConnectionRepo)
	capacityRepo := new(mocks.MockCapacityRepo)
	meterEvents := new(mocks.MockMeterEventRepo)
	verifier := new(mocks.MockOwnershipVerifier)
	notifier := new(mocks.MockNotifier)
	notifier.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := service.NewConnectionService(connRepo, capacityRepo, meterEvents, verifier, notifier, zap.NewNop())
	return svc, connRepo, capacityRepo, meterEvents, verifier, notifier
}

func applyInput(actor uuid.UUID) *service.ApplyConnectionInput {
	return &service.ApplyConnectionInput{
		Actor:          citizen(actor),
		OwnerName:      "R. Sharma",
		OwnerEmail:     "sharma@example.com",
		ServiceType:    domain.ServiceElectricity,
		Category:       domain.CategoryDomestic,
		ZoneCode:       "Z1",
		WardCode:       "W07",
		PremisesNumber: "P-1001",
		SanctionedLoad: dec("5"),
	}
}

// --- Apply ---

func TestConnectionService_Apply_Success(t *testing.T) {
	svc, connRepo, _, _, verifier, notifier := setupConnectionService()

	ownerID := uuid.New()
	verifier.On("VerifyOwner", mock.Anything, ownerID, "P-1001").Return(true, nil)
	connRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Connection")).Return(nil)

	conn, err := svc.Apply(context.Background(), applyInput(ownerID))

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Equal(t, ownerID, conn.OwnerID)
	assert.Equal(t, 30, conn.BillingCycleDays)
	notifier.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventApplicationSubmitted
	}))
}

func TestConnectionService_Apply_OwnershipDenied(t *testing.T) {
	svc, connRepo, _, _, verifier, _ := setupConnectionService()

	ownerID := uuid.New()
	verifier.On("VerifyOwner", mock.Anything, ownerID, "P-1001").Return(false, nil)

	_, err := svc.Apply(context.Background(), applyInput(ownerID))

	assert.ErrorIs(t, err, domain.ErrOwnershipDenied)
	connRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConnectionService_Apply_VerifierUnreachable(t *testing.T) {
	svc, _, _, _, verifier, _ := setupConnectionService()

	ownerID := uuid.New()
	verifier.On("VerifyOwner", mock.Anything, ownerID, "P-1001").
		Return(false, errors.New("connection refused"))

	_, err := svc.Apply(context.Background(), applyInput(ownerID))

	assert.ErrorIs(t, err, domain.ErrOwnershipDenied)
}

func TestConnectionService_Apply_InvalidEnums(t *testing.T) {
	svc, _, _, _, _, _ := setupConnectionService()

	in := applyInput(uuid.New())
	in.Category = "cosmic"
	_, err := svc.Apply(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = applyInput(uuid.New())
	in.ServiceType = "gas"
	_, err = svc.Apply(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConnectionService_Apply_DuplicatePremises(t *testing.T) {
	svc, connRepo, _, _, verifier, _ := setupConnectionService()

	ownerID := uuid.New()
	verifier.On("VerifyOwner", mock.Anything, ownerID, "P-1001").Return(true, nil)
	connRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Connection")).
		Return(domain.ErrDuplicateConnection)

	_, err := svc.Apply(context.Background(), applyInput(ownerID))

	assert.ErrorIs(t, err, domain.ErrDuplicateConnection)
}

// --- Transition ---

func TestConnectionService_Transition_ActivationReservesLoad(t *testing.T) {
	svc, connRepo, capacityRepo, _, _, notifier := setupConnectionService()

	conn := activeConnection(domain.ServiceElectricity)
	conn.Status = domain.ConnectionApproved
	conn.SanctionedLoad = dec("5")

	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)
	capacityRepo.On("Reserve", mock.Anything, mock.MatchedBy(func(res *domain.LoadReservation) bool {
		return res.ConnectionID == conn.ID &&
			res.WardCode == conn.WardCode &&
			res.SanctionedLoad.Equal(dec("5"))
	})).Return(nil)
	connRepo.On("Update", mock.Anything, conn).Return(nil)

	got, err := svc.Transition(context.Background(), officer(), conn.ID, domain.ConnectionActive)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionActive, got.Status)
	capacityRepo.AssertExpectations(t)
	notifier.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Kind == domain.EventConnectionStatus && e.Data["to"] == string(domain.ConnectionActive)
	}))
}

func TestConnectionService_Transition_ActivationUpdateFailureReleasesReservation(t *testing.T) {
	svc, connRepo, capacityRepo, _, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceElectricity)
	conn.Status = domain.ConnectionApproved
	conn.SanctionedLoad = dec("5")

	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)
	capacityRepo.On("Reserve", mock.Anything, mock.Anything).Return(nil)
	connRepo.On("Update", mock.Anything, conn).Return(errors.New("connection reset"))
	capacityRepo.On("Release", mock.Anything, conn.ID).Return(nil)

	_, err := svc.Transition(context.Background(), officer(), conn.ID, domain.ConnectionActive)

	// The committed reservation is taken back, so re-running the
	// activation can reserve again instead of colliding with it.
	require.Error(t, err)
	capacityRepo.AssertCalled(t, "Release", mock.Anything, conn.ID)
}

func TestConnectionService_Transition_ActivationFailsWhenNoCapacity(t *testing.T) {
	svc, connRepo, capacityRepo, _, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceElectricity)
	conn.Status = domain.ConnectionApproved

	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)
	capacityRepo.On("Reserve", mock.Anything, mock.Anything).
		Return(&domain.LoadUnavailableError{Scope: "ward", Requested: dec("5"), Available: dec("2")})

	_, err := svc.Transition(context.Background(), officer(), conn.ID, domain.ConnectionActive)

	assert.ErrorIs(t, err, domain.ErrLoadUnavailable)
	connRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestConnectionService_Transition_WaterSkipsLoadAccounting(t *testing.T) {
	svc, connRepo, capacityRepo, _, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceWater)
	conn.Status = domain.ConnectionApproved

	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)
	connRepo.On("Update", mock.Anything, conn).Return(nil)

	_, err := svc.Transition(context.Background(), officer(), conn.ID, domain.ConnectionActive)

	require.NoError(t, err)
	capacityRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestConnectionService_Transition_DisconnectReleasesLoad(t *testing.T) {
	svc, connRepo, capacityRepo, _, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceElectricity)

	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)
	capacityRepo.On("Release", mock.Anything, conn.ID).Return(nil)
	connRepo.On("Update", mock.Anything, conn).Return(nil)

	got, err := svc.Transition(context.Background(), officer(), conn.ID, domain.ConnectionDisconnected)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionDisconnected, got.Status)
	capacityRepo.AssertExpectations(t)
}

func TestConnectionService_Transition_CitizenForbidden(t *testing.T) {
	svc, _, _, _, _, _ := setupConnectionService()

	_, err := svc.Transition(context.Background(), citizen(uuid.New()), uuid.New(), domain.ConnectionApproved)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestConnectionService_Transition_InvalidChange(t *testing.T) {
	svc, connRepo, _, _, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceWater)
	conn.Status = domain.ConnectionPending
	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)

	_, err := svc.Transition(context.Background(), officer(), conn.ID, domain.ConnectionDisconnected)

	assert.ErrorIs(t, err, domain.ErrInvalidStatusChange)
}

// --- GetByID / List ---

func TestConnectionService_GetByID_OwnerAndStranger(t *testing.T) {
	svc, connRepo, _, _, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceWater)
	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)

	got, err := svc.GetByID(context.Background(), citizen(conn.OwnerID), conn.ID)
	require.NoError(t, err)
	assert.Equal(t, conn.ID, got.ID)

	_, err = svc.GetByID(context.Background(), citizen(uuid.New()), conn.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestConnectionService_List_ScopedByRole(t *testing.T) {
	svc, connRepo, _, _, _, _ := setupConnectionService()

	ownerID := uuid.New()
	connRepo.On("ListByOwner", mock.Anything, ownerID, 0, 20).
		Return([]domain.Connection{}, 0, nil)
	connRepo.On("List", mock.Anything, 0, 20).
		Return([]domain.Connection{{}, {}}, 2, nil)

	_, total, err := svc.List(context.Background(), citizen(ownerID), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, total, err = svc.List(context.Background(), officer(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

// --- Meter events ---

func TestConnectionService_RecordMeterEvent(t *testing.T) {
	svc, connRepo, _, meterEvents, _, _ := setupConnectionService()

	conn := activeConnection(domain.ServiceElectricity)
	connRepo.On("GetByID", mock.Anything, conn.ID).Return(conn, nil)
	meterEvents.On("Append", mock.Anything, mock.AnythingOfType("*domain.MeterEvent")).Return(nil)

	actor := officer()
	event, err := svc.RecordMeterEvent(context.Background(), &service.RecordMeterEventInput{
		Actor:        actor,
		ConnectionID: conn.ID,
		Kind:         domain.MeterEventReplacement,
		Note:         "meter burnt out",
		OccurredAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, actor.ID, event.RecordedBy)
	assert.Equal(t, domain.MeterEventReplacement, event.Kind)
}

func TestConnectionService_RecordMeterEvent_CitizenForbidden(t *testing.T) {
	svc, _, _, _, _, _ := setupConnectionService()

	_, err := svc.RecordMeterEvent(context.Background(), &service.RecordMeterEventInput{
		Actor:        citizen(uuid.New()),
		ConnectionID: uuid.New(),
		Kind:         domain.MeterEventReplacement,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestConnectionService_RecordMeterEvent_UnknownKind(t *testing.T) {
	svc, _, _, _, _, _ := setupConnectionService()

	_, err := svc.RecordMeterEvent(context.Background(), &service.RecordMeterEventInput{
		Actor:        officer(),
		ConnectionID: uuid.New(),
		Kind:         "polished",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
