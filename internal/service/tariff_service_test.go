package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"palika/internal/domain"
	"palika/internal/service"
	"palika/mocks"
)

func setupTariffService() (service.TariffService, *mocks.MockTariffRepo) {
	repo := new(mocks.MockTariffRepo)
	return service.NewTariffService(repo), repo
}

func createTariffInput() *service.CreateTariffInput {
	return &service.CreateTariffInput{
		Actor:         admin(),
		Name:          "domestic electricity FY26",
		ServiceType:   domain.ServiceElectricity,
		Category:      domain.CategoryDomestic,
		ZoneCode:      "Z1",
		BaseRate:      dec("4.25"),
		EffectiveFrom: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTariffService_Create(t *testing.T) {
	svc, repo := setupTariffService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TariffPlan")).Return(nil)

	plan, err := svc.Create(context.Background(), createTariffInput())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, plan.ID)
	assert.Equal(t, domain.ServiceElectricity, plan.ServiceType)
	assert.True(t, plan.BaseRate.Equal(dec("4.25")))
}

func TestTariffService_Create_NotAdmin(t *testing.T) {
	svc, repo := setupTariffService()

	input := createTariffInput()
	input.Actor = officer()
	_, err := svc.Create(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTariffService_Create_Overlap(t *testing.T) {
	svc, repo := setupTariffService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TariffPlan")).
		Return(domain.ErrTariffOverlap)

	_, err := svc.Create(context.Background(), createTariffInput())

	assert.ErrorIs(t, err, domain.ErrTariffOverlap)
}

func TestTariffService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*service.CreateTariffInput)
	}{
		{"unknown service type", func(in *service.CreateTariffInput) { in.ServiceType = "gas" }},
		{"unknown category", func(in *service.CreateTariffInput) { in.Category = "cosmic" }},
		{"empty name", func(in *service.CreateTariffInput) { in.Name = "" }},
		{"negative base rate", func(in *service.CreateTariffInput) { in.BaseRate = dec("-1") }},
		{"effective range inverted", func(in *service.CreateTariffInput) {
			until := in.EffectiveFrom.AddDate(0, 0, -1)
			in.EffectiveUntil = &until
		}},
		{"negative component rate", func(in *service.CreateTariffInput) {
			in.Components = []domain.RateComponent{
				{Name: "cess", Kind: domain.ComponentPercentage, Rate: dec("-0.1")},
			}
		}},
		{"unknown component kind", func(in *service.CreateTariffInput) {
			in.Components = []domain.RateComponent{
				{Name: "mystery", Kind: "exponential", Rate: decimal.Zero},
			}
		}},
		{"malformed slab bands", func(in *service.CreateTariffInput) {
			in.Components = []domain.RateComponent{
				{Name: "slab", Kind: domain.ComponentSlab, Bands: domain.SlabBands{}},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setupTariffService()

			input := createTariffInput()
			tt.mutate(input)
			_, err := svc.Create(context.Background(), input)

			assert.ErrorIs(t, err, domain.ErrInvalidTariff)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
