package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/authz"
	"palika/internal/domain"
	"palika/internal/port"
)

// CreateTariffInput is the DTO for defining a tariff plan.
type CreateTariffInput struct {
	Actor           authz.Actor
	Name            string
	ServiceType     domain.ServiceType
	Category        domain.ConsumerCategory
	ZoneCode        string
	BaseRate        decimal.Decimal
	FreeUnits       decimal.Decimal
	SubsidyPercent  decimal.Decimal
	SubsidyCap      decimal.Decimal
	PFThreshold     decimal.Decimal
	PFPenaltyFactor decimal.Decimal
	EffectiveFrom   time.Time
	EffectiveUntil  *time.Time
	Components      []domain.RateComponent
}

// TariffService defines the tariff administration contract.
type TariffService interface {
	Create(ctx context.Context, input *CreateTariffInput) (*domain.TariffPlan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TariffPlan, error)
	List(ctx context.Context, serviceType domain.ServiceType, offset, limit int) ([]domain.TariffPlan, int, error)
}

type tariffService struct {
	repo port.TariffRepository
}

// NewTariffService creates a new TariffService implementation.
func NewTariffService(repo port.TariffRepository) TariffService {
	return &tariffService{repo: repo}
}

func (s *tariffService) Create(ctx context.Context, input *CreateTariffInput) (*domain.TariffPlan, error) {
	if !authz.CanManageTariffs(input.Actor) {
		return nil, domain.ErrForbidden
	}
	if err := validateTariffInput(input); err != nil {
		return nil, err
	}

	plan := &domain.TariffPlan{
		ID:              uuid.New(),
		Name:            input.Name,
		ServiceType:     input.ServiceType,
		Category:        input.Category,
		ZoneCode:        input.ZoneCode,
		BaseRate:        input.BaseRate,
		FreeUnits:       input.FreeUnits,
		SubsidyPercent:  input.SubsidyPercent,
		SubsidyCap:      input.SubsidyCap,
		PFThreshold:     input.PFThreshold,
		PFPenaltyFactor: input.PFPenaltyFactor,
		EffectiveFrom:   input.EffectiveFrom,
		EffectiveUntil:  input.EffectiveUntil,
		Components:      input.Components,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func validateTariffInput(input *CreateTariffInput) error {
	if _, ok := domain.BillPrefixes[input.ServiceType]; !ok {
		return domain.ErrInvalidTariff
	}
	if !domain.ValidCategories[input.Category] {
		return domain.ErrInvalidTariff
	}
	if input.Name == "" || input.ZoneCode == "" {
		return domain.ErrInvalidTariff
	}
	if input.BaseRate.Sign() < 0 || input.FreeUnits.Sign() < 0 ||
		input.SubsidyPercent.Sign() < 0 || input.SubsidyCap.Sign() < 0 {
		return domain.ErrInvalidTariff
	}
	if input.EffectiveUntil != nil && !input.EffectiveUntil.After(input.EffectiveFrom) {
		return domain.ErrInvalidTariff
	}
	for i := range input.Components {
		c := &input.Components[i]
		switch c.Kind {
		case domain.ComponentPercentage, domain.ComponentPerUnit, domain.ComponentFlat:
			if c.Rate.Sign() < 0 {
				return domain.ErrInvalidTariff
			}
		case domain.ComponentSlab:
			if err := c.Bands.Validate(); err != nil {
				return domain.ErrInvalidTariff
			}
		default:
			return domain.ErrInvalidTariff
		}
	}
	return nil
}

func (s *tariffService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TariffPlan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *tariffService) List(ctx context.Context, serviceType domain.ServiceType, offset, limit int) ([]domain.TariffPlan, int, error) {
	return s.repo.List(ctx, serviceType, offset, limit)
}
