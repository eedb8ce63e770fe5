package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"palika/internal/authz"
	"palika/internal/config"
	"palika/internal/domain"
	"palika/internal/load"
	"palika/internal/port"
)

// AvailabilityReport is the outcome of a capacity pre-check. When the
// request does not fit, Scope names the exhausted pool and
// AvailableCapacity how much it has left.
type AvailabilityReport struct {
	Available         bool             `json:"available"`
	Scope             string           `json:"scope,omitempty"`
	AvailableCapacity *decimal.Decimal `json:"available_capacity,omitempty"`
}

// DeclareCapacityInput is the DTO for declaring a zone or ward pool.
type DeclareCapacityInput struct {
	Actor            authz.Actor
	ZoneCode         string
	WardCode         string
	Name             string
	DeclaredCapacity decimal.Decimal
}

// LoadService defines the load-accounting contract.
type LoadService interface {
	// CheckAvailability is advisory: the authoritative re-check happens
	// inside the reservation transaction.
	CheckAvailability(ctx context.Context, wardCode string, requested decimal.Decimal) (*AvailabilityReport, error)
	// RecordDemand updates the reservation's utilization and peak demand
	// and raises violation events when demand exceeds tolerance.
	RecordDemand(ctx context.Context, conn *domain.Connection, observed decimal.Decimal) error
	GetReservation(ctx context.Context, actor authz.Actor, conn *domain.Connection) (*domain.LoadReservation, error)
	// SheddingOrder lists active reservations in the order they would be
	// shed under supply constraint. Domestic connections come last.
	SheddingOrder(ctx context.Context, actor authz.Actor) ([]domain.LoadReservation, error)
	DeclareZone(ctx context.Context, input *DeclareCapacityInput) error
	DeclareWard(ctx context.Context, input *DeclareCapacityInput) error
	// MonitorStability scans every ward's capacity pools and raises a
	// critical power alert for each oversubscribed scope. Returns the
	// number of alerts raised.
	MonitorStability(ctx context.Context) (int, error)
}

type loadService struct {
	capacityRepo port.CapacityRepository
	notifier     port.Notifier
	cfg          config.LoadConfig
	log          *zap.Logger
}

// NewLoadService creates a new LoadService implementation.
func NewLoadService(
	capacityRepo port.CapacityRepository,
	notifier port.Notifier,
	cfg config.LoadConfig,
	log *zap.Logger,
) LoadService {
	return &loadService{
		capacityRepo: capacityRepo,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
	}
}

func (s *loadService) CheckAvailability(ctx context.Context, wardCode string, requested decimal.Decimal) (*AvailabilityReport, error) {
	snap, err := s.capacityRepo.Snapshot(ctx, wardCode)
	if err != nil {
		return nil, err
	}
	if err := load.CheckAvailability(snap, requested); err != nil {
		var unavailable *domain.LoadUnavailableError
		if errors.As(err, &unavailable) {
			return &AvailabilityReport{
				Available:         false,
				Scope:             unavailable.Scope,
				AvailableCapacity: &unavailable.Available,
			}, nil
		}
		return nil, err
	}
	return &AvailabilityReport{Available: true}, nil
}

func (s *loadService) RecordDemand(ctx context.Context, conn *domain.Connection, observed decimal.Decimal) error {
	res, err := s.capacityRepo.GetByConnection(ctx, conn.ID)
	if err != nil {
		return err
	}

	res.CurrentUtilization = load.Utilization(res.SanctionedLoad, observed)
	if observed.GreaterThan(res.PeakDemand) {
		res.PeakDemand = observed
	}
	if err := s.capacityRepo.UpdateDemand(ctx, res); err != nil {
		return err
	}

	violation := load.DetectViolation(res.SanctionedLoad, observed, s.cfg.ViolationTolerance, s.cfg.AlertThresholdPct)
	if violation == nil {
		return nil
	}

	now := time.Now().UTC()
	data := map[string]string{
		"connection_number": conn.ConnectionNumber,
		"owner_email":       conn.OwnerEmail,
		"owner_name":        conn.OwnerName,
		"observed_demand":   violation.ObservedDemand.String(),
		"sanctioned_load":   violation.SanctionedLoad.String(),
		"violation_percent": violation.ViolationPercent.String(),
	}
	s.publish(ctx, domain.Event{
		Kind:         domain.EventLoadViolation,
		ConnectionID: conn.ID,
		OccurredAt:   now,
		Data:         data,
	})
	if violation.Critical {
		s.publish(ctx, domain.Event{
			Kind:         domain.EventCriticalPowerAlert,
			ConnectionID: conn.ID,
			OccurredAt:   now,
			Data:         data,
		})
	}
	return nil
}

func (s *loadService) GetReservation(ctx context.Context, actor authz.Actor, conn *domain.Connection) (*domain.LoadReservation, error) {
	if !authz.CanReadConnection(actor, conn) {
		return nil, domain.ErrForbidden
	}
	return s.capacityRepo.GetByConnection(ctx, conn.ID)
}

func (s *loadService) SheddingOrder(ctx context.Context, actor authz.Actor) ([]domain.LoadReservation, error) {
	if !actor.Staff() {
		return nil, domain.ErrForbidden
	}
	active, err := s.capacityRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return load.RankShedding(active), nil
}

func (s *loadService) DeclareZone(ctx context.Context, input *DeclareCapacityInput) error {
	if !authz.CanManageCapacity(input.Actor) {
		return domain.ErrForbidden
	}
	if input.DeclaredCapacity.Sign() <= 0 {
		return domain.ErrInvalidInput
	}
	return s.capacityRepo.UpsertZone(ctx, &domain.ZoneCapacity{
		ZoneCode:         input.ZoneCode,
		Name:             input.Name,
		DeclaredCapacity: input.DeclaredCapacity,
	})
}

func (s *loadService) DeclareWard(ctx context.Context, input *DeclareCapacityInput) error {
	if !authz.CanManageCapacity(input.Actor) {
		return domain.ErrForbidden
	}
	if input.DeclaredCapacity.Sign() <= 0 {
		return domain.ErrInvalidInput
	}
	return s.capacityRepo.UpsertWard(ctx, &domain.WardCapacity{
		WardCode:         input.WardCode,
		ZoneCode:         input.ZoneCode,
		Name:             input.Name,
		DeclaredCapacity: input.DeclaredCapacity,
	})
}

func (s *loadService) MonitorStability(ctx context.Context) (int, error) {
	snaps, err := s.capacityRepo.ListWardSnapshots(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	raised := 0
	seenZones := make(map[string]bool)
	for i := range snaps {
		for _, alert := range load.PoolStress(&snaps[i]) {
			// A zone spans several wards; alert on it once per scan.
			if alert.Scope == "zone" {
				if seenZones[alert.Code] {
					continue
				}
				seenZones[alert.Code] = true
			}
			s.publish(ctx, domain.Event{
				Kind:       domain.EventCriticalPowerAlert,
				OccurredAt: now,
				Data: map[string]string{
					"scope":             alert.Scope,
					"code":              alert.Code,
					"declared_capacity": alert.Declared.String(),
					"reserved_load":     alert.Reserved.String(),
				},
			})
			raised++
		}
	}
	return raised, nil
}

func (s *loadService) publish(ctx context.Context, event domain.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("publishing event",
			zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
