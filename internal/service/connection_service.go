package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"palika/internal/authz"
	"palika/internal/domain"
	"palika/internal/port"
)

// ApplyConnectionInput is the DTO for a citizen connection application.
type ApplyConnectionInput struct {
	Actor            authz.Actor
	OwnerName        string
	OwnerEmail       string
	ServiceType      domain.ServiceType
	Category         domain.ConsumerCategory
	ZoneCode         string
	WardCode         string
	PremisesNumber   string
	SanctionedLoad   decimal.Decimal
	PropertyArea     decimal.Decimal
	HasWaterSupply   bool
	HasSewerage      bool
	SubsidyEligible  bool
	BillingCycleDays int
}

// RecordMeterEventInput is the DTO for appending to the meter history.
type RecordMeterEventInput struct {
	Actor        authz.Actor
	ConnectionID uuid.UUID
	Kind         domain.MeterEventKind
	Note         string
	OccurredAt   time.Time
}

// ConnectionService defines the connection lifecycle contract.
type ConnectionService interface {
	Apply(ctx context.Context, input *ApplyConnectionInput) (*domain.Connection, error)
	GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*domain.Connection, error)
	List(ctx context.Context, actor authz.Actor, offset, limit int) ([]domain.Connection, int, error)
	// Transition moves a connection through its lifecycle. Activating an
	// electricity connection reserves its sanctioned load; disconnecting
	// releases the reservation.
	Transition(ctx context.Context, actor authz.Actor, id uuid.UUID, to domain.ConnectionStatus) (*domain.Connection, error)
	RecordMeterEvent(ctx context.Context, input *RecordMeterEventInput) (*domain.MeterEvent, error)
	ListMeterEvents(ctx context.Context, actor authz.Actor, connectionID uuid.UUID, offset, limit int) ([]domain.MeterEvent, int, error)
}

type connectionService struct {
	connRepo     port.ConnectionRepository
	capacityRepo port.CapacityRepository
	meterEvents  port.MeterEventRepository
	ownership    port.OwnershipVerifier
	notifier     port.Notifier
	log          *zap.Logger
	defaultCycle int
}

// NewConnectionService creates a new ConnectionService implementation.
func NewConnectionService(
	connRepo port.ConnectionRepository,
	capacityRepo port.CapacityRepository,
	meterEvents port.MeterEventRepository,
	ownership port.OwnershipVerifier,
	notifier port.Notifier,
	log *zap.Logger,
) ConnectionService {
	return &connectionService{
		connRepo:     connRepo,
		capacityRepo: capacityRepo,
		meterEvents:  meterEvents,
		ownership:    ownership,
		notifier:     notifier,
		log:          log,
		defaultCycle: 30,
	}
}

func (s *connectionService) Apply(ctx context.Context, input *ApplyConnectionInput) (*domain.Connection, error) {
	if !domain.ValidCategories[input.Category] {
		return nil, domain.ErrInvalidInput
	}
	if _, ok := domain.BillPrefixes[input.ServiceType]; !ok {
		return nil, domain.ErrInvalidInput
	}

	verified, err := s.ownership.VerifyOwner(ctx, input.Actor.ID, input.PremisesNumber)
	if err != nil {
		s.log.Warn("ownership verification unreachable",
			zap.String("premises", input.PremisesNumber), zap.Error(err))
		return nil, domain.ErrOwnershipDenied
	}
	if !verified {
		return nil, domain.ErrOwnershipDenied
	}

	now := time.Now().UTC()
	cycle := input.BillingCycleDays
	if cycle <= 0 {
		cycle = s.defaultCycle
	}
	conn := &domain.Connection{
		ID:               uuid.New(),
		OwnerID:          input.Actor.ID,
		OwnerName:        input.OwnerName,
		OwnerEmail:       input.OwnerEmail,
		ServiceType:      input.ServiceType,
		Category:         input.Category,
		ZoneCode:         input.ZoneCode,
		WardCode:         input.WardCode,
		PremisesNumber:   input.PremisesNumber,
		SanctionedLoad:   input.SanctionedLoad,
		PropertyArea:     input.PropertyArea,
		HasWaterSupply:   input.HasWaterSupply,
		HasSewerage:      input.HasSewerage,
		SubsidyEligible:  input.SubsidyEligible,
		Status:           domain.ConnectionPending,
		BillingCycleDays: cycle,
		AppliedAt:        now,
	}
	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Kind:         domain.EventApplicationSubmitted,
		ConnectionID: conn.ID,
		OccurredAt:   now,
		Data: map[string]string{
			"connection_number": conn.ConnectionNumber,
			"service_type":      string(conn.ServiceType),
			"owner_email":       conn.OwnerEmail,
			"owner_name":        conn.OwnerName,
		},
	})
	return conn, nil
}

func (s *connectionService) GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*domain.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, domain.ErrForbidden
	}
	return conn, nil
}

func (s *connectionService) List(ctx context.Context, actor authz.Actor, offset, limit int) ([]domain.Connection, int, error) {
	if actor.Staff() {
		return s.connRepo.List(ctx, offset, limit)
	}
	return s.connRepo.ListByOwner(ctx, actor.ID, offset, limit)
}

func (s *connectionService) Transition(ctx context.Context, actor authz.Actor, id uuid.UUID, to domain.ConnectionStatus) (*domain.Connection, error) {
	if !authz.CanTransitionConnection(actor) {
		return nil, domain.ErrForbidden
	}
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	from := conn.Status
	if err := conn.Transition(to, now); err != nil {
		return nil, err
	}

	// Load accounting applies to metered electricity service only.
	reserved := false
	if conn.ServiceType == domain.ServiceElectricity {
		switch to {
		case domain.ConnectionActive:
			err = s.capacityRepo.Reserve(ctx, &domain.LoadReservation{
				ID:             uuid.New(),
				ConnectionID:   conn.ID,
				WardCode:       conn.WardCode,
				Category:       conn.Category,
				SanctionedLoad: conn.SanctionedLoad,
			})
			if err != nil {
				return nil, err
			}
			reserved = true
		case domain.ConnectionDisconnected:
			if err := s.capacityRepo.Release(ctx, conn.ID); err != nil {
				s.log.Warn("releasing load reservation",
					zap.String("connection_id", conn.ID.String()), zap.Error(err))
			}
		}
	}

	if err := s.connRepo.Update(ctx, conn); err != nil {
		// Reserve committed separately; take the reservation back so a
		// retried activation does not hit the active-reservation index.
		if reserved {
			if relErr := s.capacityRepo.Release(ctx, conn.ID); relErr != nil {
				s.log.Error("rolling back load reservation",
					zap.String("connection_id", conn.ID.String()), zap.Error(relErr))
			}
		}
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Kind:         domain.EventConnectionStatus,
		ConnectionID: conn.ID,
		OccurredAt:   now,
		Data: map[string]string{
			"connection_number": conn.ConnectionNumber,
			"from":              string(from),
			"to":                string(to),
			"owner_email":       conn.OwnerEmail,
			"owner_name":        conn.OwnerName,
		},
	})
	return conn, nil
}

func (s *connectionService) RecordMeterEvent(ctx context.Context, input *RecordMeterEventInput) (*domain.MeterEvent, error) {
	if !input.Actor.Staff() {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidMeterEventKinds[input.Kind] {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.connRepo.GetByID(ctx, input.ConnectionID); err != nil {
		return nil, err
	}

	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	event := &domain.MeterEvent{
		ID:           uuid.New(),
		ConnectionID: input.ConnectionID,
		Kind:         input.Kind,
		Note:         input.Note,
		RecordedBy:   input.Actor.ID,
		OccurredAt:   occurred,
	}
	if err := s.meterEvents.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *connectionService) ListMeterEvents(ctx context.Context, actor authz.Actor, connectionID uuid.UUID, offset, limit int) ([]domain.MeterEvent, int, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, 0, domain.ErrForbidden
	}
	return s.meterEvents.ListByConnection(ctx, connectionID, offset, limit)
}

func (s *connectionService) publish(ctx context.Context, event domain.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("publishing event",
			zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
