package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"palika/internal/authz"
	"palika/internal/domain"
	"palika/internal/metering"
	"palika/internal/port"
)

// SubmitReadingInput is the DTO for a meter reading submission.
type SubmitReadingInput struct {
	Actor        authz.Actor
	ConnectionID uuid.UUID
	ReadingDate  time.Time
	Value        decimal.Decimal
	Demand       decimal.Decimal
	PowerFactor  decimal.Decimal
}

// ReadingService defines the meter reading contract.
type ReadingService interface {
	// Submit validates and persists a reading. Validation runs against
	// the connection's committed history under lock, so concurrent
	// submissions serialize per connection.
	Submit(ctx context.Context, input *SubmitReadingInput) (*domain.MeterReading, error)
	GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*domain.MeterReading, error)
	ListByConnection(ctx context.Context, actor authz.Actor, connectionID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error)
}

type readingService struct {
	readingRepo port.ReadingRepository
	connRepo    port.ConnectionRepository
	loadSvc     LoadService
	notifier    port.Notifier
	log         *zap.Logger
}

// NewReadingService creates a new ReadingService implementation.
func NewReadingService(
	readingRepo port.ReadingRepository,
	connRepo port.ConnectionRepository,
	loadSvc LoadService,
	notifier port.Notifier,
	log *zap.Logger,
) ReadingService {
	return &readingService{
		readingRepo: readingRepo,
		connRepo:    connRepo,
		loadSvc:     loadSvc,
		notifier:    notifier,
		log:         log,
	}
}

func (s *readingService) Submit(ctx context.Context, input *SubmitReadingInput) (*domain.MeterReading, error) {
	conn, err := s.connRepo.GetByID(ctx, input.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanSubmitReading(input.Actor, conn) {
		return nil, domain.ErrForbidden
	}
	if conn.Status != domain.ConnectionActive {
		return nil, domain.ErrConnectionNotActive
	}

	candidate := metering.Candidate{
		ReadingDate: input.ReadingDate,
		Value:       input.Value,
		Demand:      input.Demand,
		PowerFactor: input.PowerFactor,
		SubmittedBy: input.Actor.ID,
	}
	reading, err := s.readingRepo.CreateSerialized(ctx, conn.ID,
		func(prev *domain.MeterReading, window []domain.MeterReading) (*domain.MeterReading, error) {
			return metering.Validate(conn.ID, prev, window, candidate)
		})
	if err != nil {
		return nil, err
	}

	if reading.Anomalous() {
		s.publish(ctx, domain.Event{
			Kind:         domain.EventReadingFlagged,
			ConnectionID: conn.ID,
			OccurredAt:   reading.ReadingDate,
			Data: map[string]string{
				"connection_number": conn.ConnectionNumber,
				"reading_id":        reading.ID.String(),
				"anomaly":           string(reading.AnomalyKind),
				"consumption":       reading.Consumption.String(),
			},
		})
	}

	// Demand figures on electricity readings feed load accounting.
	if conn.ServiceType == domain.ServiceElectricity && reading.Demand.Sign() > 0 {
		if err := s.loadSvc.RecordDemand(ctx, conn, reading.Demand); err != nil {
			s.log.Warn("recording demand",
				zap.String("connection_id", conn.ID.String()), zap.Error(err))
		}
	}
	return reading, nil
}

func (s *readingService) GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*domain.MeterReading, error) {
	reading, err := s.readingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := s.connRepo.GetByID(ctx, reading.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, domain.ErrForbidden
	}
	return reading, nil
}

func (s *readingService) ListByConnection(ctx context.Context, actor authz.Actor, connectionID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, 0, domain.ErrForbidden
	}
	return s.readingRepo.ListByConnection(ctx, connectionID, offset, limit)
}

func (s *readingService) publish(ctx context.Context, event domain.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("publishing event",
			zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
