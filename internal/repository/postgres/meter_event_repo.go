package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"palika/internal/domain"
	"palika/internal/port"
)

type meterEventRepo struct {
	db *sqlx.DB
}

// NewMeterEventRepo creates a new PostgreSQL-backed MeterEventRepository.
func NewMeterEventRepo(db *sqlx.DB) port.MeterEventRepository {
	return &meterEventRepo{db: db}
}

func (r *meterEventRepo) Append(ctx context.Context, event *domain.MeterEvent) error {
	event.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO meter_events (
		id, connection_id, kind, note, recorded_by, occurred_at, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.ConnectionID, event.Kind, event.Note,
		event.RecordedBy, event.OccurredAt, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("meterEventRepo.Append: %w", err)
	}
	return nil
}

func (r *meterEventRepo) ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.MeterEvent, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM meter_events WHERE connection_id = $1", connectionID)
	if err != nil {
		return nil, 0, fmt.Errorf("meterEventRepo.ListByConnection count: %w", err)
	}

	var events []domain.MeterEvent
	err = r.db.SelectContext(ctx, &events,
		`SELECT * FROM meter_events WHERE connection_id = $1
		 ORDER BY occurred_at DESC LIMIT $2 OFFSET $3`,
		connectionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("meterEventRepo.ListByConnection: %w", err)
	}
	return events, total, nil
}
