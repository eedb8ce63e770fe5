package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"palika/internal/domain"
	"palika/internal/port"
)

// validationWindow is how many trailing readings feed anomaly detection.
const validationWindow = 6

type readingRepo struct {
	db *sqlx.DB
}

// NewReadingRepo creates a new PostgreSQL-backed ReadingRepository.
func NewReadingRepo(db *sqlx.DB) port.ReadingRepository {
	return &readingRepo{db: db}
}

func (r *readingRepo) CreateSerialized(ctx context.Context, connectionID uuid.UUID, build port.ReadingBuilder) (*domain.MeterReading, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("readingRepo.CreateSerialized begin: %w", err)
	}
	defer tx.Rollback()

	// Lock the connection row so concurrent submissions validate against
	// the same committed history one at a time.
	var locked uuid.UUID
	err = tx.QueryRowxContext(ctx,
		"SELECT id FROM connections WHERE id = $1 FOR UPDATE", connectionID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("readingRepo.CreateSerialized lock: %w", err)
	}

	var window []domain.MeterReading
	err = tx.SelectContext(ctx, &window,
		`SELECT * FROM meter_readings WHERE connection_id = $1
		 ORDER BY reading_date DESC LIMIT $2`,
		connectionID, validationWindow)
	if err != nil {
		return nil, fmt.Errorf("readingRepo.CreateSerialized window: %w", err)
	}

	var prev *domain.MeterReading
	if len(window) > 0 {
		prev = &window[0]
	}

	reading, err := build(prev, window)
	if err != nil {
		return nil, err
	}
	reading.CreatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `INSERT INTO meter_readings (
		id, connection_id, reading_date, value, consumption,
		demand, power_factor, status, is_validated, anomaly_kind,
		submitted_by, created_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12
	)`,
		reading.ID, reading.ConnectionID, reading.ReadingDate, reading.Value, reading.Consumption,
		reading.Demand, reading.PowerFactor, reading.Status, reading.IsValidated, reading.AnomalyKind,
		reading.SubmittedBy, reading.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("readingRepo.CreateSerialized insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("readingRepo.CreateSerialized commit: %w", err)
	}
	return reading, nil
}

func (r *readingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error) {
	var reading domain.MeterReading
	err := r.db.GetContext(ctx, &reading,
		"SELECT * FROM meter_readings WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("readingRepo.GetByID: %w", err)
	}
	return &reading, nil
}

func (r *readingRepo) Latest(ctx context.Context, connectionID uuid.UUID) (*domain.MeterReading, error) {
	var reading domain.MeterReading
	err := r.db.GetContext(ctx, &reading,
		`SELECT * FROM meter_readings WHERE connection_id = $1
		 ORDER BY reading_date DESC LIMIT 1`,
		connectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("readingRepo.Latest: %w", err)
	}
	return &reading, nil
}

func (r *readingRepo) ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM meter_readings WHERE connection_id = $1", connectionID)
	if err != nil {
		return nil, 0, fmt.Errorf("readingRepo.ListByConnection count: %w", err)
	}

	var readings []domain.MeterReading
	err = r.db.SelectContext(ctx, &readings,
		`SELECT * FROM meter_readings WHERE connection_id = $1
		 ORDER BY reading_date DESC LIMIT $2 OFFSET $3`,
		connectionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("readingRepo.ListByConnection: %w", err)
	}
	return readings, total, nil
}
