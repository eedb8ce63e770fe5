package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"palika/internal/billing"
	"palika/internal/domain"
	"palika/internal/port"
)

type connectionRepo struct {
	db *sqlx.DB
}

// NewConnectionRepo creates a new PostgreSQL-backed ConnectionRepository.
func NewConnectionRepo(db *sqlx.DB) port.ConnectionRepository {
	return &connectionRepo{db: db}
}

// Create claims a connection number and inserts the row in one
// transaction. A number collision retries once with the next counter
// value before surfacing.
func (r *connectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	err := r.createOnce(ctx, conn)
	if isUniqueViolation(err, "connections_connection_number_key") {
		err = r.createOnce(ctx, conn)
	}
	return err
}

func (r *connectionRepo) createOnce(ctx context.Context, conn *domain.Connection) error {
	now := time.Now().UTC()
	conn.CreatedAt = now
	conn.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("connectionRepo.Create begin: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSequence(ctx, tx, "CON", now)
	if err != nil {
		return fmt.Errorf("connectionRepo.Create: %w", err)
	}
	conn.ConnectionNumber = billing.FormatConnectionNumber(now, seq)

	_, err = tx.ExecContext(ctx, `INSERT INTO connections (
		id, connection_number, owner_id, owner_name, owner_email,
		service_type, category, zone_code, ward_code, premises_number,
		sanctioned_load, property_area, has_water_supply, has_sewerage,
		subsidy_eligible, status, billing_cycle_days, applied_at,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16, $17, $18,
		$19, $20
	)`,
		conn.ID, conn.ConnectionNumber, conn.OwnerID, conn.OwnerName, conn.OwnerEmail,
		conn.ServiceType, conn.Category, conn.ZoneCode, conn.WardCode, conn.PremisesNumber,
		conn.SanctionedLoad, conn.PropertyArea, conn.HasWaterSupply, conn.HasSewerage,
		conn.SubsidyEligible, conn.Status, conn.BillingCycleDays, conn.AppliedAt,
		conn.CreatedAt, conn.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "connections_premises_service_key") {
			return domain.ErrDuplicateConnection
		}
		return fmt.Errorf("connectionRepo.Create: %w", err)
	}
	return tx.Commit()
}

func (r *connectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	var conn domain.Connection
	err := r.db.GetContext(ctx, &conn,
		"SELECT * FROM connections WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("connectionRepo.GetByID: %w", err)
	}
	return &conn, nil
}

func (r *connectionRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Connection, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM connections WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("connectionRepo.ListByOwner count: %w", err)
	}

	var conns []domain.Connection
	err = r.db.SelectContext(ctx, &conns,
		`SELECT * FROM connections WHERE owner_id = $1
		 ORDER BY applied_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("connectionRepo.ListByOwner: %w", err)
	}
	return conns, total, nil
}

func (r *connectionRepo) List(ctx context.Context, offset, limit int) ([]domain.Connection, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM connections")
	if err != nil {
		return nil, 0, fmt.Errorf("connectionRepo.List count: %w", err)
	}

	var conns []domain.Connection
	err = r.db.SelectContext(ctx, &conns,
		"SELECT * FROM connections ORDER BY applied_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("connectionRepo.List: %w", err)
	}
	return conns, total, nil
}

func (r *connectionRepo) Update(ctx context.Context, conn *domain.Connection) error {
	conn.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE connections SET
			status = $1, approved_at = $2, connected_at = $3,
			last_bill_date = $4, next_bill_date = $5,
			sanctioned_load = $6, subsidy_eligible = $7, updated_at = $8
		 WHERE id = $9`,
		conn.Status, conn.ApprovedAt, conn.ConnectedAt,
		conn.LastBillDate, conn.NextBillDate,
		conn.SanctionedLoad, conn.SubsidyEligible, conn.UpdatedAt,
		conn.ID)
	if err != nil {
		return fmt.Errorf("connectionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}
