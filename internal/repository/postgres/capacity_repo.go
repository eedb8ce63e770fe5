package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"palika/internal/domain"
	"palika/internal/load"
	"palika/internal/port"
)

type capacityRepo struct {
	db *sqlx.DB
}

// NewCapacityRepo creates a new PostgreSQL-backed CapacityRepository.
func NewCapacityRepo(db *sqlx.DB) port.CapacityRepository {
	return &capacityRepo{db: db}
}

func (r *capacityRepo) Snapshot(ctx context.Context, wardCode string) (*port.CapacitySnapshot, error) {
	return snapshotWith(ctx, r.db, wardCode, false)
}

// querier covers both the pool and an open transaction.
type querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// snapshotWith reads both capacity scopes. With forUpdate the ward and
// zone rows stay locked until the caller's transaction ends; lock order
// is always zone before ward.
func snapshotWith(ctx context.Context, q querier, wardCode string, forUpdate bool) (*port.CapacitySnapshot, error) {
	var ward domain.WardCapacity
	wardQuery := "SELECT * FROM ward_capacities WHERE ward_code = $1"
	zoneQuery := "SELECT * FROM zone_capacities WHERE zone_code = $1"
	if forUpdate {
		wardQuery += " FOR UPDATE"
		zoneQuery += " FOR UPDATE"
	}

	// Resolve the zone first so the FOR UPDATE variants always lock in
	// the same order.
	err := q.GetContext(ctx, &ward, "SELECT * FROM ward_capacities WHERE ward_code = $1", wardCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoWardCapacity
		}
		return nil, fmt.Errorf("capacityRepo.Snapshot ward: %w", err)
	}

	var zone domain.ZoneCapacity
	err = q.GetContext(ctx, &zone, zoneQuery, ward.ZoneCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoZoneCapacity
		}
		return nil, fmt.Errorf("capacityRepo.Snapshot zone: %w", err)
	}
	if forUpdate {
		if err := q.GetContext(ctx, &ward, wardQuery, wardCode); err != nil {
			return nil, fmt.Errorf("capacityRepo.Snapshot ward lock: %w", err)
		}
	}

	var zoneReserved, wardReserved decimal.Decimal
	err = q.GetContext(ctx, &zoneReserved,
		`SELECT COALESCE(SUM(sanctioned_load), 0) FROM load_reservations
		 WHERE zone_code = $1 AND status = $2`,
		zone.ZoneCode, domain.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("capacityRepo.Snapshot zone reserved: %w", err)
	}
	err = q.GetContext(ctx, &wardReserved,
		`SELECT COALESCE(SUM(sanctioned_load), 0) FROM load_reservations
		 WHERE ward_code = $1 AND status = $2`,
		wardCode, domain.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("capacityRepo.Snapshot ward reserved: %w", err)
	}

	return &port.CapacitySnapshot{
		ZoneCode:     zone.ZoneCode,
		WardCode:     wardCode,
		ZoneDeclared: zone.DeclaredCapacity,
		ZoneReserved: zoneReserved,
		WardDeclared: ward.DeclaredCapacity,
		WardReserved: wardReserved,
	}, nil
}

// Reserve re-checks availability with the capacity rows locked, so two
// concurrent activations cannot both fit into the last slice of a pool.
func (r *capacityRepo) Reserve(ctx context.Context, res *domain.LoadReservation) error {
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("capacityRepo.Reserve begin: %w", err)
	}
	defer tx.Rollback()

	snap, err := snapshotWith(ctx, tx, res.WardCode, true)
	if err != nil {
		return err
	}
	if err := load.CheckAvailability(snap, res.SanctionedLoad); err != nil {
		return err
	}

	res.ZoneCode = snap.ZoneCode
	res.Status = domain.ReservationActive
	_, err = tx.ExecContext(ctx, `INSERT INTO load_reservations (
		id, connection_id, zone_code, ward_code, category,
		sanctioned_load, current_utilization, peak_demand, status,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11
	)`,
		res.ID, res.ConnectionID, res.ZoneCode, res.WardCode, res.Category,
		res.SanctionedLoad, res.CurrentUtilization, res.PeakDemand, res.Status,
		res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("capacityRepo.Reserve insert: %w", err)
	}
	return tx.Commit()
}

func (r *capacityRepo) Release(ctx context.Context, connectionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE load_reservations SET status = $1, updated_at = $2
		 WHERE connection_id = $3 AND status = $4`,
		domain.ReservationReleased, time.Now().UTC(),
		connectionID, domain.ReservationActive)
	if err != nil {
		return fmt.Errorf("capacityRepo.Release: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *capacityRepo) GetByConnection(ctx context.Context, connectionID uuid.UUID) (*domain.LoadReservation, error) {
	var res domain.LoadReservation
	err := r.db.GetContext(ctx, &res,
		`SELECT * FROM load_reservations
		 WHERE connection_id = $1 AND status = $2`,
		connectionID, domain.ReservationActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("capacityRepo.GetByConnection: %w", err)
	}
	return &res, nil
}

func (r *capacityRepo) UpdateDemand(ctx context.Context, res *domain.LoadReservation) error {
	res.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE load_reservations SET
			current_utilization = $1, peak_demand = $2, updated_at = $3
		 WHERE id = $4`,
		res.CurrentUtilization, res.PeakDemand, res.UpdatedAt, res.ID)
	if err != nil {
		return fmt.Errorf("capacityRepo.UpdateDemand: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *capacityRepo) ListActive(ctx context.Context) ([]domain.LoadReservation, error) {
	var reservations []domain.LoadReservation
	err := r.db.SelectContext(ctx, &reservations,
		"SELECT * FROM load_reservations WHERE status = $1 ORDER BY created_at",
		domain.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("capacityRepo.ListActive: %w", err)
	}
	return reservations, nil
}

func (r *capacityRepo) ListWardSnapshots(ctx context.Context) ([]port.CapacitySnapshot, error) {
	rows := []struct {
		ZoneCode     string          `db:"zone_code"`
		WardCode     string          `db:"ward_code"`
		ZoneDeclared decimal.Decimal `db:"zone_declared"`
		ZoneReserved decimal.Decimal `db:"zone_reserved"`
		WardDeclared decimal.Decimal `db:"ward_declared"`
		WardReserved decimal.Decimal `db:"ward_reserved"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT w.zone_code, w.ward_code,
			z.declared_capacity AS zone_declared,
			COALESCE(zr.reserved, 0) AS zone_reserved,
			w.declared_capacity AS ward_declared,
			COALESCE(wr.reserved, 0) AS ward_reserved
		FROM ward_capacities w
		JOIN zone_capacities z ON z.zone_code = w.zone_code
		LEFT JOIN (
			SELECT zone_code, SUM(sanctioned_load) AS reserved
			FROM load_reservations WHERE status = $1 GROUP BY zone_code
		) zr ON zr.zone_code = w.zone_code
		LEFT JOIN (
			SELECT ward_code, SUM(sanctioned_load) AS reserved
			FROM load_reservations WHERE status = $1 GROUP BY ward_code
		) wr ON wr.ward_code = w.ward_code
		ORDER BY w.ward_code`,
		domain.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("capacityRepo.ListWardSnapshots: %w", err)
	}

	snaps := make([]port.CapacitySnapshot, 0, len(rows))
	for _, row := range rows {
		snaps = append(snaps, port.CapacitySnapshot{
			ZoneCode:     row.ZoneCode,
			WardCode:     row.WardCode,
			ZoneDeclared: row.ZoneDeclared,
			ZoneReserved: row.ZoneReserved,
			WardDeclared: row.WardDeclared,
			WardReserved: row.WardReserved,
		})
	}
	return snaps, nil
}

func (r *capacityRepo) UpsertZone(ctx context.Context, zone *domain.ZoneCapacity) error {
	zone.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO zone_capacities (zone_code, name, declared_capacity, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (zone_code) DO UPDATE SET
			name = EXCLUDED.name,
			declared_capacity = EXCLUDED.declared_capacity,
			updated_at = EXCLUDED.updated_at`,
		zone.ZoneCode, zone.Name, zone.DeclaredCapacity, zone.UpdatedAt)
	if err != nil {
		return fmt.Errorf("capacityRepo.UpsertZone: %w", err)
	}
	return nil
}

func (r *capacityRepo) UpsertWard(ctx context.Context, ward *domain.WardCapacity) error {
	ward.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ward_capacities (ward_code, zone_code, name, declared_capacity, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (ward_code) DO UPDATE SET
			zone_code = EXCLUDED.zone_code,
			name = EXCLUDED.name,
			declared_capacity = EXCLUDED.declared_capacity,
			updated_at = EXCLUDED.updated_at`,
		ward.WardCode, ward.ZoneCode, ward.Name, ward.DeclaredCapacity, ward.UpdatedAt)
	if err != nil {
		return fmt.Errorf("capacityRepo.UpsertWard: %w", err)
	}
	return nil
}
