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

type tariffRepo struct {
	db *sqlx.DB
}

// NewTariffRepo creates a new PostgreSQL-backed TariffRepository.
func NewTariffRepo(db *sqlx.DB) port.TariffRepository {
	return &tariffRepo{db: db}
}

func (r *tariffRepo) Create(ctx context.Context, plan *domain.TariffPlan) error {
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tariffRepo.Create begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO tariff_plans (
		id, name, service_type, category, zone_code,
		base_rate, free_units, subsidy_percent, subsidy_cap,
		pf_threshold, pf_penalty_factor,
		effective_from, effective_until, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11,
		$12, $13, $14, $15
	)`,
		plan.ID, plan.Name, plan.ServiceType, plan.Category, plan.ZoneCode,
		plan.BaseRate, plan.FreeUnits, plan.SubsidyPercent, plan.SubsidyCap,
		plan.PFThreshold, plan.PFPenaltyFactor,
		plan.EffectiveFrom, plan.EffectiveUntil, plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		// The btree_gist exclusion constraint rejects overlapping
		// effective ranges for the same plan key.
		if isExclusionViolation(err) {
			return domain.ErrTariffOverlap
		}
		return fmt.Errorf("tariffRepo.Create: %w", err)
	}

	for i := range plan.Components {
		c := &plan.Components[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.PlanID = plan.ID
		_, err = tx.ExecContext(ctx, `INSERT INTO rate_components (
			id, plan_id, name, kind, rate, attribute, bands, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.PlanID, c.Name, c.Kind, c.Rate, c.Attribute, c.Bands, c.Position)
		if err != nil {
			return fmt.Errorf("tariffRepo.Create component: %w", err)
		}
	}
	return tx.Commit()
}

func (r *tariffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TariffPlan, error) {
	var plan domain.TariffPlan
	err := r.db.GetContext(ctx, &plan,
		"SELECT * FROM tariff_plans WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTariffNotFound
		}
		return nil, fmt.Errorf("tariffRepo.GetByID: %w", err)
	}
	if err := r.loadComponents(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *tariffRepo) FindApplicable(ctx context.Context, key port.TariffKey, at time.Time) ([]domain.TariffPlan, error) {
	var plans []domain.TariffPlan
	err := r.db.SelectContext(ctx, &plans,
		`SELECT * FROM tariff_plans
		 WHERE service_type = $1 AND category = $2 AND zone_code = $3
		   AND effective_from <= $4
		   AND (effective_until IS NULL OR effective_until >= $4)
		 ORDER BY effective_from DESC`,
		key.ServiceType, key.Category, key.ZoneCode, at)
	if err != nil {
		return nil, fmt.Errorf("tariffRepo.FindApplicable: %w", err)
	}
	for i := range plans {
		if err := r.loadComponents(ctx, &plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (r *tariffRepo) List(ctx context.Context, serviceType domain.ServiceType, offset, limit int) ([]domain.TariffPlan, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM tariff_plans WHERE service_type = $1", serviceType)
	if err != nil {
		return nil, 0, fmt.Errorf("tariffRepo.List count: %w", err)
	}

	var plans []domain.TariffPlan
	err = r.db.SelectContext(ctx, &plans,
		`SELECT * FROM tariff_plans WHERE service_type = $1
		 ORDER BY effective_from DESC LIMIT $2 OFFSET $3`,
		serviceType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("tariffRepo.List: %w", err)
	}
	for i := range plans {
		if err := r.loadComponents(ctx, &plans[i]); err != nil {
			return nil, 0, err
		}
	}
	return plans, total, nil
}

func (r *tariffRepo) loadComponents(ctx context.Context, plan *domain.TariffPlan) error {
	err := r.db.SelectContext(ctx, &plan.Components,
		"SELECT * FROM rate_components WHERE plan_id = $1 ORDER BY position",
		plan.ID)
	if err != nil {
		return fmt.Errorf("tariffRepo.loadComponents: %w", err)
	}
	return nil
}
