package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"palika/internal/domain"
)

// TariffKey identifies the set of plans a connection can resolve against.
type TariffKey struct {
	ServiceType domain.ServiceType
	Category    domain.ConsumerCategory
	ZoneCode    string
}

// TariffRepository defines persistence for tariff plans.
type TariffRepository interface {
	// Create persists a plan with its components. Returns
	// domain.ErrTariffOverlap when the effective range collides with an
	// existing plan for the same key.
	Create(ctx context.Context, plan *domain.TariffPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TariffPlan, error)
	// FindApplicable returns plans whose effective range contains the
	// instant, most recent effective_from first.
	FindApplicable(ctx context.Context, key TariffKey, at time.Time) ([]domain.TariffPlan, error)
	List(ctx context.Context, serviceType domain.ServiceType, offset, limit int) ([]domain.TariffPlan, int, error)
}

// TariffCache is a short-TTL read-through cache in front of tariff
// resolution. It is never the source of truth; misses and failures fall
// through to the repository.
type TariffCache interface {
	Get(ctx context.Context, key string) (*domain.TariffPlan, error)
	Set(ctx context.Context, key string, plan *domain.TariffPlan) error
}
