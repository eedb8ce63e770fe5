// Package load implements sanctioned-load accounting: availability
// checks against hierarchical ward/zone capacity pools, demand-violation
// detection, and shedding precedence.
package load

import (
	"sort"

	"github.com/shopspring/decimal"

	"palika/internal/domain"
	"palika/internal/port"
)

var hundred = decimal.NewFromInt(100)

// CheckAvailability verifies the request fits BOTH capacity scopes.
// A request that satisfies the zone but exceeds the ward (or the other
// way round) is rejected, with the failing scope and its remaining
// capacity in the error.
func CheckAvailability(snap *port.CapacitySnapshot, requested decimal.Decimal) error {
	wardAvailable := snap.WardDeclared.Sub(snap.WardReserved)
	if requested.GreaterThan(wardAvailable) {
		return &domain.LoadUnavailableError{
			Scope:     "ward",
			Requested: requested,
			Available: wardAvailable,
		}
	}
	zoneAvailable := snap.ZoneDeclared.Sub(snap.ZoneReserved)
	if requested.GreaterThan(zoneAvailable) {
		return &domain.LoadUnavailableError{
			Scope:     "zone",
			Requested: requested,
			Available: zoneAvailable,
		}
	}
	return nil
}

// Violation describes observed demand exceeding sanctioned load beyond
// tolerance.
type Violation struct {
	ObservedDemand   decimal.Decimal `json:"observed_demand"`
	SanctionedLoad   decimal.Decimal `json:"sanctioned_load"`
	ViolationPercent decimal.Decimal `json:"violation_percent"`
	Critical         bool            `json:"critical"`
}

// DetectViolation flags demand strictly above sanctioned × tolerance.
// Demand at exactly the tolerance boundary is not a violation. Violations
// whose percentage exceeds alertPct are marked critical.
func DetectViolation(sanctioned, observed, tolerance, alertPct decimal.Decimal) *Violation {
	if sanctioned.Sign() <= 0 {
		return nil
	}
	if !observed.GreaterThan(sanctioned.Mul(tolerance)) {
		return nil
	}
	pct := observed.Sub(sanctioned).Div(sanctioned).Mul(hundred)
	return &Violation{
		ObservedDemand:   observed,
		SanctionedLoad:   sanctioned,
		ViolationPercent: pct,
		Critical:         pct.GreaterThan(alertPct),
	}
}

// Utilization returns observed demand as a percentage of sanctioned load.
func Utilization(sanctioned, observed decimal.Decimal) decimal.Decimal {
	if sanctioned.Sign() <= 0 {
		return decimal.Zero
	}
	return observed.Div(sanctioned).Mul(hundred)
}

// PoolAlert reports a capacity pool whose active reservations exceed its
// declared capacity. Reserve never oversubscribes a pool, but lowering a
// declaration under an admin redeclaration can leave one oversubscribed.
type PoolAlert struct {
	Scope    string          `json:"scope"`
	Code     string          `json:"code"`
	Declared decimal.Decimal `json:"declared"`
	Reserved decimal.Decimal `json:"reserved"`
}

// PoolStress returns an alert per oversubscribed scope in the snapshot,
// zone first.
func PoolStress(snap *port.CapacitySnapshot) []PoolAlert {
	var alerts []PoolAlert
	if snap.ZoneReserved.GreaterThan(snap.ZoneDeclared) {
		alerts = append(alerts, PoolAlert{
			Scope:    "zone",
			Code:     snap.ZoneCode,
			Declared: snap.ZoneDeclared,
			Reserved: snap.ZoneReserved,
		})
	}
	if snap.WardReserved.GreaterThan(snap.WardDeclared) {
		alerts = append(alerts, PoolAlert{
			Scope:    "ward",
			Code:     snap.WardCode,
			Declared: snap.WardDeclared,
			Reserved: snap.WardReserved,
		})
	}
	return alerts
}

// sheddingRank orders consumer categories from least to most essential.
// Domestic connections are shed last.
var sheddingRank = map[domain.ConsumerCategory]int{
	domain.CategoryStreetLight:   0,
	domain.CategoryCommercial:    1,
	domain.CategoryIndustrial:    2,
	domain.CategoryInstitutional: 3,
	domain.CategoryDomestic:      4,
}

// RankShedding sorts active reservations into shedding order: category
// precedence first, heavier current utilization first within a category.
func RankShedding(reservations []domain.LoadReservation) []domain.LoadReservation {
	ranked := make([]domain.LoadReservation, len(reservations))
	copy(ranked, reservations)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := sheddingRank[ranked[i].Category], sheddingRank[ranked[j].Category]
		if ri != rj {
			return ri < rj
		}
		return ranked[i].CurrentUtilization.GreaterThan(ranked[j].CurrentUtilization)
	})
	return ranked
}
