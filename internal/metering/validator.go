// Package metering validates raw meter readings: ordering and value
// monotonicity against the last known reading, consumption derivation,
// and statistical anomaly flagging over a trailing window.
package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/domain"
)

// minWindow is the minimum number of prior validated readings required
// before anomaly detection is attempted.
const minWindow = 3

var (
	highUsageFactor = decimal.NewFromInt(3)
	zeroUsageFloor  = decimal.NewFromInt(10)
)

// Candidate is a submitted reading before validation.
type Candidate struct {
	ReadingDate time.Time
	Value       decimal.Decimal
	Demand      decimal.Decimal
	PowerFactor decimal.Decimal
	SubmittedBy uuid.UUID
}

// Validate checks a candidate against the connection's last reading and
// trailing window, and returns the validated record. It has no side
// effects; persistence is the caller's responsibility, and billing
// eligibility is a ledger policy, not decided here.
func Validate(connectionID uuid.UUID, prev *domain.MeterReading, window []domain.MeterReading, c Candidate) (*domain.MeterReading, error) {
	consumption := decimal.Zero
	if prev != nil {
		if !c.ReadingDate.After(prev.ReadingDate) {
			return nil, domain.ErrInvalidReadingDate
		}
		if c.Value.LessThan(prev.Value) {
			return nil, domain.ErrInvalidReadingValue
		}
		consumption = c.Value.Sub(prev.Value)
	}

	reading := &domain.MeterReading{
		ID:           uuid.New(),
		ConnectionID: connectionID,
		ReadingDate:  c.ReadingDate,
		Value:        c.Value,
		Consumption:  consumption,
		Demand:       c.Demand,
		PowerFactor:  c.PowerFactor,
		Status:       domain.ReadingValidated,
		IsValidated:  true,
		AnomalyKind:  DetectAnomaly(consumption, window),
		SubmittedBy:  c.SubmittedBy,
	}
	return reading, nil
}

// DetectAnomaly flags a consumption figure against the trailing window of
// validated readings. The negative check is unreachable through Validate
// (the value gate rejects first) but guards raw-sensor paths where a
// meter rollover can bypass the monotonicity gate.
func DetectAnomaly(consumption decimal.Decimal, window []domain.MeterReading) domain.AnomalyKind {
	if consumption.Sign() < 0 {
		return domain.AnomalyNegative
	}
	if len(window) < minWindow {
		return domain.AnomalyNone
	}

	avg := movingAverage(window)
	switch {
	case consumption.GreaterThan(avg.Mul(highUsageFactor)):
		return domain.AnomalyHighUsage
	case consumption.IsZero() && avg.GreaterThan(zeroUsageFloor):
		return domain.AnomalyZeroUsage
	}
	return domain.AnomalyNone
}

func movingAverage(window []domain.MeterReading) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range window {
		sum = sum.Add(r.Consumption)
	}
	return sum.Div(decimal.NewFromInt(int64(len(window))))
}
