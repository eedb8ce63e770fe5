package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Connection is a metered utility connection (property tax assessment,
// water connection, or electricity service connection). It is created on
// citizen application and only ever deactivated, never deleted.
type Connection struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	ConnectionNumber string           `db:"connection_number" json:"connection_number"`
	OwnerID          uuid.UUID        `db:"owner_id" json:"owner_id"`
	OwnerName        string           `db:"owner_name" json:"owner_name"`
	OwnerEmail       string           `db:"owner_email" json:"owner_email"`
	ServiceType      ServiceType      `db:"service_type" json:"service_type"`
	Category         ConsumerCategory `db:"category" json:"category"`
	ZoneCode         string           `db:"zone_code" json:"zone_code"`
	WardCode         string           `db:"ward_code" json:"ward_code"`
	PremisesNumber   string           `db:"premises_number" json:"premises_number"`
	SanctionedLoad   decimal.Decimal  `db:"sanctioned_load" json:"sanctioned_load"`
	PropertyArea     decimal.Decimal  `db:"property_area" json:"property_area"`
	HasWaterSupply   bool             `db:"has_water_supply" json:"has_water_supply"`
	HasSewerage      bool             `db:"has_sewerage" json:"has_sewerage"`
	SubsidyEligible  bool             `db:"subsidy_eligible" json:"subsidy_eligible"`
	Status           ConnectionStatus `db:"status" json:"status"`
	BillingCycleDays int              `db:"billing_cycle_days" json:"billing_cycle_days"`
	AppliedAt        time.Time        `db:"applied_at" json:"applied_at"`
	ApprovedAt       *time.Time       `db:"approved_at" json:"approved_at"`
	ConnectedAt      *time.Time       `db:"connected_at" json:"connected_at"`
	LastBillDate     *time.Time       `db:"last_bill_date" json:"last_bill_date"`
	NextBillDate     *time.Time       `db:"next_bill_date" json:"next_bill_date"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// MeterReading is one cumulative meter reading for a connection. Readings
// are strictly ordered by date and monotonically non-decreasing by value.
type MeterReading struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ConnectionID uuid.UUID       `db:"connection_id" json:"connection_id"`
	ReadingDate  time.Time       `db:"reading_date" json:"reading_date"`
	Value        decimal.Decimal `db:"value" json:"value"`
	Consumption  decimal.Decimal `db:"consumption" json:"consumption"`
	Demand       decimal.Decimal `db:"demand" json:"demand"`
	PowerFactor  decimal.Decimal `db:"power_factor" json:"power_factor"`
	Status       ReadingStatus   `db:"status" json:"status"`
	IsValidated  bool            `db:"is_validated" json:"is_validated"`
	AnomalyKind  AnomalyKind     `db:"anomaly_kind" json:"anomaly_kind,omitempty"`
	SubmittedBy  uuid.UUID       `db:"submitted_by" json:"submitted_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Anomalous reports whether the reading carries any anomaly flag.
func (r *MeterReading) Anomalous() bool { return r.AnomalyKind != AnomalyNone }

// TariffPlan is the rate plan for one (service type, category, zone) key
// over an effective range. At most one plan per key is active at any
// instant; overlapping ranges are rejected at write time.
type TariffPlan struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	ServiceType     ServiceType      `db:"service_type" json:"service_type"`
	Category        ConsumerCategory `db:"category" json:"category"`
	ZoneCode        string           `db:"zone_code" json:"zone_code"`
	BaseRate        decimal.Decimal  `db:"base_rate" json:"base_rate"`
	FreeUnits       decimal.Decimal  `db:"free_units" json:"free_units"`
	SubsidyPercent  decimal.Decimal  `db:"subsidy_percent" json:"subsidy_percent"`
	SubsidyCap      decimal.Decimal  `db:"subsidy_cap" json:"subsidy_cap"`
	PFThreshold     decimal.Decimal  `db:"pf_threshold" json:"pf_threshold"`
	PFPenaltyFactor decimal.Decimal  `db:"pf_penalty_factor" json:"pf_penalty_factor"`
	EffectiveFrom   time.Time        `db:"effective_from" json:"effective_from"`
	EffectiveUntil  *time.Time       `db:"effective_until" json:"effective_until"`
	Components      []RateComponent  `db:"-" json:"components"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the plan's effective range contains the instant.
func (p *TariffPlan) Covers(at time.Time) bool {
	if at.Before(p.EffectiveFrom) {
		return false
	}
	return p.EffectiveUntil == nil || !at.After(*p.EffectiveUntil)
}

// RateComponent is one additional charge component of a tariff plan.
// Kind selects how Rate is applied; slab components carry ordered bands.
type RateComponent struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	PlanID    uuid.UUID       `db:"plan_id" json:"plan_id"`
	Name      string          `db:"name" json:"name"`
	Kind      ComponentKind   `db:"kind" json:"kind"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	Attribute string          `db:"attribute" json:"attribute,omitempty"`
	Bands     SlabBands       `db:"bands" json:"bands,omitempty"`
	Position  int             `db:"position" json:"position"`
}

// SlabBand charges one consumption band at its own per-unit rate.
// UpTo is nil for the open-ended top band.
type SlabBand struct {
	UpTo *decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal  `json:"rate"`
}

// Bill is one generated bill for a connection and billing period. Its
// outstanding amount is always recomputed from total, previous
// outstanding, and paid; it is never mutated independently.
type Bill struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	BillNumber          string          `db:"bill_number" json:"bill_number"`
	ConnectionID        uuid.UUID       `db:"connection_id" json:"connection_id"`
	PeriodStart         time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd           time.Time       `db:"period_end" json:"period_end"`
	ReadingID           *uuid.UUID      `db:"reading_id" json:"reading_id,omitempty"`
	UnitsConsumed       decimal.Decimal `db:"units_consumed" json:"units_consumed"`
	BillableUnits       decimal.Decimal `db:"billable_units" json:"billable_units"`
	BaseCharge          decimal.Decimal `db:"base_charge" json:"base_charge"`
	SubTotal            decimal.Decimal `db:"sub_total" json:"sub_total"`
	SubsidyAmount       decimal.Decimal `db:"subsidy_amount" json:"subsidy_amount"`
	PenaltyAmount       decimal.Decimal `db:"penalty_amount" json:"penalty_amount"`
	RebateAmount        decimal.Decimal `db:"rebate_amount" json:"rebate_amount"`
	TotalAmount         decimal.Decimal `db:"total_amount" json:"total_amount"`
	PreviousOutstanding decimal.Decimal `db:"previous_outstanding" json:"previous_outstanding"`
	PaidAmount          decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	OutstandingAmount   decimal.Decimal `db:"outstanding_amount" json:"outstanding_amount"`
	DueDate             time.Time       `db:"due_date" json:"due_date"`
	Status              BillStatus      `db:"status" json:"status"`
	Items               []BillItem      `db:"-" json:"items"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// BillItem is one itemized charge line of a bill.
type BillItem struct {
	ID       uuid.UUID       `db:"id" json:"id"`
	BillID   uuid.UUID       `db:"bill_id" json:"bill_id"`
	Name     string          `db:"name" json:"name"`
	Kind     ComponentKind   `db:"kind" json:"kind"`
	Amount   decimal.Decimal `db:"amount" json:"amount"`
	Position int             `db:"position" json:"position"`
}

// Payment is one immutable entry in a bill's payment history.
type Payment struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	BillID     uuid.UUID       `db:"bill_id" json:"bill_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Method     PaymentMethod   `db:"method" json:"method"`
	Reference  string          `db:"reference" json:"reference"`
	ReceivedAt time.Time       `db:"received_at" json:"received_at"`
}

// ZoneCapacity is the declared load capacity pool for a geographic zone.
type ZoneCapacity struct {
	ZoneCode         string          `db:"zone_code" json:"zone_code"`
	Name             string          `db:"name" json:"name"`
	DeclaredCapacity decimal.Decimal `db:"declared_capacity" json:"declared_capacity"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// WardCapacity is the declared load capacity pool for a ward within a zone.
type WardCapacity struct {
	WardCode         string          `db:"ward_code" json:"ward_code"`
	ZoneCode         string          `db:"zone_code" json:"zone_code"`
	Name             string          `db:"name" json:"name"`
	DeclaredCapacity decimal.Decimal `db:"declared_capacity" json:"declared_capacity"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// LoadReservation holds sanctioned load reserved against a ward and zone
// capacity pool for an active connection.
type LoadReservation struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	ConnectionID       uuid.UUID         `db:"connection_id" json:"connection_id"`
	ZoneCode           string            `db:"zone_code" json:"zone_code"`
	WardCode           string            `db:"ward_code" json:"ward_code"`
	Category           ConsumerCategory  `db:"category" json:"category"`
	SanctionedLoad     decimal.Decimal   `db:"sanctioned_load" json:"sanctioned_load"`
	CurrentUtilization decimal.Decimal   `db:"current_utilization" json:"current_utilization"`
	PeakDemand         decimal.Decimal   `db:"peak_demand" json:"peak_demand"`
	Status             ReservationStatus `db:"status" json:"status"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// MeterEvent is one entry in a connection's append-only meter history
// (calibrations, tamper reports, replacements, inspections).
type MeterEvent struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	ConnectionID uuid.UUID      `db:"connection_id" json:"connection_id"`
	Kind         MeterEventKind `db:"kind" json:"kind"`
	Note         string         `db:"note" json:"note"`
	RecordedBy   uuid.UUID      `db:"recorded_by" json:"recorded_by"`
	OccurredAt   time.Time      `db:"occurred_at" json:"occurred_at"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
