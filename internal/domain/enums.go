package domain

// ServiceType identifies which utility a connection belongs to.
type ServiceType string

const (
	ServicePropertyTax ServiceType = "property_tax"
	ServiceWater       ServiceType = "water"
	ServiceElectricity ServiceType = "electricity"
)

// BillPrefixes maps service types to their bill number prefixes.
var BillPrefixes = map[ServiceType]string{
	ServicePropertyTax: "PTX",
	ServiceWater:       "WTR",
	ServiceElectricity: "ELE",
}

// ConsumerCategory classifies a connection for tariff resolution and
// load-shedding precedence.
type ConsumerCategory string

const (
	CategoryDomestic      ConsumerCategory = "domestic"
	CategoryCommercial    ConsumerCategory = "commercial"
	CategoryIndustrial    ConsumerCategory = "industrial"
	CategoryInstitutional ConsumerCategory = "institutional"
	CategoryStreetLight   ConsumerCategory = "street_lighting"
)

// ValidCategories enumerates every accepted consumer category.
var ValidCategories = map[ConsumerCategory]bool{
	CategoryDomestic:      true,
	CategoryCommercial:    true,
	CategoryIndustrial:    true,
	CategoryInstitutional: true,
	CategoryStreetLight:   true,
}

// ConnectionStatus is the lifecycle state of a connection. Connections are
// never deleted, only disconnected.
type ConnectionStatus string

const (
	ConnectionPending      ConnectionStatus = "pending"
	ConnectionApproved     ConnectionStatus = "approved"
	ConnectionActive       ConnectionStatus = "active"
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionRejected     ConnectionStatus = "rejected"
)

// ReadingStatus is the lifecycle state of a meter reading.
type ReadingStatus string

const (
	ReadingPending   ReadingStatus = "pending"
	ReadingValidated ReadingStatus = "validated"
	ReadingBilled    ReadingStatus = "billed"
)

// AnomalyKind flags a statistically suspicious but structurally valid reading.
type AnomalyKind string

const (
	AnomalyNone      AnomalyKind = ""
	AnomalyHighUsage AnomalyKind = "high_consumption"
	AnomalyZeroUsage AnomalyKind = "zero_consumption"
	AnomalyNegative  AnomalyKind = "negative_consumption"
)

// ComponentKind is the tagged variant of a tariff rate component.
type ComponentKind string

const (
	ComponentPercentage ComponentKind = "percentage"
	ComponentPerUnit    ComponentKind = "per_unit"
	ComponentFlat       ComponentKind = "flat"
	ComponentSlab       ComponentKind = "slab"
)

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	BillGenerated     BillStatus = "generated"
	BillSent          BillStatus = "sent"
	BillViewed        BillStatus = "viewed"
	BillPartiallyPaid BillStatus = "partially_paid"
	BillPaid          BillStatus = "paid"
	BillOverdue       BillStatus = "overdue"
	BillCancelled     BillStatus = "cancelled"
)

// Terminal reports whether no further payment or sweep activity applies.
func (s BillStatus) Terminal() bool {
	return s == BillPaid || s == BillCancelled
}

// Cancellable reports whether an administrative cancellation is allowed.
// Once a bill has been viewed or money has moved against it, it can no
// longer be cancelled.
func (s BillStatus) Cancellable() bool {
	return s == BillGenerated || s == BillSent
}

// PaymentMethod identifies how a payment was made.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCheque     PaymentMethod = "cheque"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentCard       PaymentMethod = "card"
)

// ValidPaymentMethods enumerates every accepted payment method.
var ValidPaymentMethods = map[PaymentMethod]bool{
	PaymentCash:       true,
	PaymentCheque:     true,
	PaymentUPI:        true,
	PaymentNetBanking: true,
	PaymentCard:       true,
}

// ReservationStatus is the state of a load reservation.
type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "active"
	ReservationReleased ReservationStatus = "released"
)

// MeterEventKind is the tagged variant of an append-only meter event.
type MeterEventKind string

const (
	MeterEventCalibration MeterEventKind = "calibration"
	MeterEventTamper      MeterEventKind = "tamper"
	MeterEventReplacement MeterEventKind = "replacement"
	MeterEventInspection  MeterEventKind = "inspection"
)

// ValidMeterEventKinds enumerates every accepted meter event kind.
var ValidMeterEventKinds = map[MeterEventKind]bool{
	MeterEventCalibration: true,
	MeterEventTamper:      true,
	MeterEventReplacement: true,
	MeterEventInspection:  true,
}

// Role defines the actor hierarchy for authorization decisions.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)
