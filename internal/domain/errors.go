package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Input-validation errors: recoverable locally, surfaced with a stable code.
var (
	ErrInvalidReadingDate     = errors.New("reading date must be after the last reading")
	ErrInvalidReadingValue    = errors.New("reading value must not be below the last reading")
	ErrInvalidAssessmentValue = errors.New("assessed value must not be negative")
	ErrOverpayment            = errors.New("payment exceeds outstanding amount")
	ErrInvalidPaymentAmount   = errors.New("payment amount must be positive")
	ErrBillingNotDue          = errors.New("minimum interval since last bill has not elapsed")
	ErrInvalidStatusChange    = errors.New("invalid connection status transition")
	ErrBillNotCancellable     = errors.New("bill can no longer be cancelled")
	ErrBillNotPayable         = errors.New("bill does not accept payments")
	ErrConnectionNotActive    = errors.New("connection is not active")
	ErrInvalidTariff          = errors.New("invalid tariff plan definition")
	ErrInvalidInput           = errors.New("invalid input")
)

// Configuration-gap errors: administrative data is missing, not user error.
var (
	ErrNoApplicableTariff = errors.New("no applicable tariff plan")
	ErrTariffOverlap      = errors.New("tariff plan overlaps an existing plan for the same key")
	ErrNoZoneCapacity     = errors.New("no declared capacity for zone")
	ErrNoWardCapacity     = errors.New("no declared capacity for ward")
)

// Concurrency and uniqueness errors.
var (
	ErrDuplicateBillingPeriod = errors.New("bill already exists for this connection and period")
	ErrDuplicateConnection    = errors.New("connection already exists for these premises")
	ErrLoadUnavailable        = errors.New("requested load exceeds available capacity")
)

// Lookup and authorization errors.
var (
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrBillNotFound        = errors.New("bill not found")
	ErrReadingNotFound     = errors.New("meter reading not found")
	ErrReservationNotFound = errors.New("load reservation not found")
	ErrTariffNotFound      = errors.New("tariff plan not found")
	ErrOwnershipDenied     = errors.New("ownership could not be verified")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// LoadUnavailableError carries which capacity scope rejected the request
// and how much capacity that scope still has.
type LoadUnavailableError struct {
	Scope     string // "ward" or "zone"
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *LoadUnavailableError) Error() string {
	return fmt.Sprintf("requested load %s exceeds available %s capacity %s",
		e.Requested, e.Scope, e.Available)
}

// Unwrap lets callers match with errors.Is(err, ErrLoadUnavailable).
func (e *LoadUnavailableError) Unwrap() error { return ErrLoadUnavailable }
