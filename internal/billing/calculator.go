// Package billing computes itemized charge breakdowns from consumption
// and a resolved tariff plan. All arithmetic is exact decimal; rounding
// to currency precision happens exactly once, at the final total.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"palika/internal/domain"
)

// currencyScale is the currency precision applied at the final step.
const currencyScale = 2

var daysPerMonth = decimal.NewFromInt(30)

// ChargeInput carries everything the calculator needs for one bill.
type ChargeInput struct {
	// AssessedValue is the gross figure charges derive from: units
	// consumed for metered utilities, annual rental value for tax.
	AssessedValue   decimal.Decimal
	Plan            *domain.TariffPlan
	SubsidyEligible bool
	// Attributes supplies physical values for per-unit components,
	// keyed by the component's attribute name (area, demand, ...).
	Attributes map[string]decimal.Decimal
	// PowerFactor is nil when the connection is not PF-metered.
	PowerFactor *decimal.Decimal
}

// Breakdown is the itemized result before penalties and rebates.
type Breakdown struct {
	UnitsConsumed decimal.Decimal // gross, as submitted
	BillableUnits decimal.Decimal // after the free-unit clamp
	BaseCharge    decimal.Decimal
	Items         []domain.BillItem
	SubsidyAmount decimal.Decimal
	// SubTotal = base + Σ items − subsidy, unrounded.
	SubTotal decimal.Decimal
}

// Itemize computes the charge breakdown for one billing period. It never
// rounds intermediate components; cumulative drift from per-line rounding
// is exactly the defect this avoids.
func Itemize(in ChargeInput) (*Breakdown, error) {
	if in.Plan == nil {
		return nil, domain.ErrNoApplicableTariff
	}
	if in.AssessedValue.Sign() < 0 {
		return nil, domain.ErrInvalidAssessmentValue
	}

	billable := in.AssessedValue
	if in.SubsidyEligible && in.Plan.FreeUnits.Sign() > 0 {
		billable = in.AssessedValue.Sub(in.Plan.FreeUnits)
		if billable.Sign() < 0 {
			billable = decimal.Zero
		}
	}

	base := billable.Mul(in.Plan.BaseRate)
	// Consumption-derived charges are the subsidy base; cesses computed
	// on top of them are not subsidized.
	consumptionCharge := base

	b := &Breakdown{
		UnitsConsumed: in.AssessedValue,
		BillableUnits: billable,
		BaseCharge:    base,
	}

	for _, comp := range in.Plan.Components {
		var amount decimal.Decimal
		switch comp.Kind {
		case domain.ComponentPercentage:
			amount = base.Mul(comp.Rate)
		case domain.ComponentPerUnit:
			amount = in.Attributes[comp.Attribute].Mul(comp.Rate)
		case domain.ComponentFlat:
			amount = comp.Rate
		case domain.ComponentSlab:
			amount = slabCharge(billable, comp.Bands)
			consumptionCharge = consumptionCharge.Add(amount)
		default:
			continue
		}
		b.Items = append(b.Items, domain.BillItem{
			Name:     comp.Name,
			Kind:     comp.Kind,
			Amount:   amount,
			Position: comp.Position,
		})
	}

	if pen := powerFactorPenalty(in, base); pen.Sign() > 0 {
		b.Items = append(b.Items, domain.BillItem{
			Name:     "power_factor_penalty",
			Kind:     domain.ComponentPercentage,
			Amount:   pen,
			Position: len(b.Items),
		})
	}

	if in.SubsidyEligible && in.Plan.SubsidyPercent.Sign() > 0 {
		subsidy := consumptionCharge.Mul(in.Plan.SubsidyPercent)
		if in.Plan.SubsidyCap.Sign() > 0 && subsidy.GreaterThan(in.Plan.SubsidyCap) {
			subsidy = in.Plan.SubsidyCap
		}
		b.SubsidyAmount = subsidy
	}

	sub := base
	for _, item := range b.Items {
		sub = sub.Add(item.Amount)
	}
	b.SubTotal = sub.Sub(b.SubsidyAmount)
	return b, nil
}

// slabCharge prices each consumption band at its own rate.
func slabCharge(units decimal.Decimal, bands domain.SlabBands) decimal.Decimal {
	charge := decimal.Zero
	lower := decimal.Zero
	for _, band := range bands {
		if units.LessThanOrEqual(lower) {
			break
		}
		upper := units
		if band.UpTo != nil && band.UpTo.LessThan(units) {
			upper = *band.UpTo
		}
		charge = charge.Add(upper.Sub(lower).Mul(band.Rate))
		lower = upper
	}
	return charge
}

func powerFactorPenalty(in ChargeInput, base decimal.Decimal) decimal.Decimal {
	if in.PowerFactor == nil || in.Plan.PFThreshold.Sign() <= 0 {
		return decimal.Zero
	}
	if in.PowerFactor.GreaterThanOrEqual(in.Plan.PFThreshold) {
		return decimal.Zero
	}
	shortfall := in.Plan.PFThreshold.Sub(*in.PowerFactor)
	return shortfall.Mul(base).Mul(in.Plan.PFPenaltyFactor)
}

// LatePenalty recomputes the overdue penalty from scratch:
// rate × subTotal × max(1, ceil(daysOverdue/30)). Because it derives only
// from the due date and "now", re-running a sweep never double-applies.
func LatePenalty(subTotal, rate decimal.Decimal, dueDate, now time.Time) decimal.Decimal {
	if !now.After(dueDate) {
		return decimal.Zero
	}
	elapsed := now.Sub(dueDate)
	days := int64(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	months := decimal.NewFromInt(days).Div(daysPerMonth).Ceil()
	if months.LessThan(decimal.NewFromInt(1)) {
		months = decimal.NewFromInt(1)
	}
	return rate.Mul(subTotal).Mul(months)
}

// EarlyRebate returns the one-time rebate for payments that clear the
// bill at least windowMonths before the due date, zero otherwise.
func EarlyRebate(subTotal, percent decimal.Decimal, dueDate, paidAt time.Time, windowMonths int) decimal.Decimal {
	if windowMonths <= 0 || percent.Sign() <= 0 {
		return decimal.Zero
	}
	cutoff := dueDate.AddDate(0, -windowMonths, 0)
	if paidAt.After(cutoff) {
		return decimal.Zero
	}
	return percent.Mul(subTotal)
}

// Total combines the unrounded parts and applies banker's rounding at
// currency precision. This is the only rounding point in the pipeline.
func Total(subTotal, penalty, rebate decimal.Decimal) decimal.Decimal {
	return subTotal.Add(penalty).Sub(rebate).RoundBank(currencyScale)
}
