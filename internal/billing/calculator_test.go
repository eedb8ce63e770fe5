package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palika/internal/billing"
	"palika/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func flatPlan(rate string) *domain.TariffPlan {
	return &domain.TariffPlan{
		Name:     "flat",
		BaseRate: dec(rate),
	}
}

// --- Itemize ---

func TestItemize_FlatRateExact(t *testing.T) {
	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("123.456"),
		Plan:          flatPlan("4.25"),
	})

	require.NoError(t, err)
	assert.True(t, b.BaseCharge.Equal(dec("524.688")), "got %s", b.BaseCharge)
	assert.True(t, b.SubTotal.Equal(dec("524.688")))
	assert.True(t, b.UnitsConsumed.Equal(dec("123.456")))
	assert.True(t, b.BillableUnits.Equal(dec("123.456")))
}

func TestItemize_NilPlan(t *testing.T) {
	_, err := billing.Itemize(billing.ChargeInput{AssessedValue: dec("10")})
	assert.ErrorIs(t, err, domain.ErrNoApplicableTariff)
}

func TestItemize_NegativeAssessedValue(t *testing.T) {
	_, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("-1"),
		Plan:          flatPlan("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAssessmentValue)
}

func TestItemize_ZeroConsumption(t *testing.T) {
	plan := flatPlan("4.25")
	plan.Components = []domain.RateComponent{
		{Name: "meter_rent", Kind: domain.ComponentFlat, Rate: dec("50"), Position: 0},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: decimal.Zero,
		Plan:          plan,
	})

	require.NoError(t, err)
	assert.True(t, b.BaseCharge.IsZero())
	// Flat components still apply on a zero-consumption period.
	assert.True(t, b.SubTotal.Equal(dec("50")))
}

func TestItemize_PropertyTaxCesses(t *testing.T) {
	plan := flatPlan("0.08")
	plan.Components = []domain.RateComponent{
		{Name: "education_cess", Kind: domain.ComponentPercentage, Rate: dec("0.02"), Position: 0},
		{Name: "health_cess", Kind: domain.ComponentPercentage, Rate: dec("0.01"), Position: 1},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("50000"),
		Plan:          plan,
	})

	require.NoError(t, err)
	assert.True(t, b.BaseCharge.Equal(dec("4000")), "base = %s", b.BaseCharge)
	require.Len(t, b.Items, 2)
	assert.True(t, b.Items[0].Amount.Equal(dec("80")), "education cess = %s", b.Items[0].Amount)
	assert.True(t, b.Items[1].Amount.Equal(dec("40")), "health cess = %s", b.Items[1].Amount)
	assert.True(t, b.SubTotal.Equal(dec("4120")))
}

func TestItemize_PercentageAndPerUnitComponents(t *testing.T) {
	plan := flatPlan("2")
	plan.Components = []domain.RateComponent{
		{Name: "electricity_duty", Kind: domain.ComponentPercentage, Rate: dec("0.10"), Position: 0},
		{Name: "fixed_demand", Kind: domain.ComponentPerUnit, Rate: dec("30"), Attribute: "demand", Position: 1},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("100"),
		Plan:          plan,
		Attributes:    map[string]decimal.Decimal{"demand": dec("5")},
	})

	require.NoError(t, err)
	require.Len(t, b.Items, 2)
	// base 200, duty 20, demand 150
	assert.True(t, b.Items[0].Amount.Equal(dec("20")))
	assert.True(t, b.Items[1].Amount.Equal(dec("150")))
	assert.True(t, b.SubTotal.Equal(dec("370")))
}

func TestItemize_SlabBands(t *testing.T) {
	plan := flatPlan("0")
	plan.Components = []domain.RateComponent{
		{
			Name: "energy_slabs",
			Kind: domain.ComponentSlab,
			Bands: domain.SlabBands{
				{UpTo: decPtr("50"), Rate: dec("3")},
				{UpTo: decPtr("150"), Rate: dec("4.5")},
				{UpTo: nil, Rate: dec("6")},
			},
		},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("200"),
		Plan:          plan,
	})

	require.NoError(t, err)
	// 50×3 + 100×4.5 + 50×6 = 150 + 450 + 300
	assert.True(t, b.SubTotal.Equal(dec("900")), "got %s", b.SubTotal)
}

func TestItemize_SlabStopsAtConsumption(t *testing.T) {
	plan := flatPlan("0")
	plan.Components = []domain.RateComponent{
		{
			Name: "energy_slabs",
			Kind: domain.ComponentSlab,
			Bands: domain.SlabBands{
				{UpTo: decPtr("50"), Rate: dec("3")},
				{UpTo: decPtr("150"), Rate: dec("4.5")},
			},
		},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("30"),
		Plan:          plan,
	})

	require.NoError(t, err)
	assert.True(t, b.SubTotal.Equal(dec("90")))
}

func TestItemize_FreeUnitsClamp(t *testing.T) {
	plan := flatPlan("4")
	plan.FreeUnits = dec("50")

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue:   dec("75"),
		Plan:            plan,
		SubsidyEligible: true,
	})

	require.NoError(t, err)
	assert.True(t, b.UnitsConsumed.Equal(dec("75")))
	assert.True(t, b.BillableUnits.Equal(dec("25")))
	assert.True(t, b.BaseCharge.Equal(dec("100")))
}

func TestItemize_FreeUnitsExceedConsumption(t *testing.T) {
	plan := flatPlan("4")
	plan.FreeUnits = dec("50")

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue:   dec("40"),
		Plan:            plan,
		SubsidyEligible: true,
	})

	require.NoError(t, err)
	assert.True(t, b.BillableUnits.IsZero())
	assert.True(t, b.BaseCharge.IsZero())
}

func TestItemize_FreeUnitsIgnoredWhenNotEligible(t *testing.T) {
	plan := flatPlan("4")
	plan.FreeUnits = dec("50")

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("75"),
		Plan:          plan,
	})

	require.NoError(t, err)
	assert.True(t, b.BillableUnits.Equal(dec("75")))
}

func TestItemize_SubsidyOnConsumptionChargeOnly(t *testing.T) {
	plan := flatPlan("4")
	plan.SubsidyPercent = dec("0.25")
	plan.Components = []domain.RateComponent{
		{Name: "sewerage_cess", Kind: domain.ComponentPercentage, Rate: dec("0.10"), Position: 0},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue:   dec("100"),
		Plan:            plan,
		SubsidyEligible: true,
	})

	require.NoError(t, err)
	// base 400, cess 40; subsidy 25% of base only = 100
	assert.True(t, b.SubsidyAmount.Equal(dec("100")))
	assert.True(t, b.SubTotal.Equal(dec("340")))
}

func TestItemize_SubsidyCap(t *testing.T) {
	plan := flatPlan("4")
	plan.SubsidyPercent = dec("0.50")
	plan.SubsidyCap = dec("120")

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue:   dec("100"),
		Plan:            plan,
		SubsidyEligible: true,
	})

	require.NoError(t, err)
	assert.True(t, b.SubsidyAmount.Equal(dec("120")))
	assert.True(t, b.SubTotal.Equal(dec("280")))
}

func TestItemize_PowerFactorPenalty(t *testing.T) {
	plan := flatPlan("5")
	plan.PFThreshold = dec("0.90")
	plan.PFPenaltyFactor = dec("2")

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("100"),
		Plan:          plan,
		PowerFactor:   decPtr("0.85"),
	})

	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "power_factor_penalty", b.Items[0].Name)
	// shortfall 0.05 × base 500 × factor 2 = 50
	assert.True(t, b.Items[0].Amount.Equal(dec("50")))
	assert.True(t, b.SubTotal.Equal(dec("550")))
}

func TestItemize_PowerFactorAboveThreshold(t *testing.T) {
	plan := flatPlan("5")
	plan.PFThreshold = dec("0.90")
	plan.PFPenaltyFactor = dec("2")

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("100"),
		Plan:          plan,
		PowerFactor:   decPtr("0.95"),
	})

	require.NoError(t, err)
	assert.Empty(t, b.Items)
}

func TestItemize_NoIntermediateRounding(t *testing.T) {
	// Three thirds of a paisa survive until the final total.
	plan := flatPlan("0.3333")
	plan.Components = []domain.RateComponent{
		{Name: "cess", Kind: domain.ComponentPercentage, Rate: dec("0.3333"), Position: 0},
	}

	b, err := billing.Itemize(billing.ChargeInput{
		AssessedValue: dec("100"),
		Plan:          plan,
	})

	require.NoError(t, err)
	// base 33.33, cess 11.108889: the sub-total keeps full precision
	assert.True(t, b.SubTotal.Equal(dec("44.438889")), "got %s", b.SubTotal)
	total := billing.Total(b.SubTotal, decimal.Zero, decimal.Zero)
	assert.True(t, total.Equal(dec("44.44")))
}

// --- LatePenalty ---

func TestLatePenalty_NotOverdue(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := billing.LatePenalty(dec("1000"), dec("0.02"), due, due)
	assert.True(t, p.IsZero())
}

func TestLatePenalty_FirstMonth(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 10)
	p := billing.LatePenalty(dec("1000"), dec("0.02"), due, now)
	assert.True(t, p.Equal(dec("20")))
}

func TestLatePenalty_CeilsPartialMonths(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 31)
	p := billing.LatePenalty(dec("1000"), dec("0.02"), due, now)
	assert.True(t, p.Equal(dec("40")))
}

func TestLatePenalty_PartialDayCountsAsDay(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := due.Add(time.Hour)
	p := billing.LatePenalty(dec("1000"), dec("0.02"), due, now)
	assert.True(t, p.Equal(dec("20")))
}

func TestLatePenalty_Idempotent(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 45)
	first := billing.LatePenalty(dec("1000"), dec("0.02"), due, now)
	second := billing.LatePenalty(dec("1000"), dec("0.02"), due, now)
	assert.True(t, first.Equal(second))
}

// --- EarlyRebate ---

func TestEarlyRebate_InsideWindow(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	paid := due.AddDate(0, -2, 0)
	r := billing.EarlyRebate(dec("1000"), dec("0.05"), due, paid, 2)
	assert.True(t, r.Equal(dec("50")))
}

func TestEarlyRebate_AfterCutoff(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	paid := due.AddDate(0, -2, 1)
	r := billing.EarlyRebate(dec("1000"), dec("0.05"), due, paid, 2)
	assert.True(t, r.IsZero())
}

func TestEarlyRebate_ZeroWindow(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	r := billing.EarlyRebate(dec("1000"), dec("0.05"), due, due.AddDate(0, -6, 0), 0)
	assert.True(t, r.IsZero())
}

// --- Total ---

func TestTotal_BankersRounding(t *testing.T) {
	assert.True(t, billing.Total(dec("10.125"), decimal.Zero, decimal.Zero).Equal(dec("10.12")))
	assert.True(t, billing.Total(dec("10.135"), decimal.Zero, decimal.Zero).Equal(dec("10.14")))
}

func TestTotal_CombinesParts(t *testing.T) {
	total := billing.Total(dec("1000"), dec("40"), dec("50"))
	assert.True(t, total.Equal(dec("990")))
}
