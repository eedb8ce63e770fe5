package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"palika/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var due = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func bill(total, prevOutstanding, paid string, status domain.BillStatus) *domain.Bill {
	return &domain.Bill{
		TotalAmount:         dec(total),
		PreviousOutstanding: dec(prevOutstanding),
		PaidAmount:          dec(paid),
		DueDate:             due,
		Status:              status,
	}
}

func TestRecompute_OutstandingIdentity(t *testing.T) {
	b := bill("1000", "250", "300", domain.BillGenerated)
	b.Recompute(due.AddDate(0, 0, -5))
	assert.True(t, b.OutstandingAmount.Equal(dec("950")))
}

func TestRecompute_FullPaymentSettles(t *testing.T) {
	b := bill("1000", "0", "1000", domain.BillSent)
	b.Recompute(due.AddDate(0, 0, -5))
	assert.Equal(t, domain.BillPaid, b.Status)
	assert.True(t, b.OutstandingAmount.IsZero())
}

func TestRecompute_PartialPayment(t *testing.T) {
	b := bill("1000", "0", "400", domain.BillSent)
	b.Recompute(due.AddDate(0, 0, -5))
	assert.Equal(t, domain.BillPartiallyPaid, b.Status)
	assert.True(t, b.OutstandingAmount.Equal(dec("600")))
}

func TestRecompute_OverdueAfterDueDate(t *testing.T) {
	b := bill("1000", "0", "400", domain.BillPartiallyPaid)
	b.Recompute(due.AddDate(0, 0, 1))
	assert.Equal(t, domain.BillOverdue, b.Status)
}

func TestRecompute_PreservesDeliveryState(t *testing.T) {
	b := bill("1000", "0", "0", domain.BillViewed)
	b.Recompute(due.AddDate(0, 0, -5))
	assert.Equal(t, domain.BillViewed, b.Status)
}

func TestRecompute_CancelledIsTerminal(t *testing.T) {
	b := bill("1000", "0", "1000", domain.BillCancelled)
	b.Recompute(due.AddDate(0, 0, 1))
	assert.Equal(t, domain.BillCancelled, b.Status)
	// The identity still holds on cancelled bills.
	assert.True(t, b.OutstandingAmount.IsZero())
}

func TestRecompute_PaidNeverRegressesToOverdue(t *testing.T) {
	b := bill("1000", "0", "1000", domain.BillPaid)
	b.Recompute(due.AddDate(0, 1, 0))
	assert.Equal(t, domain.BillPaid, b.Status)
}

func TestMarkSent(t *testing.T) {
	b := bill("1000", "0", "0", domain.BillGenerated)
	b.MarkSent()
	assert.Equal(t, domain.BillSent, b.Status)

	// Out-of-order callback after payment is ignored.
	b.Status = domain.BillPaid
	b.MarkSent()
	assert.Equal(t, domain.BillPaid, b.Status)
}

func TestMarkViewed(t *testing.T) {
	b := bill("1000", "0", "0", domain.BillSent)
	b.MarkViewed()
	assert.Equal(t, domain.BillViewed, b.Status)

	b.Status = domain.BillOverdue
	b.MarkViewed()
	assert.Equal(t, domain.BillOverdue, b.Status)
}

func TestBillStatus_Cancellable(t *testing.T) {
	assert.True(t, domain.BillGenerated.Cancellable())
	assert.True(t, domain.BillSent.Cancellable())
	assert.False(t, domain.BillViewed.Cancellable())
	assert.False(t, domain.BillPaid.Cancellable())
	assert.False(t, domain.BillCancelled.Cancellable())
}
