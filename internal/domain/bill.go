package domain

import "time"

// Recompute derives the outstanding amount and the money-driven status
// from the bill's stored fields. It is the only place either is computed;
// callers invoke it explicitly after every mutation, before persistence.
func (b *Bill) Recompute(now time.Time) {
	b.OutstandingAmount = b.TotalAmount.Add(b.PreviousOutstanding).Sub(b.PaidAmount)

	if b.Status == BillCancelled {
		return
	}

	switch {
	case b.OutstandingAmount.Sign() <= 0 && b.PaidAmount.Sign() > 0:
		b.Status = BillPaid
	case now.After(b.DueDate) && b.OutstandingAmount.Sign() > 0:
		b.Status = BillOverdue
	case b.PaidAmount.Sign() > 0:
		b.Status = BillPartiallyPaid
	default:
		// No money has moved and the bill is not overdue: preserve the
		// delivery state (generated/sent/viewed).
		if b.Status != BillGenerated && b.Status != BillSent && b.Status != BillViewed {
			b.Status = BillGenerated
		}
	}
}

// MarkSent advances a freshly generated bill to sent. Out-of-order
// delivery callbacks are ignored.
func (b *Bill) MarkSent() {
	if b.Status == BillGenerated {
		b.Status = BillSent
	}
}

// MarkViewed records that the consumer has opened the bill.
func (b *Bill) MarkViewed() {
	if b.Status == BillGenerated || b.Status == BillSent {
		b.Status = BillViewed
	}
}
