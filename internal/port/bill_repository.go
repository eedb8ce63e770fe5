package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/domain"
)

// PaymentApplier mutates a bill row held under lock: it validates the
// payment against the current outstanding amount, appends the payment,
// and recomputes derived fields. An error aborts the transaction.
type PaymentApplier func(bill *domain.Bill) (*domain.Payment, error)

// BillRepository defines persistence for bills and their payment history.
type BillRepository interface {
	// Create persists a bill with its items in one transaction: the bill
	// number is taken from the atomic (prefix, date) sequence, the source
	// reading is marked billed, and the connection's billing dates are
	// advanced. Returns domain.ErrDuplicateBillingPeriod when a bill for
	// the connection and period already exists.
	Create(ctx context.Context, bill *domain.Bill, conn *domain.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.Bill, int, error)
	// PreviousOutstanding returns the outstanding amount of the
	// connection's most recent non-cancelled bill, or zero if none.
	PreviousOutstanding(ctx context.Context, connectionID uuid.UUID) (decimal.Decimal, error)
	// ApplyPayment locks the bill row, invokes apply, and persists the
	// updated bill plus the immutable payment entry atomically.
	ApplyPayment(ctx context.Context, billID uuid.UUID, apply PaymentApplier) (*domain.Bill, error)
	ListPayments(ctx context.Context, billID uuid.UUID) ([]domain.Payment, error)
	// Update persists status and sweep-derived field changes.
	Update(ctx context.Context, bill *domain.Bill) error
	// ListOverdueCandidates returns unpaid non-terminal bills past due.
	ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]domain.Bill, error)
	// ListForRegister returns bills created inside the window, oldest first.
	ListForRegister(ctx context.Context, from, to time.Time) ([]domain.Bill, error)
}
