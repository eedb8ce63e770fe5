package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"palika/internal/billing"
	"palika/internal/domain"
	"palika/internal/port"
)

type billRepo struct {
	db *sqlx.DB
}

// NewBillRepo creates a new PostgreSQL-backed BillRepository.
func NewBillRepo(db *sqlx.DB) port.BillRepository {
	return &billRepo{db: db}
}

// Create persists the bill, its items, the billed-reading status flip,
// and the connection's advanced billing dates in one transaction. The
// caller has already advanced the connection's dates in memory.
// A bill-number collision (a manually inserted bill occupying a counter
// value) claims the next number and retries once before surfacing.
func (r *billRepo) Create(ctx context.Context, bill *domain.Bill, conn *domain.Connection) error {
	err := r.createOnce(ctx, bill, conn)
	if isUniqueViolation(err, "bills_bill_number_key") {
		err = r.createOnce(ctx, bill, conn)
	}
	if isUniqueViolation(err, "bills_bill_number_key") {
		return fmt.Errorf("billRepo.Create: bill number %s taken: %w", bill.BillNumber, err)
	}
	return err
}

func (r *billRepo) createOnce(ctx context.Context, bill *domain.Bill, conn *domain.Connection) error {
	now := time.Now().UTC()
	bill.CreatedAt = now
	bill.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("billRepo.Create begin: %w", err)
	}
	defer tx.Rollback()

	prefix, ok := domain.BillPrefixes[conn.ServiceType]
	if !ok {
		return fmt.Errorf("billRepo.Create: no bill prefix for service type %q", conn.ServiceType)
	}
	seq, err := nextSequence(ctx, tx, prefix, now)
	if err != nil {
		return fmt.Errorf("billRepo.Create: %w", err)
	}
	bill.BillNumber = billing.FormatBillNumber(prefix, now, seq)

	_, err = tx.ExecContext(ctx, `INSERT INTO bills (
		id, bill_number, connection_id, period_start, period_end,
		reading_id, units_consumed, billable_units, base_charge,
		sub_total, subsidy_amount, penalty_amount, rebate_amount,
		total_amount, previous_outstanding, paid_amount, outstanding_amount,
		due_date, status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13,
		$14, $15, $16, $17,
		$18, $19, $20, $21
	)`,
		bill.ID, bill.BillNumber, bill.ConnectionID, bill.PeriodStart, bill.PeriodEnd,
		bill.ReadingID, bill.UnitsConsumed, bill.BillableUnits, bill.BaseCharge,
		bill.SubTotal, bill.SubsidyAmount, bill.PenaltyAmount, bill.RebateAmount,
		bill.TotalAmount, bill.PreviousOutstanding, bill.PaidAmount, bill.OutstandingAmount,
		bill.DueDate, bill.Status, bill.CreatedAt, bill.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "bills_connection_period_key") {
			return domain.ErrDuplicateBillingPeriod
		}
		return fmt.Errorf("billRepo.Create: %w", err)
	}

	if err := insertItems(ctx, tx, bill); err != nil {
		return err
	}

	if bill.ReadingID != nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE meter_readings SET status = $1 WHERE id = $2",
			domain.ReadingBilled, *bill.ReadingID)
		if err != nil {
			return fmt.Errorf("billRepo.Create mark reading: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE connections SET last_bill_date = $1, next_bill_date = $2, updated_at = $3
		 WHERE id = $4`,
		conn.LastBillDate, conn.NextBillDate, now, conn.ID)
	if err != nil {
		return fmt.Errorf("billRepo.Create advance dates: %w", err)
	}
	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sqlx.Tx, bill *domain.Bill) error {
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.BillID = bill.ID
		_, err := tx.ExecContext(ctx, `INSERT INTO bill_items (
			id, bill_id, name, kind, amount, position
		) VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, item.BillID, item.Name, item.Kind, item.Amount, item.Position)
		if err != nil {
			return fmt.Errorf("billRepo insert item: %w", err)
		}
	}
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	var bill domain.Bill
	err := r.db.GetContext(ctx, &bill, "SELECT * FROM bills WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, fmt.Errorf("billRepo.GetByID: %w", err)
	}
	if err := r.loadItems(ctx, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepo) ListByConnection(ctx context.Context, connectionID uuid.UUID, offset, limit int) ([]domain.Bill, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM bills WHERE connection_id = $1", connectionID)
	if err != nil {
		return nil, 0, fmt.Errorf("billRepo.ListByConnection count: %w", err)
	}

	var bills []domain.Bill
	err = r.db.SelectContext(ctx, &bills,
		`SELECT * FROM bills WHERE connection_id = $1
		 ORDER BY period_start DESC LIMIT $2 OFFSET $3`,
		connectionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("billRepo.ListByConnection: %w", err)
	}
	return bills, total, nil
}

func (r *billRepo) PreviousOutstanding(ctx context.Context, connectionID uuid.UUID) (decimal.Decimal, error) {
	var outstanding decimal.Decimal
	err := r.db.GetContext(ctx, &outstanding,
		`SELECT outstanding_amount FROM bills
		 WHERE connection_id = $1 AND status <> $2
		 ORDER BY period_start DESC LIMIT 1`,
		connectionID, domain.BillCancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("billRepo.PreviousOutstanding: %w", err)
	}
	return outstanding, nil
}

func (r *billRepo) ApplyPayment(ctx context.Context, billID uuid.UUID, apply port.PaymentApplier) (*domain.Bill, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ApplyPayment begin: %w", err)
	}
	defer tx.Rollback()

	var bill domain.Bill
	err = tx.GetContext(ctx, &bill,
		"SELECT * FROM bills WHERE id = $1 FOR UPDATE", billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, fmt.Errorf("billRepo.ApplyPayment lock: %w", err)
	}

	payment, err := apply(&bill)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO payments (
		id, bill_id, amount, method, reference, received_at
	) VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID, payment.BillID, payment.Amount, payment.Method,
		payment.Reference, payment.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ApplyPayment insert: %w", err)
	}

	bill.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE bills SET
			paid_amount = $1, outstanding_amount = $2, rebate_amount = $3,
			total_amount = $4, status = $5, updated_at = $6
		 WHERE id = $7`,
		bill.PaidAmount, bill.OutstandingAmount, bill.RebateAmount,
		bill.TotalAmount, bill.Status, bill.UpdatedAt, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ApplyPayment update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("billRepo.ApplyPayment commit: %w", err)
	}
	return &bill, nil
}

func (r *billRepo) ListPayments(ctx context.Context, billID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE bill_id = $1 ORDER BY received_at",
		billID)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ListPayments: %w", err)
	}
	return payments, nil
}

func (r *billRepo) Update(ctx context.Context, bill *domain.Bill) error {
	bill.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE bills SET
			penalty_amount = $1, rebate_amount = $2, total_amount = $3,
			outstanding_amount = $4, status = $5, updated_at = $6
		 WHERE id = $7`,
		bill.PenaltyAmount, bill.RebateAmount, bill.TotalAmount,
		bill.OutstandingAmount, bill.Status, bill.UpdatedAt, bill.ID)
	if err != nil {
		return fmt.Errorf("billRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

func (r *billRepo) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := r.db.SelectContext(ctx, &bills,
		`SELECT * FROM bills
		 WHERE due_date < $1 AND status NOT IN ($2, $3)
		 ORDER BY due_date LIMIT $4`,
		asOf, domain.BillPaid, domain.BillCancelled, limit)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ListOverdueCandidates: %w", err)
	}
	return bills, nil
}

func (r *billRepo) ListForRegister(ctx context.Context, from, to time.Time) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := r.db.SelectContext(ctx, &bills,
		`SELECT * FROM bills
		 WHERE created_at >= $1 AND created_at < $2
		 ORDER BY created_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ListForRegister: %w", err)
	}
	return bills, nil
}

func (r *billRepo) loadItems(ctx context.Context, bill *domain.Bill) error {
	err := r.db.SelectContext(ctx, &bill.Items,
		"SELECT * FROM bill_items WHERE bill_id = $1 ORDER BY position",
		bill.ID)
	if err != nil {
		return fmt.Errorf("billRepo.loadItems: %w", err)
	}
	return nil
}
