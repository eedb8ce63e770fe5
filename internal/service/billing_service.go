package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"palika/internal/authz"
	"palika/internal/billing"
	"palika/internal/config"
	"palika/internal/domain"
	"palika/internal/port"
	"palika/internal/tariff"
)

// GenerateBillInput is the DTO for generating a bill.
type GenerateBillInput struct {
	Actor        authz.Actor
	ConnectionID uuid.UUID
}

// PayBillInput is the DTO for recording a payment against a bill.
type PayBillInput struct {
	Actor     authz.Actor
	BillID    uuid.UUID
	Amount    decimal.Decimal
	Method    domain.PaymentMethod
	Reference string
}

// BillingService defines the bill lifecycle contract.
type BillingService interface {
	// Generate produces the next bill for a connection from its latest
	// validated reading (or assessed figures for unmetered services).
	Generate(ctx context.Context, input *GenerateBillInput) (*domain.Bill, error)
	GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*domain.Bill, error)
	ListByConnection(ctx context.Context, actor authz.Actor, connectionID uuid.UUID, offset, limit int) ([]domain.Bill, int, error)
	// Pay validates and applies a payment with the bill row locked.
	// Full settlement inside the early-payment window earns the rebate.
	Pay(ctx context.Context, input *PayBillInput) (*domain.Bill, error)
	ListPayments(ctx context.Context, actor authz.Actor, billID uuid.UUID) ([]domain.Payment, error)
	MarkSent(ctx context.Context, actor authz.Actor, billID uuid.UUID) (*domain.Bill, error)
	Cancel(ctx context.Context, actor authz.Actor, billID uuid.UUID) (*domain.Bill, error)
	// SweepOverdue recomputes late penalties and overdue statuses for
	// unpaid bills past due. It derives everything from stored fields,
	// so running it twice changes nothing the second time.
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
	ListForRegister(ctx context.Context, actor authz.Actor, from, to time.Time) ([]domain.Bill, error)
}

type billingService struct {
	billRepo    port.BillRepository
	connRepo    port.ConnectionRepository
	readingRepo port.ReadingRepository
	resolver    *tariff.Resolver
	notifier    port.Notifier
	cfg         config.BillingConfig
	sweepBatch  int
	log         *zap.Logger
}

// NewBillingService creates a new BillingService implementation.
func NewBillingService(
	billRepo port.BillRepository,
	connRepo port.ConnectionRepository,
	readingRepo port.ReadingRepository,
	resolver *tariff.Resolver,
	notifier port.Notifier,
	cfg config.BillingConfig,
	sweepBatch int,
	log *zap.Logger,
) BillingService {
	return &billingService{
		billRepo:    billRepo,
		connRepo:    connRepo,
		readingRepo: readingRepo,
		resolver:    resolver,
		notifier:    notifier,
		cfg:         cfg,
		sweepBatch:  sweepBatch,
		log:         log,
	}
}

func (s *billingService) Generate(ctx context.Context, input *GenerateBillInput) (*domain.Bill, error) {
	if !input.Actor.Staff() {
		return nil, domain.ErrForbidden
	}
	conn, err := s.connRepo.GetByID(ctx, input.ConnectionID)
	if err != nil {
		return nil, err
	}
	if conn.Status != domain.ConnectionActive {
		return nil, domain.ErrConnectionNotActive
	}

	now := time.Now().UTC()
	if conn.LastBillDate != nil {
		minNext := conn.LastBillDate.AddDate(0, 0, s.cfg.MinIntervalDays)
		if now.Before(minNext) {
			return nil, domain.ErrBillingNotDue
		}
	}

	periodStart := conn.AppliedAt
	switch {
	case conn.LastBillDate != nil:
		periodStart = *conn.LastBillDate
	case conn.ConnectedAt != nil:
		periodStart = *conn.ConnectedAt
	}

	in := billing.ChargeInput{
		SubsidyEligible: conn.SubsidyEligible,
		Attributes: map[string]decimal.Decimal{
			"property_area":   conn.PropertyArea,
			"sanctioned_load": conn.SanctionedLoad,
		},
	}
	var readingID *uuid.UUID
	if conn.ServiceType == domain.ServicePropertyTax {
		in.AssessedValue = conn.PropertyArea
	} else {
		reading, err := s.readingRepo.Latest(ctx, conn.ID)
		if err != nil {
			return nil, err
		}
		if reading.Status == domain.ReadingBilled {
			return nil, domain.ErrBillingNotDue
		}
		in.AssessedValue = reading.Consumption
		in.Attributes["demand"] = reading.Demand
		if conn.ServiceType == domain.ServiceElectricity && reading.PowerFactor.Sign() > 0 {
			pf := reading.PowerFactor
			in.PowerFactor = &pf
		}
		readingID = &reading.ID
	}

	plan, err := s.resolver.Resolve(ctx, port.TariffKey{
		ServiceType: conn.ServiceType,
		Category:    conn.Category,
		ZoneCode:    conn.ZoneCode,
	}, now)
	if err != nil {
		return nil, err
	}
	in.Plan = plan

	breakdown, err := billing.Itemize(in)
	if err != nil {
		return nil, err
	}

	previous, err := s.billRepo.PreviousOutstanding(ctx, conn.ID)
	if err != nil {
		return nil, err
	}

	bill := &domain.Bill{
		ID:                  uuid.New(),
		ConnectionID:        conn.ID,
		PeriodStart:         periodStart,
		PeriodEnd:           now,
		ReadingID:           readingID,
		UnitsConsumed:       breakdown.UnitsConsumed,
		BillableUnits:       breakdown.BillableUnits,
		BaseCharge:          breakdown.BaseCharge,
		SubTotal:            breakdown.SubTotal,
		SubsidyAmount:       breakdown.SubsidyAmount,
		TotalAmount:         billing.Total(breakdown.SubTotal, decimal.Zero, decimal.Zero),
		PreviousOutstanding: previous,
		DueDate:             now.AddDate(0, 0, s.cfg.DueDays),
		Status:              domain.BillGenerated,
		Items:               breakdown.Items,
	}
	bill.Recompute(now)

	conn.AdvanceBillingDates(now)
	if err := s.billRepo.Create(ctx, bill, conn); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Kind:         domain.EventBillGenerated,
		ConnectionID: conn.ID,
		OccurredAt:   now,
		Data: map[string]string{
			"bill_number":       bill.BillNumber,
			"connection_number": conn.ConnectionNumber,
			"owner_email":       conn.OwnerEmail,
			"owner_name":        conn.OwnerName,
			"total_amount":      bill.TotalAmount.StringFixed(2),
			"due_date":          bill.DueDate.Format("2006-01-02"),
		},
	})
	return bill, nil
}

func (s *billingService) GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, err := s.connRepo.GetByID(ctx, bill.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, domain.ErrForbidden
	}

	// A consumer opening their bill advances it to viewed.
	if actor.Role == domain.RoleCitizen && (bill.Status == domain.BillGenerated || bill.Status == domain.BillSent) {
		bill.MarkViewed()
		if err := s.billRepo.Update(ctx, bill); err != nil {
			s.log.Warn("marking bill viewed",
				zap.String("bill_id", bill.ID.String()), zap.Error(err))
		}
	}
	return bill, nil
}

func (s *billingService) ListByConnection(ctx context.Context, actor authz.Actor, connectionID uuid.UUID, offset, limit int) ([]domain.Bill, int, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, 0, domain.ErrForbidden
	}
	return s.billRepo.ListByConnection(ctx, connectionID, offset, limit)
}

func (s *billingService) Pay(ctx context.Context, input *PayBillInput) (*domain.Bill, error) {
	if input.Amount.Sign() <= 0 {
		return nil, domain.ErrInvalidPaymentAmount
	}
	if !domain.ValidPaymentMethods[input.Method] {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.billRepo.GetByID(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	conn, err := s.connRepo.GetByID(ctx, existing.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanPay(input.Actor, conn) {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	bill, err := s.billRepo.ApplyPayment(ctx, input.BillID, func(bill *domain.Bill) (*domain.Payment, error) {
		if bill.Status == domain.BillCancelled {
			return nil, domain.ErrBillNotPayable
		}

		// An untaken rebate applies when this payment settles the
		// rebated total in full inside the early-payment window.
		if bill.RebateAmount.IsZero() {
			candidate := billing.EarlyRebate(bill.SubTotal, s.cfg.RebatePercent, bill.DueDate, now, s.cfg.RebateWindowMonths)
			if candidate.Sign() > 0 {
				rebatedTotal := billing.Total(bill.SubTotal, bill.PenaltyAmount, candidate)
				rebatedOutstanding := rebatedTotal.Add(bill.PreviousOutstanding).Sub(bill.PaidAmount)
				if input.Amount.GreaterThanOrEqual(rebatedOutstanding) {
					bill.RebateAmount = candidate
					bill.TotalAmount = rebatedTotal
					bill.Recompute(now)
				}
			}
		}

		if input.Amount.GreaterThan(bill.OutstandingAmount) {
			return nil, domain.ErrOverpayment
		}

		bill.PaidAmount = bill.PaidAmount.Add(input.Amount)
		bill.Recompute(now)

		return &domain.Payment{
			ID:         uuid.New(),
			BillID:     bill.ID,
			Amount:     input.Amount,
			Method:     input.Method,
			Reference:  input.Reference,
			ReceivedAt: now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Kind:         domain.EventPaymentReceived,
		ConnectionID: bill.ConnectionID,
		OccurredAt:   now,
		Data: map[string]string{
			"bill_number":       bill.BillNumber,
			"connection_number": conn.ConnectionNumber,
			"owner_email":       conn.OwnerEmail,
			"owner_name":        conn.OwnerName,
			"amount":            input.Amount.StringFixed(2),
			"outstanding":       bill.OutstandingAmount.StringFixed(2),
		},
	})
	return bill, nil
}

func (s *billingService) ListPayments(ctx context.Context, actor authz.Actor, billID uuid.UUID) ([]domain.Payment, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	conn, err := s.connRepo.GetByID(ctx, bill.ConnectionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadConnection(actor, conn) {
		return nil, domain.ErrForbidden
	}
	return s.billRepo.ListPayments(ctx, billID)
}

func (s *billingService) MarkSent(ctx context.Context, actor authz.Actor, billID uuid.UUID) (*domain.Bill, error) {
	if !actor.Staff() {
		return nil, domain.ErrForbidden
	}
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	bill.MarkSent()
	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *billingService) Cancel(ctx context.Context, actor authz.Actor, billID uuid.UUID) (*domain.Bill, error) {
	if !actor.Staff() {
		return nil, domain.ErrForbidden
	}
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !bill.Status.Cancellable() {
		return nil, domain.ErrBillNotCancellable
	}
	bill.Status = domain.BillCancelled
	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *billingService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	bills, err := s.billRepo.ListOverdueCandidates(ctx, now, s.sweepBatch)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range bills {
		bill := &bills[i]
		penalty := billing.LatePenalty(bill.SubTotal, s.cfg.LatePenaltyRate, bill.DueDate, now)
		total := billing.Total(bill.SubTotal, penalty, bill.RebateAmount)

		before := bill.Status
		changed := !penalty.Equal(bill.PenaltyAmount) || !total.Equal(bill.TotalAmount)

		bill.PenaltyAmount = penalty
		bill.TotalAmount = total
		bill.Recompute(now)

		if !changed && bill.Status == before {
			continue
		}
		if err := s.billRepo.Update(ctx, bill); err != nil {
			s.log.Error("sweep update",
				zap.String("bill_id", bill.ID.String()), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *billingService) ListForRegister(ctx context.Context, actor authz.Actor, from, to time.Time) ([]domain.Bill, error) {
	if !actor.Staff() {
		return nil, domain.ErrForbidden
	}
	return s.billRepo.ListForRegister(ctx, from, to)
}

func (s *billingService) publish(ctx context.Context, event domain.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("publishing event",
			zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
