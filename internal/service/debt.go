package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/logger"
	"github.com/arvelez/debt-ledger/internal/model"
)

// DebtService owns the debt lifecycle and the movement ledger. The ledger
// is append-only; balance and status are always recomputed from the full
// movement history, never edited incrementally.
type DebtService struct {
	Debts    DebtStore
	Debtors  DebtorStore
	Payments PaymentStore
	Events   EventPublisher // optional; nil disables publishing
}

func NewDebtService(debts DebtStore, debtors DebtorStore, payments PaymentStore, events EventPublisher) *DebtService {
	return &DebtService{Debts: debts, Debtors: debtors, Payments: payments, Events: events}
}

// CreateDebtInput carries the creation form. Amount is the original
// principal, already parsed into a decimal.
type CreateDebtInput struct {
	DebtorID    uint64
	Amount      decimal.Decimal
	Description string
	DueDate     *time.Time
}

// Create issues a new debt against a debtor of the business. The amount is
// rounded to cents, the balance starts equal to the amount and the status
// starts OPEN. Debtors of other businesses are refused.
func (s *DebtService) Create(ctx context.Context, businessID, createdBy uint64, in CreateDebtInput) (model.Debt, error) {
	if !in.Amount.IsPositive() {
		return model.Debt{}, apperr.Validation("amount must be positive")
	}

	debtor, err := s.Debtors.GetByID(ctx, in.DebtorID)
	if err != nil {
		return model.Debt{}, err
	}
	if debtor.BusinessID != businessID {
		return model.Debt{}, apperr.Forbidden("debtor belongs to a different business")
	}

	amount := in.Amount.Round(2)
	d := model.Debt{
		BusinessID:  businessID,
		DebtorID:    debtor.ID,
		Amount:      amount,
		Balance:     amount,
		Status:      model.DebtStatusOpen,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		CreatedBy:   createdBy,
	}
	if err := s.Debts.Create(ctx, &d); err != nil {
		return model.Debt{}, err
	}
	return d, nil
}

// Get returns one debt of the business. Debts of other businesses read as
// not found.
func (s *DebtService) Get(ctx context.Context, businessID, debtID uint64) (model.Debt, error) {
	d, err := s.Debts.GetByID(ctx, debtID)
	if err != nil {
		return model.Debt{}, err
	}
	if d.BusinessID != businessID {
		return model.Debt{}, apperr.NotFound("debt not found")
	}
	return d, nil
}

// ListByBusiness returns a business's debts.
func (s *DebtService) ListByBusiness(ctx context.Context, businessID uint64) ([]model.Debt, error) {
	return s.Debts.ListByBusiness(ctx, businessID)
}

// ListByDebtor returns one debtor's debts after checking the debtor
// belongs to the business.
func (s *DebtService) ListByDebtor(ctx context.Context, businessID, debtorID uint64) ([]model.Debt, error) {
	debtor, err := s.Debtors.GetByID(ctx, debtorID)
	if err != nil {
		return nil, err
	}
	if debtor.BusinessID != businessID {
		return nil, apperr.NotFound("debtor not found")
	}
	return s.Debts.ListByDebtor(ctx, debtorID)
}

// RecordPaymentInput carries one ledger movement. Type defaults to
// PAYMENT when empty.
type RecordPaymentInput struct {
	Amount decimal.Decimal
	Method string
	Type   string
	Note   string
}

// RecordPayment appends a movement to the debt's ledger and returns the
// payment together with the recalculated debt. The movement amount must be
// positive regardless of type; the type alone decides the sign during
// recalculation.
func (s *DebtService) RecordPayment(ctx context.Context, businessID, createdBy, debtID uint64, in RecordPaymentInput) (model.Payment, model.Debt, error) {
	typ := model.PaymentTypePayment
	if in.Type != "" {
		if !model.ValidPaymentType(in.Type) {
			return model.Payment{}, model.Debt{}, apperr.Validation("invalid payment type")
		}
		typ = model.PaymentType(in.Type)
	}
	if !in.Amount.IsPositive() {
		return model.Payment{}, model.Debt{}, apperr.Validation("amount must be positive")
	}

	if _, err := s.Get(ctx, businessID, debtID); err != nil {
		return model.Payment{}, model.Debt{}, err
	}

	p := model.Payment{
		DebtID:      debtID,
		Amount:      in.Amount.Round(2),
		Method:      strings.TrimSpace(in.Method),
		Type:        typ,
		Note:        strings.TrimSpace(in.Note),
		CreatedBy:   createdBy,
		PaymentDate: time.Now().UTC(),
	}
	debt, err := s.Payments.RecordAndRecalculate(ctx, &p)
	if err != nil {
		return model.Payment{}, model.Debt{}, err
	}

	if s.Events != nil {
		if err := s.Events.PublishPaymentRecorded(ctx, p, debt); err != nil {
			logger.L().Warn("publish payment event failed",
				zap.Uint64("payment_id", p.ID),
				zap.Uint64("debt_id", debt.ID),
				zap.Error(err))
		}
	}
	return p, debt, nil
}

// ListPayments returns a debt's movements, most recent first.
func (s *DebtService) ListPayments(ctx context.Context, businessID, debtID uint64) ([]model.Payment, error) {
	if _, err := s.Get(ctx, businessID, debtID); err != nil {
		return nil, err
	}
	return s.Payments.ListByDebt(ctx, debtID)
}

// OverrideStatus sets the status, and optionally the balance, directly.
// This bypasses recalculation and exists for manual corrections only; the
// next recorded movement recomputes both from the ledger again.
func (s *DebtService) OverrideStatus(ctx context.Context, businessID, debtID uint64, status string, balance *decimal.Decimal) (model.Debt, error) {
	if !model.ValidDebtStatus(status) {
		return model.Debt{}, apperr.Validation("invalid debt status")
	}
	if balance != nil && balance.IsNegative() {
		return model.Debt{}, apperr.Validation("balance cannot be negative")
	}
	if _, err := s.Get(ctx, businessID, debtID); err != nil {
		return model.Debt{}, err
	}
	if balance != nil {
		rounded := balance.Round(2)
		balance = &rounded
	}
	return s.Debts.Override(ctx, debtID, model.DebtStatus(status), balance)
}

// Recalculate replays the debt's ledger and persists the derived balance
// and status. Replaying is idempotent.
func (s *DebtService) Recalculate(ctx context.Context, businessID, debtID uint64) (model.Debt, error) {
	if _, err := s.Get(ctx, businessID, debtID); err != nil {
		return model.Debt{}, err
	}
	return s.Payments.Recalculate(ctx, debtID)
}
