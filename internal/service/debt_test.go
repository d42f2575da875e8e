package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

type debtFixture struct {
	debtors  *fakeDebtors
	debts    *fakeDebts
	payments *fakePayments
	svc      *DebtService
}

func newDebtFixture() debtFixture {
	debtors := newFakeDebtors()
	debts := newFakeDebts()
	payments := newFakePayments(debts)
	return debtFixture{
		debtors:  debtors,
		debts:    debts,
		payments: payments,
		svc:      NewDebtService(debts, debtors, payments, nil),
	}
}

func (f debtFixture) seedDebtor(t *testing.T, businessID uint64, name string) model.Debtor {
	t.Helper()
	d := model.Debtor{BusinessID: businessID, Name: name}
	require.NoError(t, f.debtors.Create(context.Background(), &d))
	return d
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateDebt(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{
		DebtorID:    debtor.ID,
		Amount:      money("100.005"),
		Description: "groceries",
	})
	require.NoError(t, err)
	require.True(t, money("100.01").Equal(d.Amount)) // rounded to cents
	require.True(t, d.Amount.Equal(d.Balance))
	require.Equal(t, model.DebtStatusOpen, d.Status)
	require.Equal(t, uint64(7), d.CreatedBy)
}

func TestCreateDebtValidation(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	mine := f.seedDebtor(t, 1, "Ana")
	theirs := f.seedDebtor(t, 2, "Luis")

	_, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: mine.ID, Amount: money("0")})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: mine.ID, Amount: money("-5")})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: 999, Amount: money("10")})
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: theirs.ID, Amount: money("10")})
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestDebtLedgerLifecycle(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: debtor.ID, Amount: money("100")})
	require.NoError(t, err)

	p, debt, err := f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("60"), Method: "CASH"})
	require.NoError(t, err)
	require.True(t, money("40").Equal(debt.Balance))
	require.Equal(t, model.DebtStatusPartial, debt.Status)
	require.WithinDuration(t, time.Now().UTC(), p.PaymentDate, time.Minute)

	_, debt, err = f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("40"), Method: "CASH"})
	require.NoError(t, err)
	require.True(t, debt.Balance.IsZero())
	require.Equal(t, model.DebtStatusPaid, debt.Status)

	// A reversal re-opens a paid debt.
	_, debt, err = f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("60"), Type: "REVERSAL", Note: "bounced cheque"})
	require.NoError(t, err)
	require.True(t, money("60").Equal(debt.Balance))
	require.Equal(t, model.DebtStatusPartial, debt.Status)

	payments, err := f.svc.ListPayments(ctx, 1, d.ID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	require.Equal(t, model.PaymentTypeReversal, payments[0].Type) // newest first
}

func TestRecordPaymentOverpaymentFloorsAtZero(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: debtor.ID, Amount: money("50")})
	require.NoError(t, err)

	_, debt, err := f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("80")})
	require.NoError(t, err)
	require.True(t, debt.Balance.IsZero())
	require.Equal(t, model.DebtStatusPaid, debt.Status)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: debtor.ID, Amount: money("100")})
	require.NoError(t, err)

	_, _, err = f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("0")})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("10"), Type: "GIFT"})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// Debts of other businesses read as not found.
	_, _, err = f.svc.RecordPayment(ctx, 2, 7, d.ID, RecordPaymentInput{Amount: money("10")})
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Nothing was appended by the rejected attempts.
	payments, err := f.svc.ListPayments(ctx, 1, d.ID)
	require.NoError(t, err)
	require.Empty(t, payments)
}

func TestOverrideStatusThenRecalculate(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: debtor.ID, Amount: money("100")})
	require.NoError(t, err)
	_, _, err = f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("30")})
	require.NoError(t, err)

	zero := money("0")
	forced, err := f.svc.OverrideStatus(ctx, 1, d.ID, "PAID", &zero)
	require.NoError(t, err)
	require.Equal(t, model.DebtStatusPaid, forced.Status)
	require.True(t, forced.Balance.IsZero())

	// Recalculation replays the ledger and wins over the override.
	derived, err := f.svc.Recalculate(ctx, 1, d.ID)
	require.NoError(t, err)
	require.True(t, money("70").Equal(derived.Balance))
	require.Equal(t, model.DebtStatusPartial, derived.Status)
}

func TestOverrideStatusValidation(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: debtor.ID, Amount: money("100")})
	require.NoError(t, err)

	_, err = f.svc.OverrideStatus(ctx, 1, d.ID, "SETTLED", nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	neg := money("-1")
	_, err = f.svc.OverrideStatus(ctx, 1, d.ID, "PAID", &neg)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListByDebtorScoped(t *testing.T) {
	f := newDebtFixture()
	ctx := context.Background()
	mine := f.seedDebtor(t, 1, "Ana")
	theirs := f.seedDebtor(t, 2, "Luis")

	_, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: mine.ID, Amount: money("10")})
	require.NoError(t, err)

	debts, err := f.svc.ListByDebtor(ctx, 1, mine.ID)
	require.NoError(t, err)
	require.Len(t, debts, 1)

	_, err = f.svc.ListByDebtor(ctx, 1, theirs.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

type recordingPublisher struct {
	payments []model.Payment
	debts    []model.Debt
}

func (r *recordingPublisher) PublishPaymentRecorded(_ context.Context, p model.Payment, d model.Debt) error {
	r.payments = append(r.payments, p)
	r.debts = append(r.debts, d)
	return nil
}

func TestRecordPaymentPublishesEvent(t *testing.T) {
	f := newDebtFixture()
	pub := &recordingPublisher{}
	f.svc.Events = pub
	ctx := context.Background()
	debtor := f.seedDebtor(t, 1, "Ana")

	d, err := f.svc.Create(ctx, 1, 7, CreateDebtInput{DebtorID: debtor.ID, Amount: money("100")})
	require.NoError(t, err)
	p, debt, err := f.svc.RecordPayment(ctx, 1, 7, d.ID, RecordPaymentInput{Amount: money("25")})
	require.NoError(t, err)

	require.Len(t, pub.payments, 1)
	require.Equal(t, p.ID, pub.payments[0].ID)
	require.True(t, debt.Balance.Equal(pub.debts[0].Balance))
	// The event carries a real recording time, not the zero value.
	require.False(t, pub.payments[0].PaymentDate.IsZero())
}
