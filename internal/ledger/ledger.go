// Package ledger implements the balance-recalculation fold for debts. The
// fold is a pure function of a debt's original amount and its full movement
// history: replaying it any number of times over the same log yields the
// same balance and status, so recalculation is always safe to repeat.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/arvelez/debt-ledger/internal/model"
)

// Recalculate folds every movement over the debt's original amount and
// returns the outstanding balance together with the derived status.
//
// PAYMENT movements subtract their amount, ADJUSTMENT and REVERSAL
// movements add theirs, and unknown movement types are ignored. The result
// is floored at zero and rounded to two decimal places (half away from
// zero) at the cent boundary.
//
// Status derives purely from the relation between the recomputed balance
// and the original amount: equal means OPEN, zero means PAID, anything in
// between means PARTIAL.
func Recalculate(amount decimal.Decimal, movements []model.Payment) (decimal.Decimal, model.DebtStatus) {
	balance := amount
	for _, m := range movements {
		switch m.Type {
		case model.PaymentTypePayment:
			balance = balance.Sub(m.Amount)
		case model.PaymentTypeAdjustment, model.PaymentTypeReversal:
			balance = balance.Add(m.Amount)
		}
	}

	balance = balance.Round(2)
	if balance.IsNegative() {
		balance = decimal.Zero.Round(2)
	}

	return balance, StatusFor(balance, amount)
}

// StatusFor derives the debt status from an outstanding balance and the
// original amount. A zero-amount debt is OPEN, matching the
// balance-equals-amount rule before the zero-balance rule is considered.
// A balance pushed above the original amount by adjustments stays OPEN.
func StatusFor(balance, amount decimal.Decimal) model.DebtStatus {
	switch {
	case balance.Equal(amount):
		return model.DebtStatusOpen
	case balance.IsZero():
		return model.DebtStatusPaid
	case balance.IsPositive() && balance.LessThan(amount):
		return model.DebtStatusPartial
	default:
		return model.DebtStatusOpen
	}
}
