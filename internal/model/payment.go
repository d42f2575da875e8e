package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType classifies a ledger movement. The ledger is append-only:
// corrections are expressed as new ADJUSTMENT or REVERSAL rows, never by
// editing or deleting prior rows.
type PaymentType string

const (
	PaymentTypePayment    PaymentType = "PAYMENT"    // subtracts from the balance
	PaymentTypeAdjustment PaymentType = "ADJUSTMENT" // adds to the balance
	PaymentTypeReversal   PaymentType = "REVERSAL"   // adds to the balance (undoes a payment)
)

// ValidPaymentType reports whether s names a known movement type.
func ValidPaymentType(s string) bool {
	switch PaymentType(s) {
	case PaymentTypePayment, PaymentTypeAdjustment, PaymentTypeReversal:
		return true
	}
	return false
}

// Payment is an immutable ledger movement against one debt, stored in the
// `payments` table. Amount is always positive; the movement type decides
// the sign applied during recalculation.
//
// Fields:
//  ID          – primary key identifier.
//  DebtID      – debt the movement applies to.
//  Amount      – positive movement amount.
//  Method      – payment method label (CASH, TRANSFER, ...).
//  Type        – PAYMENT, ADJUSTMENT or REVERSAL.
//  Note        – free-form note (may be empty).
//  CreatedBy   – user who recorded the movement.
//  PaymentDate – when the movement was recorded.
type Payment struct {
	ID          uint64          // payments.id
	DebtID      uint64          // payments.debt_id
	Amount      decimal.Decimal // payments.amount DECIMAL(12,2)
	Method      string          // payments.method
	Type        PaymentType     // payments.type
	Note        string          // payments.note
	CreatedBy   uint64          // payments.created_by
	PaymentDate time.Time       // payments.payment_date
}
