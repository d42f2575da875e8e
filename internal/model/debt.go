package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus is the lifecycle state of a debt. It is derived from the
// relation between the recomputed balance and the original amount, except
// through the manual override operation. PAID is not terminal: a REVERSAL
// movement can re-open a debt.
type DebtStatus string

const (
	DebtStatusOpen    DebtStatus = "OPEN"    // balance equals the original amount
	DebtStatusPartial DebtStatus = "PARTIAL" // 0 < balance < original amount
	DebtStatusPaid    DebtStatus = "PAID"    // balance is zero
)

// ValidDebtStatus reports whether s names a known debt status.
func ValidDebtStatus(s string) bool {
	switch DebtStatus(s) {
	case DebtStatusOpen, DebtStatusPartial, DebtStatusPaid:
		return true
	}
	return false
}

// Debt represents a row in the `debts` table. Amount is the original
// principal and is immutable after creation. Balance is the current
// outstanding amount and is only ever written by the recalculation fold or
// by the explicit status-override operation. All monetary columns are
// DECIMAL(12,2); they are never represented as binary floating point.
//
// Fields:
//  ID          – primary key identifier.
//  BusinessID  – business the debt belongs to.
//  DebtorID    – debtor the debt is issued against.
//  Amount      – original principal (immutable).
//  Balance     – current outstanding amount (derived).
//  Status      – OPEN, PARTIAL or PAID.
//  Description – free-form description (may be empty).
//  DueDate     – optional due date.
//  CreatedBy   – user who created the debt.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Debt struct {
	ID          uint64          // debts.id
	BusinessID  uint64          // debts.business_id
	DebtorID    uint64          // debts.debtor_id
	Amount      decimal.Decimal // debts.amount DECIMAL(12,2)
	Balance     decimal.Decimal // debts.balance DECIMAL(12,2)
	Status      DebtStatus      // debts.status
	Description string          // debts.description
	DueDate     *time.Time      // debts.due_date (nullable)
	CreatedBy   uint64          // debts.created_by
	CreatedAt   time.Time       // debts.created_at
	UpdatedAt   time.Time       // debts.updated_at
}
