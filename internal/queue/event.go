// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// PaymentRecordedEvent is published after a ledger movement has been
// committed and the debt recalculated. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database. Monetary values travel as decimal strings.
type PaymentRecordedEvent struct {
	PaymentID  uint64 `json:"payment_id"`
	DebtID     uint64 `json:"debt_id"`
	BusinessID uint64 `json:"business_id"`
	DebtorID   uint64 `json:"debtor_id"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	Type       string `json:"type"`
	NewBalance string `json:"new_balance"`
	Status     string `json:"status"`
	RecordedAt string `json:"recorded_at"`
}
