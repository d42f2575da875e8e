package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/ledger"
	"github.com/arvelez/debt-ledger/internal/model"
)

// PaymentRepo persists ledger movements and owns the recalculation
// transaction. Movements are append-only: there is no update or delete.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentCols = "id, debt_id, amount, method, type, note, created_by, payment_date"

func scanPayment(rows interface{ Scan(...any) error }) (model.Payment, error) {
	var (
		p    model.Payment
		note sql.NullString
	)
	err := rows.Scan(&p.ID, &p.DebtID, &p.Amount, &p.Method, &p.Type, &note, &p.CreatedBy, &p.PaymentDate)
	if err != nil {
		return model.Payment{}, err
	}
	p.Note = strOrEmpty(note)
	return p, nil
}

// RecordAndRecalculate appends the movement and replays the debt's full
// movement history inside one transaction. The debt row is locked with
// SELECT ... FOR UPDATE so concurrent movements against the same debt
// serialize deterministically; movements against different debts proceed
// independently. The updated debt is returned.
func (r *PaymentRepo) RecordAndRecalculate(ctx context.Context, p *model.Payment) (model.Debt, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Debt{}, apperr.Internal("begin transaction failed", err)
	}
	defer func() { _ = tx.Rollback() }()

	debt, err := scanDebt(tx.QueryRowContext(ctx,
		"SELECT "+debtCols+" FROM debts WHERE id=? FOR UPDATE", p.DebtID))
	if err == sql.ErrNoRows {
		return model.Debt{}, apperr.NotFound("debt not found")
	}
	if err != nil {
		return model.Debt{}, apperr.Internal("query debt failed", err)
	}

	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO payments (debt_id, amount, method, type, note, created_by, payment_date) VALUES (?,?,?,?,?,?,?)",
		p.DebtID, p.Amount, p.Method, p.Type, nullStr(p.Note), p.CreatedBy, p.PaymentDate)
	if err != nil {
		return model.Debt{}, apperr.Internal("create payment failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Debt{}, apperr.Internal("create payment failed", err)
	}
	p.ID = uint64(id)

	movements, err := listPaymentsTx(ctx, tx, p.DebtID)
	if err != nil {
		return model.Debt{}, err
	}

	balance, status := ledger.Recalculate(debt.Amount, movements)
	if _, err := tx.ExecContext(ctx,
		"UPDATE debts SET balance=?, status=?, updated_at=NOW() WHERE id=?",
		balance, status, debt.ID); err != nil {
		return model.Debt{}, apperr.Internal("update debt failed", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Debt{}, apperr.Internal("commit payment failed", err)
	}

	debt.Balance = balance
	debt.Status = status
	return debt, nil
}

// Recalculate replays the debt's movement history without appending
// anything. Replaying is idempotent, so this is safe to call at any time.
func (r *PaymentRepo) Recalculate(ctx context.Context, debtID uint64) (model.Debt, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Debt{}, apperr.Internal("begin transaction failed", err)
	}
	defer func() { _ = tx.Rollback() }()

	debt, err := scanDebt(tx.QueryRowContext(ctx,
		"SELECT "+debtCols+" FROM debts WHERE id=? FOR UPDATE", debtID))
	if err == sql.ErrNoRows {
		return model.Debt{}, apperr.NotFound("debt not found")
	}
	if err != nil {
		return model.Debt{}, apperr.Internal("query debt failed", err)
	}

	movements, err := listPaymentsTx(ctx, tx, debtID)
	if err != nil {
		return model.Debt{}, err
	}

	balance, status := ledger.Recalculate(debt.Amount, movements)
	if _, err := tx.ExecContext(ctx,
		"UPDATE debts SET balance=?, status=?, updated_at=NOW() WHERE id=?",
		balance, status, debt.ID); err != nil {
		return model.Debt{}, apperr.Internal("update debt failed", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Debt{}, apperr.Internal("commit recalculation failed", err)
	}

	debt.Balance = balance
	debt.Status = status
	return debt, nil
}

func listPaymentsTx(ctx context.Context, tx *sql.Tx, debtID uint64) ([]model.Payment, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE debt_id=? ORDER BY payment_date ASC, id ASC", debtID)
	if err != nil {
		return nil, apperr.Internal("query payments failed", err)
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, apperr.Internal("scan payment failed", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query payments failed", err)
	}
	return out, nil
}

// ListByDebt returns a debt's movements, most recent first.
func (r *PaymentRepo) ListByDebt(ctx context.Context, debtID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE debt_id=? ORDER BY payment_date DESC, id DESC", debtID)
	if err != nil {
		return nil, apperr.Internal("query payments failed", err)
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, apperr.Internal("scan payment failed", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query payments failed", err)
	}
	return out, nil
}
