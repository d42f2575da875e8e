package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// DebtRepo persists debts. Balance and status are written by the
// recalculation flow in PaymentRepo and by the explicit Override method;
// nothing else touches them.
type DebtRepo struct{ DB *sql.DB }

func NewDebtRepo(db *sql.DB) *DebtRepo { return &DebtRepo{DB: db} }

const debtCols = "id, business_id, debtor_id, amount, balance, status, description, due_date, created_by, created_at, updated_at"

func scanDebt(rows interface{ Scan(...any) error }) (model.Debt, error) {
	var (
		d           model.Debt
		description sql.NullString
		dueDate     sql.NullTime
	)
	err := rows.Scan(&d.ID, &d.BusinessID, &d.DebtorID, &d.Amount, &d.Balance,
		&d.Status, &description, &dueDate, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Debt{}, err
	}
	d.Description = strOrEmpty(description)
	d.DueDate = timePtr(dueDate)
	return d, nil
}

// Create inserts a debt and populates its generated ID. Callers must have
// initialized balance and status (balance = amount, status = OPEN).
func (r *DebtRepo) Create(ctx context.Context, d *model.Debt) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO debts (business_id, debtor_id, amount, balance, status, description, due_date, created_by) VALUES (?,?,?,?,?,?,?,?)",
		d.BusinessID, d.DebtorID, d.Amount, d.Balance, d.Status, nullStr(d.Description), nullTime(d.DueDate), d.CreatedBy)
	if err != nil {
		return apperr.Internal("create debt failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create debt failed", err)
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a debt by primary key.
func (r *DebtRepo) GetByID(ctx context.Context, id uint64) (model.Debt, error) {
	d, err := scanDebt(r.DB.QueryRowContext(ctx,
		"SELECT "+debtCols+" FROM debts WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Debt{}, apperr.NotFound("debt not found")
	}
	if err != nil {
		return model.Debt{}, apperr.Internal("query debt failed", err)
	}
	return d, nil
}

// ListByBusiness returns a business's debts newest first.
func (r *DebtRepo) ListByBusiness(ctx context.Context, businessID uint64) ([]model.Debt, error) {
	return r.list(ctx, "business_id", businessID)
}

// ListByDebtor returns a debtor's debts newest first.
func (r *DebtRepo) ListByDebtor(ctx context.Context, debtorID uint64) ([]model.Debt, error) {
	return r.list(ctx, "debtor_id", debtorID)
}

func (r *DebtRepo) list(ctx context.Context, column string, id uint64) ([]model.Debt, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+debtCols+" FROM debts WHERE "+column+"=? ORDER BY created_at DESC", id)
	if err != nil {
		return nil, apperr.Internal("query debts failed", err)
	}
	defer rows.Close()

	var out []model.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, apperr.Internal("scan debt failed", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query debts failed", err)
	}
	return out, nil
}

// Override sets the status directly and optionally overrides the balance,
// bypassing recalculation. This is the one sanctioned exception to
// "balance is derived", used for manual corrections. The updated debt is
// returned.
func (r *DebtRepo) Override(ctx context.Context, id uint64, status model.DebtStatus, balance *decimal.Decimal) (model.Debt, error) {
	var (
		res sql.Result
		err error
	)
	if balance != nil {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE debts SET status=?, balance=?, updated_at=NOW() WHERE id=?", status, *balance, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE debts SET status=?, updated_at=NOW() WHERE id=?", status, id)
	}
	if err != nil {
		return model.Debt{}, apperr.Internal("update debt failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update,
		// so confirm absence with a read.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return model.Debt{}, getErr
		}
	}
	return r.GetByID(ctx, id)
}
