package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// DebtorRepo persists debtors. Phone and document number are unique within
// one business, and a debtor may be linked to an application user once a
// matching identity is known.
type DebtorRepo struct{ DB *sql.DB }

func NewDebtorRepo(db *sql.DB) *DebtorRepo { return &DebtorRepo{DB: db} }

const debtorCols = "id, business_id, user_id, name, phone, document_number, created_at, updated_at"

func scanDebtor(rows interface{ Scan(...any) error }) (model.Debtor, error) {
	var (
		d          model.Debtor
		userID     sql.NullInt64
		phone, doc sql.NullString
	)
	err := rows.Scan(&d.ID, &d.BusinessID, &userID, &d.Name, &phone, &doc, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Debtor{}, err
	}
	d.UserID = uint64Ptr(userID)
	d.Phone = strOrEmpty(phone)
	d.DocumentNumber = strOrEmpty(doc)
	return d, nil
}

// Create inserts a debtor and populates its generated ID.
func (r *DebtorRepo) Create(ctx context.Context, d *model.Debtor) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO debtors (business_id, user_id, name, phone, document_number) VALUES (?,?,?,?,?)",
		d.BusinessID, nullUint64(d.UserID), d.Name, nullStr(d.Phone), nullStr(d.DocumentNumber))
	if err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("a debtor with these details already exists in this business")
		}
		return apperr.Internal("create debtor failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create debtor failed", err)
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a debtor by primary key.
func (r *DebtorRepo) GetByID(ctx context.Context, id uint64) (model.Debtor, error) {
	d, err := scanDebtor(r.DB.QueryRowContext(ctx,
		"SELECT "+debtorCols+" FROM debtors WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Debtor{}, apperr.NotFound("debtor not found")
	}
	if err != nil {
		return model.Debtor{}, apperr.Internal("query debtor failed", err)
	}
	return d, nil
}

// ListByBusiness returns a business's debtors newest first.
func (r *DebtorRepo) ListByBusiness(ctx context.Context, businessID uint64) ([]model.Debtor, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+debtorCols+" FROM debtors WHERE business_id=? ORDER BY created_at DESC", businessID)
	if err != nil {
		return nil, apperr.Internal("query debtors failed", err)
	}
	defer rows.Close()

	var out []model.Debtor
	for rows.Next() {
		d, err := scanDebtor(rows)
		if err != nil {
			return nil, apperr.Internal("scan debtor failed", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query debtors failed", err)
	}
	return out, nil
}

// FindCollision looks for an existing debtor of the same business sharing
// a non-empty phone or document number. Used before creation to report
// duplicates with a clear message instead of a bare unique-key error.
func (r *DebtorRepo) FindCollision(ctx context.Context, businessID uint64, phone, documentNumber string) (model.Debtor, error) {
	conds := make([]string, 0, 2)
	args := []any{businessID}
	if phone != "" {
		conds = append(conds, "phone=?")
		args = append(args, phone)
	}
	if documentNumber != "" {
		conds = append(conds, "document_number=?")
		args = append(args, documentNumber)
	}
	if len(conds) == 0 {
		return model.Debtor{}, apperr.NotFound("debtor not found")
	}
	d, err := scanDebtor(r.DB.QueryRowContext(ctx,
		"SELECT "+debtorCols+" FROM debtors WHERE business_id=? AND ("+strings.Join(conds, " OR ")+") LIMIT 1",
		args...))
	if err == sql.ErrNoRows {
		return model.Debtor{}, apperr.NotFound("debtor not found")
	}
	if err != nil {
		return model.Debtor{}, apperr.Internal("query debtor failed", err)
	}
	return d, nil
}

// Update persists mutable debtor fields.
func (r *DebtorRepo) Update(ctx context.Context, d *model.Debtor) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE debtors SET name=?, phone=?, document_number=?, updated_at=NOW() WHERE id=?",
		d.Name, nullStr(d.Phone), nullStr(d.DocumentNumber), d.ID)
	if err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("a debtor with these details already exists in this business")
		}
		return apperr.Internal("update debtor failed", err)
	}
	return nil
}

// Delete removes a debtor row.
func (r *DebtorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM debtors WHERE id=?", id)
	if err != nil {
		return apperr.Internal("delete debtor failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("debtor not found")
	}
	return nil
}

// LinkUser attaches an application user to a debtor.
func (r *DebtorRepo) LinkUser(ctx context.Context, debtorID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE debtors SET user_id=?, updated_at=NOW() WHERE id=?", userID, debtorID)
	if err != nil {
		return apperr.Internal("link debtor failed", err)
	}
	return nil
}

// LinkMatchingToUser attaches the user to every unlinked debtor whose phone
// or document number matches. Called after user registration so existing
// debtor records follow the new account. Returns how many rows were linked.
func (r *DebtorRepo) LinkMatchingToUser(ctx context.Context, userID uint64, phone, documentNumber string) (int64, error) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 3)
	args = append(args, userID)
	if phone != "" {
		conds = append(conds, "phone=?")
		args = append(args, phone)
	}
	if documentNumber != "" {
		conds = append(conds, "document_number=?")
		args = append(args, documentNumber)
	}
	if len(conds) == 0 {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE debtors SET user_id=?, updated_at=NOW() WHERE user_id IS NULL AND ("+strings.Join(conds, " OR ")+")",
		args...)
	if err != nil {
		return 0, apperr.Internal("link debtors failed", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
