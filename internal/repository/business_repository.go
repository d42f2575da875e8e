package repository

import (
	"context"
	"database/sql"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// BusinessRepo persists businesses. Creation is transactional: the business
// row and the owner's ADMIN membership are inserted atomically so a
// business without a membership is never observable.
type BusinessRepo struct{ DB *sql.DB }

func NewBusinessRepo(db *sql.DB) *BusinessRepo { return &BusinessRepo{DB: db} }

const businessCols = "id, owner_id, name, address, currency, created_at, updated_at"

func scanBusiness(rows interface{ Scan(...any) error }) (model.Business, error) {
	var (
		b       model.Business
		address sql.NullString
	)
	err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &address, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Business{}, err
	}
	b.Address = strOrEmpty(address)
	return b, nil
}

// CreateWithOwner inserts the business and the owner's ADMIN membership in
// one transaction. Partial application is rolled back.
func (r *BusinessRepo) CreateWithOwner(ctx context.Context, b *model.Business) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal("begin transaction failed", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO businesses (owner_id, name, address, currency) VALUES (?,?,?,?)",
		b.OwnerID, b.Name, nullStr(b.Address), b.Currency)
	if err != nil {
		return apperr.Internal("create business failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create business failed", err)
	}
	b.ID = uint64(id)

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO business_users (business_id, user_id, role) VALUES (?,?,?)",
		b.ID, b.OwnerID, model.BusinessRoleAdmin); err != nil {
		return apperr.Internal("create owner membership failed", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("commit business creation failed", err)
	}
	return nil
}

// GetByID fetches a business by primary key.
func (r *BusinessRepo) GetByID(ctx context.Context, id uint64) (model.Business, error) {
	b, err := scanBusiness(r.DB.QueryRowContext(ctx,
		"SELECT "+businessCols+" FROM businesses WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Business{}, apperr.NotFound("business not found")
	}
	if err != nil {
		return model.Business{}, apperr.Internal("query business failed", err)
	}
	return b, nil
}

// ListForUser returns the businesses a user owns or is a member of, newest
// first.
func (r *BusinessRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Business, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+businessCols+` FROM businesses b
		 WHERE b.owner_id=? OR EXISTS (
		   SELECT 1 FROM business_users m WHERE m.business_id=b.id AND m.user_id=?)
		 ORDER BY b.created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, apperr.Internal("query businesses failed", err)
	}
	defer rows.Close()

	var out []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, apperr.Internal("scan business failed", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query businesses failed", err)
	}
	return out, nil
}

// Update persists mutable business fields.
func (r *BusinessRepo) Update(ctx context.Context, b *model.Business) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE businesses SET name=?, address=?, currency=?, updated_at=NOW() WHERE id=?",
		b.Name, nullStr(b.Address), b.Currency, b.ID)
	if err != nil {
		return apperr.Internal("update business failed", err)
	}
	return nil
}
