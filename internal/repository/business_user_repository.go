package repository

import (
	"context"
	"database/sql"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// BusinessUserRepo persists business memberships, unique on
// (business_id, user_id).
type BusinessUserRepo struct{ DB *sql.DB }

func NewBusinessUserRepo(db *sql.DB) *BusinessUserRepo { return &BusinessUserRepo{DB: db} }

const membershipCols = "id, business_id, user_id, role, created_at"

func scanMembership(rows interface{ Scan(...any) error }) (model.BusinessUser, error) {
	var m model.BusinessUser
	err := rows.Scan(&m.ID, &m.BusinessID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

// Create inserts a membership row and populates its generated ID.
func (r *BusinessUserRepo) Create(ctx context.Context, m *model.BusinessUser) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO business_users (business_id, user_id, role) VALUES (?,?,?)",
		m.BusinessID, m.UserID, m.Role)
	if err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("user already belongs to this business")
		}
		return apperr.Internal("create membership failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create membership failed", err)
	}
	m.ID = uint64(id)
	return nil
}

// Get resolves the membership of one user inside one business.
func (r *BusinessUserRepo) Get(ctx context.Context, businessID, userID uint64) (model.BusinessUser, error) {
	m, err := scanMembership(r.DB.QueryRowContext(ctx,
		"SELECT "+membershipCols+" FROM business_users WHERE business_id=? AND user_id=? LIMIT 1",
		businessID, userID))
	if err == sql.ErrNoRows {
		return model.BusinessUser{}, apperr.NotFound("membership not found")
	}
	if err != nil {
		return model.BusinessUser{}, apperr.Internal("query membership failed", err)
	}
	return m, nil
}

// GetByID fetches a membership by primary key.
func (r *BusinessUserRepo) GetByID(ctx context.Context, id uint64) (model.BusinessUser, error) {
	m, err := scanMembership(r.DB.QueryRowContext(ctx,
		"SELECT "+membershipCols+" FROM business_users WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.BusinessUser{}, apperr.NotFound("membership not found")
	}
	if err != nil {
		return model.BusinessUser{}, apperr.Internal("query membership failed", err)
	}
	return m, nil
}

// ListByBusiness returns a business's memberships newest first.
func (r *BusinessUserRepo) ListByBusiness(ctx context.Context, businessID uint64) ([]model.BusinessUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+membershipCols+" FROM business_users WHERE business_id=? ORDER BY created_at DESC",
		businessID)
	if err != nil {
		return nil, apperr.Internal("query memberships failed", err)
	}
	defer rows.Close()

	var out []model.BusinessUser
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, apperr.Internal("scan membership failed", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query memberships failed", err)
	}
	return out, nil
}

// UpdateRole changes a membership's role.
func (r *BusinessUserRepo) UpdateRole(ctx context.Context, id uint64, role model.BusinessRole) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE business_users SET role=? WHERE id=?", role, id)
	if err != nil {
		return apperr.Internal("update membership failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("membership not found")
	}
	return nil
}

// Delete removes a membership row.
func (r *BusinessUserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM business_users WHERE id=?", id)
	if err != nil {
		return apperr.Internal("delete membership failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("membership not found")
	}
	return nil
}
