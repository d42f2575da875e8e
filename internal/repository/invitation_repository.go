package repository

import (
	"context"
	"database/sql"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// InvitationRepo persists invitations, looked up by their unique code.
type InvitationRepo struct{ DB *sql.DB }

func NewInvitationRepo(db *sql.DB) *InvitationRepo { return &InvitationRepo{DB: db} }

const invitationCols = "id, business_id, debtor_id, code, email, phone, status, expires_at, created_at"

func scanInvitation(rows interface{ Scan(...any) error }) (model.Invitation, error) {
	var (
		inv          model.Invitation
		debtorID     sql.NullInt64
		email, phone sql.NullString
	)
	err := rows.Scan(&inv.ID, &inv.BusinessID, &debtorID, &inv.Code, &email, &phone,
		&inv.Status, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return model.Invitation{}, err
	}
	inv.DebtorID = uint64Ptr(debtorID)
	inv.Email = strOrEmpty(email)
	inv.Phone = strOrEmpty(phone)
	return inv, nil
}

// Create inserts an invitation and populates its generated ID.
func (r *InvitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO invitations (business_id, debtor_id, code, email, phone, status, expires_at) VALUES (?,?,?,?,?,?,?)",
		inv.BusinessID, nullUint64(inv.DebtorID), inv.Code, nullStr(inv.Email), nullStr(inv.Phone), inv.Status, inv.ExpiresAt)
	if err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("invitation code collision, retry")
		}
		return apperr.Internal("create invitation failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create invitation failed", err)
	}
	inv.ID = uint64(id)
	return nil
}

// GetByCode fetches an invitation by its unique code.
func (r *InvitationRepo) GetByCode(ctx context.Context, code string) (model.Invitation, error) {
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx,
		"SELECT "+invitationCols+" FROM invitations WHERE code=? LIMIT 1", code))
	if err == sql.ErrNoRows {
		return model.Invitation{}, apperr.NotFound("invalid invitation code")
	}
	if err != nil {
		return model.Invitation{}, apperr.Internal("query invitation failed", err)
	}
	return inv, nil
}

// MarkAccepted flips an invitation to ACCEPTED. The caller is responsible
// for the already-used and expiry checks.
func (r *InvitationRepo) MarkAccepted(ctx context.Context, code string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invitations SET status=? WHERE code=?", model.InvitationStatusAccepted, code)
	if err != nil {
		return apperr.Internal("update invitation failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("invalid invitation code")
	}
	return nil
}

// ListByBusiness returns a business's invitations newest first.
func (r *InvitationRepo) ListByBusiness(ctx context.Context, businessID uint64) ([]model.Invitation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+invitationCols+" FROM invitations WHERE business_id=? ORDER BY created_at DESC", businessID)
	if err != nil {
		return nil, apperr.Internal("query invitations failed", err)
	}
	defer rows.Close()

	var out []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, apperr.Internal("scan invitation failed", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query invitations failed", err)
	}
	return out, nil
}
