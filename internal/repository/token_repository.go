package repository

import (
	"context"
	"database/sql"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// TokenRepo persists refresh tokens. Only the bcrypt hash of a secret is
// ever stored; rows are deleted on logout and never updated in place.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

const tokenCols = "id, user_id, token_hash, device_info, expires_at, created_at"

func scanToken(rows interface{ Scan(...any) error }) (model.RefreshToken, error) {
	var (
		t      model.RefreshToken
		device sql.NullString
	)
	err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &device, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return model.RefreshToken{}, err
	}
	if device.Valid {
		d := device.String
		t.DeviceInfo = &d
	}
	return t, nil
}

// Create inserts a refresh-token row and populates its generated ID.
func (r *TokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	var device sql.NullString
	if t.DeviceInfo != nil {
		device = sql.NullString{String: *t.DeviceInfo, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, device_info, expires_at) VALUES (?,?,?,?)",
		t.UserID, t.TokenHash, device, t.ExpiresAt)
	if err != nil {
		return apperr.Internal("create refresh token failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create refresh token failed", err)
	}
	t.ID = uint64(id)
	return nil
}

// FindActive returns the newest unexpired token for exactly the given
// (user, device) pair. A nil device matches only rows stored with a NULL
// device, via MySQL's null-safe equality.
func (r *TokenRepo) FindActive(ctx context.Context, userID uint64, deviceInfo *string) (model.RefreshToken, error) {
	var device sql.NullString
	if deviceInfo != nil {
		device = sql.NullString{String: *deviceInfo, Valid: true}
	}
	t, err := scanToken(r.DB.QueryRowContext(ctx,
		"SELECT "+tokenCols+" FROM refresh_tokens WHERE user_id=? AND device_info <=> ? AND expires_at > UTC_TIMESTAMP() ORDER BY created_at DESC LIMIT 1",
		userID, device))
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, apperr.NotFound("refresh token not found")
	}
	if err != nil {
		return model.RefreshToken{}, apperr.Internal("query refresh token failed", err)
	}
	return t, nil
}

// ListActive returns the user's unexpired tokens newest first. When a
// device is given the list is narrowed to it; a nil device means any
// device, matching the refresh flow's scan semantics.
func (r *TokenRepo) ListActive(ctx context.Context, userID uint64, deviceInfo *string) ([]model.RefreshToken, error) {
	q := "SELECT " + tokenCols + " FROM refresh_tokens WHERE user_id=? AND expires_at > UTC_TIMESTAMP()"
	args := []any{userID}
	if deviceInfo != nil {
		q += " AND device_info=?"
		args = append(args, *deviceInfo)
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("query refresh tokens failed", err)
	}
	defer rows.Close()

	var out []model.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, apperr.Internal("scan refresh token failed", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query refresh tokens failed", err)
	}
	return out, nil
}

// ListByUser returns every token row for the user, expired or not. Logout
// scans this list for a hash match.
func (r *TokenRepo) ListByUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tokenCols+" FROM refresh_tokens WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, apperr.Internal("query refresh tokens failed", err)
	}
	defer rows.Close()

	var out []model.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, apperr.Internal("scan refresh token failed", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("query refresh tokens failed", err)
	}
	return out, nil
}

// Delete removes a single token row.
func (r *TokenRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE id=?", id); err != nil {
		return apperr.Internal("delete refresh token failed", err)
	}
	return nil
}

// DeleteAllForUser removes every token row for the user (logout on all
// devices).
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID); err != nil {
		return apperr.Internal("delete refresh tokens failed", err)
	}
	return nil
}
