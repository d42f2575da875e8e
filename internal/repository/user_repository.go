package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// UserRepo persists users. Email, phone and document number are alternate
// unique keys; lookups by identifier always exclude inactivated users while
// collision checks deliberately include them.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, first_name, last_name, email, phone, document_number, password_hash, role, inactivated_at, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u                 model.User
		email, phone, doc sql.NullString
		inactivatedAt     sql.NullTime
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &email, &phone, &doc,
		&u.PasswordHash, &u.Role, &inactivatedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Email = strOrEmpty(email)
	u.Phone = strOrEmpty(phone)
	u.DocumentNumber = strOrEmpty(doc)
	u.InactivatedAt = timePtr(inactivatedAt)
	return u, nil
}

// Create inserts a user and populates its generated ID. The password hash
// must already be computed by the caller.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, phone, document_number, password_hash, role) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, nullStr(u.Email), nullStr(u.Phone), nullStr(u.DocumentNumber), u.PasswordHash, u.Role)
	if err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("a user with one of these unique fields already exists")
		}
		return apperr.Internal("create user failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Internal("create user failed", err)
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by primary key regardless of activation state.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Internal("query user failed", err)
	}
	return u, nil
}

// GetActiveByIdentifier fetches an active (non-inactivated) user whose
// email, phone or document number equals identifier.
func (r *UserRepo) GetActiveByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE inactivated_at IS NULL AND (email=? OR phone=? OR document_number=?) LIMIT 1",
		identifier, identifier, identifier))
	if err == sql.ErrNoRows {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Internal("query user failed", err)
	}
	return u, nil
}

// FindByAnyKey returns any user (active or inactive) colliding with one of
// the provided alternate keys. Empty keys are skipped; when every key is
// empty a not-found error is returned.
func (r *UserRepo) FindByAnyKey(ctx context.Context, email, phone, documentNumber string) (model.User, error) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if email != "" {
		conds = append(conds, "email=?")
		args = append(args, email)
	}
	if phone != "" {
		conds = append(conds, "phone=?")
		args = append(args, phone)
	}
	if documentNumber != "" {
		conds = append(conds, "document_number=?")
		args = append(args, documentNumber)
	}
	if len(conds) == 0 {
		return model.User{}, apperr.NotFound("user not found")
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE "+strings.Join(conds, " OR ")+" LIMIT 1", args...))
	if err == sql.ErrNoRows {
		return model.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return model.User{}, apperr.Internal("query user failed", err)
	}
	return u, nil
}

// Update persists mutable profile fields and the password hash.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, password_hash=?, updated_at=NOW() WHERE id=?",
		u.FirstName, u.LastName, u.PasswordHash, u.ID)
	if err != nil {
		return apperr.Internal("update user failed", err)
	}
	return nil
}

// Inactivate soft-deletes a user by stamping inactivated_at. It is the
// single writer of that column.
func (r *UserRepo) Inactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET inactivated_at=NOW() WHERE id=? AND inactivated_at IS NULL", id)
	if err != nil {
		return apperr.Internal("inactivate user failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
