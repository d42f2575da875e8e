package service

import (
	"context"
	"strings"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
	"github.com/arvelez/debt-ledger/internal/utils"
)

// UserService handles registration and account lifecycle.
type UserService struct {
	Users   UserStore
	Tokens  TokenStore
	Debtors DebtorStore

	BcryptCost int
}

func NewUserService(users UserStore, tokens TokenStore, debtors DebtorStore, bcryptCost int) *UserService {
	return &UserService{Users: users, Tokens: tokens, Debtors: debtors, BcryptCost: bcryptCost}
}

// RegisterInput carries the registration form. At least one of Email,
// Phone or DocumentNumber must be present since each doubles as a login
// identifier.
type RegisterInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	DocumentNumber string
	Password       string
	Role           string
}

// Register creates a user after checking that none of the unique keys is
// already taken. Inactivated accounts still occupy their keys, so a
// collision with one is reported the same way. After creation any existing
// unlinked debtor records matching the new user's phone or document number
// are linked to the account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)

	if in.FirstName == "" || in.LastName == "" {
		return model.User{}, apperr.Validation("first name and last name are required")
	}
	if in.Password == "" {
		return model.User{}, apperr.Validation("password is required")
	}
	if in.Email == "" && in.Phone == "" && in.DocumentNumber == "" {
		return model.User{}, apperr.Validation("at least one of email, phone or document number is required")
	}

	role := model.UserRoleStaff
	if in.Role != "" {
		switch model.UserRole(in.Role) {
		case model.UserRoleOwner, model.UserRoleStaff:
			role = model.UserRole(in.Role)
		default:
			return model.User{}, apperr.Validation("invalid role")
		}
	}

	if existing, err := s.Users.FindByAnyKey(ctx, in.Email, in.Phone, in.DocumentNumber); err == nil {
		return model.User{}, apperr.Conflict("a user with this " + collidingKey(existing, in) + " already exists")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return model.User{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return model.User{}, apperr.Internal("hash password failed", err)
	}

	u := model.User{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		DocumentNumber: in.DocumentNumber,
		PasswordHash:   hash,
		Role:           role,
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}

	// Existing debtor records created before the account follow it now.
	if in.Phone != "" || in.DocumentNumber != "" {
		if _, err := s.Debtors.LinkMatchingToUser(ctx, u.ID, in.Phone, in.DocumentNumber); err != nil {
			return model.User{}, err
		}
	}
	return u, nil
}

// collidingKey names the field the registration collided on, preferring
// the most specific match.
func collidingKey(existing model.User, in RegisterInput) string {
	switch {
	case in.Email != "" && existing.Email == in.Email:
		return "email"
	case in.Phone != "" && existing.Phone == in.Phone:
		return "phone"
	default:
		return "document number"
	}
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	return s.Users.GetByID(ctx, id)
}

// UpdateProfileInput carries optional profile changes. Nil pointers mean
// "leave unchanged".
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfile applies the non-nil fields and persists the user.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, in UpdateProfileInput) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" {
			return model.User{}, apperr.Validation("first name cannot be empty")
		}
		u.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if v == "" {
			return model.User{}, apperr.Validation("last name cannot be empty")
		}
		u.LastName = v
	}
	if in.Password != nil {
		if *in.Password == "" {
			return model.User{}, apperr.Validation("password cannot be empty")
		}
		hash, err := utils.HashPassword(*in.Password, s.BcryptCost)
		if err != nil {
			return model.User{}, apperr.Internal("hash password failed", err)
		}
		u.PasswordHash = hash
	}
	if err := s.Users.Update(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Inactivate soft-deletes the account and revokes every refresh session.
// The unique keys stay occupied so nobody can register over the identity.
func (s *UserService) Inactivate(ctx context.Context, id uint64) error {
	if err := s.Users.Inactivate(ctx, id); err != nil {
		return err
	}
	return s.Tokens.DeleteAllForUser(ctx, id)
}
