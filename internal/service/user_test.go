package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

func newUserService(users *fakeUsers, tokens *fakeTokens, debtors *fakeDebtors) *UserService {
	return NewUserService(users, tokens, debtors, bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	users, tokens, debtors := newFakeUsers(), newFakeTokens(), newFakeDebtors()
	svc := newUserService(users, tokens, debtors)

	u, err := svc.Register(context.Background(), RegisterInput{
		FirstName:      "Ana",
		LastName:       "Perez",
		Email:          "ana@example.com",
		DocumentNumber: "CC-1001",
		Password:       "s3cret",
	})
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, model.UserRoleStaff, u.Role)
	require.NotEqual(t, "s3cret", u.PasswordHash)
	require.True(t, u.Active())
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(newFakeUsers(), newFakeTokens(), newFakeDebtors())
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing names", RegisterInput{Email: "a@b.c", Password: "x"}},
		{"missing password", RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.c"}},
		{"no identifier", RegisterInput{FirstName: "A", LastName: "B", Password: "x"}},
		{"bad role", RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "x", Role: "ROOT"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			require.Error(t, err)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestRegisterCollisionIncludesInactiveUsers(t *testing.T) {
	users := newFakeUsers()
	svc := newUserService(users, newFakeTokens(), newFakeDebtors())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ana", LastName: "Perez",
		Email: "ana@example.com", Password: "s3cret",
	})
	require.NoError(t, err)
	require.NoError(t, users.Inactivate(ctx, u.ID))

	// Inactivated accounts keep their unique keys occupied.
	_, err = svc.Register(ctx, RegisterInput{
		FirstName: "Otra", LastName: "Ana",
		Email: "ana@example.com", Password: "s3cret",
	})
	require.Error(t, err)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Contains(t, err.Error(), "email")
}

func TestRegisterLinksMatchingDebtors(t *testing.T) {
	users, debtors := newFakeUsers(), newFakeDebtors()
	svc := newUserService(users, newFakeTokens(), debtors)
	ctx := context.Background()

	d := model.Debtor{BusinessID: 1, Name: "Ana Perez", Phone: "3001234567"}
	require.NoError(t, debtors.Create(ctx, &d))

	u, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ana", LastName: "Perez",
		Phone: "3001234567", Password: "s3cret",
	})
	require.NoError(t, err)

	linked, err := debtors.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	require.Equal(t, u.ID, *linked.UserID)
}

func TestUpdateProfile(t *testing.T) {
	users := newFakeUsers()
	svc := newUserService(users, newFakeTokens(), newFakeDebtors())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ana", LastName: "Perez",
		Email: "ana@example.com", Password: "s3cret",
	})
	require.NoError(t, err)
	oldHash := u.PasswordHash

	first := "Mariana"
	pass := "newpass"
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{FirstName: &first, Password: &pass})
	require.NoError(t, err)
	require.Equal(t, "Mariana", updated.FirstName)
	require.Equal(t, "Perez", updated.LastName)
	require.NotEqual(t, oldHash, updated.PasswordHash)

	empty := ""
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{FirstName: &empty})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestInactivateRevokesSessions(t *testing.T) {
	users, tokens := newFakeUsers(), newFakeTokens()
	svc := newUserService(users, tokens, newFakeDebtors())
	auth := newAuthService(users, tokens)
	ctx := context.Background()

	seedUser(t, users, "ana@example.com", "s3cret")
	login, err := auth.Login(ctx, "ana@example.com", "s3cret", nil)
	require.NoError(t, err)
	require.Len(t, tokens.rows, 1)

	require.NoError(t, svc.Inactivate(ctx, login.User.ID))
	require.Empty(t, tokens.rows)

	got, err := users.GetByID(ctx, login.User.ID)
	require.NoError(t, err)
	require.False(t, got.Active())

	require.Error(t, svc.Inactivate(ctx, login.User.ID))
}
