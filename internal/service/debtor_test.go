package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

func TestCreateDebtor(t *testing.T) {
	debtors, users := newFakeDebtors(), newFakeUsers()
	svc := NewDebtorService(debtors, users)
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, CreateDebtorInput{Name: "Ana", Phone: "3001234567"})
	require.NoError(t, err)
	require.NotZero(t, d.ID)
	require.Nil(t, d.UserID)

	_, err = svc.Create(ctx, 1, CreateDebtorInput{Name: "  "})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateDebtorDuplicatePerBusiness(t *testing.T) {
	debtors, users := newFakeDebtors(), newFakeUsers()
	svc := NewDebtorService(debtors, users)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateDebtorInput{Name: "Ana", Phone: "3001234567"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, CreateDebtorInput{Name: "Otra Ana", Phone: "3001234567"})
	require.Error(t, err)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Uniqueness is per business, not global.
	_, err = svc.Create(ctx, 2, CreateDebtorInput{Name: "Ana", Phone: "3001234567"})
	require.NoError(t, err)
}

func TestCreateDebtorLinksRegisteredUser(t *testing.T) {
	debtors, users := newFakeDebtors(), newFakeUsers()
	svc := NewDebtorService(debtors, users)
	ctx := context.Background()

	u := model.User{FirstName: "Ana", LastName: "Perez", Phone: "3001234567", PasswordHash: "x", Role: model.UserRoleStaff}
	require.NoError(t, users.Create(ctx, &u))

	d, err := svc.Create(ctx, 1, CreateDebtorInput{Name: "Ana", Phone: "3001234567"})
	require.NoError(t, err)
	require.NotNil(t, d.UserID)
	require.Equal(t, u.ID, *d.UserID)
}

func TestDebtorScopedToBusiness(t *testing.T) {
	debtors, users := newFakeDebtors(), newFakeUsers()
	svc := NewDebtorService(debtors, users)
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, CreateDebtorInput{Name: "Ana"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, d.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	name := "Ana Maria"
	_, err = svc.Update(ctx, 2, d.ID, UpdateDebtorInput{Name: &name})
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = svc.Delete(ctx, 2, d.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	updated, err := svc.Update(ctx, 1, d.ID, UpdateDebtorInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", updated.Name)

	require.NoError(t, svc.Delete(ctx, 1, d.ID))
}
