package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

type businessFixture struct {
	users       *fakeUsers
	memberships *fakeMemberships
	businesses  *fakeBusinesses
	svc         *BusinessService
}

func newBusinessFixture() businessFixture {
	users := newFakeUsers()
	memberships := newFakeMemberships()
	businesses := newFakeBusinesses(memberships)
	return businessFixture{
		users:       users,
		memberships: memberships,
		businesses:  businesses,
		svc:         NewBusinessService(businesses, memberships, users, "COP"),
	}
}

func (f businessFixture) seedUser(t *testing.T, email string) model.User {
	t.Helper()
	u := model.User{FirstName: "U", LastName: "Ser", Email: email, PasswordHash: "x", Role: model.UserRoleOwner}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func TestCreateBusinessCreatesOwnerMembership(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")

	b, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda La 14"})
	require.NoError(t, err)
	require.NotZero(t, b.ID)
	require.Equal(t, "COP", b.Currency)

	m, err := f.memberships.Get(ctx, b.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, model.BusinessRoleAdmin, m.Role)
}

func TestCreateBusinessAtomicOnMembershipFailure(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")

	// When the owner membership cannot be written, the business row must
	// not survive either.
	f.memberships.failCreate = apperr.Internal("create membership failed", nil)
	_, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda"})
	require.Error(t, err)

	businesses, err := f.svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, businesses)
	require.Empty(t, f.businesses.rows)
	require.Empty(t, f.memberships.rows)
}

func TestCreateBusinessRequiresName(t *testing.T) {
	f := newBusinessFixture()
	_, err := f.svc.Create(context.Background(), 1, CreateBusinessInput{Name: "  "})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetBusinessRefusesNonMembers(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	stranger := f.seedUser(t, "stranger@example.com")

	b, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda"})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, b.ID, stranger.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	got, err := f.svc.Get(ctx, b.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
}

func TestUpdateBusinessOwnerOnly(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	member := f.seedUser(t, "member@example.com")

	b, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda"})
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "member@example.com", Role: "ADMIN"})
	require.NoError(t, err)

	name := "Tienda Nueva"
	_, err = f.svc.Update(ctx, b.ID, member.ID, UpdateBusinessInput{Name: &name})
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	updated, err := f.svc.Update(ctx, b.ID, owner.ID, UpdateBusinessInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Tienda Nueva", updated.Name)
}

func TestAddMember(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	member := f.seedUser(t, "member@example.com")

	b, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda"})
	require.NoError(t, err)

	m, err := f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "member@example.com"})
	require.NoError(t, err)
	require.Equal(t, member.ID, m.UserID)
	require.Equal(t, model.BusinessRoleViewer, m.Role) // default

	// Adding the same user twice can never succeed.
	_, err = f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "member@example.com"})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "ghost@example.com"})
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "member@example.com", Role: "SUPREME"})
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestOwnerMembershipIsProtected(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	admin := f.seedUser(t, "admin@example.com")

	b, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda"})
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "admin@example.com", Role: "ADMIN"})
	require.NoError(t, err)

	ownerMember, err := f.memberships.Get(ctx, b.ID, owner.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateMemberRole(ctx, b.ID, ownerMember.ID, admin.ID, "VIEWER")
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = f.svc.RemoveMember(ctx, b.ID, ownerMember.ID, admin.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// The owner's membership is still intact.
	_, err = f.memberships.GetByID(ctx, ownerMember.ID)
	require.NoError(t, err)
}

func TestOwnMembershipIsProtected(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	admin := f.seedUser(t, "admin@example.com")

	b, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda"})
	require.NoError(t, err)
	adminMember, err := f.svc.AddMember(ctx, b.ID, AddMemberInput{Identifier: "admin@example.com", Role: "ADMIN"})
	require.NoError(t, err)

	_, err = f.svc.UpdateMemberRole(ctx, b.ID, adminMember.ID, admin.ID, "VIEWER")
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = f.svc.RemoveMember(ctx, b.ID, adminMember.ID, admin.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// The owner may re-role and remove the admin.
	updated, err := f.svc.UpdateMemberRole(ctx, b.ID, adminMember.ID, owner.ID, "CASHIER")
	require.NoError(t, err)
	require.Equal(t, model.BusinessRoleCashier, updated.Role)

	require.NoError(t, f.svc.RemoveMember(ctx, b.ID, adminMember.ID, owner.ID))
	_, err = f.memberships.GetByID(ctx, adminMember.ID)
	require.Error(t, err)
}

func TestMembershipScopedToBusiness(t *testing.T) {
	f := newBusinessFixture()
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	other := f.seedUser(t, "other@example.com")

	b1, err := f.svc.Create(ctx, owner.ID, CreateBusinessInput{Name: "Tienda 1"})
	require.NoError(t, err)
	b2, err := f.svc.Create(ctx, other.ID, CreateBusinessInput{Name: "Tienda 2"})
	require.NoError(t, err)

	m, err := f.memberships.Get(ctx, b2.ID, other.ID)
	require.NoError(t, err)

	// A membership of another business reads as not found.
	_, err = f.svc.UpdateMemberRole(ctx, b1.ID, m.ID, owner.ID, "VIEWER")
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
