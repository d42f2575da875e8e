package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/ledger"
	"github.com/arvelez/debt-ledger/internal/model"
)

// In-memory stores mirroring the repository semantics, including the
// error kinds the SQL layer produces. They keep the service tests free of
// a live database.

type fakeUsers struct {
	byID   map[uint64]model.User
	nextID uint64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, e := range f.byID {
		if (u.Email != "" && e.Email == u.Email) ||
			(u.Phone != "" && e.Phone == u.Phone) ||
			(u.DocumentNumber != "" && e.DocumentNumber == u.DocumentNumber) {
			return apperr.Conflict("a user with one of these unique fields already exists")
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeUsers) GetActiveByIdentifier(_ context.Context, identifier string) (model.User, error) {
	for _, u := range f.byID {
		if u.InactivatedAt != nil {
			continue
		}
		if u.Email == identifier || u.Phone == identifier || u.DocumentNumber == identifier {
			return u, nil
		}
	}
	return model.User{}, apperr.NotFound("user not found")
}

func (f *fakeUsers) FindByAnyKey(_ context.Context, email, phone, documentNumber string) (model.User, error) {
	for _, u := range f.byID {
		if (email != "" && u.Email == email) ||
			(phone != "" && u.Phone == phone) ||
			(documentNumber != "" && u.DocumentNumber == documentNumber) {
			return u, nil
		}
	}
	return model.User{}, apperr.NotFound("user not found")
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	u.UpdatedAt = time.Now().UTC()
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) Inactivate(_ context.Context, id uint64) error {
	u, ok := f.byID[id]
	if !ok || u.InactivatedAt != nil {
		return apperr.NotFound("user not found")
	}
	now := time.Now().UTC()
	u.InactivatedAt = &now
	f.byID[id] = u
	return nil
}

type fakeTokens struct {
	rows   map[uint64]model.RefreshToken
	nextID uint64
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[uint64]model.RefreshToken{}} }

func (f *fakeTokens) Create(_ context.Context, t *model.RefreshToken) error {
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now().UTC()
	f.rows[t.ID] = *t
	return nil
}

func sameDevice(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeTokens) FindActive(_ context.Context, userID uint64, deviceInfo *string) (model.RefreshToken, error) {
	var (
		best  model.RefreshToken
		found bool
	)
	now := time.Now().UTC()
	for _, t := range f.rows {
		if t.UserID != userID || !sameDevice(t.DeviceInfo, deviceInfo) || t.Expired(now) {
			continue
		}
		if !found || t.CreatedAt.After(best.CreatedAt) {
			best, found = t, true
		}
	}
	if !found {
		return model.RefreshToken{}, apperr.NotFound("refresh token not found")
	}
	return best, nil
}

func (f *fakeTokens) ListActive(_ context.Context, userID uint64, deviceInfo *string) ([]model.RefreshToken, error) {
	now := time.Now().UTC()
	var out []model.RefreshToken
	for _, t := range f.rows {
		if t.UserID != userID || t.Expired(now) {
			continue
		}
		if deviceInfo != nil && (t.DeviceInfo == nil || *t.DeviceInfo != *deviceInfo) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTokens) ListByUser(_ context.Context, userID uint64) ([]model.RefreshToken, error) {
	var out []model.RefreshToken
	for _, t := range f.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokens) Delete(_ context.Context, id uint64) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeTokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	for id, t := range f.rows {
		if t.UserID == userID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeMemberships struct {
	rows   map[uint64]model.BusinessUser
	nextID uint64

	// failCreate, when set, makes the next Create call fail. Lets tests
	// exercise the all-or-nothing contract of CreateWithOwner.
	failCreate error
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{rows: map[uint64]model.BusinessUser{}}
}

func (f *fakeMemberships) Create(_ context.Context, m *model.BusinessUser) error {
	if f.failCreate != nil {
		err := f.failCreate
		f.failCreate = nil
		return err
	}
	for _, e := range f.rows {
		if e.BusinessID == m.BusinessID && e.UserID == m.UserID {
			return apperr.Conflict("user already belongs to this business")
		}
	}
	f.nextID++
	m.ID = f.nextID
	m.CreatedAt = time.Now().UTC()
	f.rows[m.ID] = *m
	return nil
}

func (f *fakeMemberships) Get(_ context.Context, businessID, userID uint64) (model.BusinessUser, error) {
	for _, m := range f.rows {
		if m.BusinessID == businessID && m.UserID == userID {
			return m, nil
		}
	}
	return model.BusinessUser{}, apperr.NotFound("membership not found")
}

func (f *fakeMemberships) GetByID(_ context.Context, id uint64) (model.BusinessUser, error) {
	m, ok := f.rows[id]
	if !ok {
		return model.BusinessUser{}, apperr.NotFound("membership not found")
	}
	return m, nil
}

func (f *fakeMemberships) ListByBusiness(_ context.Context, businessID uint64) ([]model.BusinessUser, error) {
	var out []model.BusinessUser
	for _, m := range f.rows {
		if m.BusinessID == businessID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberships) UpdateRole(_ context.Context, id uint64, role model.BusinessRole) error {
	m, ok := f.rows[id]
	if !ok {
		return apperr.NotFound("membership not found")
	}
	m.Role = role
	f.rows[id] = m
	return nil
}

func (f *fakeMemberships) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return apperr.NotFound("membership not found")
	}
	delete(f.rows, id)
	return nil
}

type fakeBusinesses struct {
	rows        map[uint64]model.Business
	nextID      uint64
	memberships *fakeMemberships
}

func newFakeBusinesses(memberships *fakeMemberships) *fakeBusinesses {
	return &fakeBusinesses{rows: map[uint64]model.Business{}, memberships: memberships}
}

func (f *fakeBusinesses) CreateWithOwner(ctx context.Context, b *model.Business) error {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.rows[b.ID] = *b
	m := model.BusinessUser{BusinessID: b.ID, UserID: b.OwnerID, Role: model.BusinessRoleAdmin}
	if err := f.memberships.Create(ctx, &m); err != nil {
		delete(f.rows, b.ID)
		return err
	}
	return nil
}

func (f *fakeBusinesses) GetByID(_ context.Context, id uint64) (model.Business, error) {
	b, ok := f.rows[id]
	if !ok {
		return model.Business{}, apperr.NotFound("business not found")
	}
	return b, nil
}

func (f *fakeBusinesses) ListForUser(ctx context.Context, userID uint64) ([]model.Business, error) {
	var out []model.Business
	for _, b := range f.rows {
		if b.OwnerID == userID {
			out = append(out, b)
			continue
		}
		if _, err := f.memberships.Get(ctx, b.ID, userID); err == nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBusinesses) Update(_ context.Context, b *model.Business) error {
	if _, ok := f.rows[b.ID]; !ok {
		return apperr.NotFound("business not found")
	}
	b.UpdatedAt = time.Now().UTC()
	f.rows[b.ID] = *b
	return nil
}

type fakeDebtors struct {
	rows   map[uint64]model.Debtor
	nextID uint64
}

func newFakeDebtors() *fakeDebtors { return &fakeDebtors{rows: map[uint64]model.Debtor{}} }

func (f *fakeDebtors) Create(_ context.Context, d *model.Debtor) error {
	for _, e := range f.rows {
		if e.BusinessID != d.BusinessID {
			continue
		}
		if (d.Phone != "" && e.Phone == d.Phone) ||
			(d.DocumentNumber != "" && e.DocumentNumber == d.DocumentNumber) {
			return apperr.Conflict("a debtor with these details already exists in this business")
		}
	}
	f.nextID++
	d.ID = f.nextID
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	f.rows[d.ID] = *d
	return nil
}

func (f *fakeDebtors) GetByID(_ context.Context, id uint64) (model.Debtor, error) {
	d, ok := f.rows[id]
	if !ok {
		return model.Debtor{}, apperr.NotFound("debtor not found")
	}
	return d, nil
}

func (f *fakeDebtors) ListByBusiness(_ context.Context, businessID uint64) ([]model.Debtor, error) {
	var out []model.Debtor
	for _, d := range f.rows {
		if d.BusinessID == businessID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDebtors) FindCollision(_ context.Context, businessID uint64, phone, documentNumber string) (model.Debtor, error) {
	for _, d := range f.rows {
		if d.BusinessID != businessID {
			continue
		}
		if (phone != "" && d.Phone == phone) ||
			(documentNumber != "" && d.DocumentNumber == documentNumber) {
			return d, nil
		}
	}
	return model.Debtor{}, apperr.NotFound("debtor not found")
}

func (f *fakeDebtors) Update(_ context.Context, d *model.Debtor) error {
	if _, ok := f.rows[d.ID]; !ok {
		return apperr.NotFound("debtor not found")
	}
	d.UpdatedAt = time.Now().UTC()
	f.rows[d.ID] = *d
	return nil
}

func (f *fakeDebtors) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return apperr.NotFound("debtor not found")
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeDebtors) LinkUser(_ context.Context, debtorID, userID uint64) error {
	d, ok := f.rows[debtorID]
	if !ok {
		return apperr.NotFound("debtor not found")
	}
	d.UserID = &userID
	f.rows[debtorID] = d
	return nil
}

func (f *fakeDebtors) LinkMatchingToUser(_ context.Context, userID uint64, phone, documentNumber string) (int64, error) {
	if phone == "" && documentNumber == "" {
		return 0, nil
	}
	var n int64
	for id, d := range f.rows {
		if d.UserID != nil {
			continue
		}
		if (phone != "" && d.Phone == phone) ||
			(documentNumber != "" && d.DocumentNumber == documentNumber) {
			uid := userID
			d.UserID = &uid
			f.rows[id] = d
			n++
		}
	}
	return n, nil
}

type fakeDebts struct {
	rows   map[uint64]model.Debt
	nextID uint64
}

func newFakeDebts() *fakeDebts { return &fakeDebts{rows: map[uint64]model.Debt{}} }

func (f *fakeDebts) Create(_ context.Context, d *model.Debt) error {
	f.nextID++
	d.ID = f.nextID
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	f.rows[d.ID] = *d
	return nil
}

func (f *fakeDebts) GetByID(_ context.Context, id uint64) (model.Debt, error) {
	d, ok := f.rows[id]
	if !ok {
		return model.Debt{}, apperr.NotFound("debt not found")
	}
	return d, nil
}

func (f *fakeDebts) ListByBusiness(_ context.Context, businessID uint64) ([]model.Debt, error) {
	var out []model.Debt
	for _, d := range f.rows {
		if d.BusinessID == businessID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDebts) ListByDebtor(_ context.Context, debtorID uint64) ([]model.Debt, error) {
	var out []model.Debt
	for _, d := range f.rows {
		if d.DebtorID == debtorID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDebts) Override(_ context.Context, id uint64, status model.DebtStatus, balance *decimal.Decimal) (model.Debt, error) {
	d, ok := f.rows[id]
	if !ok {
		return model.Debt{}, apperr.NotFound("debt not found")
	}
	d.Status = status
	if balance != nil {
		d.Balance = *balance
	}
	d.UpdatedAt = time.Now().UTC()
	f.rows[id] = d
	return d, nil
}

type fakePayments struct {
	rows   map[uint64]model.Payment
	nextID uint64
	debts  *fakeDebts
}

func newFakePayments(debts *fakeDebts) *fakePayments {
	return &fakePayments{rows: map[uint64]model.Payment{}, debts: debts}
}

func (f *fakePayments) RecordAndRecalculate(ctx context.Context, p *model.Payment) (model.Debt, error) {
	debt, err := f.debts.GetByID(ctx, p.DebtID)
	if err != nil {
		return model.Debt{}, err
	}
	f.nextID++
	p.ID = f.nextID
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	f.rows[p.ID] = *p
	return f.recalc(debt)
}

func (f *fakePayments) Recalculate(ctx context.Context, debtID uint64) (model.Debt, error) {
	debt, err := f.debts.GetByID(ctx, debtID)
	if err != nil {
		return model.Debt{}, err
	}
	return f.recalc(debt)
}

func (f *fakePayments) recalc(debt model.Debt) (model.Debt, error) {
	movements := f.ordered(debt.ID)
	debt.Balance, debt.Status = ledger.Recalculate(debt.Amount, movements)
	debt.UpdatedAt = time.Now().UTC()
	f.debts.rows[debt.ID] = debt
	return debt, nil
}

func (f *fakePayments) ordered(debtID uint64) []model.Payment {
	var out []model.Payment
	for _, p := range f.rows {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakePayments) ListByDebt(_ context.Context, debtID uint64) ([]model.Payment, error) {
	out := f.ordered(debtID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeInvitations struct {
	rows   map[uint64]model.Invitation
	nextID uint64
}

func newFakeInvitations() *fakeInvitations {
	return &fakeInvitations{rows: map[uint64]model.Invitation{}}
}

func (f *fakeInvitations) Create(_ context.Context, inv *model.Invitation) error {
	for _, e := range f.rows {
		if e.Code == inv.Code {
			return apperr.Conflict("invitation code collision, retry")
		}
	}
	f.nextID++
	inv.ID = f.nextID
	inv.CreatedAt = time.Now().UTC()
	f.rows[inv.ID] = *inv
	return nil
}

func (f *fakeInvitations) GetByCode(_ context.Context, code string) (model.Invitation, error) {
	for _, inv := range f.rows {
		if inv.Code == code {
			return inv, nil
		}
	}
	return model.Invitation{}, apperr.NotFound("invalid invitation code")
}

func (f *fakeInvitations) MarkAccepted(_ context.Context, code string) error {
	for id, inv := range f.rows {
		if inv.Code == code {
			inv.Status = model.InvitationStatusAccepted
			f.rows[id] = inv
			return nil
		}
	}
	return apperr.NotFound("invalid invitation code")
}

func (f *fakeInvitations) ListByBusiness(_ context.Context, businessID uint64) ([]model.Invitation, error) {
	var out []model.Invitation
	for _, inv := range f.rows {
		if inv.BusinessID == businessID {
			out = append(out, inv)
		}
	}
	return out, nil
}
