// Package service implements the business rules on top of narrow store
// interfaces. Handlers call services; services call stores; stores are
// satisfied by the repository package in production and by in-memory fakes
// in tests.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/arvelez/debt-ledger/internal/model"
)

// UserStore is the persistence surface the user and auth services need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetActiveByIdentifier(ctx context.Context, identifier string) (model.User, error)
	FindByAnyKey(ctx context.Context, email, phone, documentNumber string) (model.User, error)
	Update(ctx context.Context, u *model.User) error
	Inactivate(ctx context.Context, id uint64) error
}

// TokenStore is the persistence surface for refresh tokens.
type TokenStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	FindActive(ctx context.Context, userID uint64, deviceInfo *string) (model.RefreshToken, error)
	ListActive(ctx context.Context, userID uint64, deviceInfo *string) ([]model.RefreshToken, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error)
	Delete(ctx context.Context, id uint64) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// BusinessStore is the persistence surface for businesses.
type BusinessStore interface {
	CreateWithOwner(ctx context.Context, b *model.Business) error
	GetByID(ctx context.Context, id uint64) (model.Business, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Business, error)
	Update(ctx context.Context, b *model.Business) error
}

// MembershipStore is the persistence surface for business memberships.
type MembershipStore interface {
	Create(ctx context.Context, m *model.BusinessUser) error
	Get(ctx context.Context, businessID, userID uint64) (model.BusinessUser, error)
	GetByID(ctx context.Context, id uint64) (model.BusinessUser, error)
	ListByBusiness(ctx context.Context, businessID uint64) ([]model.BusinessUser, error)
	UpdateRole(ctx context.Context, id uint64, role model.BusinessRole) error
	Delete(ctx context.Context, id uint64) error
}

// DebtorStore is the persistence surface for debtors.
type DebtorStore interface {
	Create(ctx context.Context, d *model.Debtor) error
	GetByID(ctx context.Context, id uint64) (model.Debtor, error)
	ListByBusiness(ctx context.Context, businessID uint64) ([]model.Debtor, error)
	FindCollision(ctx context.Context, businessID uint64, phone, documentNumber string) (model.Debtor, error)
	Update(ctx context.Context, d *model.Debtor) error
	Delete(ctx context.Context, id uint64) error
	LinkUser(ctx context.Context, debtorID, userID uint64) error
	LinkMatchingToUser(ctx context.Context, userID uint64, phone, documentNumber string) (int64, error)
}

// DebtStore is the persistence surface for debts. Balance and status only
// move through PaymentStore or Override.
type DebtStore interface {
	Create(ctx context.Context, d *model.Debt) error
	GetByID(ctx context.Context, id uint64) (model.Debt, error)
	ListByBusiness(ctx context.Context, businessID uint64) ([]model.Debt, error)
	ListByDebtor(ctx context.Context, debtorID uint64) ([]model.Debt, error)
	Override(ctx context.Context, id uint64, status model.DebtStatus, balance *decimal.Decimal) (model.Debt, error)
}

// PaymentStore records ledger movements and owns recalculation.
type PaymentStore interface {
	RecordAndRecalculate(ctx context.Context, p *model.Payment) (model.Debt, error)
	Recalculate(ctx context.Context, debtID uint64) (model.Debt, error)
	ListByDebt(ctx context.Context, debtID uint64) ([]model.Payment, error)
}

// InvitationStore is the persistence surface for invitations.
type InvitationStore interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByCode(ctx context.Context, code string) (model.Invitation, error)
	MarkAccepted(ctx context.Context, code string) error
	ListByBusiness(ctx context.Context, businessID uint64) ([]model.Invitation, error)
}

// EventPublisher announces recorded movements to interested consumers.
// Publishing is best effort: a broker outage never fails the request.
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, p model.Payment, d model.Debt) error
}
