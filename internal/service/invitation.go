package service

import (
	"context"
	"strings"
	"time"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
	"github.com/arvelez/debt-ledger/internal/utils"
)

// InvitationService issues and consumes single-use invitation codes. An
// invitation optionally targets a debtor; accepting one links the
// accepting user to that debtor.
type InvitationService struct {
	Invitations InvitationStore
	Businesses  BusinessStore
	Debtors     DebtorStore

	TTLDays int
}

func NewInvitationService(invitations InvitationStore, businesses BusinessStore, debtors DebtorStore, ttlDays int) *InvitationService {
	return &InvitationService{Invitations: invitations, Businesses: businesses, Debtors: debtors, TTLDays: ttlDays}
}

// CreateInvitationInput carries the creation form. At least one of Email
// or Phone must be present so the code has somewhere to go.
type CreateInvitationInput struct {
	DebtorID  *uint64
	Email     string
	Phone     string
	ExpiresAt *time.Time
}

// Create issues a PENDING invitation with a short random code. A targeted
// debtor must belong to the issuing business. Code collisions are retried
// a few times before giving up; the odds of three consecutive collisions
// are negligible.
func (s *InvitationService) Create(ctx context.Context, businessID uint64, in CreateInvitationInput) (model.Invitation, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email == "" && in.Phone == "" {
		return model.Invitation{}, apperr.Validation("email or phone is required")
	}

	if _, err := s.Businesses.GetByID(ctx, businessID); err != nil {
		return model.Invitation{}, err
	}
	if in.DebtorID != nil {
		debtor, err := s.Debtors.GetByID(ctx, *in.DebtorID)
		if err != nil {
			return model.Invitation{}, err
		}
		if debtor.BusinessID != businessID {
			return model.Invitation{}, apperr.Forbidden("debtor belongs to a different business")
		}
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, s.TTLDays)
	if in.ExpiresAt != nil {
		if in.ExpiresAt.Before(time.Now().UTC()) {
			return model.Invitation{}, apperr.Validation("expiry must be in the future")
		}
		expiresAt = in.ExpiresAt.UTC()
	}

	inv := model.Invitation{
		BusinessID: businessID,
		DebtorID:   in.DebtorID,
		Email:      in.Email,
		Phone:      in.Phone,
		Status:     model.InvitationStatusPending,
		ExpiresAt:  expiresAt,
	}
	for attempt := 0; attempt < 3; attempt++ {
		code, err := utils.NewInvitationCode()
		if err != nil {
			return model.Invitation{}, apperr.Internal("generate invitation code failed", err)
		}
		inv.Code = code
		err = s.Invitations.Create(ctx, &inv)
		if err == nil {
			return inv, nil
		}
		if apperr.KindOf(err) != apperr.KindConflict {
			return model.Invitation{}, err
		}
	}
	return model.Invitation{}, apperr.Internal("invitation code collision persisted", nil)
}

// GetByCode resolves a usable invitation. Consumed and expired codes are
// reported as validation errors so the client can show a precise message.
func (s *InvitationService) GetByCode(ctx context.Context, code string) (model.Invitation, error) {
	inv, err := s.Invitations.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return model.Invitation{}, err
	}
	if inv.Status == model.InvitationStatusAccepted {
		return model.Invitation{}, apperr.Validation("invitation already used")
	}
	if time.Now().UTC().After(inv.ExpiresAt) {
		return model.Invitation{}, apperr.Validation("invitation expired")
	}
	return inv, nil
}

// Accept consumes an invitation on behalf of a user. When the invitation
// targets a debtor, the debtor is linked to the accepting user. A code can
// be accepted at most once.
func (s *InvitationService) Accept(ctx context.Context, code string, userID uint64) (model.Invitation, error) {
	inv, err := s.GetByCode(ctx, code)
	if err != nil {
		return model.Invitation{}, err
	}
	if inv.DebtorID != nil {
		if err := s.Debtors.LinkUser(ctx, *inv.DebtorID, userID); err != nil {
			return model.Invitation{}, err
		}
	}
	if err := s.Invitations.MarkAccepted(ctx, inv.Code); err != nil {
		return model.Invitation{}, err
	}
	inv.Status = model.InvitationStatusAccepted
	return inv, nil
}

// ListByBusiness returns a business's invitations.
func (s *InvitationService) ListByBusiness(ctx context.Context, businessID uint64) ([]model.Invitation, error) {
	return s.Invitations.ListByBusiness(ctx, businessID)
}
