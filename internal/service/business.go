package service

import (
	"context"
	"strings"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// BusinessService manages businesses and their memberships. The owner's
// membership and a caller's own membership are protected: they can never
// be re-roled or removed through this service.
type BusinessService struct {
	Businesses  BusinessStore
	Memberships MembershipStore
	Users       UserStore

	DefaultCurrency string
}

func NewBusinessService(businesses BusinessStore, memberships MembershipStore, users UserStore, defaultCurrency string) *BusinessService {
	return &BusinessService{
		Businesses:      businesses,
		Memberships:     memberships,
		Users:           users,
		DefaultCurrency: defaultCurrency,
	}
}

// CreateBusinessInput carries the creation form.
type CreateBusinessInput struct {
	Name     string
	Address  string
	Currency string
}

// Create inserts the business together with the owner's ADMIN membership.
// Both rows land or neither does.
func (s *BusinessService) Create(ctx context.Context, ownerID uint64, in CreateBusinessInput) (model.Business, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Business{}, apperr.Validation("business name is required")
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = s.DefaultCurrency
	}

	b := model.Business{
		OwnerID:  ownerID,
		Name:     in.Name,
		Address:  strings.TrimSpace(in.Address),
		Currency: currency,
	}
	if err := s.Businesses.CreateWithOwner(ctx, &b); err != nil {
		return model.Business{}, err
	}
	return b, nil
}

// ListForUser returns the businesses the user owns or belongs to.
func (s *BusinessService) ListForUser(ctx context.Context, userID uint64) ([]model.Business, error) {
	return s.Businesses.ListForUser(ctx, userID)
}

// Get returns a business the user can see. Non-members are refused even
// when the business exists.
func (s *BusinessService) Get(ctx context.Context, businessID, userID uint64) (model.Business, error) {
	b, err := s.Businesses.GetByID(ctx, businessID)
	if err != nil {
		return model.Business{}, err
	}
	if b.OwnerID != userID {
		if _, err := s.Memberships.Get(ctx, businessID, userID); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return model.Business{}, apperr.Forbidden("not a member of this business")
			}
			return model.Business{}, err
		}
	}
	return b, nil
}

// UpdateBusinessInput carries optional business changes.
type UpdateBusinessInput struct {
	Name     *string
	Address  *string
	Currency *string
}

// Update applies the non-nil fields. Only the owner may update a business.
func (s *BusinessService) Update(ctx context.Context, businessID, userID uint64, in UpdateBusinessInput) (model.Business, error) {
	b, err := s.Businesses.GetByID(ctx, businessID)
	if err != nil {
		return model.Business{}, err
	}
	if b.OwnerID != userID {
		return model.Business{}, apperr.Forbidden("only the owner can update the business")
	}
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return model.Business{}, apperr.Validation("business name cannot be empty")
		}
		b.Name = v
	}
	if in.Address != nil {
		b.Address = strings.TrimSpace(*in.Address)
	}
	if in.Currency != nil {
		v := strings.TrimSpace(*in.Currency)
		if v == "" {
			return model.Business{}, apperr.Validation("currency cannot be empty")
		}
		b.Currency = v
	}
	if err := s.Businesses.Update(ctx, &b); err != nil {
		return model.Business{}, err
	}
	return b, nil
}

// AddMemberInput identifies the user to add and the role to grant.
// Identifier may be an email, phone or document number.
type AddMemberInput struct {
	Identifier string
	Role       string
}

// AddMember grants membership to an existing active user. The role
// defaults to VIEWER. Adding someone twice is a validation error, not a
// conflict: the caller sent a request that can never succeed.
func (s *BusinessService) AddMember(ctx context.Context, businessID uint64, in AddMemberInput) (model.BusinessUser, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if in.Identifier == "" {
		return model.BusinessUser{}, apperr.Validation("member identifier is required")
	}

	role := model.BusinessRoleViewer
	if in.Role != "" {
		if !model.ValidBusinessRole(in.Role) {
			return model.BusinessUser{}, apperr.Validation("invalid business role")
		}
		role = model.BusinessRole(in.Role)
	}

	u, err := s.Users.GetActiveByIdentifier(ctx, in.Identifier)
	if err != nil {
		return model.BusinessUser{}, err
	}

	m := model.BusinessUser{BusinessID: businessID, UserID: u.ID, Role: role}
	if err := s.Memberships.Create(ctx, &m); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return model.BusinessUser{}, apperr.Validation("user already belongs to this business")
		}
		return model.BusinessUser{}, err
	}
	return m, nil
}

// ListMembers returns a business's memberships.
func (s *BusinessService) ListMembers(ctx context.Context, businessID uint64) ([]model.BusinessUser, error) {
	return s.Memberships.ListByBusiness(ctx, businessID)
}

// UpdateMemberRole changes a member's role. The owner's membership and the
// caller's own membership are off limits.
func (s *BusinessService) UpdateMemberRole(ctx context.Context, businessID, membershipID, actorID uint64, role string) (model.BusinessUser, error) {
	if !model.ValidBusinessRole(role) {
		return model.BusinessUser{}, apperr.Validation("invalid business role")
	}
	m, err := s.memberOf(ctx, businessID, membershipID)
	if err != nil {
		return model.BusinessUser{}, err
	}
	if err := s.guardProtected(ctx, businessID, m, actorID, "change the role of"); err != nil {
		return model.BusinessUser{}, err
	}
	if err := s.Memberships.UpdateRole(ctx, m.ID, model.BusinessRole(role)); err != nil {
		return model.BusinessUser{}, err
	}
	m.Role = model.BusinessRole(role)
	return m, nil
}

// RemoveMember deletes a membership. The owner's membership and the
// caller's own membership are off limits.
func (s *BusinessService) RemoveMember(ctx context.Context, businessID, membershipID, actorID uint64) error {
	m, err := s.memberOf(ctx, businessID, membershipID)
	if err != nil {
		return err
	}
	if err := s.guardProtected(ctx, businessID, m, actorID, "remove"); err != nil {
		return err
	}
	return s.Memberships.Delete(ctx, m.ID)
}

// memberOf resolves a membership and checks it belongs to the business.
// Memberships of other businesses read as not found.
func (s *BusinessService) memberOf(ctx context.Context, businessID, membershipID uint64) (model.BusinessUser, error) {
	m, err := s.Memberships.GetByID(ctx, membershipID)
	if err != nil {
		return model.BusinessUser{}, err
	}
	if m.BusinessID != businessID {
		return model.BusinessUser{}, apperr.NotFound("membership not found")
	}
	return m, nil
}

func (s *BusinessService) guardProtected(ctx context.Context, businessID uint64, m model.BusinessUser, actorID uint64, verb string) error {
	if m.UserID == actorID {
		return apperr.Forbidden("cannot " + verb + " your own membership")
	}
	b, err := s.Businesses.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if m.UserID == b.OwnerID {
		return apperr.Forbidden("cannot " + verb + " the business owner")
	}
	return nil
}
