package service

import (
	"context"
	"strings"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// DebtorService manages the debtor directory of a business.
type DebtorService struct {
	Debtors DebtorStore
	Users   UserStore
}

func NewDebtorService(debtors DebtorStore, users UserStore) *DebtorService {
	return &DebtorService{Debtors: debtors, Users: users}
}

// CreateDebtorInput carries the creation form.
type CreateDebtorInput struct {
	Name           string
	Phone          string
	DocumentNumber string
}

// Create inserts a debtor after checking the business-local phone and
// document uniqueness. When a registered user matches the phone or
// document number, the debtor is linked to that account immediately.
func (s *DebtorService) Create(ctx context.Context, businessID uint64, in CreateDebtorInput) (model.Debtor, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	if in.Name == "" {
		return model.Debtor{}, apperr.Validation("debtor name is required")
	}

	if in.Phone != "" || in.DocumentNumber != "" {
		if _, err := s.Debtors.FindCollision(ctx, businessID, in.Phone, in.DocumentNumber); err == nil {
			return model.Debtor{}, apperr.Conflict("a debtor with this phone or document number already exists in this business")
		} else if apperr.KindOf(err) != apperr.KindNotFound {
			return model.Debtor{}, err
		}
	}

	d := model.Debtor{
		BusinessID:     businessID,
		Name:           in.Name,
		Phone:          in.Phone,
		DocumentNumber: in.DocumentNumber,
	}

	if in.Phone != "" || in.DocumentNumber != "" {
		u, err := s.Users.FindByAnyKey(ctx, "", in.Phone, in.DocumentNumber)
		switch {
		case err == nil && u.Active():
			d.UserID = &u.ID
		case err != nil && apperr.KindOf(err) != apperr.KindNotFound:
			return model.Debtor{}, err
		}
	}

	if err := s.Debtors.Create(ctx, &d); err != nil {
		return model.Debtor{}, err
	}
	return d, nil
}

// List returns a business's debtors.
func (s *DebtorService) List(ctx context.Context, businessID uint64) ([]model.Debtor, error) {
	return s.Debtors.ListByBusiness(ctx, businessID)
}

// Get returns one debtor of the business. Debtors of other businesses read
// as not found so their existence is never revealed.
func (s *DebtorService) Get(ctx context.Context, businessID, debtorID uint64) (model.Debtor, error) {
	d, err := s.Debtors.GetByID(ctx, debtorID)
	if err != nil {
		return model.Debtor{}, err
	}
	if d.BusinessID != businessID {
		return model.Debtor{}, apperr.NotFound("debtor not found")
	}
	return d, nil
}

// UpdateDebtorInput carries optional debtor changes.
type UpdateDebtorInput struct {
	Name           *string
	Phone          *string
	DocumentNumber *string
}

// Update applies the non-nil fields and persists the debtor.
func (s *DebtorService) Update(ctx context.Context, businessID, debtorID uint64, in UpdateDebtorInput) (model.Debtor, error) {
	d, err := s.Get(ctx, businessID, debtorID)
	if err != nil {
		return model.Debtor{}, err
	}
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return model.Debtor{}, apperr.Validation("debtor name cannot be empty")
		}
		d.Name = v
	}
	if in.Phone != nil {
		d.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.DocumentNumber != nil {
		d.DocumentNumber = strings.TrimSpace(*in.DocumentNumber)
	}
	if err := s.Debtors.Update(ctx, &d); err != nil {
		return model.Debtor{}, err
	}
	return d, nil
}

// Delete removes a debtor of the business.
func (s *DebtorService) Delete(ctx context.Context, businessID, debtorID uint64) error {
	if _, err := s.Get(ctx, businessID, debtorID); err != nil {
		return err
	}
	return s.Debtors.Delete(ctx, debtorID)
}
