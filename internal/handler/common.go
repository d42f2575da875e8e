package handler // handler defines the HTTP handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/logger"
	"github.com/arvelez/debt-ledger/internal/middleware"
	"github.com/arvelez/debt-ledger/internal/model"
)

const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user from the context, tolerating
// the value types different middleware may have stored.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// activeBusinessID returns the business resolved by the role middleware.
func activeBusinessID(c echo.Context) (uint64, error) {
	id, ok := middleware.BusinessID(c)
	if !ok {
		return 0, errors.New("missing business_id in context")
	}
	return id, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// respondErr translates a service error into its HTTP shape. Internal
// errors are logged with their cause; the client only sees the generic
// message.
func respondErr(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromEcho(c).Error("request failed", zap.Error(err))
	}
	return c.JSON(status, echo.Map{
		"error": apperr.MessageOf(err),
		"code":  string(apperr.KindOf(err)),
	})
}

// ----- response DTOs -----

type userResp struct {
	ID             uint64 `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	Role           string `json:"role"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
}

func userJSON(u model.User) userResp {
	return userResp{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Phone:          u.Phone,
		DocumentNumber: u.DocumentNumber,
		Role:           string(u.Role),
		Active:         u.Active(),
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type businessResp struct {
	ID        uint64 `json:"id"`
	OwnerID   uint64 `json:"owner_id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at"`
}

func businessJSON(b model.Business) businessResp {
	return businessResp{
		ID:        b.ID,
		OwnerID:   b.OwnerID,
		Name:      b.Name,
		Address:   b.Address,
		Currency:  b.Currency,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type membershipResp struct {
	ID         uint64 `json:"id"`
	BusinessID uint64 `json:"business_id"`
	UserID     uint64 `json:"user_id"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
}

func membershipJSON(m model.BusinessUser) membershipResp {
	return membershipResp{
		ID:         m.ID,
		BusinessID: m.BusinessID,
		UserID:     m.UserID,
		Role:       string(m.Role),
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type debtorResp struct {
	ID             uint64  `json:"id"`
	BusinessID     uint64  `json:"business_id"`
	UserID         *uint64 `json:"user_id,omitempty"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone,omitempty"`
	DocumentNumber string  `json:"document_number,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func debtorJSON(d model.Debtor) debtorResp {
	return debtorResp{
		ID:             d.ID,
		BusinessID:     d.BusinessID,
		UserID:         d.UserID,
		Name:           d.Name,
		Phone:          d.Phone,
		DocumentNumber: d.DocumentNumber,
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type debtResp struct {
	ID          uint64 `json:"id"`
	BusinessID  uint64 `json:"business_id"`
	DebtorID    uint64 `json:"debtor_id"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedBy   uint64 `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func debtJSON(d model.Debt) debtResp {
	resp := debtResp{
		ID:          d.ID,
		BusinessID:  d.BusinessID,
		DebtorID:    d.DebtorID,
		Amount:      d.Amount.StringFixed(2),
		Balance:     d.Balance.StringFixed(2),
		Status:      string(d.Status),
		Description: d.Description,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.DueDate != nil {
		resp.DueDate = d.DueDate.UTC().Format(time.RFC3339)
	}
	return resp
}

func debtsJSON(ds []model.Debt) []debtResp {
	out := make([]debtResp, 0, len(ds))
	for _, d := range ds {
		out = append(out, debtJSON(d))
	}
	return out
}

type paymentResp struct {
	ID          uint64 `json:"id"`
	DebtID      uint64 `json:"debt_id"`
	Amount      string `json:"amount"`
	Method      string `json:"method,omitempty"`
	Type        string `json:"type"`
	Note        string `json:"note,omitempty"`
	CreatedBy   uint64 `json:"created_by"`
	PaymentDate string `json:"payment_date"`
}

func paymentJSON(p model.Payment) paymentResp {
	return paymentResp{
		ID:          p.ID,
		DebtID:      p.DebtID,
		Amount:      p.Amount.StringFixed(2),
		Method:      p.Method,
		Type:        string(p.Type),
		Note:        p.Note,
		CreatedBy:   p.CreatedBy,
		PaymentDate: p.PaymentDate.UTC().Format(time.RFC3339),
	}
}

type invitationResp struct {
	ID         uint64  `json:"id"`
	BusinessID uint64  `json:"business_id"`
	DebtorID   *uint64 `json:"debtor_id,omitempty"`
	Code       string  `json:"code"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Status     string  `json:"status"`
	ExpiresAt  string  `json:"expires_at"`
	CreatedAt  string  `json:"created_at"`
}

func invitationJSON(inv model.Invitation) invitationResp {
	return invitationResp{
		ID:         inv.ID,
		BusinessID: inv.BusinessID,
		DebtorID:   inv.DebtorID,
		Code:       inv.Code,
		Email:      inv.Email,
		Phone:      inv.Phone,
		Status:     string(inv.Status),
		ExpiresAt:  inv.ExpiresAt.UTC().Format(time.RFC3339),
		CreatedAt:  inv.CreatedAt.UTC().Format(time.RFC3339),
	}
}
