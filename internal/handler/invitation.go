package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/service"
)

// InvitationHandler bundles dependencies for invitation endpoints.
// Creation and listing sit behind RequireBusinessRole; lookup and
// acceptance only need authentication since the invitee is not a member
// yet.
type InvitationHandler struct {
	Invitations *service.InvitationService
}

func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{Invitations: invitations}
}

type createInvitationReq struct {
	DebtorID  *uint64 `json:"debtor_id"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	ExpiresAt string  `json:"expires_at"` // RFC3339, optional
}

// Create issues an invitation code for the active business.
func (h *InvitationHandler) Create(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	var req createInvitationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var expiresAt *time.Time
	if s := strings.TrimSpace(req.ExpiresAt); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid expires_at"})
		}
		expiresAt = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	inv, err := h.Invitations.Create(ctx, businessID, service.CreateInvitationInput{
		DebtorID:  req.DebtorID,
		Email:     req.Email,
		Phone:     req.Phone,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, invitationJSON(inv))
}

// List returns the active business's invitations.
func (h *InvitationHandler) List(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	invs, err := h.Invitations.ListByBusiness(ctx, businessID)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]invitationResp, 0, len(invs))
	for _, inv := range invs {
		out = append(out, invitationJSON(inv))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByCode resolves a usable invitation by its code so the invitee can
// preview it before accepting.
func (h *InvitationHandler) GetByCode(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing invitation code"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	inv, err := h.Invitations.GetByCode(ctx, code)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, invitationJSON(inv))
}

// Accept consumes an invitation on behalf of the caller, linking any
// targeted debtor to the caller's account.
func (h *InvitationHandler) Accept(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing invitation code"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	inv, err := h.Invitations.Accept(ctx, code, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, invitationJSON(inv))
}
