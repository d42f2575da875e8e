package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/service"
)

// MemberHandler bundles dependencies for membership endpoints. The routes
// sit behind RequireBusinessRole, so the active business is taken from the
// context.
type MemberHandler struct {
	Businesses *service.BusinessService
}

func NewMemberHandler(businesses *service.BusinessService) *MemberHandler {
	return &MemberHandler{Businesses: businesses}
}

type addMemberReq struct {
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
}

type updateMemberRoleReq struct {
	Role string `json:"role"`
}

// Add grants membership to an existing user.
func (h *MemberHandler) Add(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	var req addMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	m, err := h.Businesses.AddMember(ctx, businessID, service.AddMemberInput{
		Identifier: req.Identifier,
		Role:       req.Role,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, membershipJSON(m))
}

// List returns the business's memberships.
func (h *MemberHandler) List(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ms, err := h.Businesses.ListMembers(ctx, businessID)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]membershipResp, 0, len(ms))
	for _, m := range ms {
		out = append(out, membershipJSON(m))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateRole changes a member's role. The owner's membership and the
// caller's own membership are protected.
func (h *MemberHandler) UpdateRole(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	membershipID, ok := pathID(c, "memberId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	var req updateMemberRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	m, err := h.Businesses.UpdateMemberRole(ctx, businessID, membershipID, actorID, req.Role)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, membershipJSON(m))
}

// Remove deletes a membership. Same protections as UpdateRole.
func (h *MemberHandler) Remove(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	membershipID, ok := pathID(c, "memberId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Businesses.RemoveMember(ctx, businessID, membershipID, actorID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "member removed"})
}
