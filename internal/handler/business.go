package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/service"
)

// BusinessHandler bundles dependencies for business endpoints.
type BusinessHandler struct {
	Businesses *service.BusinessService
}

func NewBusinessHandler(businesses *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{Businesses: businesses}
}

type createBusinessReq struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Currency string `json:"currency"`
}

type updateBusinessReq struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Currency *string `json:"currency"`
}

// Create registers a new business owned by the caller.
func (h *BusinessHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	var req createBusinessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Businesses.Create(ctx, userID, service.CreateBusinessInput{
		Name:     req.Name,
		Address:  req.Address,
		Currency: req.Currency,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, businessJSON(b))
}

// List returns the businesses the caller owns or belongs to.
func (h *BusinessHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	bs, err := h.Businesses.ListForUser(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]businessResp, 0, len(bs))
	for _, b := range bs {
		out = append(out, businessJSON(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one business the caller can see.
func (h *BusinessHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Businesses.Get(ctx, businessID, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, businessJSON(b))
}

// Update applies changes to a business. Owner only.
func (h *BusinessHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}
	var req updateBusinessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Businesses.Update(ctx, businessID, userID, service.UpdateBusinessInput{
		Name:     req.Name,
		Address:  req.Address,
		Currency: req.Currency,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, businessJSON(b))
}
