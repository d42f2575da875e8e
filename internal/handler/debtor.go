package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/service"
)

// DebtorHandler bundles dependencies for debtor endpoints. All routes sit
// behind RequireBusinessRole.
type DebtorHandler struct {
	Debtors *service.DebtorService
	Debts   *service.DebtService
}

func NewDebtorHandler(debtors *service.DebtorService, debts *service.DebtService) *DebtorHandler {
	return &DebtorHandler{Debtors: debtors, Debts: debts}
}

type createDebtorReq struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	DocumentNumber string `json:"document_number"`
}

type updateDebtorReq struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	DocumentNumber *string `json:"document_number"`
}

// Create adds a debtor to the active business.
func (h *DebtorHandler) Create(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	var req createDebtorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debtors.Create(ctx, businessID, service.CreateDebtorInput{
		Name:           req.Name,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, debtorJSON(d))
}

// List returns the active business's debtors.
func (h *DebtorHandler) List(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ds, err := h.Debtors.List(ctx, businessID)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]debtorResp, 0, len(ds))
	for _, d := range ds {
		out = append(out, debtorJSON(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one debtor.
func (h *DebtorHandler) Get(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtorID, ok := pathID(c, "debtorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debtor id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debtors.Get(ctx, businessID, debtorID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtorJSON(d))
}

// Update applies changes to a debtor.
func (h *DebtorHandler) Update(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtorID, ok := pathID(c, "debtorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debtor id"})
	}
	var req updateDebtorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debtors.Update(ctx, businessID, debtorID, service.UpdateDebtorInput{
		Name:           req.Name,
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtorJSON(d))
}

// Delete removes a debtor.
func (h *DebtorHandler) Delete(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtorID, ok := pathID(c, "debtorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debtor id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Debtors.Delete(ctx, businessID, debtorID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "debtor deleted"})
}

// DebtorDebts returns a debtor's debts.
func (h *DebtorHandler) DebtorDebts(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtorID, ok := pathID(c, "debtorId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debtor id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ds, err := h.Debts.ListByDebtor(ctx, businessID, debtorID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtsJSON(ds))
}
