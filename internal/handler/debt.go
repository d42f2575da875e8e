package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/arvelez/debt-ledger/internal/service"
)

// DebtHandler bundles dependencies for debt and payment endpoints. All
// routes sit behind RequireBusinessRole.
type DebtHandler struct {
	Debts *service.DebtService
}

func NewDebtHandler(debts *service.DebtService) *DebtHandler {
	return &DebtHandler{Debts: debts}
}

type createDebtReq struct {
	DebtorID    uint64 `json:"debtor_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"` // RFC3339 or YYYY-MM-DD, optional
}

type recordPaymentReq struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Type   string `json:"type"`
	Note   string `json:"note"`
}

type overrideStatusReq struct {
	Status  string  `json:"status"`
	Balance *string `json:"balance"`
}

type paymentRecordedResp struct {
	Payment paymentResp `json:"payment"`
	Debt    debtResp    `json:"debt"`
}

// parseAmount parses a decimal string from the request body. Amounts
// travel as strings so binary floating point never touches money.
func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return d, err == nil
}

func parseDueDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// Create issues a new debt against a debtor of the active business.
func (h *DebtHandler) Create(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	var req createDebtReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid due date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debts.Create(ctx, businessID, userID, service.CreateDebtInput{
		DebtorID:    req.DebtorID,
		Amount:      amount,
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, debtJSON(d))
}

// List returns the active business's debts.
func (h *DebtHandler) List(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ds, err := h.Debts.ListByBusiness(ctx, businessID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtsJSON(ds))
}

// Get returns one debt.
func (h *DebtHandler) Get(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtID, ok := pathID(c, "debtId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debt id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debts.Get(ctx, businessID, debtID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtJSON(d))
}

// RecordPayment appends a ledger movement and returns the recalculated
// debt together with the stored movement.
func (h *DebtHandler) RecordPayment(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	debtID, ok := pathID(c, "debtId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debt id"})
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, d, err := h.Debts.RecordPayment(ctx, businessID, userID, debtID, service.RecordPaymentInput{
		Amount: amount,
		Method: req.Method,
		Type:   req.Type,
		Note:   req.Note,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, paymentRecordedResp{Payment: paymentJSON(p), Debt: debtJSON(d)})
}

// ListPayments returns a debt's movements, most recent first.
func (h *DebtHandler) ListPayments(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtID, ok := pathID(c, "debtId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debt id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ps, err := h.Debts.ListPayments(ctx, businessID, debtID)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]paymentResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, paymentJSON(p))
	}
	return c.JSON(http.StatusOK, out)
}

// OverrideStatus sets the debt's status, and optionally its balance,
// directly. Manual corrections only.
func (h *DebtHandler) OverrideStatus(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtID, ok := pathID(c, "debtId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debt id"})
	}
	var req overrideStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var balance *decimal.Decimal
	if req.Balance != nil {
		b, ok := parseAmount(*req.Balance)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid balance"})
		}
		balance = &b
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debts.OverrideStatus(ctx, businessID, debtID, req.Status, balance)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtJSON(d))
}

// Recalculate replays the debt's ledger and persists the derived balance
// and status.
func (h *DebtHandler) Recalculate(c echo.Context) error {
	businessID, err := activeBusinessID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing business id"})
	}
	debtID, ok := pathID(c, "debtId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid debt id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Debts.Recalculate(ctx, businessID, debtID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, debtJSON(d))
}
