package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

type staticResolver struct {
	memberships map[[2]uint64]model.BusinessRole
}

func (r staticResolver) Get(_ context.Context, businessID, userID uint64) (model.BusinessUser, error) {
	role, ok := r.memberships[[2]uint64{businessID, userID}]
	if !ok {
		return model.BusinessUser{}, apperr.NotFound("membership not found")
	}
	return model.BusinessUser{BusinessID: businessID, UserID: userID, Role: role}, nil
}

func runGuard(t *testing.T, resolver MembershipResolver, setup func(c echo.Context, req *http.Request), roles ...model.BusinessRole) (*httptest.ResponseRecorder, uint64) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/debtors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	if setup != nil {
		setup(c, req)
	}

	var resolved uint64
	handler := RequireBusinessRole(resolver, roles...)(func(c echo.Context) error {
		resolved, _ = BusinessID(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, resolved
}

func TestRequireBusinessRole(t *testing.T) {
	resolver := staticResolver{memberships: map[[2]uint64]model.BusinessRole{
		{3, 7}: model.BusinessRoleCashier,
	}}

	rec, businessID := runGuard(t, resolver, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Business-Id", "3")
	}, model.BusinessRoleAdmin, model.BusinessRoleCashier)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint64(3), businessID)

	// Insufficient role.
	rec, _ = runGuard(t, resolver, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Business-Id", "3")
	}, model.BusinessRoleAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Not a member at all.
	rec, _ = runGuard(t, resolver, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Business-Id", "99")
	}, model.BusinessRoleAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// No business identifier anywhere.
	rec, _ = runGuard(t, resolver, nil, model.BusinessRoleAdmin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Garbage identifier.
	rec, _ = runGuard(t, resolver, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Business-Id", "tienda")
	}, model.BusinessRoleAdmin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusinessIDPrecedence(t *testing.T) {
	resolver := staticResolver{memberships: map[[2]uint64]model.BusinessRole{
		{1, 7}: model.BusinessRoleAdmin,
		{2, 7}: model.BusinessRoleAdmin,
	}}

	// Header beats the path parameter.
	rec, businessID := runGuard(t, resolver, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Business-Id", "1")
		c.SetParamNames("businessId")
		c.SetParamValues("2")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint64(1), businessID)

	// Path parameter beats the query parameter.
	rec, businessID = runGuard(t, resolver, func(c echo.Context, req *http.Request) {
		c.SetParamNames("businessId")
		c.SetParamValues("2")
		req.URL.RawQuery = "businessId=1"
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint64(2), businessID)
}

func TestRequireBusinessRoleUnauthenticated(t *testing.T) {
	resolver := staticResolver{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/debtors", nil)
	req.Header.Set("X-Business-Id", "3")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireBusinessRole(resolver, model.BusinessRoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
