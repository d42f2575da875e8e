package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/apperr"
	"github.com/arvelez/debt-ledger/internal/model"
)

// MembershipResolver resolves the membership of a user inside a business.
// The repository's business-user repo satisfies it.
type MembershipResolver interface {
	Get(ctx context.Context, businessID, userID uint64) (model.BusinessUser, error)
}

// BusinessID extracts the active business resolved by RequireBusinessRole.
func BusinessID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("business_id").(uint64)
	return id, ok
}

// RequireBusinessRole returns a middleware that resolves the active
// business of the request and enforces that the authenticated user is a
// member holding one of the allowed roles. The business is identified by,
// in order of precedence: the X-Business-Id header, the :businessId path
// parameter, the businessId query parameter. The resolved business ID and
// membership role are stored in the context under "business_id" and
// "business_role".
func RequireBusinessRole(resolver MembershipResolver, roles ...model.BusinessRole) echo.MiddlewareFunc {
	allowed := make(map[model.BusinessRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			businessID, ok := resolveBusinessID(c)
			if !ok {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid business id"})
			}

			userID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			m, err := resolver.Get(c.Request().Context(), businessID, userID)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this business"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if len(allowed) > 0 && !allowed[m.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient role"})
			}

			c.Set("business_id", businessID)
			c.Set("business_role", m.Role)
			return next(c)
		}
	}
}

// resolveBusinessID picks the business identifier from the request, header
// first, then path parameter, then query parameter.
func resolveBusinessID(c echo.Context) (uint64, bool) {
	candidates := []string{
		c.Request().Header.Get("X-Business-Id"),
		c.Param("businessId"),
		c.QueryParam("businessId"),
	}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
