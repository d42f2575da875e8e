package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arvelez/debt-ledger/internal/logger"
)

// RequestID assigns each request a UUID, echoes it in the X-Request-Id
// response header and stores a request-scoped logger carrying it under
// "logger". An incoming X-Request-Id is honored so IDs survive proxies.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set("X-Request-Id", id)
			c.Set("request_id", id)
			c.Set("logger", logger.L().With(zap.String("request_id", id)))
			return next(c)
		}
	}
}
