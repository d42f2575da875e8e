// Package router wires handlers, authentication and per-business role
// guards onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/handler"
	"github.com/arvelez/debt-ledger/internal/middleware"
	"github.com/arvelez/debt-ledger/internal/model"
)

// Handlers groups every HTTP handler the router needs.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Businesses  *handler.BusinessHandler
	Members     *handler.MemberHandler
	Debtors     *handler.DebtorHandler
	Debts       *handler.DebtHandler
	Invitations *handler.InvitationHandler
}

// Register wires all routes. Public endpoints are the health check, the
// registration and login endpoints and the invitation preview. Everything
// else requires a valid access token; business-scoped endpoints
// additionally require a membership with an allowed role, resolved by the
// memberships guard.
func Register(e *echo.Echo, h Handlers, jwtSecret string, memberships middleware.MembershipResolver) {
	e.GET("/healthz", handler.Health)

	// Session endpoints. Registration and login are public; refresh and
	// logout identify the caller by a valid access token plus the
	// X-Refresh-Token header.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Users.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh, middleware.JWTAuth(jwtSecret))
	auth.POST("/logout", h.Auth.Logout, middleware.JWTAuth(jwtSecret))

	// Everything below requires a valid access token.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))

	// Account.
	v1.GET("/me", h.Users.Me)
	v1.PATCH("/me", h.Users.UpdateMe)
	v1.DELETE("/me", h.Users.InactivateMe)

	// Businesses. Creation and listing need no membership yet; reads and
	// updates of a specific business check membership inside the service.
	v1.POST("/businesses", h.Businesses.Create)
	v1.GET("/businesses", h.Businesses.List)
	v1.GET("/businesses/:businessId", h.Businesses.Get)
	v1.PATCH("/businesses/:businessId", h.Businesses.Update)

	// Invitation preview and acceptance: the invitee is authenticated but
	// not a member yet, so no business-role guard applies.
	v1.GET("/invitations/:code", h.Invitations.GetByCode)
	v1.POST("/invitations/:code/accept", h.Invitations.Accept)

	// Membership management, ADMIN only.
	members := v1.Group("/businesses/:businessId/members",
		middleware.RequireBusinessRole(memberships, model.BusinessRoleAdmin))
	members.POST("", h.Members.Add)
	members.GET("", h.Members.List)
	members.PATCH("/:memberId", h.Members.UpdateRole)
	members.DELETE("/:memberId", h.Members.Remove)

	// Debtor directory. Any member may read; ADMIN and CASHIER may write.
	debtorReads := v1.Group("/debtors", middleware.RequireBusinessRole(memberships,
		model.BusinessRoleAdmin, model.BusinessRoleCashier, model.BusinessRoleViewer))
	debtorReads.GET("", h.Debtors.List)
	debtorReads.GET("/:debtorId", h.Debtors.Get)
	debtorReads.GET("/:debtorId/debts", h.Debtors.DebtorDebts)

	debtorWrites := v1.Group("/debtors", middleware.RequireBusinessRole(memberships,
		model.BusinessRoleAdmin, model.BusinessRoleCashier))
	debtorWrites.POST("", h.Debtors.Create)
	debtorWrites.PATCH("/:debtorId", h.Debtors.Update)
	debtorWrites.DELETE("/:debtorId", h.Debtors.Delete)

	// Debts and the movement ledger. Reads for every member; writes for
	// ADMIN and CASHIER; the status override is ADMIN only.
	debtReads := v1.Group("/debts", middleware.RequireBusinessRole(memberships,
		model.BusinessRoleAdmin, model.BusinessRoleCashier, model.BusinessRoleViewer))
	debtReads.GET("", h.Debts.List)
	debtReads.GET("/:debtId", h.Debts.Get)
	debtReads.GET("/:debtId/payments", h.Debts.ListPayments)

	debtWrites := v1.Group("/debts", middleware.RequireBusinessRole(memberships,
		model.BusinessRoleAdmin, model.BusinessRoleCashier))
	debtWrites.POST("", h.Debts.Create)
	debtWrites.POST("/:debtId/payments", h.Debts.RecordPayment)
	debtWrites.POST("/:debtId/recalculate", h.Debts.Recalculate)

	debtAdmin := v1.Group("/debts", middleware.RequireBusinessRole(memberships,
		model.BusinessRoleAdmin))
	debtAdmin.PATCH("/:debtId/status", h.Debts.OverrideStatus)

	// Invitation issuing and listing, ADMIN only.
	invitations := v1.Group("/businesses/:businessId/invitations",
		middleware.RequireBusinessRole(memberships, model.BusinessRoleAdmin))
	invitations.POST("", h.Invitations.Create)
	invitations.GET("", h.Invitations.List)
}
