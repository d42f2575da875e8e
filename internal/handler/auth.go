package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arvelez/debt-ledger/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type logoutReq struct {
	AllDevices bool `json:"all_devices"`
}

type tokenPart struct {
	Token   string    `json:"token,omitempty"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    userResp  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func devicePtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Login verifies credentials and returns an access token plus the refresh
// session for the device. When the device already holds an unexpired
// session the refresh token field is empty: the secret was revealed once,
// at creation.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Auth.Login(ctx, strings.TrimSpace(req.Identifier), req.Password, devicePtr(req.DeviceInfo))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userJSON(res.User),
		Access:  tokenPart{Token: res.AccessToken, Expires: res.AccessTokenExpiresAt},
		Refresh: tokenPart{Token: res.RefreshToken, Expires: res.RefreshTokenExpiresAt},
	})
}

// Refresh exchanges the X-Refresh-Token header for a fresh access token.
// The refresh secret is not rotated; the response echoes it back.
func (h *AuthHandler) Refresh(c echo.Context) error {
	presented := strings.TrimSpace(c.Request().Header.Get("X-Refresh-Token"))
	if presented == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing X-Refresh-Token header"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, userID, presented, devicePtr(c.Request().Header.Get("X-Device-Info")))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userJSON(res.User),
		Access:  tokenPart{Token: res.AccessToken, Expires: res.AccessTokenExpiresAt},
		Refresh: tokenPart{Token: res.RefreshToken, Expires: res.RefreshTokenExpiresAt},
	})
}

// Logout revokes the session matching the X-Refresh-Token header, or all
// of the user's sessions when all_devices is set. Logout always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	_ = c.Bind(&req) // body is optional

	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	msg, err := h.Auth.Logout(ctx, userID, strings.TrimSpace(c.Request().Header.Get("X-Refresh-Token")), req.AllDevices)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
