package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/middleware"
	"github.com/avorontsov/identity-service/internal/service"
	"github.com/avorontsov/identity-service/internal/tokens"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieDomain string
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	h.setSessionCookies(c, res.AccessToken, res.RefreshToken)
	return c.JSON(http.StatusCreated, idResponse{ID: res.User.ID})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, res.AccessToken, res.RefreshToken)
	return c.JSON(http.StatusOK, idResponse{ID: res.User.ID})
}

func (h *AuthHTTP) Self(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	user, err := h.Svc.Self(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := refreshClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	res, err := h.Svc.Refresh(ctx, claims)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, res.AccessToken, res.RefreshToken)
	return c.JSON(http.StatusOK, idResponse{ID: res.User.ID})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	recordID, ok := c.Get(middleware.ContextRecordID).(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	if err := h.Svc.Logout(ctx, recordID); err != nil {
		return err
	}

	c.SetCookie(deleteCookie(middleware.AccessCookie, h.CookieDomain))
	c.SetCookie(deleteCookie(middleware.RefreshCookie, h.CookieDomain))
	return c.JSON(http.StatusOK, echo.Map{})
}

func (h *AuthHTTP) setSessionCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(createCookie(middleware.AccessCookie, accessToken, h.CookieDomain, accessCookieMaxAge))
	c.SetCookie(createCookie(middleware.RefreshCookie, refreshToken, h.CookieDomain, refreshCookieMaxAge))
}

func refreshClaimsFromContext(c echo.Context) (*tokens.RefreshClaims, bool) {
	claims, ok := c.Get(middleware.ContextRefreshClaims).(*tokens.RefreshClaims)
	return claims, ok
}
