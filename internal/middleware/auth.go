package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/repo"
	"github.com/avorontsov/identity-service/internal/tokens"
)

// Echo context keys populated by the middleware below.
const (
	ContextUserID        = "userID"
	ContextRole          = "role"
	ContextRecordID      = "recordID"
	ContextRefreshClaims = "refreshClaims"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

type Auth struct {
	Tokens *tokens.TokenService
	Repo   repo.GormRepo
}

func NewAuth(tok *tokens.TokenService, rp repo.GormRepo) *Auth {
	return &Auth{Tokens: tok, Repo: rp}
}

// Authenticate verifies the RS256 access token and attaches its claims to
// the context. Stateless: the revocation ledger is never consulted here.
// Every failure is the same generic 401; callers can't tell expired from
// forged from missing.
func (m *Auth) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := accessTokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}

		claims, err := m.Tokens.AccessClaimsFromToken(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, claims.Role)
		return next(c)
	}
}

// ValidateRefreshToken verifies the HS256 refresh token, then confirms its
// ledger row still exists for the same subject. An absent row means the
// token was revoked: signature and expiry no longer matter. Ledger lookup
// failures are treated as revoked, not as internal faults.
func (m *Auth) ValidateRefreshToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, userID, recordID, err := m.refreshClaimsFromRequest(c)
		if err != nil {
			return err
		}

		if _, err := m.Repo.FindRefreshToken(c.Request().Context(), recordID, userID); err != nil {
			logging.FromContext(c.Request().Context()).Warn("refresh_token_revoked",
				"record_id", recordID, "user_id", userID)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextRecordID, recordID)
		c.Set(ContextRefreshClaims, claims)
		return next(c)
	}
}

// ParseRefreshToken decodes the refresh cookie signature-checked but without
// the ledger roundtrip. Logout uses it to learn which session to end; the
// delete itself is idempotent, so a revoked token is still a valid logout.
func (m *Auth) ParseRefreshToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, _, recordID, err := m.refreshClaimsFromRequest(c)
		if err != nil {
			return err
		}

		c.Set(ContextRecordID, recordID)
		return next(c)
	}
}

func (m *Auth) refreshClaimsFromRequest(c echo.Context) (*tokens.RefreshClaims, uint, uint, error) {
	cookie, err := c.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		return nil, 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	claims, err := m.Tokens.RefreshClaimsFromToken(cookie.Value)
	if err != nil {
		return nil, 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}
	recordID, err := claims.LedgerID()
	if err != nil {
		return nil, 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	return claims, userID, recordID, nil
}

// RequireRole allows only the listed roles through. The role set is closed;
// an empty or unrecognized role claim fails closed with a 403, distinct
// from the 401 of a failed token check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough permissions")
			}
			return next(c)
		}
	}
}

func accessTokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
