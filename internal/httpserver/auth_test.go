package httpserver

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avorontsov/identity-service/internal/middleware"
	"github.com/avorontsov/identity-service/internal/models"
	"github.com/avorontsov/identity-service/internal/repo"
	"github.com/avorontsov/identity-service/internal/service"
	"github.com/avorontsov/identity-service/internal/tokens"
)

type serverEnv struct {
	e   *echo.Echo
	db  *gorm.DB
	rp  repo.GormRepo
	tok *tokens.TokenService
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.User{}, &models.RefreshToken{}))

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	rp := repo.GormRepo{DB: db}
	tok := tokens.NewTokenService(&tokens.Keys{
		PrivateKey:    priv,
		PublicKey:     &priv.PublicKey,
		RefreshSecret: []byte("test-refresh-secret"),
	})

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler()

	Register(e, &Deps{
		Auth: middleware.NewAuth(tok, rp),
		AuthHandler: &AuthHTTP{
			Svc:          &service.AuthService{Repo: rp, Tokens: tok},
			CookieDomain: "localhost",
		},
		UserHandler:   &UserHTTP{Svc: &service.UserService{Repo: rp}},
		TenantHandler: &TenantHTTP{Svc: &service.TenantService{Repo: rp}},
	})

	return &serverEnv{e: e, db: db, rp: rp, tok: tok}
}

func (env *serverEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookies(t *testing.T, rec *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	t.Helper()

	res := http.Response{Header: rec.Header()}
	for _, cookie := range res.Cookies() {
		switch cookie.Name {
		case middleware.AccessCookie:
			access = cookie
		case middleware.RefreshCookie:
			refresh = cookie
		}
	}
	return access, refresh
}

func (env *serverEnv) ledgerCount(t *testing.T, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, env.db.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func registerBody() map[string]string {
	return map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "a@x.com",
		"password":  "secret123",
	}
}

func TestRegister_CreatesCustomerAndSetsCookies(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.ID)

	var user models.User
	require.NoError(t, env.db.First(&user, resp.ID).Error)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotContains(t, rec.Body.String(), "secret123")

	access, refresh := sessionCookies(t, rec)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/register", registerBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ConflictError")
}

func TestLogin_SetsDecodableCookiesAndLedgerRow(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	access, refresh := sessionCookies(t, rec)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	accessClaims, err := env.tok.AccessClaimsFromToken(access.Value)
	require.NoError(t, err)
	userID, err := accessClaims.UserID()
	require.NoError(t, err)

	refreshClaims, err := env.tok.RefreshClaimsFromToken(refresh.Value)
	require.NoError(t, err)
	recordID, err := refreshClaims.LedgerID()
	require.NoError(t, err)

	_, err = env.rp.FindRefreshToken(t.Context(), recordID, userID)
	require.NoError(t, err)
}

func TestLogin_IdenticalErrorForWrongEmailAndWrongPassword(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	wrongEmail := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "whatever123",
	})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, wrongEmail.Code)

	msg := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Errors []struct {
				Msg string `json:"msg"`
			} `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Errors, 1)
		return body.Errors[0].Msg
	}
	assert.Equal(t, msg(wrongPassword), msg(wrongEmail))
}

func TestSelf_ReturnsProfileWithoutPassword(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	access, _ := sessionCookies(t, rec)

	rec = env.do(t, http.MethodGet, "/auth/self", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
	assert.NotContains(t, rec.Body.String(), "secret123")

	rec = env.do(t, http.MethodGet, "/auth/self", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RotatesSession(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	_, oldRefresh := sessionCookies(t, rec)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, "/auth/refresh", nil, oldRefresh)
	require.Equal(t, http.StatusOK, rec.Code)

	access, newRefresh := sessionCookies(t, rec)
	require.NotNil(t, access)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// Old row replaced, not accumulated.
	assert.EqualValues(t, 1, env.ledgerCount(t, created.ID))

	// The previous refresh token is single-use.
	rec = env.do(t, http.MethodPost, "/auth/refresh", nil, oldRefresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/refresh", nil, newRefresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_ClearsCookiesAndRevokes(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	access, refresh := sessionCookies(t, rec)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, "/auth/logout", nil, access, refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	clearedAccess, clearedRefresh := sessionCookies(t, rec)
	require.NotNil(t, clearedAccess)
	require.NotNil(t, clearedRefresh)
	assert.Empty(t, clearedAccess.Value)
	assert.Empty(t, clearedRefresh.Value)
	assert.Equal(t, -1, clearedAccess.MaxAge)
	assert.Equal(t, -1, clearedRefresh.MaxAge)

	assert.EqualValues(t, 0, env.ledgerCount(t, created.ID))

	// The revoked refresh token no longer refreshes.
	rec = env.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpoints_RoleGate(t *testing.T) {
	env := newServerEnv(t)

	// Self-registered customers never reach admin surface.
	rec := env.do(t, http.MethodPost, "/auth/register", registerBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	customerAccess, _ := sessionCookies(t, rec)

	rec = env.do(t, http.MethodGet, "/tenants", nil, customerAccess)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/tenants", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken, err := env.tok.IssueAccessToken(1000, models.RoleAdmin)
	require.NoError(t, err)
	adminCookie := &http.Cookie{Name: middleware.AccessCookie, Value: adminToken}

	rec = env.do(t, http.MethodPost, "/tenants", map[string]string{
		"name":    "Acme",
		"address": "1 Main St",
	}, adminCookie)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/tenants", nil, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme")
}

func TestAdminUserManagement(t *testing.T) {
	env := newServerEnv(t)

	adminToken, err := env.tok.IssueAccessToken(1000, models.RoleAdmin)
	require.NoError(t, err)
	adminCookie := &http.Cookie{Name: middleware.AccessCookie, Value: adminToken}

	rec := env.do(t, http.MethodPost, "/users", map[string]any{
		"firstName": "Mary",
		"lastName":  "Manager",
		"email":     "m@x.com",
		"password":  "secret123",
		"role":      models.RoleManager,
	}, adminCookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/users", nil, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "m@x.com")

	rec = env.do(t, http.MethodPatch, "/users/abc", map[string]string{}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/users/"+itoa(created.ID), nil, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/users/"+itoa(created.ID), nil, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "NotFoundError")
}

func itoa(id uint) string {
	return strconv.Itoa(int(id))
}
