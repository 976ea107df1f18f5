package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avorontsov/identity-service/internal/middleware"
	"github.com/avorontsov/identity-service/internal/models"
)

type Deps struct {
	Auth          *middleware.Auth
	AuthHandler   *AuthHTTP
	UserHandler   *UserHTTP
	TenantHandler *TenantHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/self", d.AuthHandler.Self, d.Auth.Authenticate)
	auth.POST("/refresh", d.AuthHandler.Refresh, d.Auth.ValidateRefreshToken)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.Authenticate, d.Auth.ParseRefreshToken)

	adminOnly := []echo.MiddlewareFunc{d.Auth.Authenticate, middleware.RequireRole(models.RoleAdmin)}

	tenants := e.Group("/tenants", adminOnly...)
	tenants.POST("", d.TenantHandler.Create)
	tenants.GET("", d.TenantHandler.List)
	tenants.GET("/:id", d.TenantHandler.GetOne)
	tenants.PATCH("/:id", d.TenantHandler.Update)
	tenants.DELETE("/:id", d.TenantHandler.Delete)

	users := e.Group("/users", adminOnly...)
	users.POST("", d.UserHandler.Create)
	users.GET("", d.UserHandler.List)
	users.GET("/:id", d.UserHandler.GetOne)
	users.PATCH("/:id", d.UserHandler.Update)
	users.DELETE("/:id", d.UserHandler.Delete)
}
