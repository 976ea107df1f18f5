package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/repo"
	"github.com/avorontsov/identity-service/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("user_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Create(ctx, service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		TenantID:  req.TenantID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, idResponse{ID: user.ID})
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := idParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url param")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Update(ctx, id, service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		TenantID:  req.TenantID,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *UserHTTP) GetOne(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url param")
	}

	user, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) List(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), repo.ListUsersParams{
		Query:       c.QueryParam("q"),
		Role:        c.QueryParam("role"),
		CurrentPage: queryInt(c, "currentPage", 1),
		PerPage:     queryInt(c, "perPage", 6),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url param")
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}
