package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/repo"
	"github.com/avorontsov/identity-service/internal/service"
)

type TenantHTTP struct {
	Svc *service.TenantService
}

func (h *TenantHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tenant_create")

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("tenant_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	tenant, err := h.Svc.Create(ctx, service.TenantInput{Name: req.Name, Address: req.Address})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, idResponse{ID: tenant.ID})
}

func (h *TenantHTTP) Update(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url param")
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Update(c.Request().Context(), id, service.TenantInput{
		Name:    req.Name,
		Address: req.Address,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *TenantHTTP) GetOne(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url param")
	}

	tenant, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHTTP) List(c echo.Context) error {
	page, err := h.Svc.List(c.Request().Context(), repo.ListTenantsParams{
		Query:       c.QueryParam("q"),
		CurrentPage: queryInt(c, "currentPage", 1),
		PerPage:     queryInt(c, "perPage", 6),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *TenantHTTP) Delete(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url param")
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}
