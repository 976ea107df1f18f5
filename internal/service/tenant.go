package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/avorontsov/identity-service/internal/events"
	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/models"
	"github.com/avorontsov/identity-service/internal/repo"
)

type TenantService struct {
	Repo   repo.GormRepo
	Events *events.Producer
}

type TenantInput struct {
	Name    string
	Address string
}

func (in TenantInput) validate() error {
	if in.Name == "" || len(in.Name) > 100 {
		return fmt.Errorf("%w: name is required and must be at most 100 characters", ErrValidation)
	}
	if in.Address == "" || len(in.Address) > 255 {
		return fmt.Errorf("%w: address is required and must be at most 255 characters", ErrValidation)
	}
	return nil
}

func (s *TenantService) Create(ctx context.Context, in TenantInput) (*models.Tenant, error) {
	l := logging.FromContext(ctx).With("svc", "tenant.create")

	if err := in.validate(); err != nil {
		return nil, err
	}

	tenant := models.Tenant{Name: in.Name, Address: in.Address}
	if err := s.Repo.CreateTenant(ctx, &tenant); err != nil {
		l.Error("tenant_create_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TypeTenantCreated, tenant.ID, &tenant)

	l.Info("tenant_created", "tenant_id", tenant.ID)
	return &tenant, nil
}

func (s *TenantService) Update(ctx context.Context, id uint, in TenantInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.Repo.UpdateTenant(ctx, id, in.Name, in.Address)
}

func (s *TenantService) GetByID(ctx context.Context, id uint) (*models.Tenant, error) {
	tenant, err := s.Repo.FindTenantByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: tenant does not exist", ErrNotFound)
		}
		return nil, err
	}
	return tenant, nil
}

func (s *TenantService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "tenant.delete")

	if err := s.Repo.DeleteTenant(ctx, id); err != nil {
		l.Error("tenant_delete_failed", "tenant_id", id, "error", err)
		return err
	}

	s.publish(ctx, events.TypeTenantDeleted, id, map[string]uint{"id": id})

	l.Info("tenant_deleted", "tenant_id", id)
	return nil
}

type TenantPage struct {
	Data        []models.Tenant `json:"data"`
	Total       int64           `json:"total"`
	CurrentPage int             `json:"currentPage"`
	PerPage     int             `json:"perPage"`
}

func (s *TenantService) List(ctx context.Context, p repo.ListTenantsParams) (*TenantPage, error) {
	tenants, total, err := s.Repo.ListTenants(ctx, p)
	if err != nil {
		return nil, err
	}
	page := &TenantPage{
		Data:        tenants,
		Total:       total,
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
	}
	if page.CurrentPage < 1 {
		page.CurrentPage = 1
	}
	return page, nil
}

func (s *TenantService) publish(ctx context.Context, eventType string, id uint, payload any) {
	key := strconv.FormatUint(uint64(id), 10)
	if err := s.Events.Publish(ctx, eventType, key, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}
