package repo

import (
	"context"
	"strings"

	"github.com/avorontsov/identity-service/internal/models"
	"github.com/avorontsov/identity-service/internal/util"
)

func (r *GormRepo) CreateTenant(ctx context.Context, t *models.Tenant) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindTenantByID(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *GormRepo) UpdateTenant(ctx context.Context, id uint, name, address string) error {
	return r.DB.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", id).Updates(map[string]any{
		"name":    name,
		"address": address,
	}).Error
}

func (r *GormRepo) DeleteTenant(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Tenant{}, id).Error
}

type ListTenantsParams struct {
	Query       string
	CurrentPage int
	PerPage     int
}

func (r *GormRepo) ListTenants(ctx context.Context, p ListTenantsParams) ([]models.Tenant, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Tenant{})

	if p.Query != "" {
		pattern := "%" + strings.ToLower(p.Query) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(address) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	from, limit := util.Calculate(p.CurrentPage, p.PerPage)

	var tenants []models.Tenant
	if err := q.Order("id").Offset(from).Limit(limit).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}
