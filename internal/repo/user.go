package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/avorontsov/identity-service/internal/models"
	"github.com/avorontsov/identity-service/internal/util"
)

// CreateUser inserts u unless a user with the same email already exists.
// The email match is exact and case-sensitive.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(u).Error
	})
}

// FindUserByEmailWithPassword is the one read that returns the password
// hash; every other lookup leaves it out of serialized output.
func (r *GormRepo) FindUserByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Tenant").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser touches profile fields only; email and password are immutable
// through this path.
func (r *GormRepo) UpdateUser(ctx context.Context, id uint, firstName, lastName, role string, tenantID *uint) error {
	updates := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
		"role":       role,
	}
	if tenantID != nil {
		updates["tenant_id"] = *tenantID
	}
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteUser removes the user row; the ledger FK cascade drops any refresh
// token records the user still owns.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.User{}, id).Error
}

type ListUsersParams struct {
	Query       string
	Role        string
	CurrentPage int
	PerPage     int
}

func (r *GormRepo) ListUsers(ctx context.Context, p ListUsersParams) ([]models.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})

	if p.Query != "" {
		pattern := "%" + strings.ToLower(p.Query) + "%"
		q = q.Where(
			"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if p.Role != "" {
		q = q.Where("role = ?", p.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	from, limit := util.Calculate(p.CurrentPage, p.PerPage)

	var users []models.User
	if err := q.Preload("Tenant").Order("id").Offset(from).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormRepo) FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Preload("Tenant").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
