package repo

import (
	"context"
	"time"

	"github.com/avorontsov/identity-service/internal/models"
	"github.com/avorontsov/identity-service/internal/tokens"
)

// PersistRefreshToken creates one ledger row for a new session. A user may
// hold any number of concurrent rows; there is no uniqueness across sessions.
func (r *GormRepo) PersistRefreshToken(ctx context.Context, user *models.User) (*models.RefreshToken, error) {
	record := models.RefreshToken{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(tokens.RefreshTokenTTL),
	}
	if err := r.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteRefreshToken is idempotent: deleting an absent row is not an error,
// so a logout retry always succeeds.
func (r *GormRepo) DeleteRefreshToken(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.RefreshToken{}, id).Error
}

// FindRefreshToken filters by both the row id and the owning user. A guessed
// row id without the matching subject proves nothing.
func (r *GormRepo) FindRefreshToken(ctx context.Context, id, userID uint) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
