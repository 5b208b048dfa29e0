package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/research-analytics/internal/auth"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, m *userDatamodel.RefreshToken) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *RefreshTokenRepository) Find(ctx context.Context, token string) (*userDatamodel.RefreshToken, error) {
	var m userDatamodel.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Delete consumes token. A token already gone reports ErrRefreshTokenNotFound.
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).Where("token = ?", token).Delete(&userDatamodel.RefreshToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrRefreshTokenNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteForUser(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&userDatamodel.RefreshToken{}).Error
}

func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&userDatamodel.RefreshToken{}).Error
}
