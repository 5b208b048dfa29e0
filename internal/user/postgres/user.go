package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"github.com/frahmantamala/research-analytics/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, m *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	var m userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByEmail matches case-insensitively; emails are stored lowercased.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var m userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *UserRepository) GetProfileParts(ctx context.Context, userID string) (*user.InstitutionSummary, *user.ResearcherSummary, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, user.ErrUserNotFound
		}
		return nil, nil, err
	}

	var inst *user.InstitutionSummary
	if u.InstitutionID != nil {
		var m institution.Institution
		err := r.db.WithContext(ctx).Where("id = ?", *u.InstitutionID).First(&m).Error
		switch {
		case err == nil:
			inst = &user.InstitutionSummary{ID: m.ID, Name: m.Name, Type: m.Type}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, err
		}
	}

	var res *user.ResearcherSummary
	var rm researcher.Researcher
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rm).Error
	switch {
	case err == nil:
		res = &user.ResearcherSummary{ID: rm.ID, DepartmentID: rm.DepartmentID, Position: rm.Position, FTE: rm.FTE}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, err
	}

	return inst, res, nil
}
