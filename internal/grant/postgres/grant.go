package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/research-analytics/internal"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/scopes"
	"github.com/frahmantamala/research-analytics/internal/grant"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// Create inserts the grant and its nested memberships in one transaction.
func (r *GrantRepository) Create(ctx context.Context, m *dm.Grant) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := m.Researchers
		m.Researchers = nil
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		for i := range members {
			members[i].GrantID = m.ID
			if err := tx.Create(&members[i]).Error; err != nil {
				return err
			}
		}
		m.Researchers = members
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return grant.ErrDuplicateMember
	}
	return err
}

func (r *GrantRepository) GetByID(ctx context.Context, id string) (*dm.Grant, error) {
	var m dm.Grant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grant.ErrGrantNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *GrantRepository) List(ctx context.Context, f dm.Filter, p internal.Pagination) ([]dm.Grant, error) {
	var rows []dm.Grant
	err := r.db.WithContext(ctx).
		Model(&dm.Grant{}).
		Scopes(scopes.Grants(f)).
		Order("grants.created_at DESC").
		Scopes(scopes.Paginate(p.Skip, p.Take)).
		Find(&rows).Error
	return rows, err
}

func (r *GrantRepository) Count(ctx context.Context, f dm.Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dm.Grant{}).Scopes(scopes.Grants(f)).Count(&n).Error
	return n, err
}

func (r *GrantRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&dm.Grant{}).Where("id = ?", id).Updates(changes).Error
}

func (r *GrantRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("grant_id = ?", id).Delete(&dm.GrantResearcher{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&dm.Grant{}).Error
	})
}

// Members returns the memberships of the given grants ordered by join time.
func (r *GrantRepository) Members(ctx context.Context, grantIDs ...string) ([]dm.MemberWithUser, error) {
	var rows []dm.MemberWithUser
	err := r.db.WithContext(ctx).
		Table("grant_researchers").
		Select("grant_researchers.*, users.first_name AS first_name, users.last_name AS last_name, users.email AS email").
		Joins("JOIN researchers ON researchers.id = grant_researchers.researcher_id").
		Joins("JOIN users ON users.id = researchers.user_id").
		Where("grant_researchers.grant_id IN ?", grantIDs).
		Order("grant_researchers.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *GrantRepository) AddMember(ctx context.Context, m *dm.GrantResearcher) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return grant.ErrDuplicateMember
	}
	return err
}

func (r *GrantRepository) RemoveMember(ctx context.Context, grantID, researcherID string) error {
	res := r.db.WithContext(ctx).
		Where("grant_id = ? AND researcher_id = ?", grantID, researcherID).
		Delete(&dm.GrantResearcher{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return grant.ErrMembershipNotFound
	}
	return nil
}
