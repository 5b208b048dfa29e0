package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/research-analytics/internal"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/scopes"
	"github.com/frahmantamala/research-analytics/internal/researcher"
	"gorm.io/gorm"
)

const withUserColumns = "researchers.*, users.first_name AS first_name, users.last_name AS last_name, users.email AS email"

type ResearcherRepository struct {
	db *gorm.DB
}

func NewResearcherRepository(db *gorm.DB) *ResearcherRepository {
	return &ResearcherRepository{db: db}
}

func (r *ResearcherRepository) withUser(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("researchers").
		Select(withUserColumns).
		Joins("JOIN users ON users.id = researchers.user_id")
}

func (r *ResearcherRepository) Create(ctx context.Context, m *dm.Researcher) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return researcher.ErrProfileExists
	}
	return err
}

func (r *ResearcherRepository) first(q *gorm.DB) (*dm.WithUser, error) {
	var rows []dm.WithUser
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, researcher.ErrResearcherNotFound
	}
	return &rows[0], nil
}

func (r *ResearcherRepository) GetByID(ctx context.Context, id string) (*dm.WithUser, error) {
	return r.first(r.withUser(ctx).Where("researchers.id = ?", id))
}

func (r *ResearcherRepository) GetByUserID(ctx context.Context, userID string) (*dm.WithUser, error) {
	return r.first(r.withUser(ctx).Where("researchers.user_id = ?", userID))
}

func (r *ResearcherRepository) List(ctx context.Context, f dm.Filter, p internal.Pagination) ([]dm.WithUser, error) {
	var rows []dm.WithUser
	err := r.withUser(ctx).
		Scopes(scopes.Researchers(f)).
		Order("users.last_name ASC").
		Order("users.first_name ASC").
		Scopes(scopes.Paginate(p.Skip, p.Take)).
		Scan(&rows).Error
	return rows, err
}

// ListAll is unpaged and ordered by first then last name.
func (r *ResearcherRepository) ListAll(ctx context.Context, f dm.Filter) ([]dm.WithUser, error) {
	var rows []dm.WithUser
	err := r.withUser(ctx).
		Scopes(scopes.Researchers(f)).
		Order("users.first_name ASC").
		Order("users.last_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *ResearcherRepository) Count(ctx context.Context, f dm.Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dm.Researcher{}).Scopes(scopes.Researchers(f)).Count(&n).Error
	return n, err
}

func (r *ResearcherRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&dm.Researcher{}).Where("id = ?", id).Updates(changes).Error
}

func (r *ResearcherRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&dm.Researcher{}).Error
}
