package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/research-analytics/internal"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/scopes"
	"github.com/frahmantamala/research-analytics/internal/institution"
	"gorm.io/gorm"
)

type InstitutionRepository struct {
	db *gorm.DB
}

func NewInstitutionRepository(db *gorm.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

func (r *InstitutionRepository) Create(ctx context.Context, m *dm.Institution) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *InstitutionRepository) GetByID(ctx context.Context, id string) (*dm.Institution, error) {
	var m dm.Institution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, institution.ErrInstitutionNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *InstitutionRepository) filtered(ctx context.Context, f institution.ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&dm.Institution{})
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return q
}

func (r *InstitutionRepository) List(ctx context.Context, f institution.ListFilter, p internal.Pagination) ([]dm.Institution, error) {
	var rows []dm.Institution
	err := r.filtered(ctx, f).
		Order("name ASC").
		Scopes(scopes.Paginate(p.Skip, p.Take)).
		Find(&rows).Error
	return rows, err
}

func (r *InstitutionRepository) Count(ctx context.Context, f institution.ListFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *InstitutionRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&dm.Institution{}).Where("id = ?", id).Updates(changes).Error
}

func (r *InstitutionRepository) CreateDepartment(ctx context.Context, m *dm.Department) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *InstitutionRepository) GetDepartment(ctx context.Context, id string) (*dm.Department, error) {
	var m dm.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, institution.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *InstitutionRepository) ListDepartments(ctx context.Context, institutionID string) ([]dm.Department, error) {
	var rows []dm.Department
	err := r.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}
