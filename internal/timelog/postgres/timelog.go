package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/research-analytics/internal"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/scopes"
	"github.com/frahmantamala/research-analytics/internal/timelog"
	"gorm.io/gorm"
)

const bulkBatchSize = 100

type TimeLogRepository struct {
	db *gorm.DB
}

func NewTimeLogRepository(db *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

func (r *TimeLogRepository) Create(ctx context.Context, m *dm.TimeLog) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// CreateMany inserts all logs in one transaction.
func (r *TimeLogRepository) CreateMany(ctx context.Context, logs []dm.TimeLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(logs, bulkBatchSize).Error
	})
}

func (r *TimeLogRepository) GetByID(ctx context.Context, id string) (*dm.TimeLog, error) {
	var m dm.TimeLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timelog.ErrTimeLogNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *TimeLogRepository) filtered(ctx context.Context, f dm.Filter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&dm.TimeLog{}).Scopes(scopes.TimeLogs(f))
}

func (r *TimeLogRepository) List(ctx context.Context, f dm.Filter, p internal.Pagination) ([]dm.TimeLog, error) {
	var rows []dm.TimeLog
	err := r.filtered(ctx, f).
		Select("time_logs.*").
		Order("time_logs.date DESC").
		Order("time_logs.created_at DESC").
		Scopes(scopes.Paginate(p.Skip, p.Take)).
		Find(&rows).Error
	return rows, err
}

// ListChronological is unpaged and ordered by date ascending.
func (r *TimeLogRepository) ListChronological(ctx context.Context, f dm.Filter) ([]dm.TimeLog, error) {
	var rows []dm.TimeLog
	err := r.filtered(ctx, f).
		Select("time_logs.*").
		Order("time_logs.date ASC").
		Order("time_logs.created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *TimeLogRepository) Count(ctx context.Context, f dm.Filter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *TimeLogRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&dm.TimeLog{}).Where("id = ?", id).Updates(changes).Error
}

func (r *TimeLogRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&dm.TimeLog{}).Error
}
