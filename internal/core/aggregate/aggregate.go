// Package aggregate implements the count/sum/avg/group-by queries the reports are built from.
package aggregate

import (
	"context"
	"fmt"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/scopes"
	"gorm.io/gorm"
)

type StatusTotal struct {
	Status     string  `json:"status"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

type FunderTotal struct {
	FunderType string  `json:"funderType"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

type CategoryHours struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
}

type ActivityHours struct {
	ActivityType string  `json:"activityType"`
	Hours        float64 `json:"hours"`
	Count        int64   `json:"count"`
}

type ResearcherHours struct {
	ResearcherID string  `json:"researcherId"`
	Hours        float64 `json:"hours"`
}

type MonthCategoryHours struct {
	Month    string  `json:"month"`
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
}

// FunderDecision counts decided grants per funder type.
type FunderDecision struct {
	FunderType string `json:"funderType"`
	Awarded    int64  `json:"awarded"`
	Rejected   int64  `json:"rejected"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) timeLogs(ctx context.Context, f timelog.Filter) *gorm.DB {
	return s.db.WithContext(ctx).Model(&timelog.TimeLog{}).Scopes(scopes.TimeLogs(f))
}

func (s *Store) grants(ctx context.Context, f grant.Filter) *gorm.DB {
	return s.db.WithContext(ctx).Model(&grant.Grant{}).Scopes(scopes.Grants(f))
}

func (s *Store) SumHours(ctx context.Context, f timelog.Filter) (float64, error) {
	var total float64
	err := s.timeLogs(ctx, f).Select("COALESCE(SUM(time_logs.hours), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}
	return total, nil
}

func (s *Store) AvgHours(ctx context.Context, f timelog.Filter) (float64, error) {
	var avg float64
	err := s.timeLogs(ctx, f).Select("COALESCE(AVG(time_logs.hours), 0)").Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("average hours: %w", err)
	}
	return avg, nil
}

// HoursByCategory is ordered by hours descending.
func (s *Store) HoursByCategory(ctx context.Context, f timelog.Filter) ([]CategoryHours, error) {
	var rows []CategoryHours
	err := s.timeLogs(ctx, f).
		Select("time_logs.category AS category, SUM(time_logs.hours) AS hours").
		Group("time_logs.category").
		Order("hours DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hours by category: %w", err)
	}
	return rows, nil
}

// HoursByActivity is ordered by hours descending; limit <= 0 means no limit.
func (s *Store) HoursByActivity(ctx context.Context, f timelog.Filter, limit int) ([]ActivityHours, error) {
	var rows []ActivityHours
	q := s.timeLogs(ctx, f).
		Select("time_logs.activity_type AS activity_type, SUM(time_logs.hours) AS hours, COUNT(time_logs.id) AS count").
		Group("time_logs.activity_type").
		Order("hours DESC").
		Order("time_logs.activity_type ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("hours by activity: %w", err)
	}
	return rows, nil
}

// HoursByResearcher is ordered by hours descending.
func (s *Store) HoursByResearcher(ctx context.Context, f timelog.Filter) ([]ResearcherHours, error) {
	var rows []ResearcherHours
	err := s.timeLogs(ctx, f).
		Select("time_logs.researcher_id AS researcher_id, SUM(time_logs.hours) AS hours").
		Group("time_logs.researcher_id").
		Order("hours DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hours by researcher: %w", err)
	}
	return rows, nil
}

// HoursByMonthCategory is ordered by month ascending.
func (s *Store) HoursByMonthCategory(ctx context.Context, f timelog.Filter) ([]MonthCategoryHours, error) {
	month := scopes.MonthExpr(s.db, "time_logs.date")
	var rows []MonthCategoryHours
	err := s.timeLogs(ctx, f).
		Select(month + " AS month, time_logs.category AS category, SUM(time_logs.hours) AS hours").
		Group(month + ", time_logs.category").
		Order("month ASC").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hours by month: %w", err)
	}
	return rows, nil
}

func (s *Store) CountGrants(ctx context.Context, f grant.Filter) (int64, error) {
	var n int64
	if err := s.grants(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count grants: %w", err)
	}
	return n, nil
}

func (s *Store) SumGrantAmount(ctx context.Context, f grant.Filter) (float64, error) {
	var total float64
	err := s.grants(ctx, f).Select("COALESCE(SUM(grants.amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum grant amount: %w", err)
	}
	return total, nil
}

func (s *Store) GrantsByStatus(ctx context.Context, f grant.Filter) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := s.grants(ctx, f).
		Select("grants.status AS status, COUNT(grants.id) AS count, COALESCE(SUM(grants.amount), 0) AS total_value").
		Group("grants.status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grants by status: %w", err)
	}
	return rows, nil
}

func (s *Store) GrantsByFunder(ctx context.Context, f grant.Filter) ([]FunderTotal, error) {
	var rows []FunderTotal
	err := s.grants(ctx, f).
		Select("grants.funder_type AS funder_type, COUNT(grants.id) AS count, COALESCE(SUM(grants.amount), 0) AS total_value").
		Group("grants.funder_type").
		Order("funder_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grants by funder: %w", err)
	}
	return rows, nil
}

// DecisionsByFunder ignores f.Status/f.Statuses and only looks at awarded and rejected grants.
func (s *Store) DecisionsByFunder(ctx context.Context, f grant.Filter) ([]FunderDecision, error) {
	f.Status = ""
	f.Statuses = grant.DecidedStatuses
	var rows []FunderDecision
	err := s.grants(ctx, f).
		Select(
			"grants.funder_type AS funder_type, "+
				"SUM(CASE WHEN grants.status = ? THEN 1 ELSE 0 END) AS awarded, "+
				"SUM(CASE WHEN grants.status = ? THEN 1 ELSE 0 END) AS rejected",
			grant.StatusAwarded, grant.StatusRejected).
		Group("grants.funder_type").
		Order("funder_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("decisions by funder: %w", err)
	}
	return rows, nil
}

func (s *Store) CountResearchers(ctx context.Context, f researcher.Filter) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&researcher.Researcher{}).Scopes(scopes.Researchers(f)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count researchers: %w", err)
	}
	return n, nil
}

// ResearcherCategoryHours is one (researcher, category) cell of a comparison matrix.
type ResearcherCategoryHours struct {
	ResearcherID string  `json:"researcherId"`
	Category     string  `json:"category"`
	Hours        float64 `json:"hours"`
}

func (s *Store) HoursByResearcherCategory(ctx context.Context, f timelog.Filter) ([]ResearcherCategoryHours, error) {
	var rows []ResearcherCategoryHours
	err := s.timeLogs(ctx, f).
		Select("time_logs.researcher_id AS researcher_id, time_logs.category AS category, SUM(time_logs.hours) AS hours").
		Group("time_logs.researcher_id, time_logs.category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hours by researcher and category: %w", err)
	}
	return rows, nil
}
