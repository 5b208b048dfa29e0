// Package scopes turns the optional-filter structs of the datamodel into gorm scopes.
package scopes

import (
	"strings"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"gorm.io/gorm"
)

func TimeLogs(f timelog.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ResearcherScoped() {
			db = db.Joins("JOIN researchers ON researchers.id = time_logs.researcher_id")
			if f.InstitutionID != "" {
				db = db.Where("researchers.institution_id = ?", f.InstitutionID)
			}
			if f.DepartmentID != "" {
				db = db.Where("researchers.department_id = ?", f.DepartmentID)
			}
		}
		if f.ResearcherID != "" {
			db = db.Where("time_logs.researcher_id = ?", f.ResearcherID)
		}
		if f.GrantID != "" {
			db = db.Where("time_logs.grant_id = ?", f.GrantID)
		}
		if f.Category != "" {
			db = db.Where("time_logs.category = ?", f.Category)
		}
		if len(f.Categories) > 0 {
			db = db.Where("time_logs.category IN ?", f.Categories)
		}
		if f.ActivityType != "" {
			db = db.Where("time_logs.activity_type = ?", f.ActivityType)
		}
		if len(f.ActivityTypes) > 0 {
			db = db.Where("time_logs.activity_type IN ?", f.ActivityTypes)
		}
		if f.From != nil {
			db = db.Where("time_logs.date >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("time_logs.date <= ?", *f.To)
		}
		return db
	}
}

func Grants(f grant.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.InstitutionID != "" {
			db = db.Where("grants.institution_id = ?", f.InstitutionID)
		}
		if f.Status != "" {
			db = db.Where("grants.status = ?", f.Status)
		}
		if len(f.Statuses) > 0 {
			db = db.Where("grants.status IN ?", f.Statuses)
		}
		if f.FunderType != "" {
			db = db.Where("grants.funder_type = ?", f.FunderType)
		}
		if f.ResearcherID != "" {
			db = db.Where("grants.id IN (SELECT grant_id FROM grant_researchers WHERE researcher_id = ?)", f.ResearcherID)
		}
		if f.DecidedFrom != nil {
			db = db.Where("grants.decision_date >= ?", *f.DecidedFrom)
		}
		if f.DecidedTo != nil {
			db = db.Where("grants.decision_date <= ?", *f.DecidedTo)
		}
		return db
	}
}

func Researchers(f researcher.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.InstitutionID != "" {
			db = db.Where("researchers.institution_id = ?", f.InstitutionID)
		}
		if f.DepartmentID != "" {
			db = db.Where("researchers.department_id = ?", f.DepartmentID)
		}
		if f.Position != "" {
			db = db.Where("LOWER(researchers.position) LIKE ?", "%"+strings.ToLower(f.Position)+"%")
		}
		return db
	}
}

// Paginate applies skip/take.
func Paginate(skip, take int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(skip).Limit(take)
	}
}

// MonthExpr renders column as a YYYY-MM string in the connection's SQL dialect.
func MonthExpr(db *gorm.DB, column string) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "strftime('%Y-%m', " + column + ")"
	default:
		return "TO_CHAR(" + column + ", 'YYYY-MM')"
	}
}
