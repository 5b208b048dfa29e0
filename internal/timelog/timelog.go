package timelog

import (
	"errors"
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
)

var ErrTimeLogNotFound = errors.New("time log not found")

type TimeLog struct {
	ID           string    `json:"id"`
	ResearcherID string    `json:"researcherId"`
	GrantID      *string   `json:"grantId,omitempty"`
	Date         time.Time `json:"date"`
	Hours        float64   `json:"hours"`
	ActivityType string    `json:"activityType"`
	Category     string    `json:"category"`
	Description  *string   `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type BulkResult struct {
	Count int `json:"count"`
}

type Day struct {
	Date       string     `json:"date"`
	DayName    string     `json:"dayName"`
	Logs       []*TimeLog `json:"logs"`
	TotalHours float64    `json:"totalHours"`
}

// Weekly is one Sunday-to-Saturday week of a researcher's logs.
type Weekly struct {
	WeekOf     string                    `json:"weekOf"`
	ByDay      []Day                     `json:"byDay"`
	TotalHours float64                   `json:"totalHours"`
	ByCategory []aggregate.CategoryHours `json:"byCategory"`
}

type AdminActivity struct {
	ActivityType string  `json:"activityType"`
	Hours        float64 `json:"hours"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"`
}

type AdminBreakdown struct {
	TotalAdminHours float64         `json:"totalAdminHours"`
	TotalAllHours   float64         `json:"totalAllHours"`
	AdminPercentage float64         `json:"adminPercentage"`
	ByActivity      []AdminActivity `json:"byActivity"`
}

// BreakdownFilter scopes the admin breakdown; zero dates fall back to the current year.
type BreakdownFilter struct {
	InstitutionID string
	DepartmentID  string
	From          *time.Time
	To            *time.Time
}

func FromDataModel(m *dm.TimeLog) *TimeLog {
	return &TimeLog{
		ID:           m.ID,
		ResearcherID: m.ResearcherID,
		GrantID:      m.GrantID,
		Date:         m.Date.UTC(),
		Hours:        m.Hours,
		ActivityType: m.ActivityType,
		Category:     m.Category,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromDataModelSlice(rows []dm.TimeLog) []*TimeLog {
	out := make([]*TimeLog, len(rows))
	for i := range rows {
		out[i] = FromDataModel(&rows[i])
	}
	return out
}
