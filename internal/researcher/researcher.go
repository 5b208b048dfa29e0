package researcher

import (
	"errors"
	"time"

	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
)

var (
	ErrResearcherNotFound = errors.New("researcher not found")
	ErrProfileExists      = errors.New("researcher profile already exists")
)

type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Researcher struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	InstitutionID string       `json:"institutionId"`
	DepartmentID  *string      `json:"departmentId,omitempty"`
	OrcidID       *string      `json:"orcidId,omitempty"`
	Title         *string      `json:"title,omitempty"`
	Position      *string      `json:"position,omitempty"`
	ResearchAreas []string     `json:"researchAreas"`
	ContractType  string       `json:"contractType"`
	FTE           float64      `json:"fte"`
	User          *UserSummary `json:"user,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

type Share struct {
	Hours      float64 `json:"hours"`
	Percentage float64 `json:"percentage"`
}

type CategoryShare struct {
	Category string `json:"category"`
	Share
}

type ActivityShare struct {
	ActivityType string `json:"activityType"`
	Share
}

// TimeAllocation splits a researcher's logged hours over a date range.
type TimeAllocation struct {
	ResearcherID string          `json:"researcherId"`
	From         time.Time       `json:"fromDate"`
	To           time.Time       `json:"toDate"`
	TotalHours   float64         `json:"totalHours"`
	ByCategory   []CategoryShare `json:"byCategory"`
	ByActivity   []ActivityShare `json:"byActivity"`
}

func FromDataModel(m *dm.Researcher) *Researcher {
	areas := []string(m.ResearchAreas)
	if areas == nil {
		areas = []string{}
	}
	return &Researcher{
		ID:            m.ID,
		UserID:        m.UserID,
		InstitutionID: m.InstitutionID,
		DepartmentID:  m.DepartmentID,
		OrcidID:       m.OrcidID,
		Title:         m.Title,
		Position:      m.Position,
		ResearchAreas: areas,
		ContractType:  m.ContractType,
		FTE:           m.FTE,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func FromRow(row *dm.WithUser) *Researcher {
	r := FromDataModel(&row.Researcher)
	r.User = &UserSummary{
		ID:        row.UserID,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
	}
	return r
}

func FromRows(rows []dm.WithUser) []*Researcher {
	out := make([]*Researcher, len(rows))
	for i := range rows {
		out[i] = FromRow(&rows[i])
	}
	return out
}
