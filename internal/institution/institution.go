package institution

import (
	"errors"
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
)

var (
	ErrInstitutionNotFound = errors.New("institution not found")
)

type Institution struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ShortName        *string   `json:"shortName,omitempty"`
	Type             string    `json:"type"`
	Country          string    `json:"country"`
	Region           *string   `json:"region,omitempty"`
	Website          *string   `json:"website,omitempty"`
	LogoURL          *string   `json:"logoUrl,omitempty"`
	SubscriptionTier string    `json:"subscriptionTier"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Department struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institutionId"`
	Name          string    `json:"name"`
	Code          *string   `json:"code,omitempty"`
	Faculty       *string   `json:"faculty,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Stats is the per-institution snapshot served by /institutions/{id}/stats.
type Stats struct {
	InstitutionID   string                    `json:"institutionId"`
	ResearcherCount int64                     `json:"researcherCount"`
	GrantStats      []aggregate.StatusTotal   `json:"grantStats"`
	TimeLogStats    []aggregate.CategoryHours `json:"timeLogStats"`
}

func FromDataModel(m *dm.Institution) *Institution {
	return &Institution{
		ID:               m.ID,
		Name:             m.Name,
		ShortName:        m.ShortName,
		Type:             m.Type,
		Country:          m.Country,
		Region:           m.Region,
		Website:          m.Website,
		LogoURL:          m.LogoURL,
		SubscriptionTier: m.SubscriptionTier,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func FromDataModelSlice(ms []dm.Institution) []*Institution {
	out := make([]*Institution, len(ms))
	for i := range ms {
		out[i] = FromDataModel(&ms[i])
	}
	return out
}

func DepartmentFromDataModel(m *dm.Department) *Department {
	return &Department{
		ID:            m.ID,
		InstitutionID: m.InstitutionID,
		Name:          m.Name,
		Code:          m.Code,
		Faculty:       m.Faculty,
		CreatedAt:     m.CreatedAt,
	}
}
