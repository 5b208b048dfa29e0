package researcher

import (
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
)

type CreateResearcherDTO struct {
	UserID        string   `json:"userId" validate:"required"`
	InstitutionID string   `json:"institutionId" validate:"required"`
	DepartmentID  *string  `json:"departmentId" validate:"omitempty,min=1"`
	OrcidID       *string  `json:"orcidId" validate:"omitempty,max=19"`
	Title         *string  `json:"title" validate:"omitempty,max=50"`
	Position      *string  `json:"position" validate:"omitempty,max=255"`
	ResearchAreas []string `json:"researchAreas" validate:"omitempty,dive,min=1,max=255"`
	ContractType  string   `json:"contractType" validate:"omitempty,enum=contract_type"`
	FTE           *float64 `json:"fte" validate:"omitempty,min=0,max=1"`
}

// UpdateResearcherDTO has no userId: the owning user never changes.
type UpdateResearcherDTO struct {
	InstitutionID *string  `json:"institutionId" validate:"omitempty,min=1"`
	DepartmentID  *string  `json:"departmentId" validate:"omitempty,min=1"`
	OrcidID       *string  `json:"orcidId" validate:"omitempty,max=19"`
	Title         *string  `json:"title" validate:"omitempty,max=50"`
	Position      *string  `json:"position" validate:"omitempty,max=255"`
	ResearchAreas []string `json:"researchAreas" validate:"omitempty,dive,min=1,max=255"`
	ContractType  *string  `json:"contractType" validate:"omitempty,enum=contract_type"`
	FTE           *float64 `json:"fte" validate:"omitempty,min=0,max=1"`
}

func (d UpdateResearcherDTO) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if d.InstitutionID != nil {
		changes["institution_id"] = *d.InstitutionID
	}
	if d.DepartmentID != nil {
		changes["department_id"] = *d.DepartmentID
	}
	if d.OrcidID != nil {
		changes["orcid_id"] = *d.OrcidID
	}
	if d.Title != nil {
		changes["title"] = *d.Title
	}
	if d.Position != nil {
		changes["position"] = *d.Position
	}
	if d.ResearchAreas != nil {
		changes["research_areas"] = dm.StringList(d.ResearchAreas)
	}
	if d.ContractType != nil {
		changes["contract_type"] = *d.ContractType
	}
	if d.FTE != nil {
		changes["fte"] = *d.FTE
	}
	return changes
}
