package grant

import (
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
)

type GrantResearcherInput struct {
	ResearcherID string   `json:"researcherId" validate:"required"`
	Role         string   `json:"role" validate:"required,enum=grant_role"`
	Allocation   *float64 `json:"allocation" validate:"omitempty,min=0,max=100"`
}

type CreateGrantDTO struct {
	Title          string                 `json:"title" validate:"required,max=500"`
	Reference      *string                `json:"reference" validate:"omitempty,max=100"`
	Funder         string                 `json:"funder" validate:"required,max=255"`
	FunderType     string                 `json:"funderType" validate:"required,enum=funder_type"`
	Amount         *float64               `json:"amount" validate:"required,min=0"`
	Currency       string                 `json:"currency" validate:"omitempty,len=3"`
	Status         string                 `json:"status" validate:"omitempty,enum=grant_status"`
	StartDate      *string                `json:"startDate" validate:"omitempty,datestr"`
	EndDate        *string                `json:"endDate" validate:"omitempty,datestr"`
	SubmissionDate *string                `json:"submissionDate" validate:"omitempty,datestr"`
	DecisionDate   *string                `json:"decisionDate" validate:"omitempty,datestr"`
	Description    *string                `json:"description" validate:"omitempty,max=5000"`
	InstitutionID  string                 `json:"institutionId" validate:"required"`
	Researchers    []GrantResearcherInput `json:"researchers" validate:"omitempty,dive"`
}

// UpdateGrantDTO cannot move a grant to another institution.
type UpdateGrantDTO struct {
	Title          *string  `json:"title" validate:"omitempty,min=1,max=500"`
	Reference      *string  `json:"reference" validate:"omitempty,max=100"`
	Funder         *string  `json:"funder" validate:"omitempty,min=1,max=255"`
	FunderType     *string  `json:"funderType" validate:"omitempty,enum=funder_type"`
	Amount         *float64 `json:"amount" validate:"omitempty,min=0"`
	Currency       *string  `json:"currency" validate:"omitempty,len=3"`
	Status         *string  `json:"status" validate:"omitempty,enum=grant_status"`
	StartDate      *string  `json:"startDate" validate:"omitempty,datestr"`
	EndDate        *string  `json:"endDate" validate:"omitempty,datestr"`
	SubmissionDate *string  `json:"submissionDate" validate:"omitempty,datestr"`
	DecisionDate   *string  `json:"decisionDate" validate:"omitempty,datestr"`
	Description    *string  `json:"description" validate:"omitempty,max=5000"`
}

func (d UpdateGrantDTO) Changes() (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	if d.Title != nil {
		changes["title"] = *d.Title
	}
	if d.Reference != nil {
		changes["reference"] = *d.Reference
	}
	if d.Funder != nil {
		changes["funder"] = *d.Funder
	}
	if d.FunderType != nil {
		changes["funder_type"] = *d.FunderType
	}
	if d.Amount != nil {
		changes["amount"] = *d.Amount
	}
	if d.Currency != nil {
		changes["currency"] = *d.Currency
	}
	if d.Status != nil {
		changes["status"] = *d.Status
	}
	if d.Description != nil {
		changes["description"] = *d.Description
	}
	dates := map[string]*string{
		"start_date":      d.StartDate,
		"end_date":        d.EndDate,
		"submission_date": d.SubmissionDate,
		"decision_date":   d.DecisionDate,
	}
	for column, raw := range dates {
		t, err := dateutil.ParsePtr(raw)
		if err != nil {
			return nil, err
		}
		if t != nil {
			changes[column] = *t
		}
	}
	return changes, nil
}

// AddResearcherDTO is the body of POST /grants/{id}/researchers.
type AddResearcherDTO = GrantResearcherInput
