package timelog

import (
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
)

type CreateTimeLogDTO struct {
	ResearcherID string  `json:"researcherId" validate:"required"`
	GrantID      *string `json:"grantId" validate:"omitempty,min=1"`
	Date         string  `json:"date" validate:"required,datestr"`
	Hours        float64 `json:"hours" validate:"required,min=0.25,max=24"`
	ActivityType string  `json:"activityType" validate:"required,enum=activity_type"`
	Category     string  `json:"category" validate:"required,enum=time_category"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

func (d CreateTimeLogDTO) toDataModel() (dm.TimeLog, error) {
	date, err := dateutil.Parse(d.Date)
	if err != nil {
		return dm.TimeLog{}, err
	}
	return dm.TimeLog{
		ResearcherID: d.ResearcherID,
		GrantID:      d.GrantID,
		Date:         date,
		Hours:        d.Hours,
		ActivityType: d.ActivityType,
		Category:     d.Category,
		Description:  d.Description,
	}, nil
}

type BulkCreateTimeLogDTO struct {
	Logs []CreateTimeLogDTO `json:"logs" validate:"required,min=1,max=100,dive"`
}

// UpdateTimeLogDTO cannot reassign a log to another researcher.
type UpdateTimeLogDTO struct {
	GrantID      *string  `json:"grantId" validate:"omitempty,min=1"`
	Date         *string  `json:"date" validate:"omitempty,datestr"`
	Hours        *float64 `json:"hours" validate:"omitempty,min=0.25,max=24"`
	ActivityType *string  `json:"activityType" validate:"omitempty,enum=activity_type"`
	Category     *string  `json:"category" validate:"omitempty,enum=time_category"`
	Description  *string  `json:"description" validate:"omitempty,max=500"`
}

func (d UpdateTimeLogDTO) Changes() (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	if d.GrantID != nil {
		changes["grant_id"] = *d.GrantID
	}
	if d.Date != nil {
		date, err := dateutil.Parse(*d.Date)
		if err != nil {
			return nil, err
		}
		changes["date"] = date
	}
	if d.Hours != nil {
		changes["hours"] = *d.Hours
	}
	if d.ActivityType != nil {
		changes["activity_type"] = *d.ActivityType
	}
	if d.Category != nil {
		changes["category"] = *d.Category
	}
	if d.Description != nil {
		changes["description"] = *d.Description
	}
	return changes, nil
}
