package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeGrantStatusChanged = "grant.status_changed"
	EventTypeTimeLogsBulkLogged = "timelogs.bulk_created"
)

type GrantStatusChangedEvent struct {
	BaseEvent
	GrantID       string
	InstitutionID string
	From          string
	To            string
}

func NewGrantStatusChangedEvent(grantID, institutionID, from, to string) *GrantStatusChangedEvent {
	return &GrantStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeGrantStatusChanged,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"grant_id":       grantID,
				"institution_id": institutionID,
				"from":           from,
				"to":             to,
			},
		},
		GrantID:       grantID,
		InstitutionID: institutionID,
		From:          from,
		To:            to,
	}
}

type TimeLogsBulkCreatedEvent struct {
	BaseEvent
	Count         int
	ResearcherIDs []string
	TotalHours    float64
}

func NewTimeLogsBulkCreatedEvent(count int, researcherIDs []string, totalHours float64) *TimeLogsBulkCreatedEvent {
	return &TimeLogsBulkCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeTimeLogsBulkLogged,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"count":          count,
				"researcher_ids": researcherIDs,
				"total_hours":    totalHours,
			},
		},
		Count:         count,
		ResearcherIDs: researcherIDs,
		TotalHours:    totalHours,
	}
}

// AuditLogHandler writes every event it receives to the given logger.
func AuditLogHandler(logFn func(msg string, args ...any)) Handler {
	return func(_ context.Context, event Event) error {
		logFn("domain event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}
}
