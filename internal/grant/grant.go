package grant

import (
	"errors"
	"time"

	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
)

var (
	ErrGrantNotFound      = errors.New("grant not found")
	ErrMembershipNotFound = errors.New("researcher is not on grant")
	ErrDuplicateMember    = errors.New("researcher already on grant")
)

type Member struct {
	ID           string    `json:"id"`
	GrantID      string    `json:"grantId"`
	ResearcherID string    `json:"researcherId"`
	Role         string    `json:"role"`
	Allocation   float64   `json:"allocation"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Grant struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Reference      *string    `json:"reference,omitempty"`
	Funder         string     `json:"funder"`
	FunderType     string     `json:"funderType"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	SubmissionDate *time.Time `json:"submissionDate,omitempty"`
	DecisionDate   *time.Time `json:"decisionDate,omitempty"`
	Description    *string    `json:"description,omitempty"`
	InstitutionID  string     `json:"institutionId"`
	Researchers    []*Member  `json:"researchers"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type FunderSuccess struct {
	FunderType  string  `json:"funderType"`
	Awarded     int64   `json:"awarded"`
	Rejected    int64   `json:"rejected"`
	SuccessRate float64 `json:"successRate"`
}

type SuccessRate struct {
	SuccessRate float64         `json:"successRate"`
	Awarded     int64           `json:"awarded"`
	Rejected    int64           `json:"rejected"`
	Total       int64           `json:"total"`
	ByFunder    []FunderSuccess `json:"byFunder"`
}

type ActivityHours struct {
	ActivityType string  `json:"activityType"`
	Hours        float64 `json:"hours"`
}

type ResearcherHours struct {
	ResearcherID string  `json:"researcherId"`
	Hours        float64 `json:"hours"`
}

type TimeSpent struct {
	GrantID      string            `json:"grantId"`
	TotalHours   float64           `json:"totalHours"`
	ByActivity   []ActivityHours   `json:"byActivity"`
	ByResearcher []ResearcherHours `json:"byResearcher"`
}

// SuccessFilter drives GET /grants/success-rate; the date range applies to decisionDate.
type SuccessFilter struct {
	InstitutionID string
	FunderType    string
	From          *time.Time
	To            *time.Time
}

func FromDataModel(m *dm.Grant) *Grant {
	return &Grant{
		ID:             m.ID,
		Title:          m.Title,
		Reference:      m.Reference,
		Funder:         m.Funder,
		FunderType:     m.FunderType,
		Amount:         m.Amount,
		Currency:       m.Currency,
		Status:         m.Status,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		SubmissionDate: m.SubmissionDate,
		DecisionDate:   m.DecisionDate,
		Description:    m.Description,
		InstitutionID:  m.InstitutionID,
		Researchers:    []*Member{},
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func MemberFromRow(row *dm.MemberWithUser) *Member {
	return &Member{
		ID:           row.ID,
		GrantID:      row.GrantID,
		ResearcherID: row.ResearcherID,
		Role:         row.Role,
		Allocation:   row.Allocation,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		CreatedAt:    row.CreatedAt,
	}
}

// attachMembers distributes member rows over the grants they belong to.
func attachMembers(grants []*Grant, rows []dm.MemberWithUser) {
	byID := make(map[string]*Grant, len(grants))
	for _, g := range grants {
		byID[g.ID] = g
	}
	for i := range rows {
		if g, ok := byID[rows[i].GrantID]; ok {
			g.Researchers = append(g.Researchers, MemberFromRow(&rows[i]))
		}
	}
}
