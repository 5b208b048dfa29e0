package grant

import (
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel"
)

const (
	StatusDraft       = "DRAFT"
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusAwarded     = "AWARDED"
	StatusActive      = "ACTIVE"
	StatusCompleted   = "COMPLETED"
	StatusRejected    = "REJECTED"
	StatusWithdrawn   = "WITHDRAWN"
)

var Statuses = []string{
	StatusDraft, StatusSubmitted, StatusUnderReview, StatusAwarded,
	StatusActive, StatusCompleted, StatusRejected, StatusWithdrawn,
}

// FundedStatuses count towards the awarded value of a pipeline.
var FundedStatuses = []string{StatusAwarded, StatusActive}

// DecidedStatuses form the success-rate denominator.
var DecidedStatuses = []string{StatusAwarded, StatusRejected}

const (
	FunderResearchCouncil = "RESEARCH_COUNCIL"
	FunderCharity         = "CHARITY"
	FunderIndustry        = "INDUSTRY"
	FunderGovernment      = "GOVERNMENT"
	FunderEU              = "EU"
	FunderInternational   = "INTERNATIONAL"
	FunderOther           = "OTHER"
)

var FunderTypes = []string{
	FunderResearchCouncil, FunderCharity, FunderIndustry, FunderGovernment,
	FunderEU, FunderInternational, FunderOther,
}

const (
	RolePrincipalInvestigator = "PRINCIPAL_INVESTIGATOR"
	RoleCoInvestigator        = "CO_INVESTIGATOR"
	RoleResearcher            = "RESEARCHER"
	RoleResearchAssistant     = "RESEARCH_ASSISTANT"
)

var Roles = []string{RolePrincipalInvestigator, RoleCoInvestigator, RoleResearcher, RoleResearchAssistant}

type Grant struct {
	datamodel.Base
	Title          string     `gorm:"column:title;not null"`
	Reference      *string    `gorm:"column:reference"`
	Funder         string     `gorm:"column:funder;not null"`
	FunderType     string     `gorm:"column:funder_type;not null;index"`
	Amount         float64    `gorm:"column:amount;not null"`
	Currency       string     `gorm:"column:currency;not null"`
	Status         string     `gorm:"column:status;not null;index"`
	StartDate      *time.Time `gorm:"column:start_date"`
	EndDate        *time.Time `gorm:"column:end_date"`
	SubmissionDate *time.Time `gorm:"column:submission_date"`
	DecisionDate   *time.Time `gorm:"column:decision_date"`
	Description    *string    `gorm:"column:description"`
	InstitutionID  string     `gorm:"column:institution_id;not null;index"`

	Researchers []GrantResearcher `gorm:"foreignKey:GrantID;constraint:OnDelete:CASCADE"`
}

type GrantResearcher struct {
	datamodel.Base
	GrantID      string  `gorm:"column:grant_id;not null;uniqueIndex:idx_grant_researcher"`
	ResearcherID string  `gorm:"column:researcher_id;not null;uniqueIndex:idx_grant_researcher"`
	Role         string  `gorm:"column:role;not null"`
	Allocation   float64 `gorm:"column:allocation;not null"`
}

// Filter narrows grant queries. Zero-valued fields add no predicate.
type Filter struct {
	InstitutionID string
	Status        string
	Statuses      []string
	FunderType    string
	ResearcherID  string
	DecidedFrom   *time.Time
	DecidedTo     *time.Time
}

// MemberWithUser is a grant membership joined with the researcher's user.
type MemberWithUser struct {
	GrantResearcher `gorm:"embedded"`
	FirstName       string `gorm:"column:first_name"`
	LastName        string `gorm:"column:last_name"`
	Email           string `gorm:"column:email"`
}
