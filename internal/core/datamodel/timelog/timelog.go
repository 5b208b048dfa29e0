package timelog

import (
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel"
)

const (
	CategoryAdministration          = "ADMINISTRATION"
	CategoryResearch                = "RESEARCH"
	CategoryTeaching                = "TEACHING"
	CategorySupervision             = "SUPERVISION"
	CategoryProfessionalDevelopment = "PROFESSIONAL_DEVELOPMENT"
	CategoryOther                   = "OTHER"
)

var Categories = []string{
	CategoryAdministration, CategoryResearch, CategoryTeaching,
	CategorySupervision, CategoryProfessionalDevelopment, CategoryOther,
}

const (
	ActivityAdminGrantWriting    = "ADMIN_GRANT_WRITING"
	ActivityAdminGrantBudgeting  = "ADMIN_GRANT_BUDGETING"
	ActivityAdminGrantReporting  = "ADMIN_GRANT_REPORTING"
	ActivityAdminGrantCompliance = "ADMIN_GRANT_COMPLIANCE"
	ActivityAdminGrantReview     = "ADMIN_GRANT_REVIEW"
	ActivityAdminMeetings        = "ADMIN_MEETINGS"
	ActivityAdminEmails          = "ADMIN_EMAILS"
	ActivityAdminCommittees      = "ADMIN_COMMITTEES"
	ActivityAdminHRRecruitment   = "ADMIN_HR_RECRUITMENT"
	ActivityAdminFinance         = "ADMIN_FINANCE"
	ActivityAdminEthicsApproval  = "ADMIN_ETHICS_APPROVAL"
	ActivityAdminDataManagement  = "ADMIN_DATA_MANAGEMENT"

	ActivityResearchExperiments = "RESEARCH_EXPERIMENTS"
	ActivityResearchWriting     = "RESEARCH_WRITING"
	ActivityResearchAnalysis    = "RESEARCH_ANALYSIS"
	ActivityResearchLiterature  = "RESEARCH_LITERATURE"
	ActivityTeachingDelivery    = "TEACHING_DELIVERY"
	ActivityTeachingPreparation = "TEACHING_PREPARATION"
	ActivityTeachingMarking     = "TEACHING_MARKING"
	ActivitySupervisionPhD      = "SUPERVISION_PHD"
	ActivityOther               = "OTHER"
)

// AdminActivities is the single allow-list of activity types counted as
// administrative burden by the bottleneck and admin-breakdown reports.
var AdminActivities = []string{
	ActivityAdminGrantWriting,
	ActivityAdminGrantBudgeting,
	ActivityAdminGrantReporting,
	ActivityAdminGrantCompliance,
	ActivityAdminGrantReview,
	ActivityAdminMeetings,
	ActivityAdminEmails,
	ActivityAdminCommittees,
	ActivityAdminHRRecruitment,
	ActivityAdminFinance,
	ActivityAdminEthicsApproval,
	ActivityAdminDataManagement,
}

var ActivityTypes = append(append([]string{}, AdminActivities...),
	ActivityResearchExperiments, ActivityResearchWriting, ActivityResearchAnalysis,
	ActivityResearchLiterature, ActivityTeachingDelivery, ActivityTeachingPreparation,
	ActivityTeachingMarking, ActivitySupervisionPhD, ActivityOther,
)

type TimeLog struct {
	datamodel.Base
	ResearcherID string    `gorm:"column:researcher_id;not null;index"`
	GrantID      *string   `gorm:"column:grant_id;index"`
	Date         time.Time `gorm:"column:date;not null;index"`
	Hours        float64   `gorm:"column:hours;not null"`
	ActivityType string    `gorm:"column:activity_type;not null"`
	Category     string    `gorm:"column:category;not null"`
	Description  *string   `gorm:"column:description"`
}

// Filter narrows time-log queries. Zero-valued fields add no predicate.
type Filter struct {
	InstitutionID string
	DepartmentID  string
	ResearcherID  string
	GrantID       string
	Category      string
	Categories    []string
	ActivityType  string
	ActivityTypes []string
	From          *time.Time
	To            *time.Time
}

// ResearcherScoped reports whether the filter needs the researchers join.
func (f Filter) ResearcherScoped() bool {
	return f.InstitutionID != "" || f.DepartmentID != ""
}
