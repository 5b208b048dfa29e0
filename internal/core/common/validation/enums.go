package validation

import (
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/benchmark"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
)

// Enum names usable in `validate:"enum=<name>"` tags.
const (
	EnumInstitutionType  = "institution_type"
	EnumSubscriptionTier = "subscription_tier"
	EnumUserRole         = "user_role"
	EnumContractType     = "contract_type"
	EnumGrantStatus      = "grant_status"
	EnumFunderType       = "funder_type"
	EnumGrantRole        = "grant_role"
	EnumTimeCategory     = "time_category"
	EnumActivityType     = "activity_type"
	EnumBenchmarkMetric  = "benchmark_metric"
)

func init() {
	RegisterEnum(EnumInstitutionType, institution.Types...)
	RegisterEnum(EnumSubscriptionTier, institution.Tiers...)
	RegisterEnum(EnumUserRole, user.Roles...)
	RegisterEnum(EnumContractType, researcher.ContractTypes...)
	RegisterEnum(EnumGrantStatus, grant.Statuses...)
	RegisterEnum(EnumFunderType, grant.FunderTypes...)
	RegisterEnum(EnumGrantRole, grant.Roles...)
	RegisterEnum(EnumTimeCategory, timelog.Categories...)
	RegisterEnum(EnumActivityType, timelog.ActivityTypes...)
	RegisterEnum(EnumBenchmarkMetric,
		benchmark.MetricAdminTimePercentage,
		benchmark.MetricGrantSuccessRate,
		benchmark.MetricAvgResearchHoursPerLog,
	)
}
