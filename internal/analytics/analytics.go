// Package analytics builds the cross-entity reports served under /analytics.
package analytics

import (
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
)

type Dashboard struct {
	ResearcherCount     int64   `json:"researcherCount"`
	GrantCount          int64   `json:"grantCount"`
	ActiveGrants        int64   `json:"activeGrants"`
	TotalTimeLogged     float64 `json:"totalTimeLogged"`
	AdminTimePercentage float64 `json:"adminTimePercentage"`
}

// TimeTrends is sparse: a (month, category) pair with no hours has no entry.
type TimeTrends struct {
	Months     []string                       `json:"months"`
	Categories []string                       `json:"categories"`
	Data       []aggregate.MonthCategoryHours `json:"data"`
}

type Bottleneck struct {
	ActivityType string  `json:"activityType"`
	TotalHours   float64 `json:"totalHours"`
	LogCount     int64   `json:"logCount"`
	Percentage   float64 `json:"percentage"`
}

type ResearcherComparison struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Position        *string `json:"position"`
	TotalHours      float64 `json:"totalHours"`
	AdminHours      float64 `json:"adminHours"`
	AdminPercentage float64 `json:"adminPercentage"`
	ResearchHours   float64 `json:"researchHours"`
	TeachingHours   float64 `json:"teachingHours"`
}

type GrantPipeline struct {
	ByStatus          []aggregate.StatusTotal `json:"byStatus"`
	ByFunder          []aggregate.FunderTotal `json:"byFunder"`
	TotalAwardedValue float64                 `json:"totalAwardedValue"`
	SuccessRate       float64                 `json:"successRate"`
}

type BenchmarkComparison struct {
	Metric       string  `json:"metric"`
	YourValue    float64 `json:"yourValue"`
	Percentile25 float64 `json:"percentile25"`
	Percentile50 float64 `json:"percentile50"`
	Percentile75 float64 `json:"percentile75"`
	SampleSize   int     `json:"sampleSize"`
}

type Benchmarks struct {
	InstitutionType string                `json:"institutionType"`
	CurrentMetrics  map[string]float64    `json:"currentMetrics"`
	Benchmarks      []BenchmarkComparison `json:"benchmarks"`
}
