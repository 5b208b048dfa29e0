package benchmark

import "time"

// SectorBenchmark is externally supplied reference data; it is read with sqlx
// so the struct carries db tags next to the gorm ones used by AutoMigrate.
type SectorBenchmark struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" db:"id"`
	InstitutionType string    `gorm:"column:institution_type;not null;index" db:"institution_type"`
	Metric          string    `gorm:"column:metric;not null" db:"metric"`
	Percentile25    float64   `gorm:"column:percentile25;not null" db:"percentile25"`
	Percentile50    float64   `gorm:"column:percentile50;not null" db:"percentile50"`
	Percentile75    float64   `gorm:"column:percentile75;not null" db:"percentile75"`
	SampleSize      int       `gorm:"column:sample_size;not null" db:"sample_size"`
	PeriodStart     time.Time `gorm:"column:period_start;not null" db:"period_start"`
	PeriodEnd       time.Time `gorm:"column:period_end;not null" db:"period_end"`
}

func (SectorBenchmark) TableName() string {
	return "sector_benchmarks"
}

const (
	MetricAdminTimePercentage    = "adminTimePercentage"
	MetricGrantSuccessRate       = "grantSuccessRate"
	MetricAvgResearchHoursPerLog = "avgResearchHoursPerLog"
)
