package analytics

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/benchmark"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/stats"
	"github.com/frahmantamala/research-analytics/internal/institution"
)

const (
	DefaultTrendMonths     = 12
	DefaultBottleneckLimit = 10
)

// Aggregates is the slice of the aggregate store the reports are built from.
type Aggregates interface {
	SumHours(ctx context.Context, f timelog.Filter) (float64, error)
	AvgHours(ctx context.Context, f timelog.Filter) (float64, error)
	HoursByActivity(ctx context.Context, f timelog.Filter, limit int) ([]aggregate.ActivityHours, error)
	HoursByMonthCategory(ctx context.Context, f timelog.Filter) ([]aggregate.MonthCategoryHours, error)
	HoursByResearcherCategory(ctx context.Context, f timelog.Filter) ([]aggregate.ResearcherCategoryHours, error)
	CountGrants(ctx context.Context, f grant.Filter) (int64, error)
	SumGrantAmount(ctx context.Context, f grant.Filter) (float64, error)
	GrantsByStatus(ctx context.Context, f grant.Filter) ([]aggregate.StatusTotal, error)
	GrantsByFunder(ctx context.Context, f grant.Filter) ([]aggregate.FunderTotal, error)
	CountResearchers(ctx context.Context, f researcher.Filter) (int64, error)
}

type ResearcherSource interface {
	ListAll(ctx context.Context, f researcher.Filter) ([]researcher.WithUser, error)
}

type BenchmarkRepository interface {
	ByInstitutionType(ctx context.Context, institutionType string) ([]benchmark.SectorBenchmark, error)
}

type InstitutionLookup interface {
	GetByID(ctx context.Context, id string) (*institution.Institution, error)
}

type Service struct {
	agg          Aggregates
	researchers  ResearcherSource
	benchmarks   BenchmarkRepository
	institutions InstitutionLookup
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(agg Aggregates, researchers ResearcherSource, benchmarks BenchmarkRepository, institutions InstitutionLookup, logger *slog.Logger) *Service {
	return &Service{
		agg:          agg,
		researchers:  researchers,
		benchmarks:   benchmarks,
		institutions: institutions,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) failed(report string, err error) error {
	s.logger.Error("failed to compute "+report, "error", err)
	return internal.NewInternalError("failed to compute "+report, err)
}

func (s *Service) Dashboard(ctx context.Context, institutionID string) (*Dashboard, error) {
	logs := timelog.Filter{InstitutionID: institutionID}
	grants := grant.Filter{InstitutionID: institutionID}

	out := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ResearcherCount, err = s.agg.CountResearchers(gctx, researcher.Filter{InstitutionID: institutionID})
		return err
	})
	g.Go(func() (err error) {
		out.GrantCount, err = s.agg.CountGrants(gctx, grants)
		return err
	})
	g.Go(func() (err error) {
		active := grants
		active.Status = grant.StatusActive
		out.ActiveGrants, err = s.agg.CountGrants(gctx, active)
		return err
	})
	g.Go(func() (err error) {
		out.TotalTimeLogged, err = s.agg.SumHours(gctx, logs)
		return err
	})
	g.Go(func() (err error) {
		out.AdminTimePercentage, err = s.adminTimePercentage(gctx, institutionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.failed("dashboard", err)
	}
	return out, nil
}

// adminTimePercentage is ADMINISTRATION hours over all hours.
func (s *Service) adminTimePercentage(ctx context.Context, institutionID string) (float64, error) {
	var admin, total float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		admin, err = s.agg.SumHours(gctx, timelog.Filter{InstitutionID: institutionID, Category: timelog.CategoryAdministration})
		return err
	})
	g.Go(func() (err error) {
		total, err = s.agg.SumHours(gctx, timelog.Filter{InstitutionID: institutionID})
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return stats.Percentage(admin, total), nil
}

func (s *Service) successRate(ctx context.Context, institutionID string) (float64, error) {
	var awarded, rejected int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		awarded, err = s.agg.CountGrants(gctx, grant.Filter{InstitutionID: institutionID, Status: grant.StatusAwarded})
		return err
	})
	g.Go(func() (err error) {
		rejected, err = s.agg.CountGrants(gctx, grant.Filter{InstitutionID: institutionID, Status: grant.StatusRejected})
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return stats.SuccessRate(awarded, rejected), nil
}

func (s *Service) TimeTrends(ctx context.Context, institutionID string, months int) (*TimeTrends, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	start := dateutil.MonthsBefore(s.now(), months)
	rows, err := s.agg.HoursByMonthCategory(ctx, timelog.Filter{InstitutionID: institutionID, From: &start})
	if err != nil {
		return nil, s.failed("time trends", err)
	}

	out := &TimeTrends{Months: []string{}, Categories: []string{}, Data: rows}
	if out.Data == nil {
		out.Data = []aggregate.MonthCategoryHours{}
	}
	seenMonth, seenCategory := map[string]bool{}, map[string]bool{}
	for _, row := range rows {
		if !seenMonth[row.Month] {
			seenMonth[row.Month] = true
			out.Months = append(out.Months, row.Month)
		}
		if !seenCategory[row.Category] {
			seenCategory[row.Category] = true
			out.Categories = append(out.Categories, row.Category)
		}
	}
	return out, nil
}

// Bottlenecks ranks admin activities by hours. Percentages are relative to
// the returned rows only, so they always add up to 100.
func (s *Service) Bottlenecks(ctx context.Context, institutionID, departmentID string, limit int) ([]Bottleneck, error) {
	if limit <= 0 {
		limit = DefaultBottleneckLimit
	}
	rows, err := s.agg.HoursByActivity(ctx, timelog.Filter{
		InstitutionID: institutionID,
		DepartmentID:  departmentID,
		ActivityTypes: timelog.AdminActivities,
	}, limit)
	if err != nil {
		return nil, s.failed("bottlenecks", err)
	}

	var total float64
	for _, row := range rows {
		total += row.Hours
	}
	out := make([]Bottleneck, len(rows))
	for i, row := range rows {
		out[i] = Bottleneck{
			ActivityType: row.ActivityType,
			TotalHours:   row.Hours,
			LogCount:     row.Count,
			Percentage:   stats.Percentage(row.Hours, total),
		}
	}
	return out, nil
}

// ResearcherComparison covers the current calendar year.
func (s *Service) ResearcherComparison(ctx context.Context, institutionID, departmentID string) ([]ResearcherComparison, error) {
	start := dateutil.StartOfYear(s.now())

	var (
		people []researcher.WithUser
		hours  []aggregate.ResearcherCategoryHours
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		people, err = s.researchers.ListAll(gctx, researcher.Filter{InstitutionID: institutionID, DepartmentID: departmentID})
		return err
	})
	g.Go(func() (err error) {
		hours, err = s.agg.HoursByResearcherCategory(gctx, timelog.Filter{
			InstitutionID: institutionID,
			DepartmentID:  departmentID,
			From:          &start,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.failed("researcher comparison", err)
	}

	out := make([]ResearcherComparison, len(people))
	index := make(map[string]int, len(people))
	for i, p := range people {
		out[i] = ResearcherComparison{ID: p.ID, Name: p.FirstName + " " + p.LastName, Position: p.Position}
		index[p.ID] = i
	}
	for _, h := range hours {
		i, ok := index[h.ResearcherID]
		if !ok {
			continue
		}
		c := &out[i]
		c.TotalHours += h.Hours
		switch h.Category {
		case timelog.CategoryAdministration:
			c.AdminHours += h.Hours
		case timelog.CategoryResearch:
			c.ResearchHours += h.Hours
		case timelog.CategoryTeaching:
			c.TeachingHours += h.Hours
		}
	}
	for i := range out {
		out[i].AdminPercentage = stats.Percentage(out[i].AdminHours, out[i].TotalHours)
	}
	return out, nil
}

func (s *Service) GrantPipeline(ctx context.Context, institutionID string) (*GrantPipeline, error) {
	f := grant.Filter{InstitutionID: institutionID}
	out := &GrantPipeline{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ByStatus, err = s.agg.GrantsByStatus(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.ByFunder, err = s.agg.GrantsByFunder(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		funded := f
		funded.Statuses = grant.FundedStatuses
		out.TotalAwardedValue, err = s.agg.SumGrantAmount(gctx, funded)
		return err
	})
	g.Go(func() (err error) {
		out.SuccessRate, err = s.successRate(gctx, institutionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.failed("grant pipeline", err)
	}
	if out.ByStatus == nil {
		out.ByStatus = []aggregate.StatusTotal{}
	}
	if out.ByFunder == nil {
		out.ByFunder = []aggregate.FunderTotal{}
	}
	return out, nil
}

// CurrentMetrics computes the institution's values for every benchmark metric.
func (s *Service) CurrentMetrics(ctx context.Context, institutionID string) (map[string]float64, error) {
	var adminPct, success, avgResearch float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		adminPct, err = s.adminTimePercentage(gctx, institutionID)
		return err
	})
	g.Go(func() (err error) {
		success, err = s.successRate(gctx, institutionID)
		return err
	})
	g.Go(func() (err error) {
		avgResearch, err = s.agg.AvgHours(gctx, timelog.Filter{InstitutionID: institutionID, Category: timelog.CategoryResearch})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return map[string]float64{
		benchmark.MetricAdminTimePercentage:    adminPct,
		benchmark.MetricGrantSuccessRate:       success,
		benchmark.MetricAvgResearchHoursPerLog: avgResearch,
	}, nil
}

func (s *Service) Benchmarks(ctx context.Context, institutionID string) (*Benchmarks, error) {
	inst, err := s.institutions.GetByID(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	var (
		rows    []benchmark.SectorBenchmark
		current map[string]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.benchmarks.ByInstitutionType(gctx, inst.Type)
		return err
	})
	g.Go(func() (err error) {
		current, err = s.CurrentMetrics(gctx, institutionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.failed("benchmarks", err)
	}

	out := &Benchmarks{
		InstitutionType: inst.Type,
		CurrentMetrics:  current,
		Benchmarks:      make([]BenchmarkComparison, len(rows)),
	}
	for i, b := range rows {
		out.Benchmarks[i] = BenchmarkComparison{
			Metric:       b.Metric,
			YourValue:    current[b.Metric],
			Percentile25: b.Percentile25,
			Percentile50: b.Percentile50,
			Percentile75: b.Percentile75,
			SampleSize:   b.SampleSize,
		}
	}
	return out, nil
}
