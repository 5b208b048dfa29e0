package timelog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/events"
	"github.com/frahmantamala/research-analytics/internal/core/stats"
	"github.com/frahmantamala/research-analytics/internal/grant"
	"github.com/frahmantamala/research-analytics/internal/researcher"
)

type Repository interface {
	Create(ctx context.Context, m *dm.TimeLog) error
	CreateMany(ctx context.Context, logs []dm.TimeLog) error
	GetByID(ctx context.Context, id string) (*dm.TimeLog, error)
	List(ctx context.Context, f dm.Filter, p internal.Pagination) ([]dm.TimeLog, error)
	ListChronological(ctx context.Context, f dm.Filter) ([]dm.TimeLog, error)
	Count(ctx context.Context, f dm.Filter) (int64, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type ResearcherLookup interface {
	GetByID(ctx context.Context, id string) (*researcher.Researcher, error)
}

type GrantLookup interface {
	GetByID(ctx context.Context, id string) (*grant.Grant, error)
}

// StatsSource is the subset of the aggregate store behind the admin breakdown.
type StatsSource interface {
	SumHours(ctx context.Context, f dm.Filter) (float64, error)
	HoursByActivity(ctx context.Context, f dm.Filter, limit int) ([]aggregate.ActivityHours, error)
}

type Service struct {
	repo        Repository
	researchers ResearcherLookup
	grants      GrantLookup
	stats       StatsSource
	events      events.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, researchers ResearcherLookup, grants GrantLookup, stats StatsSource, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		researchers: researchers,
		grants:      grants,
		stats:       stats,
		events:      publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) notFound(id string) *internal.AppError {
	return internal.NewEntityNotFoundError("Time log", id, internal.ErrCodeTimeLogNotFound)
}

func (s *Service) checkReferences(ctx context.Context, researcherID string, grantID *string) error {
	if _, err := s.researchers.GetByID(ctx, researcherID); err != nil {
		return err
	}
	if grantID != nil && *grantID != "" {
		if _, err := s.grants.GetByID(ctx, *grantID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, dto CreateTimeLogDTO) (*TimeLog, error) {
	if err := s.checkReferences(ctx, dto.ResearcherID, dto.GrantID); err != nil {
		return nil, err
	}
	m, err := dto.toDataModel()
	if err != nil {
		return nil, internal.NewValidationFieldError("date", err.Error(), internal.ErrCodeInvalidDate)
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		s.logger.Error("failed to create time log", "error", err, "researcher_id", dto.ResearcherID)
		return nil, internal.NewInternalError("failed to create time log", err)
	}
	return FromDataModel(&m), nil
}

// BulkCreate inserts every log or none of them.
func (s *Service) BulkCreate(ctx context.Context, dto BulkCreateTimeLogDTO) (*BulkResult, error) {
	logs := make([]dm.TimeLog, len(dto.Logs))
	checkedResearchers := map[string]struct{}{}
	checkedGrants := map[string]struct{}{}
	var researcherIDs []string
	var totalHours float64

	for i, in := range dto.Logs {
		if _, ok := checkedResearchers[in.ResearcherID]; !ok {
			if _, err := s.researchers.GetByID(ctx, in.ResearcherID); err != nil {
				return nil, err
			}
			checkedResearchers[in.ResearcherID] = struct{}{}
			researcherIDs = append(researcherIDs, in.ResearcherID)
		}
		if in.GrantID != nil && *in.GrantID != "" {
			if _, ok := checkedGrants[*in.GrantID]; !ok {
				if _, err := s.grants.GetByID(ctx, *in.GrantID); err != nil {
					return nil, err
				}
				checkedGrants[*in.GrantID] = struct{}{}
			}
		}

		m, err := in.toDataModel()
		if err != nil {
			return nil, internal.NewValidationFieldError("date", err.Error(), internal.ErrCodeInvalidDate)
		}
		logs[i] = m
		totalHours += m.Hours
	}

	if err := s.repo.CreateMany(ctx, logs); err != nil {
		s.logger.Error("failed to bulk create time logs", "error", err, "count", len(logs))
		return nil, internal.NewInternalError("failed to create time logs", err)
	}

	evt := events.NewTimeLogsBulkCreatedEvent(len(logs), researcherIDs, totalHours)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish bulk time log event", "error", err)
	}
	return &BulkResult{Count: len(logs)}, nil
}

func (s *Service) List(ctx context.Context, f dm.Filter, p internal.Pagination) (internal.Page[*TimeLog], error) {
	var (
		rows  []dm.TimeLog
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.repo.List(gctx, f, p)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to list time logs", "error", err)
		return internal.Page[*TimeLog]{}, internal.NewInternalError("failed to list time logs", err)
	}
	return internal.NewPage(FromDataModelSlice(rows), total, p), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*TimeLog, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTimeLogNotFound) {
			return nil, s.notFound(id)
		}
		s.logger.Error("failed to load time log", "error", err, "time_log_id", id)
		return nil, internal.NewInternalError("failed to load time log", err)
	}
	return FromDataModel(m), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateTimeLogDTO) (*TimeLog, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if dto.GrantID != nil && *dto.GrantID != "" {
		if _, err := s.grants.GetByID(ctx, *dto.GrantID); err != nil {
			return nil, err
		}
	}
	changes, err := dto.Changes()
	if err != nil {
		return nil, internal.NewValidationFieldError("date", err.Error(), internal.ErrCodeInvalidDate)
	}
	if len(changes) > 0 {
		if err := s.repo.Update(ctx, id, changes); err != nil {
			s.logger.Error("failed to update time log", "error", err, "time_log_id", id)
			return nil, internal.NewInternalError("failed to update time log", err)
		}
	}
	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete time log", "error", err, "time_log_id", id)
		return internal.NewInternalError("failed to delete time log", err)
	}
	return nil
}

// Weekly buckets the researcher's logs into the seven days of the week holding weekOf.
// A nil weekOf means the current week.
func (s *Service) Weekly(ctx context.Context, researcherID string, weekOf *time.Time) (*Weekly, error) {
	if _, err := s.researchers.GetByID(ctx, researcherID); err != nil {
		return nil, err
	}

	ref := s.now()
	if weekOf != nil {
		ref = *weekOf
	}
	start, end := dateutil.WeekBounds(ref)

	rows, err := s.repo.ListChronological(ctx, dm.Filter{ResearcherID: researcherID, From: &start, To: &end})
	if err != nil {
		s.logger.Error("failed to load weekly time logs", "error", err, "researcher_id", researcherID)
		return nil, internal.NewInternalError("failed to load weekly time logs", err)
	}
	return buildWeekly(start, FromDataModelSlice(rows)), nil
}

func buildWeekly(start time.Time, logs []*TimeLog) *Weekly {
	out := &Weekly{
		WeekOf:     dateutil.Day(start),
		ByDay:      make([]Day, 7),
		ByCategory: []aggregate.CategoryHours{},
	}
	index := make(map[string]int, 7)
	for i := range out.ByDay {
		d := start.AddDate(0, 0, i)
		out.ByDay[i] = Day{Date: dateutil.Day(d), DayName: d.Weekday().String()[:3], Logs: []*TimeLog{}}
		index[out.ByDay[i].Date] = i
	}

	categories := map[string]int{}
	for _, l := range logs {
		if i, ok := index[dateutil.Day(l.Date)]; ok {
			out.ByDay[i].Logs = append(out.ByDay[i].Logs, l)
			out.ByDay[i].TotalHours += l.Hours
		}
		out.TotalHours += l.Hours
		if i, ok := categories[l.Category]; ok {
			out.ByCategory[i].Hours += l.Hours
		} else {
			categories[l.Category] = len(out.ByCategory)
			out.ByCategory = append(out.ByCategory, aggregate.CategoryHours{Category: l.Category, Hours: l.Hours})
		}
	}
	return out
}

// AdminBreakdown reports hours on admin activities against all hours in scope.
func (s *Service) AdminBreakdown(ctx context.Context, bf BreakdownFilter) (*AdminBreakdown, error) {
	now := s.now().UTC()
	from, to := dateutil.StartOfYear(now), now
	if bf.From != nil {
		from = *bf.From
	}
	if bf.To != nil {
		to = *bf.To
	}

	all := dm.Filter{InstitutionID: bf.InstitutionID, DepartmentID: bf.DepartmentID, From: &from, To: &to}
	admin := all
	admin.ActivityTypes = dm.AdminActivities

	var (
		totalAdmin, totalAll float64
		byActivity           []aggregate.ActivityHours
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byActivity, err = s.stats.HoursByActivity(gctx, admin, 0)
		return err
	})
	g.Go(func() (err error) {
		totalAdmin, err = s.stats.SumHours(gctx, admin)
		return err
	})
	g.Go(func() (err error) {
		totalAll, err = s.stats.SumHours(gctx, all)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute admin breakdown", "error", err)
		return nil, internal.NewInternalError("failed to compute admin breakdown", err)
	}

	out := &AdminBreakdown{
		TotalAdminHours: totalAdmin,
		TotalAllHours:   totalAll,
		AdminPercentage: stats.Percentage(totalAdmin, totalAll),
		ByActivity:      make([]AdminActivity, len(byActivity)),
	}
	for i, a := range byActivity {
		out.ByActivity[i] = AdminActivity{
			ActivityType: a.ActivityType,
			Hours:        a.Hours,
			Count:        a.Count,
			Percentage:   stats.Percentage(a.Hours, totalAdmin),
		}
	}
	return out, nil
}
