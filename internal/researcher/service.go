package researcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/stats"
	"github.com/frahmantamala/research-analytics/internal/institution"
	"github.com/frahmantamala/research-analytics/internal/user"
)

const topActivities = 10

type Repository interface {
	Create(ctx context.Context, m *dm.Researcher) error
	GetByID(ctx context.Context, id string) (*dm.WithUser, error)
	GetByUserID(ctx context.Context, userID string) (*dm.WithUser, error)
	List(ctx context.Context, f dm.Filter, p internal.Pagination) ([]dm.WithUser, error)
	Count(ctx context.Context, f dm.Filter) (int64, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type InstitutionLookup interface {
	GetByID(ctx context.Context, id string) (*institution.Institution, error)
}

// AllocationSource is the subset of the aggregate store behind TimeAllocation.
type AllocationSource interface {
	SumHours(ctx context.Context, f timelog.Filter) (float64, error)
	HoursByCategory(ctx context.Context, f timelog.Filter) ([]aggregate.CategoryHours, error)
	HoursByActivity(ctx context.Context, f timelog.Filter, limit int) ([]aggregate.ActivityHours, error)
}

type Service struct {
	repo         Repository
	users        UserLookup
	institutions InstitutionLookup
	allocation   AllocationSource
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(repo Repository, users UserLookup, institutions InstitutionLookup, allocation AllocationSource, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		users:        users,
		institutions: institutions,
		allocation:   allocation,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) notFound(id string) *internal.AppError {
	return internal.NewEntityNotFoundError("Researcher", id, internal.ErrCodeResearcherNotFound)
}

func (s *Service) Create(ctx context.Context, dto CreateResearcherDTO) (*Researcher, error) {
	if _, err := s.users.GetByID(ctx, dto.UserID); err != nil {
		return nil, err
	}
	if _, err := s.institutions.GetByID(ctx, dto.InstitutionID); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByUserID(ctx, dto.UserID)
	switch {
	case err == nil:
		return nil, internal.NewConflictError("Researcher profile already exists for this user", internal.ErrCodeProfileExists)
	case !errors.Is(err, ErrResearcherNotFound):
		return nil, internal.NewInternalError("failed to check researcher profile", err)
	}

	m := &dm.Researcher{
		UserID:        dto.UserID,
		InstitutionID: dto.InstitutionID,
		DepartmentID:  dto.DepartmentID,
		OrcidID:       dto.OrcidID,
		Title:         dto.Title,
		Position:      dto.Position,
		ResearchAreas: dm.StringList(dto.ResearchAreas),
		ContractType:  dto.ContractType,
		FTE:           1,
	}
	if m.ContractType == "" {
		m.ContractType = dm.ContractPermanent
	}
	if dto.FTE != nil {
		m.FTE = *dto.FTE
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, ErrProfileExists) {
			return nil, internal.NewConflictError("Researcher profile already exists for this user", internal.ErrCodeProfileExists)
		}
		s.logger.Error("failed to create researcher", "error", err, "user_id", dto.UserID)
		return nil, internal.NewInternalError("failed to create researcher", err)
	}
	s.logger.Info("researcher created", "researcher_id", m.ID, "institution_id", m.InstitutionID)
	return s.GetByID(ctx, m.ID)
}

func (s *Service) List(ctx context.Context, f dm.Filter, p internal.Pagination) (internal.Page[*Researcher], error) {
	var (
		rows  []dm.WithUser
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
		s.logger.Error("failed to list researchers", "error", err)
		return internal.Page[*Researcher]{}, internal.NewInternalError("failed to list researchers", err)
	}
	return internal.NewPage(FromRows(rows), total, p), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Researcher, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrResearcherNotFound) {
			return nil, s.notFound(id)
		}
		s.logger.Error("failed to load researcher", "error", err, "researcher_id", id)
		return nil, internal.NewInternalError("failed to load researcher", err)
	}
	return FromRow(row), nil
}

// GetByUserID returns the researcher profile owned by a user.
func (s *Service) GetByUserID(ctx context.Context, userID string) (*Researcher, error) {
	row, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrResearcherNotFound) {
			return nil, internal.NewNotFoundError("Researcher profile not found for user "+userID, internal.ErrCodeResearcherNotFound)
		}
		return nil, internal.NewInternalError("failed to load researcher", err)
	}
	return FromRow(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateResearcherDTO) (*Researcher, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if dto.InstitutionID != nil {
		if _, err := s.institutions.GetByID(ctx, *dto.InstitutionID); err != nil {
			return nil, err
		}
	}
	if changes := dto.Changes(); len(changes) > 0 {
		if err := s.repo.Update(ctx, id, changes); err != nil {
			s.logger.Error("failed to update researcher", "error", err, "researcher_id", id)
			return nil, internal.NewInternalError("failed to update researcher", err)
		}
	}
	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete researcher", "error", err, "researcher_id", id)
		return internal.NewInternalError("failed to delete researcher", err)
	}
	s.logger.Info("researcher deleted", "researcher_id", id)
	return nil
}

// TimeAllocation defaults the range to the current calendar year up to now.
func (s *Service) TimeAllocation(ctx context.Context, id string, from, to *time.Time) (*TimeAllocation, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start, end := dateutil.StartOfYear(now), now
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	f := timelog.Filter{ResearcherID: id, From: &start, To: &end}

	var (
		total      float64
		byCategory []aggregate.CategoryHours
		byActivity []aggregate.ActivityHours
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.allocation.SumHours(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = s.allocation.HoursByCategory(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		byActivity, err = s.allocation.HoursByActivity(gctx, f, topActivities)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute time allocation", "error", err, "researcher_id", id)
		return nil, internal.NewInternalError("failed to compute time allocation", err)
	}

	out := &TimeAllocation{
		ResearcherID: id,
		From:         start,
		To:           end,
		TotalHours:   total,
		ByCategory:   make([]CategoryShare, len(byCategory)),
		ByActivity:   make([]ActivityShare, len(byActivity)),
	}
	for i, c := range byCategory {
		out.ByCategory[i] = CategoryShare{Category: c.Category, Share: Share{Hours: c.Hours, Percentage: stats.Percentage(c.Hours, total)}}
	}
	for i, a := range byActivity {
		out.ByActivity[i] = ActivityShare{ActivityType: a.ActivityType, Share: Share{Hours: a.Hours, Percentage: stats.Percentage(a.Hours, total)}}
	}
	return out, nil
}
