package institution

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"golang.org/x/sync/errgroup"
)

var ErrDepartmentNotFound = errors.New("department not found")

type Repository interface {
	Create(ctx context.Context, m *dm.Institution) error
	GetByID(ctx context.Context, id string) (*dm.Institution, error)
	List(ctx context.Context, f ListFilter, p internal.Pagination) ([]dm.Institution, error)
	Count(ctx context.Context, f ListFilter) (int64, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	CreateDepartment(ctx context.Context, m *dm.Department) error
	GetDepartment(ctx context.Context, id string) (*dm.Department, error)
	ListDepartments(ctx context.Context, institutionID string) ([]dm.Department, error)
}

// StatsSource is the subset of the aggregate store used for institution stats.
type StatsSource interface {
	CountResearchers(ctx context.Context, f researcher.Filter) (int64, error)
	GrantsByStatus(ctx context.Context, f grant.Filter) ([]aggregate.StatusTotal, error)
	HoursByCategory(ctx context.Context, f timelog.Filter) ([]aggregate.CategoryHours, error)
}

type Service struct {
	repo   Repository
	stats  StatsSource
	logger *slog.Logger
}

func NewService(repo Repository, stats StatsSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, stats: stats, logger: logger}
}

func (s *Service) notFound(id string) *internal.AppError {
	return internal.NewEntityNotFoundError("Institution", id, internal.ErrCodeInstitutionNotFound)
}

func (s *Service) Create(ctx context.Context, dto CreateInstitutionDTO) (*Institution, error) {
	m := &dm.Institution{
		Name:             dto.Name,
		ShortName:        dto.ShortName,
		Type:             dto.Type,
		Country:          dto.Country,
		Region:           dto.Region,
		Website:          dto.Website,
		LogoURL:          dto.LogoURL,
		SubscriptionTier: dto.SubscriptionTier,
		IsActive:         true,
	}
	if m.Country == "" {
		m.Country = "UK"
	}
	if m.SubscriptionTier == "" {
		m.SubscriptionTier = dm.TierFree
	}

	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.Error("failed to create institution", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create institution", err)
	}
	s.logger.Info("institution created", "institution_id", m.ID, "type", m.Type)
	return FromDataModel(m), nil
}

func (s *Service) List(ctx context.Context, f ListFilter, p internal.Pagination) (internal.Page[*Institution], error) {
	if f.IsActive == nil {
		active := true
		f.IsActive = &active
	}

	var (
		rows  []dm.Institution
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
		s.logger.Error("failed to list institutions", "error", err)
		return internal.Page[*Institution]{}, internal.NewInternalError("failed to list institutions", err)
	}
	return internal.NewPage(FromDataModelSlice(rows), total, p), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Institution, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrInstitutionNotFound) {
			return nil, s.notFound(id)
		}
		s.logger.Error("failed to load institution", "error", err, "institution_id", id)
		return nil, internal.NewInternalError("failed to load institution", err)
	}
	return FromDataModel(m), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateInstitutionDTO) (*Institution, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if changes := dto.Changes(); len(changes) > 0 {
		if err := s.repo.Update(ctx, id, changes); err != nil {
			s.logger.Error("failed to update institution", "error", err, "institution_id", id)
			return nil, internal.NewInternalError("failed to update institution", err)
		}
	}
	return s.GetByID(ctx, id)
}

// Deactivate is a soft delete: the row stays, isActive becomes false.
func (s *Service) Deactivate(ctx context.Context, id string) (*Institution, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"is_active": false}); err != nil {
		s.logger.Error("failed to deactivate institution", "error", err, "institution_id", id)
		return nil, internal.NewInternalError("failed to deactivate institution", err)
	}
	s.logger.Info("institution deactivated", "institution_id", id)
	return s.GetByID(ctx, id)
}

func (s *Service) Stats(ctx context.Context, id string) (*Stats, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	out := &Stats{InstitutionID: id}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ResearcherCount, err = s.stats.CountResearchers(gctx, researcher.Filter{InstitutionID: id})
		return err
	})
	g.Go(func() (err error) {
		out.GrantStats, err = s.stats.GrantsByStatus(gctx, grant.Filter{InstitutionID: id})
		return err
	})
	g.Go(func() (err error) {
		out.TimeLogStats, err = s.stats.HoursByCategory(gctx, timelog.Filter{InstitutionID: id})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute institution stats", "error", err, "institution_id", id)
		return nil, internal.NewInternalError("failed to compute institution stats", err)
	}
	if out.GrantStats == nil {
		out.GrantStats = []aggregate.StatusTotal{}
	}
	if out.TimeLogStats == nil {
		out.TimeLogStats = []aggregate.CategoryHours{}
	}
	return out, nil
}

func (s *Service) AddDepartment(ctx context.Context, institutionID string, dto CreateDepartmentDTO) (*Department, error) {
	if _, err := s.GetByID(ctx, institutionID); err != nil {
		return nil, err
	}
	m := &dm.Department{
		InstitutionID: institutionID,
		Name:          dto.Name,
		Code:          dto.Code,
		Faculty:       dto.Faculty,
	}
	if err := s.repo.CreateDepartment(ctx, m); err != nil {
		s.logger.Error("failed to create department", "error", err, "institution_id", institutionID)
		return nil, internal.NewInternalError("failed to create department", err)
	}
	return DepartmentFromDataModel(m), nil
}

func (s *Service) Departments(ctx context.Context, institutionID string) ([]*Department, error) {
	if _, err := s.GetByID(ctx, institutionID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListDepartments(ctx, institutionID)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err, "institution_id", institutionID)
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	out := make([]*Department, len(rows))
	for i := range rows {
		out[i] = DepartmentFromDataModel(&rows[i])
	}
	return out, nil
}

func (s *Service) GetDepartment(ctx context.Context, id string) (*Department, error) {
	m, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDepartmentNotFound) {
			return nil, internal.NewEntityNotFoundError("Department", id, internal.ErrCodeDepartmentNotFound)
		}
		return nil, internal.NewInternalError("failed to load department", err)
	}
	return DepartmentFromDataModel(m), nil
}
