package grant

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/events"
	"github.com/frahmantamala/research-analytics/internal/core/stats"
	"github.com/frahmantamala/research-analytics/internal/institution"
	"github.com/frahmantamala/research-analytics/internal/researcher"
)

const defaultCurrency = "GBP"

type Repository interface {
	Create(ctx context.Context, m *dm.Grant) error
	GetByID(ctx context.Context, id string) (*dm.Grant, error)
	List(ctx context.Context, f dm.Filter, p internal.Pagination) ([]dm.Grant, error)
	Count(ctx context.Context, f dm.Filter) (int64, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Members(ctx context.Context, grantIDs ...string) ([]dm.MemberWithUser, error)
	AddMember(ctx context.Context, m *dm.GrantResearcher) error
	RemoveMember(ctx context.Context, grantID, researcherID string) error
}

type InstitutionLookup interface {
	GetByID(ctx context.Context, id string) (*institution.Institution, error)
}

type ResearcherLookup interface {
	GetByID(ctx context.Context, id string) (*researcher.Researcher, error)
}

// StatsSource is the subset of the aggregate store used by the grant reports.
type StatsSource interface {
	DecisionsByFunder(ctx context.Context, f dm.Filter) ([]aggregate.FunderDecision, error)
	SumHours(ctx context.Context, f timelog.Filter) (float64, error)
	HoursByActivity(ctx context.Context, f timelog.Filter, limit int) ([]aggregate.ActivityHours, error)
	HoursByResearcher(ctx context.Context, f timelog.Filter) ([]aggregate.ResearcherHours, error)
}

type Service struct {
	repo         Repository
	institutions InstitutionLookup
	researchers  ResearcherLookup
	stats        StatsSource
	events       events.Publisher
	logger       *slog.Logger
}

func NewService(repo Repository, institutions InstitutionLookup, researchers ResearcherLookup, stats StatsSource, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		institutions: institutions,
		researchers:  researchers,
		stats:        stats,
		events:       publisher,
		logger:       logger,
	}
}

func (s *Service) notFound(id string) *internal.AppError {
	return internal.NewEntityNotFoundError("Grant", id, internal.ErrCodeGrantNotFound)
}

func duplicateMember() *internal.AppError {
	return internal.NewConflictError("Researcher is already assigned to this grant", internal.ErrCodeDuplicateMember)
}

func (s *Service) Create(ctx context.Context, dto CreateGrantDTO) (*Grant, error) {
	if _, err := s.institutions.GetByID(ctx, dto.InstitutionID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(dto.Researchers))
	members := make([]dm.GrantResearcher, 0, len(dto.Researchers))
	for _, in := range dto.Researchers {
		if _, dup := seen[in.ResearcherID]; dup {
			return nil, duplicateMember()
		}
		seen[in.ResearcherID] = struct{}{}
		if _, err := s.researchers.GetByID(ctx, in.ResearcherID); err != nil {
			return nil, err
		}
		members = append(members, newMember("", in))
	}

	m := &dm.Grant{
		Title:         dto.Title,
		Reference:     dto.Reference,
		Funder:        dto.Funder,
		FunderType:    dto.FunderType,
		Amount:        *dto.Amount,
		Currency:      dto.Currency,
		Status:        dto.Status,
		Description:   dto.Description,
		InstitutionID: dto.InstitutionID,
		Researchers:   members,
	}
	if m.Currency == "" {
		m.Currency = defaultCurrency
	}
	if m.Status == "" {
		m.Status = dm.StatusDraft
	}
	var err error
	if m.StartDate, err = dateutil.ParsePtr(dto.StartDate); err != nil {
		return nil, internal.NewValidationFieldError("startDate", err.Error(), internal.ErrCodeInvalidDate)
	}
	if m.EndDate, err = dateutil.ParsePtr(dto.EndDate); err != nil {
		return nil, internal.NewValidationFieldError("endDate", err.Error(), internal.ErrCodeInvalidDate)
	}
	if m.SubmissionDate, err = dateutil.ParsePtr(dto.SubmissionDate); err != nil {
		return nil, internal.NewValidationFieldError("submissionDate", err.Error(), internal.ErrCodeInvalidDate)
	}
	if m.DecisionDate, err = dateutil.ParsePtr(dto.DecisionDate); err != nil {
		return nil, internal.NewValidationFieldError("decisionDate", err.Error(), internal.ErrCodeInvalidDate)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, ErrDuplicateMember) {
			return nil, duplicateMember()
		}
		s.logger.Error("failed to create grant", "error", err, "institution_id", dto.InstitutionID)
		return nil, internal.NewInternalError("failed to create grant", err)
	}
	s.logger.Info("grant created", "grant_id", m.ID, "researchers", len(members))
	return s.GetByID(ctx, m.ID)
}

func newMember(grantID string, in GrantResearcherInput) dm.GrantResearcher {
	gr := dm.GrantResearcher{GrantID: grantID, ResearcherID: in.ResearcherID, Role: in.Role}
	if in.Allocation != nil {
		gr.Allocation = *in.Allocation
	}
	return gr
}

func (s *Service) List(ctx context.Context, f dm.Filter, p internal.Pagination) (internal.Page[*Grant], error) {
	var (
		rows  []dm.Grant
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
		s.logger.Error("failed to list grants", "error", err)
		return internal.Page[*Grant]{}, internal.NewInternalError("failed to list grants", err)
	}

	grants := make([]*Grant, len(rows))
	ids := make([]string, len(rows))
	for i := range rows {
		grants[i] = FromDataModel(&rows[i])
		ids[i] = rows[i].ID
	}
	if len(ids) > 0 {
		members, err := s.repo.Members(ctx, ids...)
		if err != nil {
			s.logger.Error("failed to load grant researchers", "error", err)
			return internal.Page[*Grant]{}, internal.NewInternalError("failed to list grants", err)
		}
		attachMembers(grants, members)
	}
	return internal.NewPage(grants, total, p), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Grant, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := FromDataModel(m)
	members, err := s.repo.Members(ctx, id)
	if err != nil {
		s.logger.Error("failed to load grant researchers", "error", err, "grant_id", id)
		return nil, internal.NewInternalError("failed to load grant", err)
	}
	attachMembers([]*Grant{out}, members)
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*dm.Grant, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrGrantNotFound) {
			return nil, s.notFound(id)
		}
		s.logger.Error("failed to load grant", "error", err, "grant_id", id)
		return nil, internal.NewInternalError("failed to load grant", err)
	}
	return m, nil
}

// Update applies a partial patch. Any status may follow any other; a change
// of status is published as a domain event.
func (s *Service) Update(ctx context.Context, id string, dto UpdateGrantDTO) (*Grant, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	changes, err := dto.Changes()
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate)
	}
	if len(changes) > 0 {
		if err := s.repo.Update(ctx, id, changes); err != nil {
			s.logger.Error("failed to update grant", "error", err, "grant_id", id)
			return nil, internal.NewInternalError("failed to update grant", err)
		}
	}

	if dto.Status != nil && *dto.Status != current.Status {
		evt := events.NewGrantStatusChangedEvent(id, current.InstitutionID, current.Status, *dto.Status)
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish grant status change", "error", err, "grant_id", id)
		}
	}
	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete grant", "error", err, "grant_id", id)
		return internal.NewInternalError("failed to delete grant", err)
	}
	s.logger.Info("grant deleted", "grant_id", id)
	return nil
}

func (s *Service) AddResearcher(ctx context.Context, grantID string, dto AddResearcherDTO) (*Member, error) {
	if _, err := s.load(ctx, grantID); err != nil {
		return nil, err
	}
	if _, err := s.researchers.GetByID(ctx, dto.ResearcherID); err != nil {
		return nil, err
	}

	m := newMember(grantID, dto)
	if err := s.repo.AddMember(ctx, &m); err != nil {
		if errors.Is(err, ErrDuplicateMember) {
			return nil, duplicateMember()
		}
		s.logger.Error("failed to add researcher to grant", "error", err, "grant_id", grantID)
		return nil, internal.NewInternalError("failed to add researcher to grant", err)
	}

	rows, err := s.repo.Members(ctx, grantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load grant researchers", err)
	}
	for i := range rows {
		if rows[i].ID == m.ID {
			return MemberFromRow(&rows[i]), nil
		}
	}
	return MemberFromRow(&dm.MemberWithUser{GrantResearcher: m}), nil
}

func (s *Service) RemoveResearcher(ctx context.Context, grantID, researcherID string) error {
	err := s.repo.RemoveMember(ctx, grantID, researcherID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return internal.NewNotFoundError("Researcher "+researcherID+" is not assigned to grant "+grantID, internal.ErrCodeMembershipNotFound)
		}
		s.logger.Error("failed to remove researcher from grant", "error", err, "grant_id", grantID)
		return internal.NewInternalError("failed to remove researcher from grant", err)
	}
	return nil
}

// SuccessRate is awarded / (awarded + rejected) over grants decided in the range.
func (s *Service) SuccessRate(ctx context.Context, f SuccessFilter) (*SuccessRate, error) {
	rows, err := s.stats.DecisionsByFunder(ctx, dm.Filter{
		InstitutionID: f.InstitutionID,
		FunderType:    f.FunderType,
		DecidedFrom:   f.From,
		DecidedTo:     f.To,
	})
	if err != nil {
		s.logger.Error("failed to compute success rate", "error", err)
		return nil, internal.NewInternalError("failed to compute success rate", err)
	}

	out := &SuccessRate{ByFunder: make([]FunderSuccess, len(rows))}
	for i, row := range rows {
		out.Awarded += row.Awarded
		out.Rejected += row.Rejected
		out.ByFunder[i] = FunderSuccess{
			FunderType:  row.FunderType,
			Awarded:     row.Awarded,
			Rejected:    row.Rejected,
			SuccessRate: stats.SuccessRate(row.Awarded, row.Rejected),
		}
	}
	out.Total = out.Awarded + out.Rejected
	out.SuccessRate = stats.SuccessRate(out.Awarded, out.Rejected)
	return out, nil
}

func (s *Service) TimeSpent(ctx context.Context, grantID string) (*TimeSpent, error) {
	if _, err := s.load(ctx, grantID); err != nil {
		return nil, err
	}

	f := timelog.Filter{GrantID: grantID}
	var (
		total        float64
		byActivity   []aggregate.ActivityHours
		byResearcher []aggregate.ResearcherHours
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.stats.SumHours(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		byActivity, err = s.stats.HoursByActivity(gctx, f, 0)
		return err
	})
	g.Go(func() (err error) {
		byResearcher, err = s.stats.HoursByResearcher(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute grant time", "error", err, "grant_id", grantID)
		return nil, internal.NewInternalError("failed to compute grant time", err)
	}

	out := &TimeSpent{
		GrantID:      grantID,
		TotalHours:   total,
		ByActivity:   make([]ActivityHours, len(byActivity)),
		ByResearcher: make([]ResearcherHours, len(byResearcher)),
	}
	for i, a := range byActivity {
		out.ByActivity[i] = ActivityHours{ActivityType: a.ActivityType, Hours: a.Hours}
	}
	for i, r := range byResearcher {
		out.ByResearcher[i] = ResearcherHours{ResearcherID: r.ResearcherID, Hours: r.Hours}
	}
	return out, nil
}
