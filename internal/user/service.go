package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/research-analytics/internal"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetProfileParts(ctx context.Context, userID string) (*InstitutionSummary, *ResearcherSummary, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetByID also serves as the user lookup of the researcher service.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.NewEntityNotFoundError("User", id, internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to load user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return FromDataModel(m), nil
}

func (s *Service) Profile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inst, res, err := s.repo.GetProfileParts(ctx, id)
	if err != nil {
		s.logger.Error("failed to load profile", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	return &Profile{User: *u, Institution: inst, Researcher: res}, nil
}
