package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/research-analytics/internal"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"github.com/frahmantamala/research-analytics/internal/user"
)

type UserRepository interface {
	Create(ctx context.Context, m *userDatamodel.User) error
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// RefreshTokenRepository persists issued refresh tokens so they can be rotated and revoked.
type RefreshTokenRepository interface {
	Create(ctx context.Context, m *userDatamodel.RefreshToken) error
	Find(ctx context.Context, token string) (*userDatamodel.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID, token string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type Service struct {
	users          UserRepository
	refreshTokens  RefreshTokenRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(users UserRepository, refreshTokens RefreshTokenRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:          users,
		refreshTokens:  refreshTokens,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
		now:            time.Now,
	}
}

func principalOf(m *userDatamodel.User) internal.Principal {
	p := internal.Principal{UserID: m.ID, Email: m.Email, Role: m.Role}
	if m.InstitutionID != nil {
		p.InstitutionID = *m.InstitutionID
	}
	return p
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, internal.NewConflictError("Email already registered", internal.ErrCodeEmailTaken)
	case !errors.Is(err, user.ErrUserNotFound):
		return nil, internal.NewInternalError("failed to check email", err)
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role := dto.Role
	if role == "" {
		role = userDatamodel.RoleResearcher
	}
	m := &userDatamodel.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     dto.FirstName,
		LastName:      dto.LastName,
		Role:          role,
		InstitutionID: dto.InstitutionID,
		IsActive:      true,
	}
	if err := s.users.Create(ctx, m); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, internal.NewConflictError("Email already registered", internal.ErrCodeEmailTaken)
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	tokens, err := s.issueTokens(ctx, m)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", m.ID, "role", m.Role)
	return &AuthResponse{User: user.FromDataModel(m), AuthTokens: tokens}, nil
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	m, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	if !m.IsActive {
		return nil, internal.ErrUserInactive
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, m.ID, now); err != nil {
		s.logger.Warn("failed to record last login", "error", err, "user_id", m.ID)
	} else {
		m.LastLoginAt = &now
	}

	tokens, err := s.issueTokens(ctx, m)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user.FromDataModel(m), AuthTokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return AuthTokens{}, internal.ErrTokenExpired
		}
		return AuthTokens{}, internal.ErrInvalidToken
	}

	stored, err := s.refreshTokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		return AuthTokens{}, internal.NewInternalError("failed to load refresh token", err)
	}
	if stored.UserID != claims.Subject {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if s.now().After(stored.ExpiresAt) {
		_ = s.refreshTokens.Delete(ctx, refreshToken)
		return AuthTokens{}, internal.ErrTokenExpired
	}

	m, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		return AuthTokens{}, internal.NewInternalError("failed to load user", err)
	}
	if !m.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := s.refreshTokens.Delete(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		return AuthTokens{}, internal.NewInternalError("failed to revoke refresh token", err)
	}
	return s.issueTokens(ctx, m)
}

func (s *Service) Logout(ctx context.Context, userID, refreshToken string) error {
	var err error
	if refreshToken != "" {
		err = s.refreshTokens.DeleteForUser(ctx, userID, refreshToken)
	} else {
		err = s.refreshTokens.DeleteAllForUser(ctx, userID)
	}
	if err != nil {
		s.logger.Error("failed to revoke refresh tokens", "error", err, "user_id", userID)
		return internal.NewInternalError("failed to logout", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) issueTokens(ctx context.Context, m *userDatamodel.User) (AuthTokens, error) {
	p := principalOf(m)
	access, err := s.tokenGenerator.GenerateAccessToken(p)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}
	refresh, expiresAt, err := s.tokenGenerator.GenerateRefreshToken(p)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}
	if err := s.refreshTokens.Create(ctx, &userDatamodel.RefreshToken{
		UserID:    m.ID,
		Token:     refresh,
		ExpiresAt: expiresAt,
	}); err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to store refresh token", err)
	}
	return AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}
