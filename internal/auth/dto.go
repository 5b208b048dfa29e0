package auth

import "github.com/frahmantamala/research-analytics/internal/user"

type RegisterDTO struct {
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8,max=100"`
	FirstName     string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName      string  `json:"lastName" validate:"required,min=1,max=100"`
	Role          string  `json:"role" validate:"omitempty,enum=user_role"`
	InstitutionID *string `json:"institutionId" validate:"omitempty,min=1"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutDTO revokes one refresh token, or every token of the caller when empty.
type LogoutDTO struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User *user.User `json:"user"`
	AuthTokens
}
