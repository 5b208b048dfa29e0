package user

import (
	"errors"
	"time"

	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Role          string     `json:"role"`
	InstitutionID *string    `json:"institutionId,omitempty"`
	IsActive      bool       `json:"isActive"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// InstitutionSummary and ResearcherSummary are the nested parts of a profile.
type InstitutionSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ResearcherSummary struct {
	ID           string  `json:"id"`
	DepartmentID *string `json:"departmentId,omitempty"`
	Position     *string `json:"position,omitempty"`
	FTE          float64 `json:"fte"`
}

type Profile struct {
	User
	Institution *InstitutionSummary `json:"institution,omitempty"`
	Researcher  *ResearcherSummary  `json:"researcher,omitempty"`
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:            m.ID,
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Role:          m.Role,
		InstitutionID: m.InstitutionID,
		IsActive:      m.IsActive,
		LastLoginAt:   m.LastLoginAt,
		CreatedAt:     m.CreatedAt,
	}
}
