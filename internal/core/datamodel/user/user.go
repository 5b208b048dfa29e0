package user

import (
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel"
)

const (
	RoleSuperAdmin       = "SUPER_ADMIN"
	RoleInstitutionAdmin = "INSTITUTION_ADMIN"
	RoleResearchManager  = "RESEARCH_MANAGER"
	RoleResearcher       = "RESEARCHER"
	RoleViewer           = "VIEWER"
)

var Roles = []string{RoleSuperAdmin, RoleInstitutionAdmin, RoleResearchManager, RoleResearcher, RoleViewer}

type User struct {
	datamodel.Base
	Email         string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	FirstName     string     `gorm:"column:first_name;not null"`
	LastName      string     `gorm:"column:last_name;not null"`
	Role          string     `gorm:"column:role;not null"`
	InstitutionID *string    `gorm:"column:institution_id;index"`
	IsActive      bool       `gorm:"column:is_active;not null"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
}

type RefreshToken struct {
	datamodel.Base
	UserID    string    `gorm:"column:user_id;not null;index"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
}
