package institution

import "github.com/frahmantamala/research-analytics/internal/core/datamodel"

const (
	TypeRussellGroup = "RUSSELL_GROUP"
	TypePre92        = "PRE_92"
	TypePost92       = "POST_92"
	TypeSpecialist   = "SPECIALIST"
	TypeOther        = "OTHER"
)

var Types = []string{TypeRussellGroup, TypePre92, TypePost92, TypeSpecialist, TypeOther}

const (
	TierFree         = "FREE"
	TierStarter      = "STARTER"
	TierProfessional = "PROFESSIONAL"
	TierEnterprise   = "ENTERPRISE"
)

var Tiers = []string{TierFree, TierStarter, TierProfessional, TierEnterprise}

type Institution struct {
	datamodel.Base
	Name             string  `gorm:"column:name;not null"`
	ShortName        *string `gorm:"column:short_name"`
	Type             string  `gorm:"column:type;not null;index"`
	Country          string  `gorm:"column:country;not null"`
	Region           *string `gorm:"column:region"`
	Website          *string `gorm:"column:website"`
	LogoURL          *string `gorm:"column:logo_url"`
	SubscriptionTier string  `gorm:"column:subscription_tier;not null"`
	IsActive         bool    `gorm:"column:is_active;not null"`
}

type Department struct {
	datamodel.Base
	InstitutionID string  `gorm:"column:institution_id;not null;index"`
	Name          string  `gorm:"column:name;not null"`
	Code          *string `gorm:"column:code"`
	Faculty       *string `gorm:"column:faculty"`
}
