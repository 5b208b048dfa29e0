package researcher

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel"
)

const (
	ContractPermanent = "PERMANENT"
	ContractFixedTerm = "FIXED_TERM"
	ContractPartTime  = "PART_TIME"
	ContractHonorary  = "HONORARY"
)

var ContractTypes = []string{ContractPermanent, ContractFixedTerm, ContractPartTime, ContractHonorary}

// StringList is stored as a JSON array so it works on both postgres and sqlite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("researcher: cannot scan %T into StringList", src)
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

type Researcher struct {
	datamodel.Base
	UserID        string     `gorm:"column:user_id;uniqueIndex;not null"`
	InstitutionID string     `gorm:"column:institution_id;not null;index"`
	DepartmentID  *string    `gorm:"column:department_id;index"`
	OrcidID       *string    `gorm:"column:orcid_id"`
	Title         *string    `gorm:"column:title"`
	Position      *string    `gorm:"column:position"`
	ResearchAreas StringList `gorm:"column:research_areas;type:text"`
	ContractType  string     `gorm:"column:contract_type;not null"`
	FTE           float64    `gorm:"column:fte;not null"`
}

// Filter narrows researcher queries. Zero-valued fields add no predicate.
type Filter struct {
	InstitutionID string
	DepartmentID  string
	Position      string
}

// WithUser is a researcher row joined with the owning user's name and email.
type WithUser struct {
	Researcher `gorm:"embedded"`
	FirstName  string `gorm:"column:first_name"`
	LastName   string `gorm:"column:last_name"`
	Email      string `gorm:"column:email"`
}
