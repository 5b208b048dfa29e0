package testdb

import (
	"fmt"
	"time"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// The Must* fixtures insert one row with sensible defaults and panic on failure.

func mustCreate(db *gorm.DB, m interface{}) {
	if err := db.Create(m).Error; err != nil {
		panic(fmt.Errorf("fixture %T: %w", m, err))
	}
}

func MustInstitution(db *gorm.DB, name, instType string) *institution.Institution {
	m := &institution.Institution{
		Name:             name,
		Type:             instType,
		Country:          "United Kingdom",
		SubscriptionTier: institution.TierFree,
		IsActive:         true,
	}
	mustCreate(db, m)
	return m
}

func MustDepartment(db *gorm.DB, institutionID, name string) *institution.Department {
	m := &institution.Department{InstitutionID: institutionID, Name: name}
	mustCreate(db, m)
	return m
}

func MustUser(db *gorm.DB, email, first, last, role string, institutionID *string) *user.User {
	m := &user.User{
		Email:         email,
		PasswordHash:  "x",
		FirstName:     first,
		LastName:      last,
		Role:          role,
		InstitutionID: institutionID,
		IsActive:      true,
	}
	mustCreate(db, m)
	return m
}

// MustResearcher creates a backing user and its researcher profile.
func MustResearcher(db *gorm.DB, email, first, last, institutionID string, departmentID *string) *researcher.Researcher {
	u := MustUser(db, email, first, last, user.RoleResearcher, &institutionID)
	m := &researcher.Researcher{
		UserID:        u.ID,
		InstitutionID: institutionID,
		DepartmentID:  departmentID,
		ResearchAreas: researcher.StringList{},
		ContractType:  researcher.ContractPermanent,
		FTE:           1,
	}
	mustCreate(db, m)
	return m
}

func MustGrant(db *gorm.DB, institutionID, status, funderType string, amount float64) *grant.Grant {
	m := &grant.Grant{
		Title:         "Grant " + status,
		Funder:        "Funder",
		FunderType:    funderType,
		Amount:        amount,
		Currency:      "GBP",
		Status:        status,
		InstitutionID: institutionID,
	}
	mustCreate(db, m)
	return m
}

func MustTimeLog(db *gorm.DB, researcherID string, date time.Time, hours float64, activity, category string) *timelog.TimeLog {
	m := &timelog.TimeLog{
		ResearcherID: researcherID,
		Date:         date.UTC(),
		Hours:        hours,
		ActivityType: activity,
		Category:     category,
	}
	mustCreate(db, m)
	return m
}

// Today is the start of the current UTC day.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
