// Package testdb opens an in-memory SQLite database with the full schema for repository tests.
package testdb

import (
	"fmt"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel/benchmark"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every persisted entity in dependency order.
var Models = []interface{}{
	&institution.Institution{},
	&institution.Department{},
	&user.User{},
	&user.RefreshToken{},
	&researcher.Researcher{},
	&grant.Grant{},
	&grant.GrantResearcher{},
	&timelog.TimeLog{},
	&benchmark.SectorBenchmark{},
}

// Open returns a migrated in-memory database. The pool is pinned to one
// connection because every new SQLite :memory: connection is a separate database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

// MustOpen panics on failure; intended for BeforeEach blocks.
func MustOpen() *gorm.DB {
	db, err := Open()
	if err != nil {
		panic(err)
	}
	return db
}
