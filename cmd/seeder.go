package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	analyticsPostgres "github.com/frahmantamala/research-analytics/internal/analytics/postgres"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel"
	"github.com/frahmantamala/research-analytics/internal/core/datamodel/benchmark"
	grantDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	institutionDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	researcherDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	timelogDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const demoInstitutionID = "00000000-0000-4000-8000-000000000001"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed sector benchmarks and a demo institution for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		ctx := context.Background()

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db, cfg.App.Env)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(gdb); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		benchmarks := analyticsPostgres.NewBenchmarkRepository(db)
		for _, b := range sectorBenchmarks() {
			if err := benchmarks.Upsert(ctx, b); err != nil {
				log.Fatalf("failed to upsert benchmark %s/%s: %v", b.InstitutionType, b.Metric, err)
			}
		}
		fmt.Println("Seeded sector benchmarks")

		var existing int64
		if err := gdb.Model(&institutionDatamodel.Institution{}).Where("id = ?", demoInstitutionID).Count(&existing).Error; err != nil {
			log.Fatalf("failed to check demo institution: %v", err)
		}
		if existing > 0 {
			fmt.Println("demo institution already exists; skipping demo data")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		if err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return seedDemo(tx, string(hash))
		}); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		fmt.Println("Seeded demo institution; log in as admin@demo.ac.uk / password123")
	},
}

// benchmarkID keeps reseeding idempotent.
func benchmarkID(institutionType, metric string, periodStart time.Time) string {
	key := fmt.Sprintf("%s/%s/%s", institutionType, metric, periodStart.Format("2006-01-02"))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func sectorBenchmarks() []benchmark.SectorBenchmark {
	year := time.Now().UTC().Year() - 1
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	type row struct {
		institutionType string
		metric          string
		p25, p50, p75   float64
		sample          int
	}
	rows := []row{
		{institutionDatamodel.TypeRussellGroup, benchmark.MetricAdminTimePercentage, 28, 35, 42, 24},
		{institutionDatamodel.TypeRussellGroup, benchmark.MetricGrantSuccessRate, 22, 28, 35, 24},
		{institutionDatamodel.TypeRussellGroup, benchmark.MetricAvgResearchHoursPerLog, 2.5, 3.2, 4.1, 24},
		{institutionDatamodel.TypePre92, benchmark.MetricAdminTimePercentage, 30, 38, 45, 31},
		{institutionDatamodel.TypePre92, benchmark.MetricGrantSuccessRate, 18, 24, 30, 31},
		{institutionDatamodel.TypePre92, benchmark.MetricAvgResearchHoursPerLog, 2.2, 3.0, 3.8, 31},
		{institutionDatamodel.TypePost92, benchmark.MetricAdminTimePercentage, 33, 41, 49, 52},
		{institutionDatamodel.TypePost92, benchmark.MetricGrantSuccessRate, 14, 19, 25, 52},
		{institutionDatamodel.TypePost92, benchmark.MetricAvgResearchHoursPerLog, 1.8, 2.5, 3.3, 52},
	}

	out := make([]benchmark.SectorBenchmark, 0, len(rows))
	for _, r := range rows {
		out = append(out, benchmark.SectorBenchmark{
			ID:              benchmarkID(r.institutionType, r.metric, start),
			InstitutionType: r.institutionType,
			Metric:          r.metric,
			Percentile25:    r.p25,
			Percentile50:    r.p50,
			Percentile75:    r.p75,
			SampleSize:      r.sample,
			PeriodStart:     start,
			PeriodEnd:       end,
		})
	}
	return out
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func seedDemo(tx *gorm.DB, passwordHash string) error {
	inst := institutionDatamodel.Institution{
		Base:             datamodel.Base{ID: demoInstitutionID},
		Name:             "University of Demo",
		ShortName:        strPtr("UoD"),
		Type:             institutionDatamodel.TypeRussellGroup,
		Country:          "United Kingdom",
		SubscriptionTier: institutionDatamodel.TierProfessional,
		IsActive:         true,
	}
	if err := tx.Create(&inst).Error; err != nil {
		return fmt.Errorf("institution: %w", err)
	}

	dept := institutionDatamodel.Department{
		InstitutionID: inst.ID,
		Name:          "Computer Science",
		Code:          strPtr("CS"),
		Faculty:       strPtr("Engineering"),
	}
	if err := tx.Create(&dept).Error; err != nil {
		return fmt.Errorf("department: %w", err)
	}

	people := []struct {
		email, first, last, role string
		position                 string
	}{
		{"admin@demo.ac.uk", "Ada", "Admin", userDatamodel.RoleInstitutionAdmin, ""},
		{"grace@demo.ac.uk", "Grace", "Hopper", userDatamodel.RoleResearcher, "Professor"},
		{"alan@demo.ac.uk", "Alan", "Turing", userDatamodel.RoleResearcher, "Senior Lecturer"},
	}

	var researchers []researcherDatamodel.Researcher
	for _, p := range people {
		u := userDatamodel.User{
			Email:         p.email,
			PasswordHash:  passwordHash,
			FirstName:     p.first,
			LastName:      p.last,
			Role:          p.role,
			InstitutionID: strPtr(inst.ID),
			IsActive:      true,
		}
		if err := tx.Create(&u).Error; err != nil {
			return fmt.Errorf("user %s: %w", p.email, err)
		}
		if p.position == "" {
			continue
		}
		r := researcherDatamodel.Researcher{
			UserID:        u.ID,
			InstitutionID: inst.ID,
			DepartmentID:  strPtr(dept.ID),
			Position:      strPtr(p.position),
			ResearchAreas: researcherDatamodel.StringList{"Computing"},
			ContractType:  researcherDatamodel.ContractPermanent,
			FTE:           1,
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("researcher %s: %w", p.email, err)
		}
		researchers = append(researchers, r)
	}

	now := time.Now().UTC()
	grants := []grantDatamodel.Grant{
		{
			Title:          "Compilers for Everyone",
			Funder:         "EPSRC",
			FunderType:     grantDatamodel.FunderResearchCouncil,
			Amount:         450000,
			Currency:       "GBP",
			Status:         grantDatamodel.StatusActive,
			SubmissionDate: timePtr(now.AddDate(-1, 0, 0)),
			DecisionDate:   timePtr(now.AddDate(0, -9, 0)),
			InstitutionID:  inst.ID,
			Researchers: []grantDatamodel.GrantResearcher{
				{ResearcherID: researchers[0].ID, Role: grantDatamodel.RolePrincipalInvestigator, Allocation: 40},
				{ResearcherID: researchers[1].ID, Role: grantDatamodel.RoleCoInvestigator, Allocation: 20},
			},
		},
		{
			Title:          "Machine Intelligence Foundations",
			Funder:         "Wellcome Trust",
			FunderType:     grantDatamodel.FunderCharity,
			Amount:         120000,
			Currency:       "GBP",
			Status:         grantDatamodel.StatusRejected,
			SubmissionDate: timePtr(now.AddDate(0, -8, 0)),
			DecisionDate:   timePtr(now.AddDate(0, -5, 0)),
			InstitutionID:  inst.ID,
			Researchers: []grantDatamodel.GrantResearcher{
				{ResearcherID: researchers[1].ID, Role: grantDatamodel.RolePrincipalInvestigator, Allocation: 30},
			},
		},
	}
	for i := range grants {
		if err := tx.Create(&grants[i]).Error; err != nil {
			return fmt.Errorf("grant %q: %w", grants[i].Title, err)
		}
	}

	pattern := []struct {
		activity, category string
		hours              float64
	}{
		{timelogDatamodel.ActivityResearchExperiments, timelogDatamodel.CategoryResearch, 4},
		{timelogDatamodel.ActivityAdminEmails, timelogDatamodel.CategoryAdministration, 1.5},
		{timelogDatamodel.ActivityTeachingDelivery, timelogDatamodel.CategoryTeaching, 2},
		{timelogDatamodel.ActivityAdminGrantReporting, timelogDatamodel.CategoryAdministration, 1},
		{timelogDatamodel.ActivityResearchWriting, timelogDatamodel.CategoryResearch, 3},
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var logs []timelogDatamodel.TimeLog
	for _, r := range researchers {
		for day := 0; day < 28; day++ {
			date := today.AddDate(0, 0, -day)
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
			p := pattern[day%len(pattern)]
			l := timelogDatamodel.TimeLog{
				ResearcherID: r.ID,
				Date:         date,
				Hours:        p.hours,
				ActivityType: p.activity,
				Category:     p.category,
			}
			if p.category == timelogDatamodel.CategoryResearch {
				l.GrantID = strPtr(grants[0].ID)
			}
			logs = append(logs, l)
		}
	}
	if err := tx.CreateInBatches(logs, 100).Error; err != nil {
		return fmt.Errorf("time logs: %w", err)
	}
	return nil
}

func clearSeedData(db *gorm.DB) error {
	tables := []string{
		"time_logs", "grant_researchers", "grants", "researchers",
		"refresh_tokens", "users", "departments", "institutions", "sector_benchmarks",
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Exec("DELETE FROM " + t).Error; err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		return nil
	})
}
