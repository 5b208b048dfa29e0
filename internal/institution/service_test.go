package institution_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	gr "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	tl "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/institution"
	institutionPostgres "github.com/frahmantamala/research-analytics/internal/institution/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(db *gorm.DB) *institution.Service {
	return institution.NewService(institutionPostgres.NewInstitutionRepository(db), aggregate.NewStore(db), quietLogger())
}

func expectAppError(err error, status int, code internal.ErrorCode) {
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected *AppError, got %v", err)
	ExpectWithOffset(1, appErr.StatusCode).To(Equal(status))
	ExpectWithOffset(1, appErr.Code).To(Equal(code))
}

func strPtr(s string) *string { return &s }

var _ = Describe("Institution Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *institution.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = testdb.MustOpen()
		service = newService(db)
	})

	Describe("Create", func() {
		It("applies defaults", func() {
			inst, err := service.Create(ctx, institution.CreateInstitutionDTO{
				Name:      "University of Testing",
				ShortName: strPtr("UoT"),
				Type:      dm.TypeRussellGroup,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.ID).NotTo(BeEmpty())
			Expect(inst.Country).To(Equal("UK"))
			Expect(inst.SubscriptionTier).To(Equal(dm.TierFree))
			Expect(inst.IsActive).To(BeTrue())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			testdb.MustInstitution(db, "Beta College", dm.TypePost92)
			testdb.MustInstitution(db, "Alpha University", dm.TypeRussellGroup)
			gone := testdb.MustInstitution(db, "Closed Institute", dm.TypePost92)
			_, err := service.Deactivate(ctx, gone.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("shows active institutions by name by default", func() {
			page, err := service.List(ctx, institution.ListFilter{}, internal.Pagination{Take: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(BeEquivalentTo(2))
			Expect(page.Data[0].Name).To(Equal("Alpha University"))
			Expect(page.Data[1].Name).To(Equal("Beta College"))
		})

		It("can list inactive institutions", func() {
			inactive := false
			page, err := service.List(ctx, institution.ListFilter{IsActive: &inactive}, internal.Pagination{Take: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].Name).To(Equal("Closed Institute"))
		})

		It("filters by type", func() {
			page, err := service.List(ctx, institution.ListFilter{Type: dm.TypePost92}, internal.Pagination{Take: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].Name).To(Equal("Beta College"))
		})
	})

	Describe("Update", func() {
		It("patches only the given fields", func() {
			inst := testdb.MustInstitution(db, "Old Name", dm.TypePre92)
			updated, err := service.Update(ctx, inst.ID, institution.UpdateInstitutionDTO{
				Name:             strPtr("New Name"),
				SubscriptionTier: strPtr(dm.TierEnterprise),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("New Name"))
			Expect(updated.SubscriptionTier).To(Equal(dm.TierEnterprise))
			Expect(updated.Type).To(Equal(dm.TypePre92))
		})

		It("returns 404 for an unknown institution", func() {
			_, err := service.Update(ctx, "missing", institution.UpdateInstitutionDTO{Name: strPtr("x")})
			expectAppError(err, http.StatusNotFound, internal.ErrCodeInstitutionNotFound)
		})
	})

	Describe("Deactivate", func() {
		It("keeps the row and clears isActive", func() {
			inst := testdb.MustInstitution(db, "Soon Gone", dm.TypePre92)
			out, err := service.Deactivate(ctx, inst.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.IsActive).To(BeFalse())

			again, err := service.GetByID(ctx, inst.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.IsActive).To(BeFalse())
		})
	})

	Describe("Stats", func() {
		It("counts researchers, grants and hours for the institution", func() {
			inst := testdb.MustInstitution(db, "Busy", dm.TypeRussellGroup)
			r := testdb.MustResearcher(db, "r@busy.ac.uk", "R", "S", inst.ID, nil)
			testdb.MustGrant(db, inst.ID, gr.StatusAwarded, gr.FunderEU, 100)
			testdb.MustGrant(db, inst.ID, gr.StatusAwarded, gr.FunderEU, 50)
			d := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
			testdb.MustTimeLog(db, r.ID, d, 4, tl.ActivityResearchWriting, tl.CategoryResearch)
			testdb.MustTimeLog(db, r.ID, d, 1, tl.ActivityAdminEmails, tl.CategoryAdministration)

			stats, err := service.Stats(ctx, inst.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.ResearcherCount).To(BeEquivalentTo(1))
			Expect(stats.GrantStats).To(Equal([]aggregate.StatusTotal{{Status: gr.StatusAwarded, Count: 2, TotalValue: 150}}))
			Expect(stats.TimeLogStats).To(Equal([]aggregate.CategoryHours{
				{Category: tl.CategoryResearch, Hours: 4},
				{Category: tl.CategoryAdministration, Hours: 1},
			}))
		})

		It("returns empty slices for a new institution", func() {
			inst := testdb.MustInstitution(db, "Quiet", dm.TypeRussellGroup)
			stats, err := service.Stats(ctx, inst.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.GrantStats).To(BeEmpty())
			Expect(stats.GrantStats).NotTo(BeNil())
			Expect(stats.TimeLogStats).NotTo(BeNil())
		})
	})

	Describe("departments", func() {
		It("adds and lists departments by name", func() {
			inst := testdb.MustInstitution(db, "Faculties", dm.TypePre92)
			_, err := service.AddDepartment(ctx, inst.ID, institution.CreateDepartmentDTO{Name: "Physics"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddDepartment(ctx, inst.ID, institution.CreateDepartmentDTO{Name: "Chemistry", Code: strPtr("CHEM")})
			Expect(err).NotTo(HaveOccurred())

			depts, err := service.Departments(ctx, inst.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(depts).To(HaveLen(2))
			Expect(depts[0].Name).To(Equal("Chemistry"))
			Expect(*depts[0].Code).To(Equal("CHEM"))
		})

		It("returns 404 for an unknown institution", func() {
			_, err := service.AddDepartment(ctx, "missing", institution.CreateDepartmentDTO{Name: "Physics"})
			expectAppError(err, http.StatusNotFound, internal.ErrCodeInstitutionNotFound)
		})

		It("returns 404 for an unknown department", func() {
			_, err := service.GetDepartment(ctx, "missing")
			expectAppError(err, http.StatusNotFound, internal.ErrCodeDepartmentNotFound)
		})
	})
})
