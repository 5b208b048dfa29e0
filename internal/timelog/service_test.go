package timelog_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	grantDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/grant"
	instDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	researcherDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/events"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/grant"
	grantPostgres "github.com/frahmantamala/research-analytics/internal/grant/postgres"
	"github.com/frahmantamala/research-analytics/internal/institution"
	institutionPostgres "github.com/frahmantamala/research-analytics/internal/institution/postgres"
	"github.com/frahmantamala/research-analytics/internal/researcher"
	researcherPostgres "github.com/frahmantamala/research-analytics/internal/researcher/postgres"
	"github.com/frahmantamala/research-analytics/internal/timelog"
	timelogPostgres "github.com/frahmantamala/research-analytics/internal/timelog/postgres"
	"github.com/frahmantamala/research-analytics/internal/user"
	userPostgres "github.com/frahmantamala/research-analytics/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(db *gorm.DB, bus *events.EventBus) *timelog.Service {
	lg := quietLogger()
	store := aggregate.NewStore(db)
	institutions := institution.NewService(institutionPostgres.NewInstitutionRepository(db), store, lg)
	researchers := researcher.NewService(
		researcherPostgres.NewResearcherRepository(db),
		user.NewService(userPostgres.NewUserRepository(db), lg),
		institutions,
		store,
		lg,
	)
	grants := grant.NewService(grantPostgres.NewGrantRepository(db), institutions, researchers, store, bus, lg)
	return timelog.NewService(timelogPostgres.NewTimeLogRepository(db), researchers, grants, store, bus, lg)
}

func expectAppError(err error, status int, code internal.ErrorCode) {
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected *AppError, got %v", err)
	ExpectWithOffset(1, appErr.StatusCode).To(Equal(status))
	ExpectWithOffset(1, appErr.Code).To(Equal(code))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func countLogs(db *gorm.DB) int64 {
	var n int64
	ExpectWithOffset(1, db.Model(&dm.TimeLog{}).Count(&n).Error).To(Succeed())
	return n
}

var _ = Describe("TimeLog Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		bus     *events.EventBus
		service *timelog.Service
		inst    *instDatamodel.Institution
		r       *researcherDatamodel.Researcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = testdb.MustOpen()
		bus = events.NewEventBus(quietLogger())
		service = newService(db, bus)
		inst = testdb.MustInstitution(db, "University of Test", instDatamodel.TypePre92)
		r = testdb.MustResearcher(db, "ada@test.ac.uk", "Ada", "Lovelace", inst.ID, nil)
	})

	entry := func(date string, hours float64, activity, category string) timelog.CreateTimeLogDTO {
		return timelog.CreateTimeLogDTO{
			ResearcherID: r.ID,
			Date:         date,
			Hours:        hours,
			ActivityType: activity,
			Category:     category,
		}
	}

	Describe("Create", func() {
		It("stores the log at the start of its UTC day", func() {
			l, err := service.Create(ctx, entry("2024-05-06", 2.5, dm.ActivityResearchWriting, dm.CategoryResearch))
			Expect(err).NotTo(HaveOccurred())
			Expect(l.ID).NotTo(BeEmpty())
			Expect(l.Date).To(Equal(day(2024, time.May, 6)))
			Expect(l.Hours).To(Equal(2.5))
		})

		It("returns 404 for an unknown researcher", func() {
			in := entry("2024-05-06", 1, dm.ActivityOther, dm.CategoryOther)
			in.ResearcherID = "ghost"
			_, err := service.Create(ctx, in)
			expectAppError(err, http.StatusNotFound, internal.ErrCodeResearcherNotFound)
		})

		It("returns 404 for an unknown grant", func() {
			in := entry("2024-05-06", 1, dm.ActivityOther, dm.CategoryOther)
			in.GrantID = strPtr("missing")
			_, err := service.Create(ctx, in)
			expectAppError(err, http.StatusNotFound, internal.ErrCodeGrantNotFound)
		})

		It("links a known grant", func() {
			g := testdb.MustGrant(db, inst.ID, grantDatamodel.StatusActive, grantDatamodel.FunderEU, 100)
			in := entry("2024-05-06", 1, dm.ActivityResearchAnalysis, dm.CategoryResearch)
			in.GrantID = &g.ID
			l, err := service.Create(ctx, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.GrantID).To(HaveValue(Equal(g.ID)))
		})
	})

	Describe("BulkCreate", func() {
		It("inserts every log and reports the count", func() {
			received := make(chan events.Event, 1)
			bus.Subscribe(events.EventTypeTimeLogsBulkLogged, func(_ context.Context, e events.Event) error {
				received <- e
				return nil
			})

			res, err := service.BulkCreate(ctx, timelog.BulkCreateTimeLogDTO{Logs: []timelog.CreateTimeLogDTO{
				entry("2024-05-06", 3, dm.ActivityResearchExperiments, dm.CategoryResearch),
				entry("2024-05-07", 1.5, dm.ActivityAdminEmails, dm.CategoryAdministration),
			}})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(2))
			Expect(countLogs(db)).To(BeEquivalentTo(2))

			bus.Wait()
			var evt events.Event
			Eventually(received).Should(Receive(&evt))
			Expect(evt.(*events.TimeLogsBulkCreatedEvent).TotalHours).To(BeNumerically("~", 4.5, 0.001))
		})

		It("inserts nothing when any entry references an unknown researcher", func() {
			bad := entry("2024-05-07", 1, dm.ActivityOther, dm.CategoryOther)
			bad.ResearcherID = "ghost"
			_, err := service.BulkCreate(ctx, timelog.BulkCreateTimeLogDTO{Logs: []timelog.CreateTimeLogDTO{
				entry("2024-05-06", 3, dm.ActivityResearchExperiments, dm.CategoryResearch),
				bad,
			}})
			expectAppError(err, http.StatusNotFound, internal.ErrCodeResearcherNotFound)
			Expect(countLogs(db)).To(BeZero())
		})

		It("inserts nothing when any entry has a bad date", func() {
			_, err := service.BulkCreate(ctx, timelog.BulkCreateTimeLogDTO{Logs: []timelog.CreateTimeLogDTO{
				entry("2024-05-06", 3, dm.ActivityResearchExperiments, dm.CategoryResearch),
				entry("06/05/2024", 1, dm.ActivityOther, dm.CategoryOther),
			}})
			expectAppError(err, http.StatusBadRequest, internal.ErrCodeValidationFailed)
			Expect(err.Error()).To(ContainSubstring("invalid date"))
			Expect(countLogs(db)).To(BeZero())
		})
	})

	Describe("List", func() {
		It("orders by date descending and filters by range", func() {
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 1), 1, dm.ActivityOther, dm.CategoryOther)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 3), 2, dm.ActivityOther, dm.CategoryOther)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 9), 3, dm.ActivityOther, dm.CategoryOther)

			from, to := day(2024, time.May, 2), day(2024, time.May, 31)
			page, err := service.List(ctx, dm.Filter{ResearcherID: r.ID, From: &from, To: &to}, internal.Pagination{Take: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(BeEquivalentTo(2))
			Expect(page.Data[0].Hours).To(Equal(3.0))
			Expect(page.Data[1].Hours).To(Equal(2.0))
		})

		It("scopes by institution through the researcher", func() {
			other := testdb.MustInstitution(db, "Elsewhere", instDatamodel.TypePost92)
			stranger := testdb.MustResearcher(db, "x@else.ac.uk", "X", "Y", other.ID, nil)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 1), 1, dm.ActivityOther, dm.CategoryOther)
			testdb.MustTimeLog(db, stranger.ID, day(2024, time.May, 1), 1, dm.ActivityOther, dm.CategoryOther)

			page, err := service.List(ctx, dm.Filter{InstitutionID: inst.ID}, internal.Pagination{Take: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(BeEquivalentTo(1))
			Expect(page.Data[0].ResearcherID).To(Equal(r.ID))
		})
	})

	Describe("Update and Delete", func() {
		It("patches hours and category", func() {
			l := testdb.MustTimeLog(db, r.ID, day(2024, time.May, 1), 1, dm.ActivityOther, dm.CategoryOther)
			hours := 6.0
			updated, err := service.Update(ctx, l.ID, timelog.UpdateTimeLogDTO{Hours: &hours, Category: strPtr(dm.CategoryTeaching)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Hours).To(Equal(6.0))
			Expect(updated.Category).To(Equal(dm.CategoryTeaching))
			Expect(updated.ActivityType).To(Equal(dm.ActivityOther))
		})

		It("deletes and then reports 404", func() {
			l := testdb.MustTimeLog(db, r.ID, day(2024, time.May, 1), 1, dm.ActivityOther, dm.CategoryOther)
			Expect(service.Delete(ctx, l.ID)).To(Succeed())
			_, err := service.GetByID(ctx, l.ID)
			expectAppError(err, http.StatusNotFound, internal.ErrCodeTimeLogNotFound)
		})
	})

	Describe("Weekly", func() {
		It("buckets the Sunday-to-Saturday week into seven days", func() {
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 4), 9, dm.ActivityOther, dm.CategoryOther)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 6), 3, dm.ActivityResearchWriting, dm.CategoryResearch)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 8), 2, dm.ActivityAdminMeetings, dm.CategoryAdministration)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 8), 1, dm.ActivityResearchAnalysis, dm.CategoryResearch)
			testdb.MustTimeLog(db, r.ID, day(2024, time.May, 12), 9, dm.ActivityOther, dm.CategoryOther)

			weekOf := day(2024, time.May, 8)
			w, err := service.Weekly(ctx, r.ID, &weekOf)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.WeekOf).To(Equal("2024-05-05"))
			Expect(w.ByDay).To(HaveLen(7))
			Expect(w.ByDay[0].DayName).To(Equal("Sun"))
			Expect(w.ByDay[6].Date).To(Equal("2024-05-11"))
			Expect(w.ByDay[1].TotalHours).To(Equal(3.0))
			Expect(w.ByDay[3].Logs).To(HaveLen(2))
			Expect(w.ByDay[3].TotalHours).To(Equal(3.0))
			Expect(w.TotalHours).To(Equal(6.0))
			Expect(w.ByCategory).To(ConsistOf(
				aggregate.CategoryHours{Category: dm.CategoryResearch, Hours: 4},
				aggregate.CategoryHours{Category: dm.CategoryAdministration, Hours: 2},
			))
		})

		It("returns empty buckets for a quiet week", func() {
			weekOf := day(2024, time.January, 3)
			w, err := service.Weekly(ctx, r.ID, &weekOf)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.ByDay).To(HaveLen(7))
			Expect(w.TotalHours).To(BeZero())
			for _, d := range w.ByDay {
				Expect(d.Logs).To(BeEmpty())
			}
		})

		It("returns 404 for an unknown researcher", func() {
			_, err := service.Weekly(ctx, "ghost", nil)
			expectAppError(err, http.StatusNotFound, internal.ErrCodeResearcherNotFound)
		})
	})

	Describe("AdminBreakdown", func() {
		It("relates admin activities to all hours in range", func() {
			testdb.MustTimeLog(db, r.ID, day(2024, time.March, 1), 6, dm.ActivityResearchExperiments, dm.CategoryResearch)
			testdb.MustTimeLog(db, r.ID, day(2024, time.March, 2), 3, dm.ActivityAdminEmails, dm.CategoryAdministration)
			testdb.MustTimeLog(db, r.ID, day(2024, time.March, 3), 1, dm.ActivityAdminMeetings, dm.CategoryAdministration)
			testdb.MustTimeLog(db, r.ID, day(2023, time.March, 3), 8, dm.ActivityAdminMeetings, dm.CategoryAdministration)

			from, to := day(2024, time.January, 1), day(2024, time.December, 31)
			b, err := service.AdminBreakdown(ctx, timelog.BreakdownFilter{InstitutionID: inst.ID, From: &from, To: &to})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.TotalAdminHours).To(Equal(4.0))
			Expect(b.TotalAllHours).To(Equal(10.0))
			Expect(b.AdminPercentage).To(BeNumerically("~", 40, 0.001))
			Expect(b.ByActivity).To(HaveLen(2))
			Expect(b.ByActivity[0].ActivityType).To(Equal(dm.ActivityAdminEmails))
			Expect(b.ByActivity[0].Percentage).To(BeNumerically("~", 75, 0.001))
		})

		It("is zero rather than undefined with no hours", func() {
			from, to := day(2024, time.January, 1), day(2024, time.December, 31)
			b, err := service.AdminBreakdown(ctx, timelog.BreakdownFilter{InstitutionID: inst.ID, From: &from, To: &to})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.AdminPercentage).To(BeZero())
			Expect(b.ByActivity).To(BeEmpty())
		})
	})
})
