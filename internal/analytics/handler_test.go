package analytics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/analytics"
	instDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	tl "github.com/frahmantamala/research-analytics/internal/core/datamodel/timelog"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Analytics Handler", func() {
	var (
		db     *gorm.DB
		router chi.Router
		inst   *instDatamodel.Institution
	)

	BeforeEach(func() {
		db = testdb.MustOpen()
		inst = testdb.MustInstitution(db, "University of Test", instDatamodel.TypeRussellGroup)
		handler := analytics.NewHandler(newService(db), quietLogger())
		router = chi.NewRouter()
		router.Route("/analytics", handler.Routes)
	})

	get := func(target string, principal *internal.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if principal != nil {
			req = req.WithContext(internal.ContextWithPrincipal(context.Background(), *principal))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("scopes the dashboard to the caller's institution", func() {
		r := testdb.MustResearcher(db, "a@test.ac.uk", "A", "B", inst.ID, nil)
		testdb.MustTimeLog(db, r.ID, testdb.Today(), 2, tl.ActivityAdminEmails, tl.CategoryAdministration)
		other := testdb.MustInstitution(db, "Elsewhere", instDatamodel.TypePost92)
		stranger := testdb.MustResearcher(db, "x@else.ac.uk", "X", "Y", other.ID, nil)
		testdb.MustTimeLog(db, stranger.ID, testdb.Today(), 6, tl.ActivityTeachingDelivery, tl.CategoryTeaching)

		w := get("/analytics/dashboard", &internal.Principal{UserID: "u", InstitutionID: inst.ID})
		Expect(w.Code).To(Equal(http.StatusOK))

		var d analytics.Dashboard
		Expect(json.NewDecoder(w.Body).Decode(&d)).To(Succeed())
		Expect(d.ResearcherCount).To(BeEquivalentTo(1))
		Expect(d.TotalTimeLogged).To(Equal(2.0))
		Expect(d.AdminTimePercentage).To(BeNumerically("~", 100, 0.001))
	})

	It("lets an explicit institutionId override the caller's", func() {
		other := testdb.MustInstitution(db, "Elsewhere", instDatamodel.TypePost92)
		testdb.MustResearcher(db, "x@else.ac.uk", "X", "Y", other.ID, nil)

		w := get("/analytics/dashboard?institutionId="+other.ID, &internal.Principal{UserID: "u", InstitutionID: inst.ID})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"researcherCount":1`))
	})

	DescribeTable("reports that need an institution",
		func(path string) {
			w := get(path, &internal.Principal{UserID: "u"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeInstitutionMissing)))
		},
		Entry("researcher comparison", "/analytics/researcher-comparison"),
		Entry("benchmarks", "/analytics/benchmarks"),
	)

	It("answers benchmarks for an unknown institution with 404", func() {
		w := get("/analytics/benchmarks?institutionId=missing", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a non-numeric limit", func() {
		w := get("/analytics/bottlenecks?limit=lots", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("serves the grant pipeline with empty arrays", func() {
		w := get("/analytics/grant-pipeline?institutionId="+inst.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"byStatus":[]`))
		Expect(w.Body.String()).To(ContainSubstring(`"byFunder":[]`))
	})

	It("serves time trends", func() {
		w := get("/analytics/time-trends?months=6&institutionId="+inst.ID, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"months":[]`))
	})
})
