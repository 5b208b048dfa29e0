package timelog_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	instDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	researcherDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/researcher"
	"github.com/frahmantamala/research-analytics/internal/core/events"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/timelog"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("TimeLog Handler", func() {
	var (
		db     *gorm.DB
		router chi.Router
		r      *researcherDatamodel.Researcher
	)

	BeforeEach(func() {
		db = testdb.MustOpen()
		inst := testdb.MustInstitution(db, "University of Test", instDatamodel.TypeRussellGroup)
		r = testdb.MustResearcher(db, "ada@test.ac.uk", "Ada", "Lovelace", inst.ID, nil)
		handler := timelog.NewHandler(newService(db, events.NewEventBus(quietLogger())), quietLogger())
		router = chi.NewRouter()
		router.Route("/time-logs", handler.Routes)
	})

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	logBody := func(hours string) string {
		return fmt.Sprintf(`{"researcherId":%q,"date":"2024-05-06","hours":%s,"activityType":"RESEARCH_WRITING","category":"RESEARCH"}`, r.ID, hours)
	}

	DescribeTable("hours bounds",
		func(hours string, status int) {
			Expect(do(http.MethodPost, "/time-logs/", logBody(hours)).Code).To(Equal(status))
		},
		Entry("zero", "0", http.StatusBadRequest),
		Entry("below a quarter hour", "0.2", http.StatusBadRequest),
		Entry("a quarter hour", "0.25", http.StatusCreated),
		Entry("a full day", "24", http.StatusCreated),
		Entry("more than a day", "25", http.StatusBadRequest),
	)

	It("rejects an activity outside the enumeration", func() {
		body := fmt.Sprintf(`{"researcherId":%q,"date":"2024-05-06","hours":1,"activityType":"NAPPING","category":"RESEARCH"}`, r.ID)
		Expect(do(http.MethodPost, "/time-logs/", body).Code).To(Equal(http.StatusBadRequest))
	})

	It("bulk creates and answers with the count", func() {
		body := `{"logs":[` + logBody("2") + `,` + logBody("3") + `]}`
		w := do(http.MethodPost, "/time-logs/bulk", body)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var res timelog.BulkResult
		Expect(json.NewDecoder(w.Body).Decode(&res)).To(Succeed())
		Expect(res.Count).To(Equal(2))
	})

	It("rejects a bulk payload when any entry is invalid", func() {
		body := `{"logs":[` + logBody("2") + `,` + logBody("30") + `]}`
		Expect(do(http.MethodPost, "/time-logs/bulk", body).Code).To(Equal(http.StatusBadRequest))
		Expect(countLogs(db)).To(BeZero())
	})

	It("rejects an empty bulk payload", func() {
		Expect(do(http.MethodPost, "/time-logs/bulk", `{"logs":[]}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("serves the weekly view with seven days", func() {
		w := do(http.MethodGet, "/time-logs/weekly/"+r.ID+"?weekOf=2024-05-08", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var weekly timelog.Weekly
		Expect(json.NewDecoder(w.Body).Decode(&weekly)).To(Succeed())
		Expect(weekly.ByDay).To(HaveLen(7))
		Expect(weekly.WeekOf).To(Equal("2024-05-05"))
	})

	It("answers the weekly view with 404 for an unknown researcher", func() {
		Expect(do(http.MethodGet, "/time-logs/weekly/ghost", "").Code).To(Equal(http.StatusNotFound))
	})

	It("routes admin-breakdown ahead of /{id}", func() {
		w := do(http.MethodGet, "/time-logs/admin-breakdown?fromDate=2024-01-01&toDate=2024-12-31", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"adminPercentage":0`))
	})

	It("rejects an invalid category filter", func() {
		Expect(do(http.MethodGet, "/time-logs/?category=NAPPING", "").Code).To(Equal(http.StatusBadRequest))
	})
})
