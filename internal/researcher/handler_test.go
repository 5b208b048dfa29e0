package researcher_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/research-analytics/internal"
	instDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/researcher"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Researcher Handler", func() {
	var (
		db     *gorm.DB
		router chi.Router
		inst   *instDatamodel.Institution
	)

	BeforeEach(func() {
		db = testdb.MustOpen()
		inst = testdb.MustInstitution(db, "University of Test", instDatamodel.TypePre92)
		handler := researcher.NewHandler(newService(db), quietLogger())
		router = chi.NewRouter()
		router.Route("/researchers", handler.Routes)
	})

	do := func(method, target, body string, principal *internal.Principal) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		if principal != nil {
			req = req.WithContext(internal.ContextWithPrincipal(context.Background(), *principal))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("serves /me ahead of /{id}", func() {
		r := testdb.MustResearcher(db, "me@test.ac.uk", "Me", "Myself", inst.ID, nil)

		w := do(http.MethodGet, "/researchers/me", "", &internal.Principal{UserID: r.UserID})
		Expect(w.Code).To(Equal(http.StatusOK))

		var got researcher.Researcher
		Expect(json.NewDecoder(w.Body).Decode(&got)).To(Succeed())
		Expect(got.ID).To(Equal(r.ID))
	})

	It("answers /me with 404 when the caller has no profile", func() {
		w := do(http.MethodGet, "/researchers/me", "", &internal.Principal{UserID: "nobody"})
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("validates the create payload", func() {
		w := do(http.MethodPost, "/researchers/", `{"institutionId":"x","fte":1.5}`, nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	})

	It("rejects a malformed date on time-allocation", func() {
		r := testdb.MustResearcher(db, "a@test.ac.uk", "A", "B", inst.ID, nil)
		w := do(http.MethodGet, "/researchers/"+r.ID+"/time-allocation?fromDate=yesterday", "", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeInvalidDate)))
	})

	It("deletes with 204", func() {
		r := testdb.MustResearcher(db, "a@test.ac.uk", "A", "B", inst.ID, nil)
		Expect(do(http.MethodDelete, "/researchers/"+r.ID, "", nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/researchers/"+r.ID, "", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("lists with the page envelope", func() {
		testdb.MustResearcher(db, "a@test.ac.uk", "A", "B", inst.ID, nil)
		w := do(http.MethodGet, "/researchers/?institutionId="+inst.ID, "", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var page internal.Page[researcher.Researcher]
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(page.Total).To(Equal(int64(1)))
		Expect(page.Take).To(Equal(50))
	})
})
