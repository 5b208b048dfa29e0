package institution_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/auth"
	dm "github.com/frahmantamala/research-analytics/internal/core/datamodel/institution"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/institution"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Institution Handler", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	admin := &internal.Principal{UserID: "admin", Role: userDatamodel.RoleSuperAdmin}
	researcherCaller := &internal.Principal{UserID: "someone", Role: userDatamodel.RoleResearcher}

	BeforeEach(func() {
		db = testdb.MustOpen()
		handler := institution.NewHandler(newService(db), quietLogger())
		guard := auth.NewHandler(nil, quietLogger()).RequireRoles(userDatamodel.RoleSuperAdmin, userDatamodel.RoleInstitutionAdmin)
		router = chi.NewRouter()
		router.Route("/institutions", func(r chi.Router) {
			handler.Routes(r, guard)
		})
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

	It("lets an admin create an institution", func() {
		w := do(http.MethodPost, "/institutions/", `{"name":"New University","type":"POST_92"}`, admin)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var got institution.Institution
		Expect(json.NewDecoder(w.Body).Decode(&got)).To(Succeed())
		Expect(got.Type).To(Equal(dm.TypePost92))
	})

	It("forbids a researcher from creating an institution", func() {
		w := do(http.MethodPost, "/institutions/", `{"name":"New University","type":"POST_92"}`, researcherCaller)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("lets any caller read", func() {
		inst := testdb.MustInstitution(db, "Readable", dm.TypePre92)
		Expect(do(http.MethodGet, "/institutions/"+inst.ID, "", researcherCaller).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/institutions/"+inst.ID+"/stats", "", researcherCaller).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/institutions/"+inst.ID+"/departments", "", researcherCaller).Code).To(Equal(http.StatusOK))
	})

	It("rejects an unknown institution type", func() {
		w := do(http.MethodPost, "/institutions/", `{"name":"X","type":"ANCIENT"}`, admin)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("soft deletes on DELETE", func() {
		inst := testdb.MustInstitution(db, "Closing", dm.TypePre92)
		w := do(http.MethodDelete, "/institutions/"+inst.ID, "", admin)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"isActive":false`))
	})

	It("rejects a malformed isActive filter", func() {
		Expect(do(http.MethodGet, "/institutions/?isActive=perhaps", "", admin).Code).To(Equal(http.StatusBadRequest))
	})

	It("adds a department", func() {
		inst := testdb.MustInstitution(db, "Departmental", dm.TypePre92)
		w := do(http.MethodPost, "/institutions/"+inst.ID+"/departments", `{"name":"History"}`, admin)
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).To(ContainSubstring(`"institutionId":"` + inst.ID + `"`))
	})
})
