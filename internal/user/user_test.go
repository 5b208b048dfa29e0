package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/research-analytics/internal"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/user"
	userPostgres "github.com/frahmantamala/research-analytics/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("User", func() {
	var (
		db      *gorm.DB
		service *user.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		db = testdb.MustOpen()
		service = user.NewService(userPostgres.NewUserRepository(db), quietLogger())
		ctx = context.Background()
	})

	Describe("Profile", func() {
		It("includes the institution and researcher summaries", func() {
			inst := testdb.MustInstitution(db, "Oxbridge", "RUSSELL_GROUP")
			r := testdb.MustResearcher(db, "ada@oxbridge.ac.uk", "Ada", "Lovelace", inst.ID, nil)

			profile, err := service.Profile(ctx, r.UserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Email).To(Equal("ada@oxbridge.ac.uk"))
			Expect(profile.FullName()).To(Equal("Ada Lovelace"))
			Expect(profile.Institution).NotTo(BeNil())
			Expect(profile.Institution.Name).To(Equal("Oxbridge"))
			Expect(profile.Researcher).NotTo(BeNil())
			Expect(profile.Researcher.ID).To(Equal(r.ID))
		})

		It("leaves out the parts a user does not have", func() {
			u := testdb.MustUser(db, "root@example.com", "Root", "User", userDatamodel.RoleSuperAdmin, nil)

			profile, err := service.Profile(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Institution).To(BeNil())
			Expect(profile.Researcher).To(BeNil())
		})

		It("returns not found for an unknown user", func() {
			_, err := service.Profile(ctx, "missing")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotFound))
		})
	})

	Describe("GetProfile handler", func() {
		var handler *user.Handler

		BeforeEach(func() {
			handler = user.NewHandler(service, quietLogger())
		})

		It("answers with the caller's profile", func() {
			u := testdb.MustUser(db, "grace@example.com", "Grace", "Hopper", userDatamodel.RoleResearcher, nil)
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), internal.Principal{UserID: u.ID}))
			w := httptest.NewRecorder()

			handler.GetProfile(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("email", "grace@example.com"))
			Expect(body).NotTo(HaveKey("institution"))
		})

		It("rejects a request without a principal", func() {
			w := httptest.NewRecorder()
			handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
