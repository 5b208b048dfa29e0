package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/auth"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type errorBody struct {
	Error struct {
		StatusCode int    `json:"statusCode"`
		Type       string `json:"type"`
		Code       string `json:"code"`
		Message    string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Auth Handler", func() {
	var handler *auth.Handler

	BeforeEach(func() {
		handler = auth.NewHandler(newService(testdb.MustOpen()), quietLogger())
	})

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	registerBody := `{"email":"Ada@Example.com","password":"password123","firstName":"Ada","lastName":"Lovelace"}`

	It("registers a user with 201 and camelCase tokens", func() {
		w := post(handler.Register, registerBody)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveKey("accessToken"))
		Expect(body).To(HaveKey("refreshToken"))
		Expect(body["user"]).To(HaveKeyWithValue("email", "ada@example.com"))
	})

	It("rejects an invalid payload with a validation error", func() {
		w := post(handler.Register, `{"email":"not-an-email","password":"short","firstName":"A","lastName":"L"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Type).To(Equal(string(internal.ErrorTypeValidation)))
		Expect(body.Error.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("rejects unknown fields", func() {
		w := post(handler.Login, `{"email":"a@b.com","password":"x","remember":true}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers bad credentials with 401", func() {
		Expect(post(handler.Register, registerBody).Code).To(Equal(http.StatusCreated))

		w := post(handler.Login, `{"email":"ada@example.com","password":"wrong-password"}`)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Code).To(Equal(string(internal.ErrCodeInvalidCredentials)))
	})

	Describe("AuthMiddleware and RequireRoles", func() {
		var accessToken string

		BeforeEach(func() {
			w := post(handler.Register, registerBody)
			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp auth.AuthResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			accessToken = resp.AccessToken
		})

		protected := func(next http.Handler) http.Handler {
			return handler.AuthMiddleware(next)
		}
		echoPrincipal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := internal.PrincipalFromContext(r.Context())
			w.Write([]byte(p.Email))
		})

		It("rejects a request without a bearer token", func() {
			w := httptest.NewRecorder()
			protected(echoPrincipal).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a malformed token", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer nope")
			w := httptest.NewRecorder()
			protected(echoPrincipal).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("stores the principal for downstream handlers", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			w := httptest.NewRecorder()
			protected(echoPrincipal).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("ada@example.com"))
		})

		It("forbids a role outside the allow-list", func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			w := httptest.NewRecorder()
			adminOnly := handler.RequireRoles(userDatamodel.RoleSuperAdmin, userDatamodel.RoleInstitutionAdmin)
			protected(adminOnly(echoPrincipal)).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			var body errorBody
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Error.Code).To(Equal(string(internal.ErrCodeInsufficientRole)))
		})

		It("lets an allowed role through", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			w := httptest.NewRecorder()
			protected(handler.RequireRoles(userDatamodel.RoleResearcher)(echoPrincipal)).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("logs out with an empty body", func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			w := httptest.NewRecorder()
			protected(http.HandlerFunc(handler.Logout)).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("Logged out successfully"))
		})
	})
})
