package rest_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/research-analytics/internal/auth"
	"github.com/frahmantamala/research-analytics/internal/core/testdb"
	"github.com/frahmantamala/research-analytics/internal/transport/middleware"
	"github.com/frahmantamala/research-analytics/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		sqlDB  *sqlx.DB
	)

	BeforeEach(func() {
		gdb := testdb.MustOpen()
		raw, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB = sqlx.NewDb(raw, "sqlite3")

		lg := quietLogger()
		router = chi.NewRouter()
		openAPI := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"openapi":"3.0.3"}`))
		})
		rest.RegisterAllRoutes(router, rest.NewHealthHandler(sqlDB, "1.2.3"),
			rest.Handlers{Auth: auth.NewHandler(nil, lg)},
			rest.Options{Name: "research-analytics", Version: "1.2.3", AllowedOrigins: []string{"*"}, SpecHandler: openAPI},
			lg)
	})

	It("describes the service at the root", func() {
		rec := serve(router, http.MethodGet, "/")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("status", "ok"))
		Expect(body).To(HaveKeyWithValue("name", "research-analytics"))
		Expect(body).To(HaveKeyWithValue("version", "1.2.3"))
		Expect(body).To(HaveKey("timestamp"))
	})

	It("answers ping", func() {
		rec := serve(router, http.MethodGet, "/api/v1/ping")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"status":"OK"}`))
	})

	It("stamps a request id on every response", func() {
		rec := serve(router, http.MethodGet, "/api/v1/ping")
		Expect(rec.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})

	It("rejects protected routes without a token", func() {
		rec := serve(router, http.MethodPost, "/api/v1/auth/logout")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring(`"code":"INVALID_TOKEN"`))
	})

	It("serves the openapi document", func() {
		rec := serve(router, http.MethodGet, "/openapi.json")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"openapi":"3.0.3"}`))
	})

	Describe("health", func() {
		It("reports healthy when the database answers", func() {
			rec := serve(router, http.MethodGet, "/health")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Status).To(Equal(rest.HealthHealthy))
			Expect(body.Version).To(Equal("1.2.3"))
			Expect(body.Components).To(HaveKey("database"))
			Expect(body.Memory.NumGoroutine).To(BeNumerically(">", 0))
		})

		It("reports unhealthy once the database is gone", func() {
			Expect(sqlDB.Close()).To(Succeed())

			rec := serve(router, http.MethodGet, "/api/v1/health")
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			var body rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Status).To(Equal(rest.HealthUnhealthy))
			Expect(body.Components["database"].Message).NotTo(BeEmpty())
		})

		It("reports unhealthy without a database", func() {
			r := chi.NewRouter()
			rest.RegisterAllRoutes(r, rest.NewHealthHandler(nil, "dev"), rest.Handlers{}, rest.Options{}, quietLogger())

			rec := serve(r, http.MethodGet, "/health")
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(rec.Body.String()).To(ContainSubstring("database not configured"))
		})
	})
})
