package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

var _ = Describe("RateLimiter", func() {
	It("rejects requests beyond the burst with 429", func() {
		h := NewRateLimiter(60, 2).Middleware(ok)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, requestFrom("10.0.0.1:1234"))
			Expect(w.Code).To(Equal(http.StatusOK))
		}

		w := httptest.NewRecorder()
		h.ServeHTTP(w, requestFrom("10.0.0.1:1234"))
		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
		Expect(w.Header().Get("Retry-After")).To(Equal("60"))
		Expect(w.Body.String()).To(ContainSubstring(string(ErrCodeRateLimited)))
		Expect(w.Body.String()).To(ContainSubstring(`"details":{"retryAfterSeconds":60}`))
	})

	It("keeps a separate bucket per client", func() {
		h := NewRateLimiter(60, 1).Middleware(ok)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, requestFrom("10.0.0.1:1"))
		Expect(w.Code).To(Equal(http.StatusOK))

		w = httptest.NewRecorder()
		h.ServeHTTP(w, requestFrom("10.0.0.2:1"))
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("sweeps idle clients", func() {
		rl := NewRateLimiter(60, 1)
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		rl.getLimiter("10.0.0.1")
		rl.getLimiter("10.0.0.2")

		now = now.Add(10 * time.Minute)
		rl.getLimiter("10.0.0.2")

		Expect(rl.Sweep()).To(Equal(1))
		Expect(rl.limiters).To(HaveKey("10.0.0.2"))
		Expect(rl.limiters).NotTo(HaveKey("10.0.0.1"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500 envelope", func() {
		h := RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring(`"error"`))
		Expect(w.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("RequestID", func() {
	It("mints a trace id and stores it for chi", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = chimw.GetReqID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Header().Get(TraceHeader)).NotTo(BeEmpty())
		Expect(seen).To(Equal(w.Header().Get(TraceHeader)))
	})

	It("echoes an inbound trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		w := httptest.NewRecorder()
		RequestID(ok).ServeHTTP(w, req)
		Expect(w.Header().Get(TraceHeader)).To(Equal("trace-123"))
	})
})

var _ = Describe("HTTPMetrics", func() {
	It("counts requests by route pattern and status", func() {
		reg := prometheus.NewRegistry()
		m := NewHTTPMetrics(reg)

		r := chi.NewRouter()
		r.Use(m.Middleware)
		r.Get("/grants/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		for _, id := range []string{"a", "b"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/grants/"+id, nil))
		}

		Expect(testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/grants/{id}", "404"))).To(Equal(2.0))
		Expect(testutil.CollectAndCount(m.duration)).To(Equal(1))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("passes the request body through untouched", func() {
		var body string
		h := LoggingMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
			w.WriteHeader(http.StatusCreated)
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"x"}`)))
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(body).To(Equal(`{"password":"x"}`))
	})

	It("masks sensitive JSON fields", func() {
		out := filterSensitiveBody([]byte(`{"email":"a@b.c","password":"hunter2","nested":{"refreshToken":"t"}}`))
		Expect(out).NotTo(ContainSubstring("hunter2"))
		Expect(out).NotTo(ContainSubstring(`"t"`))
		Expect(out).To(ContainSubstring("a@b.c"))
	})

	It("masks sensitive headers", func() {
		h := http.Header{}
		h.Set("Authorization", "Bearer abc")
		h.Set("Accept", "application/json")
		filtered := filterSensitiveHeaders(h)
		Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
		Expect(filtered["Accept"]).To(Equal("application/json"))
	})
})
