package internal_test

import (
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		App: internal.AppConfig{Name: "research-analytics", Version: "1.0.0", Env: "test"},
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, https://app.example.ac.uk",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://localhost/research",
		},
		Security: internal.SecurityConfig{
			JWTAccessSecret:      "access-secret-access-secret-access-secret",
			JWTRefreshSecret:     "refresh-secret-refresh-secret-refresh-secret",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
			BCryptCost:           12,
		},
		Observability: internal.ObservabilityConfig{
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("splits and trims allowed origins", func() {
		Expect(validConfig().Server.Origins()).To(Equal([]string{"http://localhost:3000", "https://app.example.ac.uk"}))
		Expect((&internal.ServerConfig{}).Origins()).To(BeNil())
	})

	DescribeTable("rejects",
		func(mutate func(*internal.Config), fragment string) {
			cfg := validConfig()
			mutate(cfg)
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(fragment))
		},
		Entry("a short access secret", func(c *internal.Config) { c.Security.JWTAccessSecret = "short" }, "JWTAccessSecret"),
		Entry("identical secrets", func(c *internal.Config) { c.Security.JWTRefreshSecret = c.Security.JWTAccessSecret }, "JWTRefreshSecret"),
		Entry("an unknown environment", func(c *internal.Config) { c.App.Env = "qa" }, "Env"),
		Entry("more idle than open connections", func(c *internal.Config) { c.Database.MaxIdleConns = 20 }, "max_idle_conns"),
		Entry("a read timeout below the header timeout", func(c *internal.Config) { c.Server.ReadTimeout = time.Second }, "read_timeout"),
		Entry("rate limiting without a rate", func(c *internal.Config) { c.RateLimit.Enabled = true }, "RequestsPerMinute"),
		Entry("metrics without a path", func(c *internal.Config) { c.Observability.Metrics.Enabled = true }, "Path"),
	)

	It("loads from the environment", func() {
		GinkgoT().Setenv("APP_ENV", "production")
		GinkgoT().Setenv("PORT", "9090")
		cfg := internal.LoadConfigFromEnv()
		Expect(cfg.App.Env).To(Equal("production"))
		Expect(cfg.Server.Port).To(Equal(9090))
	})
})
