package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/research-analytics/internal/analytics/postgres"
	"github.com/frahmantamala/research-analytics/internal/auth"
	authPostgres "github.com/frahmantamala/research-analytics/internal/auth/postgres"
	"github.com/frahmantamala/research-analytics/internal/core/aggregate"
	"github.com/frahmantamala/research-analytics/internal/core/events"
	"github.com/frahmantamala/research-analytics/internal/grant"
	grantPostgres "github.com/frahmantamala/research-analytics/internal/grant/postgres"
	"github.com/frahmantamala/research-analytics/internal/institution"
	institutionPostgres "github.com/frahmantamala/research-analytics/internal/institution/postgres"
	"github.com/frahmantamala/research-analytics/internal/researcher"
	researcherPostgres "github.com/frahmantamala/research-analytics/internal/researcher/postgres"
	"github.com/frahmantamala/research-analytics/internal/timelog"
	timelogPostgres "github.com/frahmantamala/research-analytics/internal/timelog/postgres"
	"github.com/frahmantamala/research-analytics/internal/transport/middleware"
	"github.com/frahmantamala/research-analytics/internal/transport/rest"
	"github.com/frahmantamala/research-analytics/internal/transport/swagger"
	"github.com/frahmantamala/research-analytics/internal/user"
	userPostgres "github.com/frahmantamala/research-analytics/internal/user/postgres"
	"github.com/frahmantamala/research-analytics/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	Gorm        *gorm.DB
	Router      *chi.Mux
	EventBus    *events.EventBus
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

func startHTTPServer() {
	cfg := mustLoadConfig()

	deps, err := initializeDependencies(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", cfg.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	done := make(chan struct{})
	if deps.RateLimiter != nil {
		go deps.RateLimiter.Run(done)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			close(done)
			os.Exit(1)
		}
	}

	close(done)
	deps.EventBus.Wait()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	db := deps.Gorm

	store := aggregate.NewStore(db)
	userRepo := userPostgres.NewUserRepository(db)
	institutionRepo := institutionPostgres.NewInstitutionRepository(db)
	researcherRepo := researcherPostgres.NewResearcherRepository(db)
	grantRepo := grantPostgres.NewGrantRepository(db)
	timeLogRepo := timelogPostgres.NewTimeLogRepository(db)
	benchmarkRepo := analyticsPostgres.NewBenchmarkRepository(deps.DB)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, authPostgres.NewRefreshTokenRepository(db), tokens, cfg.Security.BCryptCost, lg)
	userService := user.NewService(userRepo, lg)
	institutionService := institution.NewService(institutionRepo, store, lg)
	researcherService := researcher.NewService(researcherRepo, userService, institutionService, store, lg)
	grantService := grant.NewService(grantRepo, institutionService, researcherService, store, deps.EventBus, lg)
	timeLogService := timelog.NewService(timeLogRepo, researcherService, grantService, store, deps.EventBus, lg)
	analyticsService := analytics.NewService(store, researcherRepo, benchmarkRepo, institutionService, lg)

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(authService, lg),
		User:        user.NewHandler(userService, lg),
		Institution: institution.NewHandler(institutionService, lg),
		Researcher:  researcher.NewHandler(researcherService, lg),
		Grant:       grant.NewHandler(grantService, lg),
		TimeLog:     timelog.NewHandler(timeLogService, lg),
		Analytics:   analytics.NewHandler(analyticsService, lg),
	}

	doc, err := swagger.Load(context.Background())
	if err != nil {
		return err
	}
	specHandler, err := swagger.SpecHandler(doc)
	if err != nil {
		return err
	}

	opts := rest.Options{
		Name:           cfg.App.Name,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.Origins(),
		RateLimiter:    deps.RateLimiter,
		SpecHandler:    specHandler,
		DocsHandler:    swagger.Handler(),
	}
	if cfg.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Metrics = middleware.NewHTTPMetrics(reg)
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	rest.RegisterAllRoutes(deps.Router, rest.NewHealthHandler(deps.DB, cfg.App.Version), handlers, opts, lg)
	return nil
}

func initializeDependencies(cfg *internal.Config) (*Dependencies, error) {
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, cfg.App.Env)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	audit := events.AuditLogHandler(lg.Info)
	bus.Subscribe(events.EventTypeGrantStatusChanged, audit)
	bus.Subscribe(events.EventTypeTimeLogsBulkLogged, audit)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Gorm:        gormDB,
		Router:      chi.NewRouter(),
		EventBus:    bus,
		RateLimiter: limiter,
		Logger:      lg,
	}, nil
}

// initDB opens the shared pgx pool through sqlx.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the existing pool so both share connections.
func initGorm(db *sqlx.DB, env string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if env == "development" {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	})
}
