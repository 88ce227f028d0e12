package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/app"
	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
	"github.com/sandeepkv93/personal-website-backend/internal/health"
	"github.com/sandeepkv93/personal-website-backend/internal/http/handler"
	"github.com/sandeepkv93/personal-website-backend/internal/http/middleware"
	"github.com/sandeepkv93/personal-website-backend/internal/http/router"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
	"github.com/sandeepkv93/personal-website-backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewRoleRepository,
	repository.NewUserRoleRepository,
)

var ServiceSet = wire.NewSet(
	provideClock,
	service.NewUserService,
	service.NewRoleService,
	wire.Bind(new(service.UserService), new(*service.UserServiceImpl)),
	wire.Bind(new(service.RoleService), new(*service.RoleServiceImpl)),
)

var HTTPSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewRoleHandler,
	provideAPIRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

// provideRuntimeDB opens the pool and brings schema and seed rows up to date
// before any handler can run.
func provideRuntimeDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(database.OptionsFromConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	report, err := database.Initialize(context.Background(), db, cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	logger.Info("database initialized",
		"driver", cfg.DatabaseDriver,
		"migration_mode", cfg.DBMigrationMode,
		"created_roles", report.CreatedRoles,
		"existing_roles", report.ExistingRoles,
	)
	return db, nil
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod,
		health.NewDBChecker(db),
		health.NewSeedChecker(db),
	)
}

func provideClock() service.Clock { return service.SystemClock }

func provideAPIRateLimiter(cfg *config.Config) router.APIRateLimiterFunc {
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, cfg.APIRateLimitBurst).Middleware()
}

func provideRouterDependencies(
	cfg *config.Config,
	logger *slog.Logger,
	userHandler *handler.UserHandler,
	roleHandler *handler.RoleHandler,
	apiRateLimiter router.APIRateLimiterFunc,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		UserHandler:    userHandler,
		RoleHandler:    roleHandler,
		Static:         handler.NewSPAHandler(cfg.StaticDir),
		Logger:         logger,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RedirectHTTPS:  cfg.RedirectHTTPS,
		APIRateLimiter: apiRateLimiter,
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
