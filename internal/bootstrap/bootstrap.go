package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/scholarlink/internal/app/controllers"
	appMigrations "github.com/yigit/scholarlink/internal/app/migrations"
	appRepos "github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/app/repositories/memory"
	appRoutes "github.com/yigit/scholarlink/internal/app/routes"
	appServices "github.com/yigit/scholarlink/internal/app/services"
	"github.com/yigit/scholarlink/internal/config"
	"github.com/yigit/scholarlink/internal/db"
	appMiddleware "github.com/yigit/scholarlink/internal/middleware"
	pkgAuth "github.com/yigit/scholarlink/internal/pkg/auth"
	"github.com/yigit/scholarlink/internal/pkg/helpers"
	"github.com/yigit/scholarlink/internal/pkg/logger"
	"github.com/yigit/scholarlink/internal/seed"
)

// DefaultConfigPath is where the server and the CLI look for the YAML file
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          appRepos.Store
	Services       *appServices.Services
	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger // Get the configured global logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the Postgres pool named by the configuration.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the SQL files of the configured migrations directory.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (int, error) {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return 0, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrator"))
	applied, err := migrator.MigrateFromDirectory(ctx, migrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return applied, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return applied, nil
}

// SetupStore opens the store selected by database.driver. For Postgres the
// migrations are applied first. The returned close function releases the pool.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, func(), error) {
	var (
		store   appRepos.Store
		closeFn = func() {}
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store, data is lost on restart")
		store = memory.NewStore()
	default:
		database, err := ConnectDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, nil, err
		}
		if _, err := RunMigrations(ctx, cfg, database, lgr); err != nil {
			database.Close()
			return nil, nil, err
		}
		store = appRepos.NewPostgresStore(database)
		closeFn = func() {
			lgr.Info().Msg("Closing database connection pool...")
			database.Close()
		}
	}

	if !cfg.IsProduction() {
		if err := seed.CreateDefaultData(ctx, store, lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return store, closeFn, nil
}

// NewJWTService builds the token verifier from the configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services and controllers on top of the store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}

	deps.Services = appServices.NewServices(store, appServices.Options{
		RequireConnection: cfg.Messaging.RequireConnection,
	}, lgr)

	deps.JWTService = NewJWTService(cfg)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Connections:   appControllers.NewConnectionController(deps.Services.Connections),
		Messages:      appControllers.NewMessageController(deps.Services.Messages),
		Payments:      appControllers.NewPaymentController(deps.Services.Payments),
		Notifications: appControllers.NewNotificationController(deps.Services.Notifications),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	if cfg.Metrics.Enabled {
		router.Use(appMiddleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
