package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vicky2929-er/student-smart-hub-sub002/docs" // Import generated swagger docs
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	appControllers "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/controllers"
	appMigrations "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/migrations"
	appRepos "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	appRoutes "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/routes"
	appServices "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/config"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/db"
	appMiddleware "github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	pkgAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/cache"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/email"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/filestorage"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/helpers"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/websocket"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/seed"
)

// Store is the opened entity store and whatever must be closed with it.
type Store struct {
	Entities appRepos.EntityStore
	Close    func()
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store       *Store
	Cache       cache.Cache
	FileStorage *filestorage.LocalStorage
	Hub         *websocket.Hub
	Events      *websocket.EventHandler

	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	AuthMiddleware *appMiddleware.AuthMiddleware

	HierarchyService        *appServices.HierarchyService
	AchievementService      *appServices.AchievementService
	AnalyticsService        *appServices.AnalyticsService
	InstituteRequestService *appServices.InstituteRequestService
	BulkImportService       *appServices.BulkImportService

	Controllers appRoutes.Controllers
	Logger      zerolog.Logger

	closers []func()
}

// Close releases the cache and the store.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Format: logger.ParseFormat(cfg.Logging.Format),
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured entity store. For PostgreSQL the
// migrations are applied first.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		return &Store{Entities: appRepos.NewMemoryStore(), Close: func() {}}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return &Store{Entities: appRepos.NewPostgresStore(database), Close: database.Close}, nil
}

// SetupCache returns the analytics cache: Redis when enabled, otherwise an
// in-process map. A Redis outage at startup falls back to the map.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Cache, func()) {
	if cfg.CacheTTL() <= 0 {
		return cache.Noop{}, func() {}
	}
	if !cfg.Redis.Enabled {
		return cache.NewMemory(), func() {}
	}
	rc, err := cache.NewRedisCache(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-memory analytics cache")
		return cache.NewMemory(), func() {}
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis analytics cache connected")
	return rc, func() { _ = rc.Close() }
}

// BuildDependencies initializes services, controllers and the live feed.
// The hub and its event handler run until ctx is cancelled.
func BuildDependencies(ctx context.Context, cfg *config.Config, store *Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}
	deps.closers = append(deps.closers, store.Close)

	var closeCache func()
	deps.Cache, closeCache = SetupCache(ctx, cfg, lgr)
	deps.closers = append(deps.closers, closeCache)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.CertificatesPath, cfg.Storage.BaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Hub = websocket.NewHub(logger.Component("ws-hub"))
	go deps.Hub.Run(ctx)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(store.Entities)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		PortalURL: cfg.SMTP.PortalURL,
	}, logger.Component("email"))

	deps.HierarchyService = appServices.NewHierarchyService(store.Entities, appServices.SystemClock)
	deps.AchievementService = appServices.NewAchievementService(store.Entities, deps.FileStorage, deps.Hub,
		appServices.ReviewPolicy{DepartmentWide: cfg.Review.DepartmentWide}, appServices.SystemClock)
	deps.AnalyticsService = appServices.NewAnalyticsService(store.Entities, deps.Cache, cfg.CacheTTL(), appServices.SystemClock)
	deps.InstituteRequestService = appServices.NewInstituteRequestService(store.Entities, mailer, appServices.SystemClock)
	deps.BulkImportService = appServices.NewBulkImportService(deps.HierarchyService, store.Entities)

	deps.Events = websocket.NewEventHandler(deps.Hub, deps.AnalyticsService, logger.Component("ws-events"))
	deps.Events.Start(ctx)

	deps.Controllers = appRoutes.Controllers{
		Hierarchy:        appControllers.NewHierarchyController(deps.HierarchyService, deps.AnalyticsService, deps.AuthzService),
		Achievement:      appControllers.NewAchievementController(deps.AchievementService, deps.AuthzService),
		Analytics:        appControllers.NewAnalyticsController(deps.AnalyticsService, deps.AuthzService),
		Audit:            appControllers.NewAuditController(deps.HierarchyService, deps.AnalyticsService, deps.AuthzService),
		InstituteRequest: appControllers.NewInstituteRequestController(deps.InstituteRequestService, deps.AnalyticsService),
		Import:           appControllers.NewImportController(deps.BulkImportService, deps.AnalyticsService, deps.AuthzService),
		WebSocket:        websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, logger.Component("ws")),
	}

	if cfg.Seed.Demo {
		err := seed.CreateDemoData(ctx, seed.Services{
			Requests:     deps.InstituteRequestService,
			Hierarchy:    deps.HierarchyService,
			Achievements: deps.AchievementService,
		}, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		if err := deps.Store.Entities.Ping(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "store unavailable", "status": "error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
