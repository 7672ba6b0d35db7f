package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yigit/campushub/internal/app/access"
	appAuth "github.com/yigit/campushub/internal/app/auth"
	appControllers "github.com/yigit/campushub/internal/app/controllers"
	appMigrations "github.com/yigit/campushub/internal/app/migrations"
	appRepos "github.com/yigit/campushub/internal/app/repositories"
	appRoutes "github.com/yigit/campushub/internal/app/routes"
	appServices "github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/config"
	"github.com/yigit/campushub/internal/db"
	appMiddleware "github.com/yigit/campushub/internal/middleware"
	pkgAuth "github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/cache"
	"github.com/yigit/campushub/internal/pkg/email"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/logger"
	"github.com/yigit/campushub/internal/pkg/metrics"
	"github.com/yigit/campushub/internal/pkg/websocket"
	"github.com/yigit/campushub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Blacklist      cache.TokenBlacklist
	Redis          *cache.RedisClient // nil when the in-memory blacklist is used
	IdentityBus    *access.IdentityBus
	Gate           *access.Gate
	Sessions       *appServices.SessionFactory
	Hub            *websocket.Hub
	Metrics        *metrics.Metrics
	FileStorage    *filestorage.LocalStorage
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	WSHandler      *websocket.Handler
	Logger         zerolog.Logger

	unsubscribe []func()
}

// Close releases what BuildDependencies opened, except the database.
func (d *Dependencies) Close() {
	for _, fn := range d.unsubscribe {
		fn()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(config.Path())
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

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds
// the super admin.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, appMigrations.Files(), lgr)
	if err := migrator.Up(context.Background()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	users := appRepos.NewUserRepository(database.Pool, database)
	roles := appRepos.NewRoleRepository(database.Pool)
	admin := seed.Admin{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	}
	if err := seed.CreateDefaultData(context.Background(), users, roles, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)
	deps.Metrics = metrics.New()

	var err error
	fileStorageBaseURL := strings.TrimRight(cfg.Server.PublicBaseURL, "/") + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	if cfg.Redis.Enabled {
		deps.Redis, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger.Component("redis"))
		if err != nil {
			return nil, err
		}
		deps.Blacklist = deps.Redis
	} else {
		lgr.Warn().Msg("Redis disabled, revoked tokens are tracked in memory only")
		deps.Blacklist = cache.NewMemoryBlacklist()
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 15*time.Minute),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	// Identity changes fan out to open sessions and live sockets.
	deps.IdentityBus = access.NewIdentityBus()
	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	go deps.Hub.Run(ctx)
	deps.unsubscribe = append(deps.unsubscribe, deps.IdentityBus.Subscribe(func(change access.IdentityChange) {
		if change.Kind == access.SignedOut {
			deps.Hub.DisconnectUser(change.UserID)
		}
	}))

	deps.Gate = access.NewGate(access.DefaultDestinations(), access.WithObserver(func(state access.State) {
		deps.Metrics.ObserveGate(string(state))
	}))

	repos := deps.Repos
	deps.Sessions = appServices.NewSessionFactory(repos.UserRepository, repos.RoleRepository, deps.IdentityBus, logger.Component("session"))

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		UseTLS:    cfg.Email.UseTLS,
		BaseURL:   cfg.Email.AppURL,
	}, logger.Component("email"))
	notifier := appServices.NewNotificationService(deps.Hub, mailer, repos.UserRepository, deps.Metrics, logger.Component("notification"))

	authz := appAuth.NewAuthorizationService(repos.CoordinatorRepository)
	clock := helpers.Clock(helpers.SystemClock)

	authService := appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		deps.JWTService,
		deps.Blacklist,
		deps.IdentityBus,
		deps.Sessions,
		clock,
		logger.Component("auth"),
	)
	profileService := appServices.NewProfileService(repos.UserRepository, deps.FileStorage, clock, logger.Component("profile"))
	eventService := appServices.NewEventService(
		repos.EventRepository,
		repos.CoordinatorRepository,
		repos.RegistrationRepository,
		repos.ResultRepository,
		repos.UserRepository,
		authz,
		deps.FileStorage,
		deps.IdentityBus,
		deps.Metrics,
		clock,
		logger.Component("event"),
	)
	activityService := appServices.NewActivityService(
		repos.EventRepository,
		repos.CoordinatorRepository,
		repos.RegistrationRepository,
		authz,
		notifier,
		deps.Metrics,
		clock,
		logger.Component("activity"),
	)
	resultService := appServices.NewResultService(repos.EventRepository, repos.ResultRepository, authz, deps.FileStorage, clock, logger.Component("result"))
	placementService := appServices.NewPlacementService(
		repos.CompanyRepository,
		repos.JobRepository,
		repos.ApplicationRepository,
		repos.UserRepository,
		deps.FileStorage,
		deps.Metrics,
		clock,
		logger.Component("placement"),
	)
	placementAdminService := appServices.NewPlacementAdminService(
		repos.CompanyRepository,
		repos.JobRepository,
		repos.ApplicationRepository,
		repos.PlacementResultRepository,
		deps.FileStorage,
		notifier,
		deps.Metrics,
		clock,
		logger.Component("placement-admin"),
	)
	userAdminService := appServices.NewUserAdminService(appServices.StatsSources{
		Users:         repos.UserRepository,
		Roles:         repos.RoleRepository,
		Events:        repos.EventRepository,
		Registrations: repos.RegistrationRepository,
		Companies:     repos.CompanyRepository,
		Jobs:          repos.JobRepository,
		Applications:  repos.ApplicationRepository,
		Placements:    repos.PlacementResultRepository,
	}, deps.IdentityBus, notifier, clock, logger.Component("user-admin"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Blacklist, deps.Sessions, deps.Gate, logger.Component("auth-middleware"))
	deps.WSHandler = websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, logger.Component("websocket"))

	deps.Controllers = appRoutes.Controllers{
		Auth:           appControllers.NewAuthController(authService, logger.Component("auth")),
		Profile:        appControllers.NewProfileController(profileService, logger.Component("profile")),
		Navigation:     appControllers.NewNavigationController(deps.Gate),
		Event:          appControllers.NewEventController(eventService),
		Activity:       appControllers.NewActivityController(activityService),
		Result:         appControllers.NewResultController(resultService),
		Placement:      appControllers.NewPlacementController(placementService),
		PlacementAdmin: appControllers.NewPlacementAdminController(placementAdminService),
		User:           appControllers.NewUserController(userAdminService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database *db.PostgresDB, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterValidators()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WSHandler)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/api/v1/health", healthHandler(database, deps.Redis))

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	return router
}

func healthHandler(database *db.PostgresDB, redis *cache.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK
		if err := database.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if redis != nil {
			checks["redis"] = "ok"
			if err := redis.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}
