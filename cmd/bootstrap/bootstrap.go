package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medical-slot-booking/config"
	deliveryHttp "medical-slot-booking/internal/delivery/http"
	"medical-slot-booking/internal/delivery/http/handler"
	"medical-slot-booking/internal/delivery/http/middleware"
	domainRepo "medical-slot-booking/internal/domain/repository"
	"medical-slot-booking/internal/infrastructure/cache"
	"medical-slot-booking/internal/infrastructure/database"
	"medical-slot-booking/internal/repository"
	"medical-slot-booking/internal/repository/memory"
	"medical-slot-booking/internal/service"
	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/jwt"
	"medical-slot-booking/pkg/metrics"
	"medical-slot-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const metricsNamespace = "medical_booking"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Store       domainRepo.Store
	Metrics     *metrics.Metrics
	JWT         *jwt.JWTService
	Usecases    Usecases
	Server      *http.Server
}

type Usecases struct {
	TimeSlots usecase.TimeSlotUsecase
	Booking   usecase.AppointmentBookingUsecase
	Lifecycle usecase.AppointmentLifecycleUsecase
	AuditLogs usecase.AuditLogUsecase
	Directory *service.DirectoryService
}

// New creates a new App instance with all dependencies initialized.
// envFile may be empty.
func New(envFile string) (*App, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := &App{Config: cfg, Log: setupLogger(cfg.App.LogLevel)}
	app.Log.Info("Configuration loaded successfully")

	if err := app.initStore(); err != nil {
		app.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	}

	app.Metrics = metrics.New(metricsNamespace)
	app.JWT = jwt.NewJWTService(cfg.JWT)
	app.Usecases = app.buildUsecases()
	app.Server = app.initializeServer()

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func (app *App) initStore() error {
	cfg := app.Config
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		app.Store = memory.NewStore()
		app.Log.Warn("Using in-memory store; data is lost on restart")
		return nil
	}

	if cfg.App.MigrateOnStart {
		if err := Migrate(cfg.DB, func(m *database.Migrator) error { return m.Up() }); err != nil {
			return err
		}
	}

	db, err := database.NewPostgresConnection(cfg.DB, app.Log.IsLevelEnabled(logrus.DebugLevel))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Store = repository.NewStore(db)
	return nil
}

func (app *App) buildUsecases() Usecases {
	directory := service.NewDirectoryService(app.Store)

	deps := usecase.Deps{
		Store:       app.Store,
		Directory:   directory,
		Identity:    directory,
		Audit:       service.NewAuditService(app.Log),
		Metrics:     app.Metrics,
		Log:         app.Log,
		UnitTimeout: app.Config.Booking.UnitTimeout,
	}
	if app.RedisClient != nil {
		deps.Cache = service.NewRedisAvailabilityCache(app.RedisClient, app.Log, app.Config.Booking.AvailabilityTTL)
		deps.Events = service.NewRedisEventPublisher(app.RedisClient, app.Log)
	} else {
		deps.Events = service.NewLogEventPublisher(app.Log)
	}

	return Usecases{
		TimeSlots: usecase.NewTimeSlotUsecase(deps),
		Booking:   usecase.NewAppointmentBookingUsecase(deps),
		Lifecycle: usecase.NewAppointmentLifecycleUsecase(deps),
		AuditLogs: usecase.NewAuditLogUsecase(deps),
		Directory: directory,
	}
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() *http.Server {
	customValidator := validator.NewValidator()

	timeSlotHandler := handler.NewTimeSlotHandler(app.Usecases.TimeSlots, app.Usecases.Directory, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(app.Usecases.Booking, app.Usecases.Lifecycle, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(app.Usecases.AuditLogs)

	authMiddleware := middleware.NewAuthMiddleware(app.JWT)
	corsMiddleware := middleware.NewCORSMiddleware("")
	loggingMiddleware := middleware.NewLoggingMiddleware(app.Log, app.Metrics)

	var rateLimiter *middleware.RateLimiter
	if app.Config.RateLimit.RPS > 0 {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(app.Config.RateLimit.RPS),
			Burst: app.Config.RateLimit.Burst,
		})
	}

	router := deliveryHttp.NewRouter(
		timeSlotHandler,
		appointmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
		rateLimiter,
		app.Metrics.Handler(),
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Config.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (app *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s, store: %s", app.Config.App.Env, app.Config.App.StoreDriver)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
	return nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

// Migrate opens a migrator for cfg, runs fn and closes it.
func Migrate(cfg config.DBConfig, fn func(m *database.Migrator) error) error {
	m, err := database.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
