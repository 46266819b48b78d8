package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/unicampus/internal/app/controllers"
	appMigrations "github.com/yigit/unicampus/internal/app/migrations"
	appRepos "github.com/yigit/unicampus/internal/app/repositories"
	appRoutes "github.com/yigit/unicampus/internal/app/routes"
	appServices "github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/config"
	"github.com/yigit/unicampus/internal/db"
	appMiddleware "github.com/yigit/unicampus/internal/middleware"
	pkgAuth "github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/events"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
	"github.com/yigit/unicampus/internal/pkg/validation"
	"github.com/yigit/unicampus/internal/pkg/websocket"
	"github.com/yigit/unicampus/internal/seed"
)

const appName = "UniCampus"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	JWTService     *pkgAuth.JWTService
	Mailer         *appServices.Mailer
	Publisher      events.Publisher
	Hub            *websocket.Hub
	WSHandler      *websocket.Handler
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    *appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and applies pending migrations when enabled.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if !cfg.Database.AutoMigrate {
		return database, nil
	}

	if err := RunMigrations(ctx, database, "up", lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// RunMigrations runs a goose command against the embedded migrations
func RunMigrations(ctx context.Context, database *db.PostgresDB, command string, lgr zerolog.Logger) error {
	migrator, err := appMigrations.NewMigrator(database.Pool, lgr)
	if err != nil {
		return err
	}
	defer migrator.Close()

	lgr.Info().Str("command", command).Msg("Running database migrations...")
	if err := migrator.Run(ctx, command); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Str("command", command).Msg("Database migrations finished.")
	return nil
}

// SeedAdmin maps the seed section of the configuration onto an admin account
func SeedAdmin(cfg *config.Config) seed.Admin {
	return seed.Admin{
		Email:     cfg.Seed.AdminEmail,
		Password:  cfg.Seed.AdminPassword,
		FirstName: cfg.Seed.AdminFirstName,
		LastName:  cfg.Seed.AdminLastName,
	}
}

// NewEmailSender picks the mail transport named by the configuration
func NewEmailSender(cfg *config.Config, lgr zerolog.Logger) email.Sender {
	switch strings.ToLower(cfg.Email.Provider) {
	case "smtp":
		return email.NewSMTPSender(email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromName:  cfg.Email.FromName,
			FromEmail: cfg.Email.FromAddress,
			UseTLS:    cfg.Email.SMTPUseTLS,
		}, lgr)
	case "sendgrid":
		return email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress)
	default:
		return email.NewLogSender(lgr)
	}
}

// NewPublisher returns a Kafka publisher, or a no-op one when events are disabled
func NewPublisher(cfg *config.Config, lgr zerolog.Logger) events.Publisher {
	brokers := cfg.KafkaBrokers()
	if !cfg.Events.Enabled || len(brokers) == 0 {
		lgr.Info().Msg("Domain events disabled")
		return events.NoopPublisher{}
	}

	lgr.Info().Strs("brokers", brokers).Str("topic", cfg.Events.Topic).Msg("Publishing domain events to Kafka")
	return events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:      brokers,
		Topic:        cfg.Events.Topic,
		ClientID:     cfg.Events.ClientID,
		WriteTimeout: helpers.ParseDuration(cfg.Events.WriteTimeout, 5*time.Second),
	}, lgr)
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
}

// ServiceOptions maps configuration onto service tunables
func ServiceOptions(cfg *config.Config) appServices.Options {
	return appServices.Options{
		OTPLength:         cfg.Auth.OTPLength,
		OTPTTL:            helpers.ParseDuration(cfg.Auth.OTPTTL, 10*time.Minute),
		OTPMaxAttempts:    cfg.Auth.OTPMaxAttempts,
		ResetTokenTTL:     helpers.ParseDuration(cfg.Auth.ResetTokenTTL, 30*time.Minute),
		ShortageThreshold: cfg.Attendance.ShortageThreshold,
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.Setup(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)
	deps.JWTService = NewJWTService(cfg)

	emailService := email.NewEmailService(NewEmailSender(cfg, logger.Component("email")), appName, cfg.Server.BaseURL, lgr)
	deps.Mailer = appServices.NewMailer(emailService, helpers.ParseDuration(cfg.Email.SendTimeout, 15*time.Second), lgr)
	deps.Publisher = NewPublisher(cfg, logger.Component("events"))
	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Repos:     deps.Repos,
		Tx:        database,
		JWT:       deps.JWTService,
		Mailer:    deps.Mailer,
		Publisher: deps.Publisher,
		Pusher:    deps.Hub,
		Options:   ServiceOptions(cfg),
		Logger:    lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.User)
	deps.WSHandler = websocket.NewHandler(deps.Hub, deps.JWTService, cfg.CORSOrigins(), logger.Component("websocket"))

	s := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(s.Auth, lgr),
		User:         appControllers.NewUserController(s.User),
		Role:         appControllers.NewRoleController(s.Role),
		Department:   appControllers.NewDepartmentController(s.Department),
		Program:      appControllers.NewProgramController(s.Program),
		Batch:        appControllers.NewBatchController(s.Batch),
		Course:       appControllers.NewCourseController(s.Course),
		Session:      appControllers.NewSessionController(s.Session),
		Faculty:      appControllers.NewFacultyController(s.Faculty),
		Student:      appControllers.NewStudentController(s.Student),
		Section:      appControllers.NewSectionController(s.Section),
		Timetable:    appControllers.NewTimetableController(s.Timetable),
		Attendance:   appControllers.NewAttendanceController(s.Attendance),
		Notification: appControllers.NewNotificationController(s.Notification),
		Audit:        appControllers.NewAuditController(s.Audit),
		Dashboard:    appControllers.NewDashboardController(s.Dashboard),
		Health:       appControllers.NewHealthController(database),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode configured")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(appMiddleware.CORS(cfg.CORSOrigins()))

	appRoutes.SetupSwagger(router, cfg.Server.BaseURL)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WSHandler)

	return router
}
