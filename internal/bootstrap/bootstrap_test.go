package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/unicampus/internal/app/controllers"
	appRoutes "github.com/yigit/unicampus/internal/app/routes"
	"github.com/yigit/unicampus/internal/config"
	appMiddleware "github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/events"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.BaseURL = "https://campus.example"
	cfg.Server.AllowedOrigins = "https://app.example"
	cfg.Email.Provider = "log"
	cfg.Email.FromName = "UniCampus"
	cfg.Email.FromAddress = "no-reply@campus.example"
	cfg.Events.Brokers = "k1:9092,k2:9092"
	cfg.Events.Topic = "campus.events"
	cfg.Auth.OTPLength = 6
	cfg.Auth.OTPTTL = "5m"
	cfg.Auth.OTPMaxAttempts = 3
	cfg.Auth.ResetTokenTTL = "bogus"
	cfg.Attendance.ShortageThreshold = 80
	cfg.Seed.AdminEmail = "root@campus.example"
	cfg.Seed.AdminPassword = "Secret123!"
	return cfg
}

func TestNewEmailSender(t *testing.T) {
	cfg := testConfig()
	assert.IsType(t, &email.LogSender{}, NewEmailSender(cfg, zerolog.Nop()))

	cfg.Email.Provider = "SMTP"
	assert.IsType(t, &email.SMTPSender{}, NewEmailSender(cfg, zerolog.Nop()))

	cfg.Email.Provider = "sendgrid"
	cfg.Email.SendGridAPIKey = "key"
	assert.IsType(t, &email.SendGridSender{}, NewEmailSender(cfg, zerolog.Nop()))
}

func TestNewPublisher(t *testing.T) {
	cfg := testConfig()
	assert.IsType(t, events.NoopPublisher{}, NewPublisher(cfg, zerolog.Nop()))

	cfg.Events.Enabled = true
	p := NewPublisher(cfg, zerolog.Nop())
	assert.IsType(t, &events.KafkaPublisher{}, p)
	assert.NoError(t, p.Close())

	cfg.Events.Brokers = " , "
	assert.IsType(t, events.NoopPublisher{}, NewPublisher(cfg, zerolog.Nop()))
}

func TestServiceOptions(t *testing.T) {
	opts := ServiceOptions(testConfig())
	assert.Equal(t, 6, opts.OTPLength)
	assert.Equal(t, 5*time.Minute, opts.OTPTTL)
	assert.Equal(t, 3, opts.OTPMaxAttempts)
	assert.Equal(t, 30*time.Minute, opts.ResetTokenTTL)
	assert.Equal(t, 80.0, opts.ShortageThreshold)
}

func TestSeedAdmin(t *testing.T) {
	admin := SeedAdmin(testConfig())
	assert.Equal(t, "root@campus.example", admin.Email)
	assert.Equal(t, "Secret123!", admin.Password)
}

func TestSetupRouter(t *testing.T) {
	cfg := testConfig()
	deps := &Dependencies{
		AuthMiddleware: appMiddleware.NewAuthMiddleware(nil, nil),
		Controllers: &appRoutes.Controllers{
			Auth:         controllers.NewAuthController(nil, zerolog.Nop()),
			User:         controllers.NewUserController(nil),
			Role:         controllers.NewRoleController(nil),
			Department:   controllers.NewDepartmentController(nil),
			Program:      controllers.NewProgramController(nil),
			Batch:        controllers.NewBatchController(nil),
			Course:       controllers.NewCourseController(nil),
			Session:      controllers.NewSessionController(nil),
			Faculty:      controllers.NewFacultyController(nil),
			Student:      controllers.NewStudentController(nil),
			Section:      controllers.NewSectionController(nil),
			Timetable:    controllers.NewTimetableController(nil),
			Attendance:   controllers.NewAttendanceController(nil),
			Notification: controllers.NewNotificationController(nil),
			Audit:        controllers.NewAuditController(nil),
			Dashboard:    controllers.NewDashboardController(nil),
			Health:       controllers.NewHealthController(nil),
		},
	}
	router := SetupRouter(cfg, deps, zerolog.Nop())

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/departments", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("swagger document", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "campus.example")
	})
}
