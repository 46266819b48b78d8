package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/events"
)

// Options carries the tunables services read from configuration
type Options struct {
	OTPLength         int
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	ResetTokenTTL     time.Duration
	ShortageThreshold float64
}

// Pusher delivers realtime events to connected users
type Pusher interface {
	SendToUser(userID int64, eventType string, data interface{})
}

// Dependencies are the collaborators shared by all services
type Dependencies struct {
	Repos     *repositories.Repositories
	Tx        db.Transactor
	JWT       *auth.JWTService
	Mailer    *Mailer
	Publisher events.Publisher
	Pusher    Pusher
	Options   Options
	Logger    zerolog.Logger
}

// Services holds every application service
type Services struct {
	Audit        AuditService
	Auth         AuthService
	User         UserService
	Role         RoleService
	Department   DepartmentService
	Program      ProgramService
	Batch        BatchService
	Course       CourseService
	Session      SessionService
	Faculty      FacultyService
	Student      StudentService
	Section      SectionService
	Timetable    TimetableService
	Attendance   AttendanceService
	Notification NotificationService
	Dashboard    DashboardService
}

// NewServices wires the services over the repositories
func NewServices(d Dependencies) *Services {
	r := d.Repos
	if d.Publisher == nil {
		d.Publisher = events.NoopPublisher{}
	}

	audit := NewAuditService(r.AuditLog, d.Logger)
	notifications := NewNotificationService(r.Notification, r.User, d.Pusher, d.Publisher, audit, d.Logger)

	return &Services{
		Audit: audit,
		Auth: NewAuthService(r.User, r.Token, r.OTP, r.PasswordReset, r.Student, r.Faculty, d.Tx, d.JWT,
			d.Mailer, d.Publisher, audit, d.Options, d.Logger),
		User:         NewUserService(r.User, r.Role, r.Token, d.Tx, d.Mailer, audit, d.Logger),
		Role:         NewRoleService(r.Role, d.Tx, audit),
		Department:   NewDepartmentService(r.Department, r.Faculty, audit),
		Program:      NewProgramService(r.Program, r.Department, r.Outcome, audit),
		Batch:        NewBatchService(r.Batch, r.Program, audit),
		Course:       NewCourseService(r.Course, r.Department, r.Outcome, d.Tx, audit),
		Session:      NewSessionService(r.Session, d.Tx, audit),
		Faculty:      NewFacultyService(r.Faculty, r.User, r.Department, r.Section, d.Tx, d.Mailer, audit, d.Logger),
		Student:      NewStudentService(r.Student, r.User, r.Program, r.Batch, r.Section, d.Tx, d.Mailer, d.Publisher, audit, d.Logger),
		Section:      NewSectionService(r.Section, r.Course, r.Session, r.Faculty, r.Batch, r.Student, d.Tx, audit),
		Timetable:    NewTimetableService(r.Timetable, r.Section, audit),
		Attendance:   NewAttendanceService(r.Attendance, r.Section, r.Session, r.Student, r.Faculty, d.Tx, notifications, d.Mailer, d.Publisher, audit, d.Options.ShortageThreshold, d.Logger),
		Notification: notifications,
		Dashboard:    NewDashboardService(r.Dashboard, r.Attendance),
	}
}
