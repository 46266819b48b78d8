package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	User          *UserRepository
	Role          *RoleRepository
	Token         *TokenRepository
	PasswordReset *PasswordResetTokenRepository
	OTP           *OTPRepository
	Department    *DepartmentRepository
	Program       *ProgramRepository
	Outcome       *OutcomeRepository
	Batch         *BatchRepository
	Course        *CourseRepository
	Session       *SessionRepository
	Faculty       *FacultyRepository
	Student       *StudentRepository
	Section       *SectionRepository
	Timetable     *TimetableRepository
	Attendance    *AttendanceRepository
	Notification  *NotificationRepository
	AuditLog      *AuditLogRepository
	Dashboard     *DashboardRepository
}

// NewRepositories initializes all repositories
func NewRepositories(h db.Handle) *Repositories {
	return &Repositories{
		User:          NewUserRepository(h),
		Role:          NewRoleRepository(h),
		Token:         NewTokenRepository(h),
		PasswordReset: NewPasswordResetTokenRepository(h),
		OTP:           NewOTPRepository(h),
		Department:    NewDepartmentRepository(h),
		Program:       NewProgramRepository(h),
		Outcome:       NewOutcomeRepository(h),
		Batch:         NewBatchRepository(h),
		Course:        NewCourseRepository(h),
		Session:       NewSessionRepository(h),
		Faculty:       NewFacultyRepository(h),
		Student:       NewStudentRepository(h),
		Section:       NewSectionRepository(h),
		Timetable:     NewTimetableRepository(h),
		Attendance:    NewAttendanceRepository(h),
		Notification:  NewNotificationRepository(h),
		AuditLog:      NewAuditLogRepository(h),
		Dashboard:     NewDashboardRepository(h),
	}
}

// psql builds statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type rowScanner interface {
	Scan(dest ...any) error
}

// count runs COUNT(*) over the FROM and WHERE of q. Call before adding ORDER BY.
func count(ctx context.Context, conn db.Querier, q squirrel.SelectBuilder, what string) (int64, error) {
	sql, args, err := helpers.CountOf(q).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count %s query: %w", what, err)
	}

	var total int64
	if err := conn.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("entity", what).Msg("Error counting rows")
		return 0, fmt.Errorf("error counting %s: %w", what, err)
	}
	return total, nil
}

// exists reports whether q returns at least one row
func exists(ctx context.Context, conn db.Querier, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := q.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var found bool
	if err := conn.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return found, nil
}
