package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// IDashboardRepository defines the read-only aggregates behind the dashboard
type IDashboardRepository interface {
	Stats(ctx context.Context, today models.Date) (*models.DashboardStats, error)
	DepartmentBreakdown(ctx context.Context) ([]models.DepartmentBreakdown, error)
}

// DashboardRepository runs dashboard aggregates
type DashboardRepository struct {
	db db.Handle
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(h db.Handle) *DashboardRepository {
	return &DashboardRepository{db: h}
}

// Stats returns headline counts. TodayAttendanceRate is nil when nothing was marked on today.
func (r *DashboardRepository) Stats(ctx context.Context, today models.Date) (*models.DashboardStats, error) {
	s := &models.DashboardStats{}
	var marked, attended int64
	err := r.db.Conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students WHERE status = 'ACTIVE'),
			(SELECT COUNT(*) FROM faculty),
			(SELECT COUNT(*) FROM departments),
			(SELECT COUNT(*) FROM programs),
			(SELECT COUNT(*) FROM courses),
			(SELECT id FROM academic_sessions WHERE is_active),
			(SELECT COUNT(*) FROM sections s JOIN academic_sessions a ON a.id = s.session_id WHERE a.is_active),
			(SELECT COUNT(*) FROM attendance WHERE date = $1),
			(SELECT COUNT(*) FROM attendance WHERE date = $1 AND status IN ('PRESENT', 'LATE'))`, today).
		Scan(&s.ActiveStudents, &s.Faculty, &s.Departments, &s.Programs, &s.Courses, &s.ActiveSessionID,
			&s.ActiveSessionSections, &marked, &attended)
	if err != nil {
		return nil, fmt.Errorf("error loading dashboard stats: %w", err)
	}

	if marked > 0 {
		rate := helpers.Percentage(attended, marked)
		s.TodayAttendanceRate = &rate
	}
	return s, nil
}

// DepartmentBreakdown counts students and faculty per department
func (r *DashboardRepository) DepartmentBreakdown(ctx context.Context) ([]models.DepartmentBreakdown, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT d.id, d.code, d.name,
			(SELECT COUNT(*) FROM students s WHERE s.department_id = d.id),
			(SELECT COUNT(*) FROM faculty f WHERE f.department_id = d.id)
		FROM departments d
		ORDER BY d.name`)
	if err != nil {
		return nil, fmt.Errorf("error loading department breakdown: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.DepartmentBreakdown])
	if err != nil {
		return nil, fmt.Errorf("error scanning department breakdown: %w", err)
	}
	return out, nil
}
