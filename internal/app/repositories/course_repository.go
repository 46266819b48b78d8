package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// CourseFilter narrows course listings
type CourseFilter struct {
	DepartmentID *int64
	Search       string
	Page         int
	Size         int
}

// ICourseRepository defines course persistence
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]*models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseRepository handles the course catalog
type CourseRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(h db.Handle) *CourseRepository {
	return &CourseRepository{db: h, sb: psql}
}

func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return r.sb.Select("id", "department_id", "code", "title", "credit_hours", "description", "created_at", "updated_at").
		From("courses")
}

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.DepartmentID, &c.Code, &c.Title, &c.CreditHours, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func courseWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_courses_code"):
		return apperrors.ErrCourseAlreadyExists
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrDepartmentNotFound
	}
	return fmt.Errorf("error writing course: %w", err)
}

// Create inserts a course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("department_id", "code", "title", "credit_hours", "description").
		Values(course.DepartmentID, course.Code, course.Title, course.CreditHours, course.Description).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return courseWriteError(err)
	}
	return nil
}

// GetByID retrieves a course
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.selectCourses().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	c, err := scanCourse(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return c, nil
}

// List retrieves a page of courses
func (r *CourseRepository) List(ctx context.Context, filter CourseFilter) ([]*models.Course, int64, error) {
	q := r.selectCourses()
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	q = helpers.ApplySearch(q, filter.Search, "code", "title")

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "courses")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("code"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

// Update updates a course
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Update("courses").
		Set("department_id", course.DepartmentID).
		Set("code", course.Code).
		Set("title", course.Title).
		Set("credit_hours", course.CreditHours).
		Set("description", course.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return courseWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Delete removes a course that has no sections
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrCourseHasRelations
		}
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
