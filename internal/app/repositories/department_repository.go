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
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// DepartmentFilter narrows department listings
type DepartmentFilter struct {
	Search string
	Page   int
	Size   int
}

// IDepartmentRepository defines department persistence
type IDepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	List(ctx context.Context, filter DepartmentFilter) ([]*models.Department, int64, error)
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
	HasRelations(ctx context.Context, id int64) (bool, error)
	SetHead(ctx context.Context, id int64, facultyID *int64) error
}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(h db.Handle) *DepartmentRepository {
	return &DepartmentRepository{db: h, sb: psql}
}

func (r *DepartmentRepository) selectDepartments() squirrel.SelectBuilder {
	return r.sb.Select("d.id", "d.name", "d.code", "d.description", "d.head_faculty_id",
		"hu.first_name || ' ' || hu.last_name", "d.created_at", "d.updated_at").
		From("departments d").
		LeftJoin("faculty hf ON hf.id = d.head_faculty_id").
		LeftJoin("users hu ON hu.id = hf.user_id")
}

func scanDepartment(row rowScanner) (*models.Department, error) {
	d := &models.Department{}
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.HeadFacultyID, &d.HeadName, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func departmentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_departments_name"),
		dberrors.IsDuplicateConstraintError(err, "uq_departments_code"):
		return apperrors.ErrDepartmentAlreadyExists
	case dberrors.IsForeignKeyError(err, "fk_departments_head_faculty"):
		return apperrors.ErrFacultyNotFound
	}
	return err
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns("name", "code", "description").
		Values(department.Name, department.Code, department.Description).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
	if err != nil {
		if mapped := departmentWriteError(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Str("code", department.Code).Msg("Error creating department")
		return fmt.Errorf("error creating department: %w", err)
	}
	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	sql, args, err := r.selectDepartments().Where(squirrel.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get department query: %w", err)
	}

	d, err := scanDepartment(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return d, nil
}

// List retrieves a page of departments
func (r *DepartmentRepository) List(ctx context.Context, filter DepartmentFilter) ([]*models.Department, int64, error) {
	q := helpers.ApplySearch(r.selectDepartments(), filter.Search, "d.name", "d.code")

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "departments")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("d.name"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	departments := []*models.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, total, rows.Err()
}

// Update updates an existing department
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Update("departments").
		Set("name", department.Name).
		Set("code", department.Code).
		Set("description", department.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": department.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if mapped := departmentWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error updating department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// Delete deletes a department by ID
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrDepartmentHasRelations
		}
		return fmt.Errorf("error deleting department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// HasRelations reports whether programs, courses, faculty or students reference the department
func (r *DepartmentRepository) HasRelations(ctx context.Context, id int64) (bool, error) {
	var related bool
	err := r.db.Conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM programs WHERE department_id = $1)
			OR EXISTS (SELECT 1 FROM courses WHERE department_id = $1)
			OR EXISTS (SELECT 1 FROM faculty WHERE department_id = $1)
			OR EXISTS (SELECT 1 FROM students WHERE department_id = $1)`, id).Scan(&related)
	if err != nil {
		return false, fmt.Errorf("error checking department relations: %w", err)
	}
	return related, nil
}

// SetHead assigns or clears the head of department
func (r *DepartmentRepository) SetHead(ctx context.Context, id int64, facultyID *int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE departments SET head_faculty_id = $2, updated_at = NOW() WHERE id = $1`, id, facultyID)
	if err != nil {
		if mapped := departmentWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error setting department head: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}
