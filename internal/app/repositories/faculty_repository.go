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

// FacultyFilter narrows faculty listings
type FacultyFilter struct {
	DepartmentID *int64
	Search       string
	Page         int
	Size         int
}

// IFacultyRepository defines faculty member persistence
type IFacultyRepository interface {
	Create(ctx context.Context, member *models.FacultyMember) error
	GetByID(ctx context.Context, id int64) (*models.FacultyMember, error)
	GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error)
	List(ctx context.Context, filter FacultyFilter) ([]*models.FacultyMember, int64, error)
	Update(ctx context.Context, member *models.FacultyMember) error
}

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(h db.Handle) *FacultyRepository {
	return &FacultyRepository{db: h, sb: psql}
}

func (r *FacultyRepository) selectFaculty() squirrel.SelectBuilder {
	return r.sb.Select("f.id", "f.user_id", "f.department_id", "f.employee_code", "f.designation", "f.joining_date",
		"u.first_name", "u.last_name", "u.email", "u.phone", "f.created_at", "f.updated_at").
		From("faculty f").
		Join("users u ON u.id = f.user_id")
}

func scanFaculty(row rowScanner) (*models.FacultyMember, error) {
	m := &models.FacultyMember{}
	err := row.Scan(&m.ID, &m.UserID, &m.DepartmentID, &m.EmployeeCode, &m.Designation, &m.JoiningDate,
		&m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func facultyWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_faculty_employee_code"):
		return apperrors.ErrEmployeeCodeExists
	case dberrors.IsDuplicateConstraintError(err, "uq_faculty_user"):
		return apperrors.NewConflictError("user already has a faculty record")
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrDepartmentNotFound
	}
	return fmt.Errorf("error writing faculty member: %w", err)
}

// Create inserts the faculty row for an existing user
func (r *FacultyRepository) Create(ctx context.Context, member *models.FacultyMember) error {
	sql, args, err := r.sb.Insert("faculty").
		Columns("user_id", "department_id", "employee_code", "designation", "joining_date").
		Values(member.UserID, member.DepartmentID, member.EmployeeCode, member.Designation, member.JoiningDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create faculty query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt); err != nil {
		logger.Debug().Err(err).Str("employeeCode", member.EmployeeCode).Msg("Create faculty failed")
		return facultyWriteError(err)
	}
	return nil
}

// GetByID retrieves a faculty member
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.FacultyMember, error) {
	return r.getOne(ctx, squirrel.Eq{"f.id": id})
}

// GetByUserID retrieves the faculty record linked to a user
func (r *FacultyRepository) GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error) {
	return r.getOne(ctx, squirrel.Eq{"f.user_id": userID})
}

func (r *FacultyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.FacultyMember, error) {
	sql, args, err := r.selectFaculty().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}

	m, err := scanFaculty(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error getting faculty member: %w", err)
	}
	return m, nil
}

// List retrieves a page of faculty members
func (r *FacultyRepository) List(ctx context.Context, filter FacultyFilter) ([]*models.FacultyMember, int64, error) {
	q := r.selectFaculty()
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"f.department_id": *filter.DepartmentID})
	}
	q = helpers.ApplySearch(q, filter.Search, "u.first_name", "u.last_name", "u.email", "f.employee_code")

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "faculty")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("u.last_name", "u.first_name"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list faculty query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing faculty: %w", err)
	}
	defer rows.Close()

	members := []*models.FacultyMember{}
	for rows.Next() {
		m, err := scanFaculty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning faculty member: %w", err)
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

// Update updates the faculty row; user fields are updated through the user repository
func (r *FacultyRepository) Update(ctx context.Context, member *models.FacultyMember) error {
	sql, args, err := r.sb.Update("faculty").
		Set("department_id", member.DepartmentID).
		Set("designation", member.Designation).
		Set("joining_date", member.JoiningDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": member.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update faculty query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return facultyWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}
	return nil
}
