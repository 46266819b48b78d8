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

// StudentFilter narrows student listings
type StudentFilter struct {
	DepartmentID *int64
	ProgramID    *int64
	BatchID      *int64
	Status       *string
	Search       string
	Page         int
	Size         int
}

// IStudentRepository defines student persistence
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id int64, status models.StudentStatus) error
	ListActiveIDsByBatch(ctx context.Context, batchID int64) ([]int64, error)
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(h db.Handle) *StudentRepository {
	return &StudentRepository{db: h, sb: psql}
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select("s.id", "s.user_id", "s.registration_no", "s.department_id", "s.program_id", "s.batch_id",
		"s.enrollment_date", "s.status", "u.first_name", "u.last_name", "u.email", "u.phone", "s.created_at", "s.updated_at").
		From("students s").
		Join("users u ON u.id = s.user_id")
}

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(&s.ID, &s.UserID, &s.RegistrationNo, &s.DepartmentID, &s.ProgramID, &s.BatchID,
		&s.EnrollmentDate, &s.Status, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func studentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_students_registration_no"):
		return apperrors.ErrRegistrationNoExists
	case dberrors.IsDuplicateConstraintError(err, "uq_students_user"):
		return apperrors.NewConflictError("user already has a student record")
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrInvalidReference
	}
	return fmt.Errorf("error writing student: %w", err)
}

// Create inserts the student row for an existing user
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}

	sql, args, err := r.sb.Insert("students").
		Columns("user_id", "registration_no", "department_id", "program_id", "batch_id", "enrollment_date", "status").
		Values(student.UserID, student.RegistrationNo, student.DepartmentID, student.ProgramID, student.BatchID,
			student.EnrollmentDate, student.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		return studentWriteError(err)
	}
	return nil
}

// GetByID retrieves a student
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": id})
}

// GetByUserID retrieves the student record linked to a user
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.user_id": userID})
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := r.selectStudents().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return s, nil
}

// GetByIDs returns the students among ids that exist
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Student, error) {
	if len(ids) == 0 {
		return []*models.Student{}, nil
	}
	return r.query(ctx, r.selectStudents().Where(squirrel.Eq{"s.id": ids}).OrderBy("s.id"))
}

func (r *StudentRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Student, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// List retrieves a page of students
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error) {
	q := r.selectStudents()
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"s.department_id": *filter.DepartmentID})
	}
	if filter.ProgramID != nil {
		q = q.Where(squirrel.Eq{"s.program_id": *filter.ProgramID})
	}
	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"s.batch_id": *filter.BatchID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"s.status": *filter.Status})
	}
	q = helpers.ApplySearch(q, filter.Search, "u.first_name", "u.last_name", "u.email", "s.registration_no")

	total, err := count(ctx, r.db.Conn(ctx), q, "students")
	if err != nil {
		return nil, 0, err
	}

	students, err := r.query(ctx, helpers.ApplyPage(q.OrderBy("s.registration_no"), filter.Page, filter.Size))
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// Update updates academic placement; user fields are updated through the user repository
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		Set("department_id", student.DepartmentID).
		Set("program_id", student.ProgramID).
		Set("batch_id", student.BatchID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return studentWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateStatus changes a student's status
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int64, status models.StudentStatus) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE students SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating student status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// ListActiveIDsByBatch returns IDs of ACTIVE students in a batch
func (r *StudentRepository) ListActiveIDsByBatch(ctx context.Context, batchID int64) ([]int64, error) {
	rows, err := r.db.Conn(ctx).Query(ctx,
		`SELECT id FROM students WHERE batch_id = $1 AND status = 'ACTIVE' ORDER BY registration_no`, batchID)
	if err != nil {
		return nil, fmt.Errorf("error listing batch students: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning batch students: %w", err)
	}
	return ids, nil
}
