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

// ProgramFilter narrows program listings
type ProgramFilter struct {
	DepartmentID *int64
	Search       string
	Page         int
	Size         int
}

// IProgramRepository defines program persistence
type IProgramRepository interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	List(ctx context.Context, filter ProgramFilter) ([]*models.Program, int64, error)
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id int64) error
	HasRelations(ctx context.Context, id int64) (bool, error)
}

// ProgramRepository handles degree programs
type ProgramRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(h db.Handle) *ProgramRepository {
	return &ProgramRepository{db: h, sb: psql}
}

func (r *ProgramRepository) selectPrograms() squirrel.SelectBuilder {
	return r.sb.Select("p.id", "p.department_id", "d.name", "p.name", "p.code", "p.degree_level",
		"p.duration_years", "p.created_at", "p.updated_at").
		From("programs p").
		Join("departments d ON d.id = p.department_id")
}

func scanProgram(row rowScanner) (*models.Program, error) {
	p := &models.Program{}
	err := row.Scan(&p.ID, &p.DepartmentID, &p.DepartmentName, &p.Name, &p.Code, &p.DegreeLevel,
		&p.DurationYears, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func programWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_programs_code"):
		return apperrors.ErrProgramAlreadyExists
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrDepartmentNotFound
	}
	return fmt.Errorf("error writing program: %w", err)
}

// Create inserts a program
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	sql, args, err := r.sb.Insert("programs").
		Columns("department_id", "name", "code", "degree_level", "duration_years").
		Values(program.DepartmentID, program.Name, program.Code, program.DegreeLevel, program.DurationYears).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create program query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&program.ID, &program.CreatedAt, &program.UpdatedAt); err != nil {
		return programWriteError(err)
	}
	return nil
}

// GetByID retrieves a program
func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	sql, args, err := r.selectPrograms().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	p, err := scanProgram(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return p, nil
}

// List retrieves a page of programs
func (r *ProgramRepository) List(ctx context.Context, filter ProgramFilter) ([]*models.Program, int64, error) {
	q := r.selectPrograms()
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"p.department_id": *filter.DepartmentID})
	}
	q = helpers.ApplySearch(q, filter.Search, "p.name", "p.code")

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "programs")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("p.code"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	programs := []*models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, total, rows.Err()
}

// Update updates a program
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	sql, args, err := r.sb.Update("programs").
		Set("department_id", program.DepartmentID).
		Set("name", program.Name).
		Set("code", program.Code).
		Set("degree_level", program.DegreeLevel).
		Set("duration_years", program.DurationYears).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": program.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update program query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return programWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}
	return nil
}

// Delete removes a program without batches or students
func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrProgramHasRelations
		}
		return fmt.Errorf("error deleting program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}
	return nil
}

// HasRelations reports whether batches or students reference the program
func (r *ProgramRepository) HasRelations(ctx context.Context, id int64) (bool, error) {
	var related bool
	err := r.db.Conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM batches WHERE program_id = $1)
			OR EXISTS (SELECT 1 FROM students WHERE program_id = $1)`, id).Scan(&related)
	if err != nil {
		return false, fmt.Errorf("error checking program relations: %w", err)
	}
	return related, nil
}
