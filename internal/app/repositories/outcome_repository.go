package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
)

// IOutcomeRepository defines PLO, CLO and mapping persistence
type IOutcomeRepository interface {
	ListPLOs(ctx context.Context, programID int64) ([]*models.PLO, error)
	GetPLO(ctx context.Context, id int64) (*models.PLO, error)
	GetPLOsByIDs(ctx context.Context, ids []int64) ([]*models.PLO, error)
	CreatePLO(ctx context.Context, plo *models.PLO) error
	UpdatePLO(ctx context.Context, plo *models.PLO) error
	DeletePLO(ctx context.Context, id int64) error

	ListCLOs(ctx context.Context, courseID int64) ([]*models.CLO, error)
	GetCLO(ctx context.Context, id int64) (*models.CLO, error)
	CreateCLO(ctx context.Context, clo *models.CLO) error
	UpdateCLO(ctx context.Context, clo *models.CLO) error
	DeleteCLO(ctx context.Context, id int64) error

	ReplaceCLOMappings(ctx context.Context, cloID int64, mappings []models.CLOPLOMapping) error
	ListMappingsByCourse(ctx context.Context, courseID int64) ([]models.CLOPLOMapping, error)
}

// OutcomeRepository stores program and course learning outcomes
type OutcomeRepository struct {
	db db.Handle
}

// NewOutcomeRepository creates a new OutcomeRepository
func NewOutcomeRepository(h db.Handle) *OutcomeRepository {
	return &OutcomeRepository{db: h}
}

const ploColumns = `pl.id, pl.program_id, pr.department_id, pl.code, pl.title, pl.description, pl.created_at`

func scanPLO(row rowScanner) (*models.PLO, error) {
	p := &models.PLO{}
	err := row.Scan(&p.ID, &p.ProgramID, &p.DepartmentID, &p.Code, &p.Title, &p.Description, &p.CreatedAt)
	return p, err
}

func (r *OutcomeRepository) queryPLOs(ctx context.Context, where string, arg any) ([]*models.PLO, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT `+ploColumns+`
		FROM plos pl
		JOIN programs pr ON pr.id = pl.program_id
		WHERE `+where+`
		ORDER BY pl.program_id, pl.code`, arg)
	if err != nil {
		return nil, fmt.Errorf("error listing plos: %w", err)
	}
	defer rows.Close()

	plos := []*models.PLO{}
	for rows.Next() {
		p, err := scanPLO(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning plo: %w", err)
		}
		plos = append(plos, p)
	}
	return plos, rows.Err()
}

// ListPLOs returns a program's outcomes
func (r *OutcomeRepository) ListPLOs(ctx context.Context, programID int64) ([]*models.PLO, error) {
	return r.queryPLOs(ctx, "pl.program_id = $1", programID)
}

// GetPLOsByIDs returns the PLOs among ids that exist
func (r *OutcomeRepository) GetPLOsByIDs(ctx context.Context, ids []int64) ([]*models.PLO, error) {
	return r.queryPLOs(ctx, "pl.id = ANY($1)", ids)
}

// GetPLO returns one PLO
func (r *OutcomeRepository) GetPLO(ctx context.Context, id int64) (*models.PLO, error) {
	p, err := scanPLO(r.db.Conn(ctx).QueryRow(ctx, `
		SELECT `+ploColumns+`
		FROM plos pl
		JOIN programs pr ON pr.id = pl.program_id
		WHERE pl.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPLONotFound
		}
		return nil, fmt.Errorf("error retrieving plo: %w", err)
	}
	return p, nil
}

// CreatePLO inserts a PLO
func (r *OutcomeRepository) CreatePLO(ctx context.Context, plo *models.PLO) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO plos (program_id, code, title, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, plo.ProgramID, plo.Code, plo.Title, plo.Description).Scan(&plo.ID, &plo.CreatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "uq_plos_program_code"):
			return apperrors.ErrPLOAlreadyExists
		case dberrors.IsForeignKeyError(err, ""):
			return apperrors.ErrProgramNotFound
		}
		return fmt.Errorf("error creating plo: %w", err)
	}
	return nil
}

// UpdatePLO updates code, title and description
func (r *OutcomeRepository) UpdatePLO(ctx context.Context, plo *models.PLO) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE plos SET code = $2, title = $3, description = $4 WHERE id = $1`,
		plo.ID, plo.Code, plo.Title, plo.Description)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_plos_program_code") {
			return apperrors.ErrPLOAlreadyExists
		}
		return fmt.Errorf("error updating plo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPLONotFound
	}
	return nil
}

// DeletePLO removes a PLO and its mappings
func (r *OutcomeRepository) DeletePLO(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM plos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting plo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPLONotFound
	}
	return nil
}

const cloColumns = `id, course_id, code, description, bloom_level, created_at`

func scanCLO(row rowScanner) (*models.CLO, error) {
	c := &models.CLO{}
	err := row.Scan(&c.ID, &c.CourseID, &c.Code, &c.Description, &c.BloomLevel, &c.CreatedAt)
	return c, err
}

// ListCLOs returns a course's outcomes
func (r *OutcomeRepository) ListCLOs(ctx context.Context, courseID int64) ([]*models.CLO, error) {
	rows, err := r.db.Conn(ctx).Query(ctx,
		`SELECT `+cloColumns+` FROM clos WHERE course_id = $1 ORDER BY code`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing clos: %w", err)
	}
	defer rows.Close()

	clos := []*models.CLO{}
	for rows.Next() {
		c, err := scanCLO(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning clo: %w", err)
		}
		clos = append(clos, c)
	}
	return clos, rows.Err()
}

// GetCLO returns one CLO
func (r *OutcomeRepository) GetCLO(ctx context.Context, id int64) (*models.CLO, error) {
	c, err := scanCLO(r.db.Conn(ctx).QueryRow(ctx, `SELECT `+cloColumns+` FROM clos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCLONotFound
		}
		return nil, fmt.Errorf("error retrieving clo: %w", err)
	}
	return c, nil
}

// CreateCLO inserts a CLO
func (r *OutcomeRepository) CreateCLO(ctx context.Context, clo *models.CLO) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO clos (course_id, code, description, bloom_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, clo.CourseID, clo.Code, clo.Description, clo.BloomLevel).Scan(&clo.ID, &clo.CreatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "uq_clos_course_code"):
			return apperrors.ErrCLOAlreadyExists
		case dberrors.IsForeignKeyError(err, ""):
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error creating clo: %w", err)
	}
	return nil
}

// UpdateCLO updates code, description and bloom level
func (r *OutcomeRepository) UpdateCLO(ctx context.Context, clo *models.CLO) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE clos SET code = $2, description = $3, bloom_level = $4 WHERE id = $1`,
		clo.ID, clo.Code, clo.Description, clo.BloomLevel)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_clos_course_code") {
			return apperrors.ErrCLOAlreadyExists
		}
		return fmt.Errorf("error updating clo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCLONotFound
	}
	return nil
}

// DeleteCLO removes a CLO and its mappings
func (r *OutcomeRepository) DeleteCLO(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM clos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting clo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCLONotFound
	}
	return nil
}

// ReplaceCLOMappings swaps a CLO's PLO links. Run inside a transaction.
func (r *OutcomeRepository) ReplaceCLOMappings(ctx context.Context, cloID int64, mappings []models.CLOPLOMapping) error {
	conn := r.db.Conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM clo_plo_mappings WHERE clo_id = $1`, cloID); err != nil {
		return fmt.Errorf("error clearing clo mappings: %w", err)
	}
	if len(mappings) == 0 {
		return nil
	}

	ins := psql.Insert("clo_plo_mappings").Columns("clo_id", "plo_id", "weight")
	for _, m := range mappings {
		ins = ins.Values(cloID, m.PLOID, m.Weight)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clo mapping query: %w", err)
	}
	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrPLONotFound
		}
		return fmt.Errorf("error inserting clo mappings: %w", err)
	}
	return nil
}

// ListMappingsByCourse returns every CLO to PLO link of a course
func (r *OutcomeRepository) ListMappingsByCourse(ctx context.Context, courseID int64) ([]models.CLOPLOMapping, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT m.clo_id, m.plo_id, pl.code, m.weight
		FROM clo_plo_mappings m
		JOIN clos c ON c.id = m.clo_id
		JOIN plos pl ON pl.id = m.plo_id
		WHERE c.course_id = $1
		ORDER BY c.code, pl.code`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing clo mappings: %w", err)
	}

	mappings, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.CLOPLOMapping])
	if err != nil {
		return nil, fmt.Errorf("error scanning clo mappings: %w", err)
	}
	return mappings, nil
}
