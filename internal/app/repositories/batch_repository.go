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

// BatchFilter narrows batch listings
type BatchFilter struct {
	ProgramID *int64
	Status    *string
	Page      int
	Size      int
}

// IBatchRepository defines batch persistence
type IBatchRepository interface {
	Create(ctx context.Context, batch *models.Batch) error
	GetByID(ctx context.Context, id int64) (*models.Batch, error)
	List(ctx context.Context, filter BatchFilter) ([]*models.Batch, int64, error)
	Update(ctx context.Context, batch *models.Batch) error
	UpdateStatus(ctx context.Context, id int64, status models.BatchStatus) error
	Delete(ctx context.Context, id int64) error
}

// BatchRepository handles intake batches
type BatchRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(h db.Handle) *BatchRepository {
	return &BatchRepository{db: h, sb: psql}
}

func (r *BatchRepository) selectBatches() squirrel.SelectBuilder {
	return r.sb.Select("b.id", "b.program_id", "p.code", "b.name", "b.intake_year", "b.status", "b.created_at", "b.updated_at").
		From("batches b").
		Join("programs p ON p.id = b.program_id")
}

func scanBatch(row rowScanner) (*models.Batch, error) {
	b := &models.Batch{}
	err := row.Scan(&b.ID, &b.ProgramID, &b.ProgramCode, &b.Name, &b.IntakeYear, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func batchWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_batches_program_year"):
		return apperrors.ErrBatchAlreadyExists
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrProgramNotFound
	}
	return fmt.Errorf("error writing batch: %w", err)
}

// Create inserts a batch
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.Status == "" {
		batch.Status = models.BatchStatusActive
	}

	sql, args, err := r.sb.Insert("batches").
		Columns("program_id", "name", "intake_year", "status").
		Values(batch.ProgramID, batch.Name, batch.IntakeYear, batch.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create batch query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&batch.ID, &batch.CreatedAt, &batch.UpdatedAt); err != nil {
		return batchWriteError(err)
	}
	return nil
}

// GetByID retrieves a batch
func (r *BatchRepository) GetByID(ctx context.Context, id int64) (*models.Batch, error) {
	sql, args, err := r.selectBatches().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get batch query: %w", err)
	}

	b, err := scanBatch(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBatchNotFound
		}
		return nil, fmt.Errorf("error retrieving batch: %w", err)
	}
	return b, nil
}

// List retrieves a page of batches
func (r *BatchRepository) List(ctx context.Context, filter BatchFilter) ([]*models.Batch, int64, error) {
	q := r.selectBatches()
	if filter.ProgramID != nil {
		q = q.Where(squirrel.Eq{"b.program_id": *filter.ProgramID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"b.status": *filter.Status})
	}

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "batches")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("b.intake_year DESC", "p.code"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list batches query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing batches: %w", err)
	}
	defer rows.Close()

	batches := []*models.Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, total, rows.Err()
}

// Update updates program, name and intake year
func (r *BatchRepository) Update(ctx context.Context, batch *models.Batch) error {
	sql, args, err := r.sb.Update("batches").
		Set("program_id", batch.ProgramID).
		Set("name", batch.Name).
		Set("intake_year", batch.IntakeYear).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": batch.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update batch query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return batchWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBatchNotFound
	}
	return nil
}

// UpdateStatus changes a batch status
func (r *BatchRepository) UpdateStatus(ctx context.Context, id int64, status models.BatchStatus) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE batches SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBatchNotFound
	}
	return nil
}

// Delete removes a batch without students
func (r *BatchRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrBatchHasRelations
		}
		return fmt.Errorf("error deleting batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBatchNotFound
	}
	return nil
}
