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

// SessionFilter narrows academic session listings
type SessionFilter struct {
	Year *int64
	Page int
	Size int
}

// ISessionRepository defines academic session persistence
type ISessionRepository interface {
	Create(ctx context.Context, session *models.AcademicSession) error
	GetByID(ctx context.Context, id int64) (*models.AcademicSession, error)
	GetActive(ctx context.Context) (*models.AcademicSession, error)
	List(ctx context.Context, filter SessionFilter) ([]*models.AcademicSession, int64, error)
	Update(ctx context.Context, session *models.AcademicSession) error
	Activate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// SessionRepository handles academic sessions
type SessionRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(h db.Handle) *SessionRepository {
	return &SessionRepository{db: h, sb: psql}
}

func (r *SessionRepository) selectSessions() squirrel.SelectBuilder {
	return r.sb.Select("id", "name", "term", "year", "start_date", "end_date", "is_active", "created_at", "updated_at").
		From("academic_sessions")
}

func scanSession(row rowScanner) (*models.AcademicSession, error) {
	s := &models.AcademicSession{}
	err := row.Scan(&s.ID, &s.Name, &s.Term, &s.Year, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func sessionWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_academic_sessions_name"):
		return apperrors.ErrSessionAlreadyExists
	case dberrors.IsCheckViolation(err):
		return apperrors.NewValidationError("start date must be before end date")
	}
	return fmt.Errorf("error writing academic session: %w", err)
}

// Create inserts an inactive session
func (r *SessionRepository) Create(ctx context.Context, session *models.AcademicSession) error {
	sql, args, err := r.sb.Insert("academic_sessions").
		Columns("name", "term", "year", "start_date", "end_date").
		Values(session.Name, session.Term, session.Year, session.StartDate, session.EndDate).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&session.ID, &session.IsActive, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return sessionWriteError(err)
	}
	return nil
}

// GetByID retrieves a session
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.AcademicSession, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, apperrors.ErrSessionNotFound)
}

// GetActive retrieves the active session
func (r *SessionRepository) GetActive(ctx context.Context) (*models.AcademicSession, error) {
	return r.getOne(ctx, squirrel.Eq{"is_active": true}, apperrors.ErrNoActiveSession)
}

func (r *SessionRepository) getOne(ctx context.Context, where squirrel.Sqlizer, notFound error) (*models.AcademicSession, error) {
	sql, args, err := r.selectSessions().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s, err := scanSession(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("error retrieving academic session: %w", err)
	}
	return s, nil
}

// List retrieves a page of sessions, newest first
func (r *SessionRepository) List(ctx context.Context, filter SessionFilter) ([]*models.AcademicSession, int64, error) {
	q := r.selectSessions()
	if filter.Year != nil {
		q = q.Where(squirrel.Eq{"year": *filter.Year})
	}

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "academic sessions")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("start_date DESC"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing academic sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.AcademicSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning academic session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

// Update updates name, term, year and dates
func (r *SessionRepository) Update(ctx context.Context, session *models.AcademicSession) error {
	sql, args, err := r.sb.Update("academic_sessions").
		Set("name", session.Name).
		Set("term", session.Term).
		Set("year", session.Year).
		Set("start_date", session.StartDate).
		Set("end_date", session.EndDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update session query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return sessionWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// Activate makes id the only active session. Run inside a transaction.
func (r *SessionRepository) Activate(ctx context.Context, id int64) error {
	conn := r.db.Conn(ctx)
	if _, err := conn.Exec(ctx,
		`UPDATE academic_sessions SET is_active = FALSE, updated_at = NOW() WHERE is_active AND id <> $1`, id); err != nil {
		return fmt.Errorf("error deactivating sessions: %w", err)
	}

	tag, err := conn.Exec(ctx,
		`UPDATE academic_sessions SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error activating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// Delete removes an inactive session without sections
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM academic_sessions WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.NewConflictError("academic session has sections and cannot be deleted")
		}
		return fmt.Errorf("error deleting academic session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}
