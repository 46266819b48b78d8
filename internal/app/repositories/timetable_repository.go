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

// TimetableFilter narrows slot listings
type TimetableFilter struct {
	SessionID *int64
	SectionID *int64
	FacultyID *int64
	Room      *string
	DayOfWeek *int
	Page      int
	Size      int
}

// ITimetableRepository defines timetable slot persistence
type ITimetableRepository interface {
	Create(ctx context.Context, slot *models.TimetableSlot) error
	GetByID(ctx context.Context, id int64) (*models.TimetableSlot, error)
	List(ctx context.Context, filter TimetableFilter) ([]*models.TimetableSlot, int64, error)
	Update(ctx context.Context, slot *models.TimetableSlot) error
	Delete(ctx context.Context, id int64) error
	FindConflicts(ctx context.Context, slot *models.TimetableSlot, excludeID int64) ([]*models.TimetableSlot, error)
}

// TimetableRepository handles weekly section slots
type TimetableRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewTimetableRepository creates a new TimetableRepository
func NewTimetableRepository(h db.Handle) *TimetableRepository {
	return &TimetableRepository{db: h, sb: psql}
}

func (r *TimetableRepository) selectSlots() squirrel.SelectBuilder {
	return r.sb.Select("t.id", "t.section_id", "t.day_of_week", "to_char(t.start_time, 'HH24:MI')",
		"to_char(t.end_time, 'HH24:MI')", "t.room", "s.session_id", "s.faculty_id", "t.created_at", "t.updated_at").
		From("timetable_slots t").
		Join("sections s ON s.id = t.section_id")
}

func scanSlot(row rowScanner) (*models.TimetableSlot, error) {
	t := &models.TimetableSlot{}
	err := row.Scan(&t.ID, &t.SectionID, &t.DayOfWeek, &t.StartTime, &t.EndTime, &t.Room, &t.SessionID,
		&t.FacultyID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TimetableRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.TimetableSlot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build timetable query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying timetable: %w", err)
	}
	defer rows.Close()

	slots := []*models.TimetableSlot{}
	for rows.Next() {
		t, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning timetable slot: %w", err)
		}
		slots = append(slots, t)
	}
	return slots, rows.Err()
}

// Create inserts a slot
func (r *TimetableRepository) Create(ctx context.Context, slot *models.TimetableSlot) error {
	sql, args, err := r.sb.Insert("timetable_slots").
		Columns("section_id", "day_of_week", "start_time", "end_time", "room").
		Values(slot.SectionID, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.Room).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create slot query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrSectionNotFound
		}
		return fmt.Errorf("error creating timetable slot: %w", err)
	}
	return nil
}

// GetByID retrieves a slot
func (r *TimetableRepository) GetByID(ctx context.Context, id int64) (*models.TimetableSlot, error) {
	sql, args, err := r.selectSlots().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get slot query: %w", err)
	}

	t, err := scanSlot(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("error retrieving timetable slot: %w", err)
	}
	return t, nil
}

// List retrieves a page of slots ordered by day and start time
func (r *TimetableRepository) List(ctx context.Context, filter TimetableFilter) ([]*models.TimetableSlot, int64, error) {
	q := r.selectSlots()
	if filter.SessionID != nil {
		q = q.Where(squirrel.Eq{"s.session_id": *filter.SessionID})
	}
	if filter.SectionID != nil {
		q = q.Where(squirrel.Eq{"t.section_id": *filter.SectionID})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"s.faculty_id": *filter.FacultyID})
	}
	if filter.Room != nil {
		q = q.Where(squirrel.Eq{"t.room": *filter.Room})
	}
	if filter.DayOfWeek != nil {
		q = q.Where(squirrel.Eq{"t.day_of_week": *filter.DayOfWeek})
	}

	total, err := count(ctx, r.db.Conn(ctx), q, "timetable slots")
	if err != nil {
		return nil, 0, err
	}

	slots, err := r.query(ctx, helpers.ApplyPage(q.OrderBy("t.day_of_week", "t.start_time", "t.room"), filter.Page, filter.Size))
	if err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// Update updates a slot
func (r *TimetableRepository) Update(ctx context.Context, slot *models.TimetableSlot) error {
	sql, args, err := r.sb.Update("timetable_slots").
		Set("section_id", slot.SectionID).
		Set("day_of_week", slot.DayOfWeek).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Set("room", slot.Room).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update slot query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrSectionNotFound
		}
		return fmt.Errorf("error updating timetable slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSlotNotFound
	}
	return nil
}

// Delete removes a slot
func (r *TimetableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM timetable_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting timetable slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSlotNotFound
	}
	return nil
}

// FindConflicts returns slots in the same session and day whose time range overlaps slot and which share
// its room, section or instructor. slot.SessionID and slot.FacultyID must already be resolved.
func (r *TimetableRepository) FindConflicts(ctx context.Context, slot *models.TimetableSlot, excludeID int64) ([]*models.TimetableSlot, error) {
	shared := squirrel.Or{
		squirrel.Eq{"t.room": slot.Room},
		squirrel.Eq{"t.section_id": slot.SectionID},
	}
	if slot.FacultyID != nil {
		shared = append(shared, squirrel.Eq{"s.faculty_id": *slot.FacultyID})
	}

	q := r.selectSlots().
		Where(squirrel.Eq{"s.session_id": slot.SessionID, "t.day_of_week": slot.DayOfWeek}).
		Where("t.start_time < ?::time AND ?::time < t.end_time", slot.EndTime, slot.StartTime).
		Where(shared).
		OrderBy("t.start_time")
	if excludeID != 0 {
		q = q.Where(squirrel.NotEq{"t.id": excludeID})
	}
	return r.query(ctx, q)
}
