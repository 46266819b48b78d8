package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// AttendanceFilter narrows attendance listings. From and To are inclusive.
type AttendanceFilter struct {
	SectionID *int64
	StudentID *int64
	From      *models.Date
	To        *models.Date
	Status    *string
	Page      int
	Size      int
}

// IAttendanceRepository defines attendance persistence and aggregation
type IAttendanceRepository interface {
	Upsert(ctx context.Context, records []*models.AttendanceRecord) error
	ListBySectionDate(ctx context.Context, sectionID int64, date models.Date) ([]*models.AttendanceRecord, error)
	List(ctx context.Context, filter AttendanceFilter) ([]*models.AttendanceRecord, int64, error)
	SummaryByStudent(ctx context.Context, studentID int64) ([]models.SectionAttendanceSummary, error)
	SummaryBySection(ctx context.Context, sectionID int64) ([]models.SectionAttendanceSummary, error)
	DailyRates(ctx context.Context, from, to models.Date) ([]models.DailyAttendanceRate, error)
}

// AttendanceRepository handles attendance records
type AttendanceRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(h db.Handle) *AttendanceRepository {
	return &AttendanceRepository{db: h, sb: psql}
}

const attendanceCounts = `COUNT(a.id) FILTER (WHERE a.status = 'PRESENT'),
	COUNT(a.id) FILTER (WHERE a.status = 'ABSENT'),
	COUNT(a.id) FILTER (WHERE a.status = 'LATE'),
	COUNT(a.id) FILTER (WHERE a.status = 'EXCUSED')`

func (r *AttendanceRepository) selectRecords() squirrel.SelectBuilder {
	return r.sb.Select("a.id", "a.section_id", "a.student_id", "a.date", "a.status", "a.remarks", "a.marked_by",
		"a.created_at", "a.updated_at").
		From("attendance a")
}

func scanAttendance(row rowScanner) (*models.AttendanceRecord, error) {
	a := &models.AttendanceRecord{}
	err := row.Scan(&a.ID, &a.SectionID, &a.StudentID, &a.Date, &a.Status, &a.Remarks, &a.MarkedBy,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AttendanceRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.AttendanceRecord, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying attendance: %w", err)
	}
	defer rows.Close()

	records := []*models.AttendanceRecord{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// Upsert writes records in one statement; a second mark for the same section, student and day replaces the first
func (r *AttendanceRepository) Upsert(ctx context.Context, records []*models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	ins := r.sb.Insert("attendance").
		Columns("section_id", "student_id", "date", "status", "remarks", "marked_by").
		Suffix(`ON CONFLICT (section_id, student_id, date) DO UPDATE
			SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, marked_by = EXCLUDED.marked_by, updated_at = NOW()
			RETURNING id, created_at, updated_at`)
	for _, rec := range records {
		ins = ins.Values(rec.SectionID, rec.StudentID, rec.Date, rec.Status, rec.Remarks, rec.MarkedBy)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build attendance upsert: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error saving attendance: %w", err)
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		if i >= len(records) {
			break
		}
		if err := rows.Scan(&records[i].ID, &records[i].CreatedAt, &records[i].UpdatedAt); err != nil {
			return fmt.Errorf("error scanning saved attendance: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrInvalidReference
		}
		return fmt.Errorf("error saving attendance: %w", err)
	}
	return nil
}

// ListBySectionDate returns the records of one section meeting
func (r *AttendanceRepository) ListBySectionDate(ctx context.Context, sectionID int64, date models.Date) ([]*models.AttendanceRecord, error) {
	return r.query(ctx, r.selectRecords().
		Where(squirrel.Eq{"a.section_id": sectionID, "a.date": date}).
		OrderBy("a.student_id"))
}

// List retrieves a page of records, newest first
func (r *AttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]*models.AttendanceRecord, int64, error) {
	q := r.selectRecords()
	if filter.SectionID != nil {
		q = q.Where(squirrel.Eq{"a.section_id": *filter.SectionID})
	}
	if filter.StudentID != nil {
		q = q.Where(squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"a.date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"a.date": *filter.To})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"a.status": *filter.Status})
	}

	total, err := count(ctx, r.db.Conn(ctx), q, "attendance")
	if err != nil {
		return nil, 0, err
	}

	records, err := r.query(ctx, helpers.ApplyPage(q.OrderBy("a.date DESC", "a.section_id", "a.student_id"), filter.Page, filter.Size))
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *AttendanceRepository) summaries(ctx context.Context, sql string, arg int64) ([]models.SectionAttendanceSummary, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("error summarizing attendance: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SectionAttendanceSummary, error) {
		var s models.SectionAttendanceSummary
		err := row.Scan(&s.SectionID, &s.SectionName, &s.CourseCode, &s.StudentID,
			&s.Present, &s.Absent, &s.Late, &s.Excused)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning attendance summary: %w", err)
	}
	return out, nil
}

// SummaryByStudent returns counts for every section the student is enrolled in, including unmarked ones
func (r *AttendanceRepository) SummaryByStudent(ctx context.Context, studentID int64) ([]models.SectionAttendanceSummary, error) {
	return r.summaries(ctx, `
		SELECT s.id, s.name, c.code, ss.student_id, `+attendanceCounts+`
		FROM student_sections ss
		JOIN sections s ON s.id = ss.section_id
		JOIN courses c ON c.id = s.course_id
		LEFT JOIN attendance a ON a.section_id = ss.section_id AND a.student_id = ss.student_id
		WHERE ss.student_id = $1
		GROUP BY s.id, s.name, c.code, ss.student_id
		ORDER BY c.code, s.name`, studentID)
}

// SummaryBySection returns counts for every student enrolled in the section
func (r *AttendanceRepository) SummaryBySection(ctx context.Context, sectionID int64) ([]models.SectionAttendanceSummary, error) {
	return r.summaries(ctx, `
		SELECT s.id, s.name, c.code, ss.student_id, `+attendanceCounts+`
		FROM student_sections ss
		JOIN sections s ON s.id = ss.section_id
		JOIN courses c ON c.id = s.course_id
		LEFT JOIN attendance a ON a.section_id = ss.section_id AND a.student_id = ss.student_id
		WHERE ss.section_id = $1
		GROUP BY s.id, s.name, c.code, ss.student_id
		ORDER BY ss.student_id`, sectionID)
}

// DailyRates returns per-day totals and present-or-late counts between from and to inclusive.
// Days without records are omitted.
func (r *AttendanceRepository) DailyRates(ctx context.Context, from, to models.Date) ([]models.DailyAttendanceRate, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT date, COUNT(*), COUNT(*) FILTER (WHERE status IN ('PRESENT', 'LATE'))
		FROM attendance
		WHERE date BETWEEN $1 AND $2
		GROUP BY date
		ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying daily attendance: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.DailyAttendanceRate])
	if err != nil {
		return nil, fmt.Errorf("error scanning daily attendance: %w", err)
	}
	return out, nil
}
