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

// SectionFilter narrows section listings
type SectionFilter struct {
	SessionID *int64
	CourseID  *int64
	FacultyID *int64
	BatchID   *int64
	StudentID *int64
	Page      int
	Size      int
}

// ISectionRepository defines section and enrollment persistence
type ISectionRepository interface {
	Create(ctx context.Context, section *models.Section) error
	GetByID(ctx context.Context, id int64) (*models.Section, error)
	LockCapacity(ctx context.Context, id int64) (int, error)
	List(ctx context.Context, filter SectionFilter) ([]*models.Section, int64, error)
	ListAll(ctx context.Context, filter SectionFilter) ([]*models.Section, error)
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id int64) error

	Enroll(ctx context.Context, sectionID int64, studentIDs []int64) (int64, error)
	Unenroll(ctx context.Context, sectionID, studentID int64) error
	CountEnrolled(ctx context.Context, sectionID int64) (int64, error)
	EnrolledAmong(ctx context.Context, sectionID int64, studentIDs []int64) ([]int64, error)
	ListStudents(ctx context.Context, sectionID int64) ([]models.SectionStudent, error)
}

// SectionRepository handles sections and student enrollment
type SectionRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(h db.Handle) *SectionRepository {
	return &SectionRepository{db: h, sb: psql}
}

func (r *SectionRepository) selectSections() squirrel.SelectBuilder {
	return r.sb.Select("s.id", "s.course_id", "c.code", "c.title", "s.session_id", "a.name", "s.batch_id",
		"s.faculty_id", "fu.first_name || ' ' || fu.last_name", "s.name", "s.capacity",
		"(SELECT COUNT(*) FROM student_sections ss WHERE ss.section_id = s.id)", "s.created_at", "s.updated_at").
		From("sections s").
		Join("courses c ON c.id = s.course_id").
		Join("academic_sessions a ON a.id = s.session_id").
		LeftJoin("faculty f ON f.id = s.faculty_id").
		LeftJoin("users fu ON fu.id = f.user_id")
}

func scanSection(row rowScanner) (*models.Section, error) {
	s := &models.Section{}
	err := row.Scan(&s.ID, &s.CourseID, &s.CourseCode, &s.CourseTitle, &s.SessionID, &s.SessionName, &s.BatchID,
		&s.FacultyID, &s.FacultyName, &s.Name, &s.Capacity, &s.Enrolled, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func sectionWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "uq_sections_course_session_name"):
		return apperrors.ErrSectionAlreadyExists
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrInvalidReference
	}
	return fmt.Errorf("error writing section: %w", err)
}

func applySectionFilter(q squirrel.SelectBuilder, filter SectionFilter) squirrel.SelectBuilder {
	if filter.SessionID != nil {
		q = q.Where(squirrel.Eq{"s.session_id": *filter.SessionID})
	}
	if filter.CourseID != nil {
		q = q.Where(squirrel.Eq{"s.course_id": *filter.CourseID})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"s.faculty_id": *filter.FacultyID})
	}
	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"s.batch_id": *filter.BatchID})
	}
	if filter.StudentID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM student_sections ss WHERE ss.section_id = s.id AND ss.student_id = ?)", *filter.StudentID)
	}
	return q
}

// Create inserts a section
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	sql, args, err := r.sb.Insert("sections").
		Columns("course_id", "session_id", "batch_id", "faculty_id", "name", "capacity").
		Values(section.CourseID, section.SessionID, section.BatchID, section.FacultyID, section.Name, section.Capacity).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create section query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt); err != nil {
		return sectionWriteError(err)
	}
	return nil
}

// GetByID retrieves a section with course, session and instructor names
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	sql, args, err := r.selectSections().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get section query: %w", err)
	}

	s, err := scanSection(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSectionNotFound
		}
		return nil, fmt.Errorf("error retrieving section: %w", err)
	}
	return s, nil
}

// LockCapacity row-locks the section for the rest of the transaction and returns its capacity
func (r *SectionRepository) LockCapacity(ctx context.Context, id int64) (int, error) {
	var capacity int
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT capacity FROM sections WHERE id = $1 FOR UPDATE`, id).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrSectionNotFound
		}
		return 0, fmt.Errorf("error locking section: %w", err)
	}
	return capacity, nil
}

func (r *SectionRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Section, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build section query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying sections: %w", err)
	}
	defer rows.Close()

	sections := []*models.Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// List retrieves a page of sections
func (r *SectionRepository) List(ctx context.Context, filter SectionFilter) ([]*models.Section, int64, error) {
	q := applySectionFilter(r.selectSections(), filter)

	total, err := count(ctx, r.db.Conn(ctx), q, "sections")
	if err != nil {
		return nil, 0, err
	}

	sections, err := r.query(ctx, helpers.ApplyPage(q.OrderBy("c.code", "s.name"), filter.Page, filter.Size))
	if err != nil {
		return nil, 0, err
	}
	return sections, total, nil
}

// ListAll returns every section matching filter, ignoring paging
func (r *SectionRepository) ListAll(ctx context.Context, filter SectionFilter) ([]*models.Section, error) {
	return r.query(ctx, applySectionFilter(r.selectSections(), filter).OrderBy("a.start_date DESC", "c.code", "s.name"))
}

// Update updates a section
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	sql, args, err := r.sb.Update("sections").
		Set("course_id", section.CourseID).
		Set("session_id", section.SessionID).
		Set("batch_id", section.BatchID).
		Set("faculty_id", section.FacultyID).
		Set("name", section.Name).
		Set("capacity", section.Capacity).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": section.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update section query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return sectionWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSectionNotFound
	}
	return nil
}

// Delete removes a section with its slots, enrollments and attendance
func (r *SectionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSectionNotFound
	}
	return nil
}

// Enroll adds students, skipping existing enrollments, and returns the number added
func (r *SectionRepository) Enroll(ctx context.Context, sectionID int64, studentIDs []int64) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}

	ins := r.sb.Insert("student_sections").Columns("student_id", "section_id").Suffix("ON CONFLICT DO NOTHING")
	for _, id := range studentIDs {
		ins = ins.Values(id, sectionID)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build enroll query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return 0, apperrors.ErrStudentNotFound
		}
		return 0, fmt.Errorf("error enrolling students: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Unenroll removes one enrollment
func (r *SectionRepository) Unenroll(ctx context.Context, sectionID, studentID int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`DELETE FROM student_sections WHERE section_id = $1 AND student_id = $2`, sectionID, studentID)
	if err != nil {
		return fmt.Errorf("error removing enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotEnrolledSection
	}
	return nil
}

// CountEnrolled returns the section's enrollment count
func (r *SectionRepository) CountEnrolled(ctx context.Context, sectionID int64) (int64, error) {
	var n int64
	if err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM student_sections WHERE section_id = $1`, sectionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return n, nil
}

// EnrolledAmong returns which of studentIDs are enrolled in the section
func (r *SectionRepository) EnrolledAmong(ctx context.Context, sectionID int64, studentIDs []int64) ([]int64, error) {
	rows, err := r.db.Conn(ctx).Query(ctx,
		`SELECT student_id FROM student_sections WHERE section_id = $1 AND student_id = ANY($2)`, sectionID, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("error checking enrollments: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning enrollments: %w", err)
	}
	return ids, nil
}

// ListStudents returns the section roster ordered by registration number
func (r *SectionRepository) ListStudents(ctx context.Context, sectionID int64) ([]models.SectionStudent, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT st.id, st.registration_no, u.first_name, u.last_name, u.email, ss.enrolled_at
		FROM student_sections ss
		JOIN students st ON st.id = ss.student_id
		JOIN users u ON u.id = st.user_id
		WHERE ss.section_id = $1
		ORDER BY st.registration_no`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error listing section students: %w", err)
	}

	roster, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.SectionStudent])
	if err != nil {
		return nil, fmt.Errorf("error scanning section students: %w", err)
	}
	return roster, nil
}
