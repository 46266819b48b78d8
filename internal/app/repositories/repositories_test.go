package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

var fixedTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, db.Handle) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, db.PoolHandle{Q: mock}
}

func TestSectionRepository_Enroll(t *testing.T) {
	mock, h := newMock(t)
	repo := NewSectionRepository(h)

	mock.ExpectExec(`INSERT INTO student_sections \(student_id,section_id\) VALUES \(\$1,\$2\),\(\$3,\$4\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(11), int64(5), int64(12), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	added, err := repo.Enroll(context.Background(), 5, []int64{11, 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), added)
}

func TestSectionRepository_EnrollEmptyIsNoop(t *testing.T) {
	_, h := newMock(t)
	added, err := NewSectionRepository(h).Enroll(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestSectionRepository_EnrollUnknownStudent(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectExec(`INSERT INTO student_sections`).
		WithArgs(int64(99), int64(5)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "student_sections_student_id_fkey"})

	_, err := NewSectionRepository(h).Enroll(context.Background(), 5, []int64{99})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestSectionRepository_Unenroll(t *testing.T) {
	mock, h := newMock(t)
	repo := NewSectionRepository(h)

	mock.ExpectExec(`DELETE FROM student_sections`).
		WithArgs(int64(5), int64(11)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Unenroll(context.Background(), 5, 11)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotEnrolledSection)
}

func TestSectionRepository_LockCapacity(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectQuery(`SELECT capacity FROM sections WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"capacity"}).AddRow(40))

	capacity, err := NewSectionRepository(h).LockCapacity(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 40, capacity)
}

func TestSectionRepository_DuplicateName(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectQuery(`INSERT INTO sections`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_sections_course_session_name"})

	err := NewSectionRepository(h).Create(context.Background(), &models.Section{CourseID: 1, SessionID: 2, Name: "A", Capacity: 30})
	assert.ErrorIs(t, err, apperrors.ErrSectionAlreadyExists)
}

func TestTimetableRepository_DeleteMissing(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectExec(`DELETE FROM timetable_slots`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := NewTimetableRepository(h).Delete(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrSlotNotFound)
}

func TestNotificationRepository_MarkReadOtherUser(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
		WithArgs(int64(8), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewNotificationRepository(h).MarkRead(context.Background(), 8, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotificationNotFound)
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := NewNotificationRepository(h).CountUnread(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestNotificationRepository_CreateManyFillsIDs(t *testing.T) {
	mock, h := newMock(t)
	items := []*models.Notification{
		{UserID: 1, Title: "Hi", Message: "first"},
		{UserID: 2, Title: "Hi", Message: "second", Type: models.NotificationAlert},
	}

	mock.ExpectQuery(`INSERT INTO notifications \(user_id,title,message,type\) VALUES`).
		WithArgs(int64(1), "Hi", "first", models.NotificationInfo, int64(2), "Hi", "second", models.NotificationAlert).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).
			AddRow(int64(10), fixedTime).
			AddRow(int64(11), fixedTime))

	require.NoError(t, NewNotificationRepository(h).CreateMany(context.Background(), items))
	assert.Equal(t, int64(10), items[0].ID)
	assert.Equal(t, int64(11), items[1].ID)
	assert.Equal(t, models.NotificationInfo, items[0].Type)
}

func TestDepartmentRepository_DeleteReferenced(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectExec(`DELETE FROM departments`).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := NewDepartmentRepository(h).Delete(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrDepartmentHasRelations)
}

func TestDashboardRepository_DepartmentBreakdown(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectQuery(`FROM departments d`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code", "name", "students", "faculty"}).
			AddRow(int64(1), "CS", "Computer Science", int64(120), int64(9)).
			AddRow(int64(2), "EE", "Electrical Engineering", int64(80), int64(6)))

	out, err := NewDashboardRepository(h).DepartmentBreakdown(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "CS", out[0].Code)
	assert.Equal(t, int64(120), out[0].Students)
	assert.Equal(t, int64(6), out[1].Faculty)
}

func TestAuditLogRepository_CreateDefaultsDetails(t *testing.T) {
	mock, h := newMock(t)
	actor := int64(1)
	entry := &models.AuditLog{ActorID: &actor, Action: "DELETE", Entity: "course", IPAddress: "10.0.0.1"}

	mock.ExpectQuery(`INSERT INTO audit_logs`).
		WithArgs(&actor, "DELETE", "course", (*int64)(nil), "{}", "10.0.0.1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), fixedTime))

	require.NoError(t, NewAuditLogRepository(h).Create(context.Background(), entry))
	assert.Equal(t, int64(7), entry.ID)
}

func TestSessionRepository_ActivateDeactivatesOthersFirst(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectExec(`UPDATE academic_sessions SET is_active = FALSE, updated_at = NOW\(\) WHERE is_active AND id <> \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE academic_sessions SET is_active = TRUE, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewSessionRepository(h).Activate(context.Background(), 3))
}

func TestSessionRepository_ActivateMissing(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectExec(`SET is_active = FALSE`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`SET is_active = TRUE`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewSessionRepository(h).Activate(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestUserRepository_HasPermissionResolvesAdminAndStatus(t *testing.T) {
	mock, h := newMock(t)
	mock.ExpectQuery(`(?s)FROM users u\s+JOIN user_roles ur ON ur.user_id = u.id\s+JOIN roles r ON r.id = ur.role_id.*WHERE u.id = \$1 AND u.status = \$2 AND \(r.name = \$3 OR p.code = \$4\)`).
		WithArgs(int64(1), models.UserStatusActive, models.RoleAdmin, "students:write").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := NewUserRepository(h).HasPermission(context.Background(), 1, "students:write")
	require.NoError(t, err)
	assert.False(t, ok)
}
